package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"sparkathon/models"
	"sparkathon/utils"

	"github.com/go-redis/redis/v8"
)

// RedisSessionStore keeps sessions under authSession:<id> with a TTL and
// publishes changes on authSession:events:<id>.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

type sessionChange struct {
	User *models.User `json:"user"`
}

func (s *RedisSessionStore) Save(ctx context.Context, session models.AuthSession, ttl time.Duration) error {
	session.LastUpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal auth session: %w", err)
	}
	if err := s.client.Set(ctx, utils.AuthSessionPrefix+session.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save auth session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*models.AuthSession, error) {
	data, err := s.client.Get(ctx, utils.AuthSessionPrefix+id).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session models.AuthSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auth session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, utils.AuthSessionPrefix+id).Err()
}

func (s *RedisSessionStore) Publish(ctx context.Context, id string, user *models.User) error {
	data, err := json.Marshal(sessionChange{User: user})
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, utils.AuthSessionEventsPrefix+id, data).Err()
}

func (s *RedisSessionStore) Subscribe(ctx context.Context, id string) (<-chan *models.User, func(), error) {
	pubsub := s.client.Subscribe(ctx, utils.AuthSessionEventsPrefix+id)
	// Wait for the subscription to be confirmed so no publish is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to session events: %w", err)
	}

	out := make(chan *models.User)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change sessionChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					utils.GetLogger().Sugar().Warnf("identity: dropping malformed session event: %v", err)
					continue
				}
				select {
				case out <- change.User:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, stop, nil
}
