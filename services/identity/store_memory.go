package identity

import (
	"context"
	"sync"
	"time"

	"sparkathon/models"
)

type memoryEntry struct {
	session   models.AuthSession
	expiresAt time.Time
}

// MemorySessionStore is an in-process SessionStore for single-instance runs.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	subs     map[string]map[uint64]chan *models.User
	nextSub  uint64
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memoryEntry),
		subs:     make(map[string]map[uint64]chan *models.User),
	}
}

func (s *MemorySessionStore) Save(_ context.Context, session models.AuthSession, ttl time.Duration) error {
	session.LastUpdatedAt = time.Now()
	entry := memoryEntry{session: session}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.sessions[session.ID] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*models.AuthSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	session := entry.session
	return &session, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Publish hands the change to every subscriber of id. Slow subscribers are
// skipped rather than blocking the publisher.
func (s *MemorySessionStore) Publish(_ context.Context, id string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs[id] {
		var u *models.User
		if user != nil {
			cp := *user
			u = &cp
		}
		select {
		case ch <- u:
		default:
		}
	}
	return nil
}

func (s *MemorySessionStore) Subscribe(ctx context.Context, id string) (<-chan *models.User, func(), error) {
	ch := make(chan *models.User, 8)

	s.mu.Lock()
	subID := s.nextSub
	s.nextSub++
	if s.subs[id] == nil {
		s.subs[id] = make(map[uint64]chan *models.User)
	}
	s.subs[id][subID] = ch
	s.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			s.mu.Lock()
			defer s.mu.Unlock()
			if subs, ok := s.subs[id]; ok {
				delete(subs, subID)
				if len(subs) == 0 {
					delete(s.subs, id)
				}
			}
			close(ch)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()
	return ch, stop, nil
}
