package recommendation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"sparkathon/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const slotCachePrefix = "recs:"

// SlotCache stores recommendation batches by key.
type SlotCache interface {
	Get(ctx context.Context, key string) ([]models.TimeSlot, bool, error)
	Set(ctx context.Context, key string, slots []models.TimeSlot) error
}

type RedisSlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSlotCache(client *redis.Client, ttl time.Duration) *RedisSlotCache {
	return &RedisSlotCache{client: client, ttl: ttl}
}

func (c *RedisSlotCache) Get(ctx context.Context, key string) ([]models.TimeSlot, bool, error) {
	data, err := c.client.Get(ctx, slotCachePrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var slots []models.TimeSlot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, false, err
	}
	return slots, true, nil
}

func (c *RedisSlotCache) Set(ctx context.Context, key string, slots []models.TimeSlot) error {
	b, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, slotCachePrefix+key, b, c.ttl).Err()
}

// CachedSource serves repeated requests for the same delivery from a cache
// and only asks Source on a miss. Cache errors fall through to Source.
type CachedSource struct {
	Source Source
	Cache  SlotCache
	Logger *zap.Logger
}

func NewCachedSource(source Source, cache SlotCache, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{Source: source, Cache: cache, Logger: logger}
}

func (s *CachedSource) FetchRecommendations(ctx context.Context, req models.RecommendationRequest) ([]models.TimeSlot, error) {
	key := cacheKey(req)
	slots, ok, err := s.Cache.Get(ctx, key)
	if err != nil {
		s.Logger.Warn("recommendation cache read failed", zap.Error(err))
	}
	if ok && Validate(slots) == nil {
		return slots, nil
	}

	slots, err = s.Source.FetchRecommendations(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, slots); err != nil {
		s.Logger.Warn("recommendation cache write failed", zap.Error(err))
	}
	return slots, nil
}

// cacheKey identifies a delivery by its normalized name and address.
func cacheKey(req models.RecommendationRequest) string {
	norm := strings.ToLower(strings.TrimSpace(req.CustomerName)) + "\x00" +
		strings.ToLower(strings.Join(strings.Fields(req.Address), " "))
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:16])
}
