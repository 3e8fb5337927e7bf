package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"radiolink/catalog/internal/compare"
	"radiolink/catalog/internal/domain"
)

// RecordVersion is bumped whenever the persisted product shape changes.
// Records written with another version are discarded on load.
const RecordVersion = 1

// compareRecord is the persisted layout of a compare set.
type compareRecord struct {
	Version         int              `json:"version"`
	CompareProducts []domain.Product `json:"compareProducts"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// CompareStateManager hands out per-session compare stores.
type CompareStateManager interface {
	ForSession(sessionID string) compare.Store
}

type redisStateManager struct {
	redisClient *redis.Client
	keyPrefix   string
	ttl         time.Duration
}

func NewRedisStateManager(redisClient *redis.Client, storageKey string, ttl time.Duration) CompareStateManager {
	return &redisStateManager{
		redisClient: redisClient,
		keyPrefix:   "radiolink:" + storageKey + ":",
		ttl:         ttl,
	}
}

func (s *redisStateManager) ForSession(sessionID string) compare.Store {
	return &redisCompareStore{
		manager: s,
		key:     s.keyPrefix + sessionID,
	}
}

type redisCompareStore struct {
	manager *redisStateManager
	key     string
}

func (s *redisCompareStore) Load(ctx context.Context) ([]domain.Product, error) {
	val, err := s.manager.redisClient.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Nothing saved yet
		}
		return nil, fmt.Errorf("failed to load compare set %s: %w", s.key, err)
	}

	var record compareRecord
	if err := sonic.UnmarshalString(val, &record); err != nil {
		log.Warnf("⚠️ Discarding unreadable compare record %s: %v", s.key, err)
		return nil, nil
	}
	if record.Version != RecordVersion {
		log.Infof("Discarding compare record %s with version %d (want %d)", s.key, record.Version, RecordVersion)
		return nil, nil
	}

	return record.CompareProducts, nil
}

func (s *redisCompareStore) Save(ctx context.Context, products []domain.Product) error {
	data, err := sonic.MarshalString(compareRecord{
		Version:         RecordVersion,
		CompareProducts: products,
		UpdatedAt:       time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode compare set: %w", err)
	}

	if err := s.manager.redisClient.Set(ctx, s.key, data, s.manager.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save compare set %s: %w", s.key, err)
	}
	return nil
}
