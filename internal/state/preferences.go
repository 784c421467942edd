package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"storefront/catalogsync/internal/domain"
)

// PreferenceStore keeps the last product list filters of each user.
type PreferenceStore interface {
	LoadFilters(ctx context.Context, userKey string) (*domain.FilterState, error)
	SaveFilters(ctx context.Context, userKey string, filters domain.FilterState) error
}

// KeyValue is the subset of the redis client used for preferences.
type KeyValue interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type redisPreferenceStore struct {
	redisClient KeyValue
	keyPrefix   string
	ttl         time.Duration
}

func NewRedisPreferenceStore(redisClient KeyValue, ttl time.Duration) PreferenceStore {
	return &redisPreferenceStore{
		redisClient: redisClient,
		keyPrefix:   "catalog:prefs:",
		ttl:         ttl,
	}
}

func (s *redisPreferenceStore) LoadFilters(ctx context.Context, userKey string) (*domain.FilterState, error) {
	key := s.keyPrefix + userKey
	val, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Nothing saved yet
		}
		return nil, fmt.Errorf("failed to get filters for %s: %w", userKey, err)
	}

	var filters domain.FilterState
	if err := json.Unmarshal([]byte(val), &filters); err != nil {
		return nil, fmt.Errorf("failed to parse filters for %s: %w", userKey, err)
	}
	return &filters, nil
}

func (s *redisPreferenceStore) SaveFilters(ctx context.Context, userKey string, filters domain.FilterState) error {
	data, err := json.Marshal(filters)
	if err != nil {
		return fmt.Errorf("failed to encode filters for %s: %w", userKey, err)
	}

	key := s.keyPrefix + userKey
	if err := s.redisClient.Set(ctx, key, string(data), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save filters for %s: %w", userKey, err)
	}
	return nil
}

// PreferenceWriter saves committed filter states of one user after they stop
// changing for the quiet period.
type PreferenceWriter struct {
	store     PreferenceStore
	userKey   string
	timeout   time.Duration
	debouncer *Debouncer[domain.FilterState]
}

func NewPreferenceWriter(store PreferenceStore, userKey string, clk clock.Clock, quiet time.Duration) *PreferenceWriter {
	w := &PreferenceWriter{
		store:   store,
		userKey: userKey,
		timeout: 5 * time.Second,
	}
	w.debouncer = NewDebouncer(clk, quiet, w.save)
	return w
}

func (w *PreferenceWriter) Push(filters domain.FilterState) {
	w.debouncer.Push(filters)
}

// Close writes any pending filters and stops accepting new ones.
func (w *PreferenceWriter) Close() {
	w.debouncer.Flush()
	w.debouncer.Stop()
}

func (w *PreferenceWriter) save(filters domain.FilterState) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.store.SaveFilters(ctx, w.userKey, filters); err != nil {
		log.Warnf("⚠️ Failed to save filter preferences: %v", err)
		return
	}
	log.Debugf("Saved filter preferences for %s (page %d)", w.userKey, filters.Page)
}
