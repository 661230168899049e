package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"commuter/internal/domain"
	"commuter/internal/store"
)

type CacheWarmer struct {
	cache  *RedisCache
	store  *store.NetworkStore
	ttl    time.Duration
	logger *slog.Logger
}

func NewCacheWarmer(cache *RedisCache, store *store.NetworkStore, ttl time.Duration, logger *slog.Logger) *CacheWarmer {
	return &CacheWarmer{
		cache:  cache,
		store:  store,
		ttl:    ttl,
		logger: logger.With("component", "cache_warmer"),
	}
}

// SyncData is the cached full-network payload.
type SyncData struct {
	Version     string           `json:"version"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Network     *domain.Snapshot `json:"network"`
}

func BuildSyncData(s *store.NetworkStore) *SyncData {
	return &SyncData{
		Version:     s.Version(),
		GeneratedAt: time.Now(),
		Network:     s.Full(),
	}
}

func (w *CacheWarmer) WarmAll(ctx context.Context) error {
	start := time.Now()
	w.logger.Info("starting cache warming")

	data := BuildSyncData(w.store)
	if err := w.cache.SetJSONCompressed(ctx, KeySyncFull(data.Version), data, w.ttl); err != nil {
		return fmt.Errorf("warm sync data: %w", err)
	}
	if err := w.cache.Set(ctx, KeyNetworkVersion, []byte(data.Version), w.ttl); err != nil {
		return fmt.Errorf("warm network version: %w", err)
	}

	w.logger.Info("cache warming completed",
		"version", data.Version,
		"connections", len(data.Network.Connections),
		"track_sections", len(data.Network.TrackSections),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// InvalidateAll drops cached range queries. Full-network entries are keyed
// by version and age out on their own.
func (w *CacheWarmer) InvalidateAll(ctx context.Context) error {
	n, err := w.cache.DeletePattern(ctx, PatternRange)
	if err != nil {
		return fmt.Errorf("invalidate range cache: %w", err)
	}
	w.logger.Info("range cache invalidated", "deleted", n)
	return nil
}

// Refresh invalidates stale entries and re-warms after a network reload.
func (w *CacheWarmer) Refresh(ctx context.Context) {
	if err := w.InvalidateAll(ctx); err != nil {
		w.logger.Error("cache invalidation failed", "error", err)
	}
	if err := w.WarmAll(ctx); err != nil {
		w.logger.Error("cache warming failed", "error", err)
	}
}
