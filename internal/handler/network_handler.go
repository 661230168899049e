package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"commuter/internal/cache"
	"commuter/internal/domain"
	"commuter/internal/graph"
	"commuter/internal/store"
)

// SnapshotCache is the part of the redis cache the network endpoints use.
type SnapshotCache interface {
	GetJSONCompressed(ctx context.Context, key string, dest any) (bool, error)
	SetJSONCompressed(ctx context.Context, key string, value any, ttl time.Duration) error
}

type NetworkHandler struct {
	store         *store.NetworkStore
	cache         SnapshotCache
	cacheTTL      time.Duration
	maxRangeCells int
	logger        *slog.Logger
}

// NewNetworkHandler serves graph queries from s. c may be nil to disable
// caching.
func NewNetworkHandler(s *store.NetworkStore, c SnapshotCache, cacheTTL time.Duration, maxRangeCells int, logger *slog.Logger) *NetworkHandler {
	return &NetworkHandler{
		store:         s,
		cache:         c,
		cacheTTL:      cacheTTL,
		maxRangeCells: maxRangeCells,
		logger:        logger.With("component", "network_handler"),
	}
}

// Range serves GET /range/{x0}/{y0}/{x1}/{y1}.
func (h *NetworkHandler) Range(w http.ResponseWriter, r *http.Request) {
	var corners [4]float64
	for i, name := range []string{"x0", "y0", "x1", "y1"} {
		v, err := parseCoord(r.PathValue(name))
		if err != nil {
			respondResult(w, domain.CodeBadRequest, nil, "")
			return
		}
		corners[i] = v
	}

	rect := domain.RectFromCorners(corners[0], corners[1], corners[2], corners[3])
	if graph.RangeCells(rect.Width, rect.Height) > float64(h.maxRangeCells) {
		respondResult(w, domain.CodeBadRequest, nil,
			fmt.Sprintf("Range spans more than %d cells.", h.maxRangeCells))
		return
	}

	key := cache.KeyRange(h.store.Version(), rect)
	var snapshot domain.Snapshot
	if h.cachedJSON(r.Context(), key, &snapshot) {
		respondOK(w, &snapshot)
		return
	}

	result := h.store.Range(rect)
	h.storeJSON(r.Context(), key, result)
	respondOK(w, result)
}

// Path serves GET /v1/path/{from}/{to}.
func (h *NetworkHandler) Path(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.store.FindPath(r.PathValue("from"), r.PathValue("to"))
	if errors.Is(err, store.ErrNotFound) {
		respondResult(w, domain.CodeNotFound, nil, "")
		return
	}
	if err != nil {
		respondUnknown(w, h.logger, r, err)
		return
	}

	respondOK(w, PathResponse{Tracks: tracks, Hops: max(len(tracks)-1, 0)})
}

type PathResponse struct {
	Tracks []string `json:"tracks"`
	Hops   int      `json:"hops"`
}

// Entity serves GET /v1/entities/{id}.
func (h *NetworkHandler) Entity(w http.ResponseWriter, r *http.Request) {
	view, err := h.store.Entity(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondResult(w, domain.CodeNotFound, nil, "")
		return
	}
	if err != nil {
		respondUnknown(w, h.logger, r, err)
		return
	}
	respondOK(w, view)
}

// Network serves GET /v1/network, the whole network in one snapshot.
func (h *NetworkHandler) Network(w http.ResponseWriter, r *http.Request) {
	key := cache.KeySyncFull(h.store.Version())

	var data cache.SyncData
	if h.cachedJSON(r.Context(), key, &data) {
		w.Header().Set("ETag", strconv.Quote(data.Version))
		respondOK(w, &data)
		return
	}

	fresh := cache.BuildSyncData(h.store)
	h.storeJSON(r.Context(), key, fresh)
	w.Header().Set("ETag", strconv.Quote(fresh.Version))
	respondOK(w, fresh)
}

func (h *NetworkHandler) cachedJSON(ctx context.Context, key string, dest any) bool {
	if h.cache == nil {
		return false
	}
	ok, err := h.cache.GetJSONCompressed(ctx, key, dest)
	if err != nil {
		h.logger.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if ok {
		ServerStats.IncCacheHits()
	} else {
		ServerStats.IncCacheMisses()
	}
	return ok
}

func (h *NetworkHandler) storeJSON(ctx context.Context, key string, value any) {
	if h.cache == nil {
		return
	}
	if err := h.cache.SetJSONCompressed(ctx, key, value, h.cacheTTL); err != nil {
		h.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// parseCoord accepts integer or decimal numbers and rejects NaN and the
// infinities.
func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("coordinate %q is not finite", s)
	}
	return v, nil
}
