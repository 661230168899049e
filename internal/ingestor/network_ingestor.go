package ingestor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"commuter/internal/store"
	"commuter/pkg/layout"
)

// Reader supplies the raw layout document.
type Reader interface {
	Read(ctx context.Context) ([]byte, error)
}

type NetworkIngestor struct {
	source         Reader
	store          *store.NetworkStore
	reloadInterval time.Duration
	logger         *slog.Logger
	onUpdate       func(context.Context)

	mu          sync.RWMutex
	ready       bool
	fingerprint string
}

// NewNetworkIngestor loads layouts from source into s. A zero reloadInterval
// loads once.
func NewNetworkIngestor(source Reader, s *store.NetworkStore, reloadInterval time.Duration, logger *slog.Logger) *NetworkIngestor {
	return &NetworkIngestor{
		source:         source,
		store:          s,
		reloadInterval: reloadInterval,
		logger:         logger.With("component", "network_ingestor"),
	}
}

func (i *NetworkIngestor) Start(ctx context.Context) {
	if err := i.Load(ctx); err != nil {
		i.logger.Error("network load failed", "error", err)
	}
	if i.reloadInterval <= 0 {
		return
	}

	ticker := time.NewTicker(i.reloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := i.Load(ctx); err != nil {
				i.logger.Error("network reload failed", "error", err)
			}
		}
	}
}

// Load reads the source and swaps in the network it describes. An unchanged
// document is skipped. A document that fails to parse, build or verify
// leaves the current network in place.
func (i *NetworkIngestor) Load(ctx context.Context) error {
	start := time.Now()

	data, err := i.source.Read(ctx)
	if err != nil {
		return fmt.Errorf("read layout: %w", err)
	}

	fingerprint := layout.Fingerprint(data)
	if fingerprint == i.Fingerprint() {
		i.logger.Debug("layout unchanged", "sha256", fingerprint)
		return nil
	}

	doc, err := layout.Parse(data)
	if err != nil {
		return err
	}
	network, err := doc.Build()
	if err != nil {
		return err
	}
	if err := network.Graph.Verify(); err != nil {
		return fmt.Errorf("verify network: %w", err)
	}

	version := fingerprint[:12]
	i.store.Replace(network.Graph, version)

	i.mu.Lock()
	i.fingerprint = fingerprint
	i.ready = true
	i.mu.Unlock()

	if i.onUpdate != nil {
		i.onUpdate(ctx)
	}

	stats := i.store.Stats()
	i.logger.Info("network loaded",
		"version", version,
		"connections", stats.Connections,
		"track_sections", stats.TrackSections,
		"platforms", stats.Platforms,
		"routes", stats.Routes,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (i *NetworkIngestor) IsReady() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.ready
}

// Fingerprint is the sha256 of the layout currently loaded.
func (i *NetworkIngestor) Fingerprint() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.fingerprint
}

func (i *NetworkIngestor) SetOnUpdate(fn func(context.Context)) {
	i.onUpdate = fn
}
