package ingestor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commuter/internal/store"
	"commuter/pkg/layout"
)

type staticReader struct {
	mu   sync.Mutex
	data []byte
	err  error
}

func (r *staticReader) Read(context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data, r.err
}

func (r *staticReader) set(data []byte, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data, r.err = data, err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const twoStops = `
chains:
  - id: line
    start: [0, 0]
    steps:
      - extend: [1, 0]
`

func TestLoadDemo(t *testing.T) {
	s := store.New()
	ing := NewNetworkIngestor(&staticReader{data: layout.Demo()}, s, 0, discardLogger())

	updates := 0
	ing.SetOnUpdate(func(context.Context) { updates++ })

	assert.False(t, ing.IsReady())
	require.NoError(t, ing.Load(context.Background()))
	assert.True(t, ing.IsReady())
	assert.Equal(t, 1, updates)

	stats := s.Stats()
	assert.Equal(t, 10, stats.Connections)
	assert.Equal(t, 9, stats.TrackSections)
	assert.Equal(t, ing.Fingerprint()[:12], stats.Version)
}

func TestLoadSkipsUnchangedLayout(t *testing.T) {
	s := store.New()
	reader := &staticReader{data: []byte(twoStops)}
	ing := NewNetworkIngestor(reader, s, 0, discardLogger())

	updates := 0
	ing.SetOnUpdate(func(context.Context) { updates++ })

	require.NoError(t, ing.Load(context.Background()))
	require.NoError(t, ing.Load(context.Background()))
	assert.Equal(t, 1, updates)

	reader.set(layout.Demo(), nil)
	require.NoError(t, ing.Load(context.Background()))
	assert.Equal(t, 2, updates)
	assert.Equal(t, 10, s.Count())
}

func TestLoadKeepsNetworkOnFailure(t *testing.T) {
	s := store.New()
	reader := &staticReader{data: []byte(twoStops)}
	ing := NewNetworkIngestor(reader, s, 0, discardLogger())
	require.NoError(t, ing.Load(context.Background()))
	version := s.Version()

	reader.set([]byte("chains: []"), nil)
	err := ing.Load(context.Background())
	assert.ErrorIs(t, err, layout.ErrInvalidLayout)

	reader.set(nil, errors.New("unreachable"))
	assert.Error(t, ing.Load(context.Background()))

	assert.Equal(t, version, s.Version())
	assert.Equal(t, 2, s.Count())
	assert.True(t, ing.IsReady())
}

func TestStartLoadsOnceWithoutInterval(t *testing.T) {
	s := store.New()
	ing := NewNetworkIngestor(&staticReader{data: []byte(twoStops)}, s, 0, discardLogger())

	ing.Start(context.Background())
	assert.True(t, ing.IsReady())
	assert.Equal(t, 2, s.Count())
}

func TestLoadLogsDurationMillis(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ing := NewNetworkIngestor(&staticReader{data: []byte(twoStops)}, store.New(), 0, logger)
	require.NoError(t, ing.Load(context.Background()))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "network loaded", entry["msg"])
	assert.Equal(t, "network_ingestor", entry["component"])
	assert.Contains(t, entry, "duration_ms")
	assert.NotContains(t, entry, "duration")
}
