package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"commuter/internal/domain"
	"commuter/internal/graph"
)

var ErrNotFound = errors.New("entity not found")

// NetworkStore guards one Graph: a single writer at a time, any number of
// concurrent readers while no writer is active.
type NetworkStore struct {
	mu       sync.RWMutex
	graph    *graph.Graph
	version  string
	loadedAt time.Time
}

func New() *NetworkStore {
	return &NetworkStore{graph: graph.New()}
}

// Replace swaps in a freshly built network.
func (s *NetworkStore) Replace(g *graph.Graph, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph = g
	s.version = version
	s.loadedAt = time.Now()
}

// Mutate runs fn with exclusive access to the current graph.
func (s *NetworkStore) Mutate(fn func(g *graph.Graph) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.graph)
}

// View runs fn with shared access to the current graph. fn must not mutate.
func (s *NetworkStore) View(fn func(g *graph.Graph)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.graph)
}

func (s *NetworkStore) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *NetworkStore) Range(rect domain.Rect) *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return graph.Flatten(s.graph.Range(rect.MinX, rect.MinY, rect.Width, rect.Height))
}

// SnapshotForCells flattens the connections of the given unit cells.
func (s *NetworkStore) SnapshotForCells(cells [][2]int) *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(cells))
	var conns []*graph.Connection
	for _, cell := range cells {
		key := graph.GeoKey(float64(cell[0]), float64(cell[1]))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		conns = append(conns, s.graph.GeoBucket(float64(cell[0]), float64(cell[1]))...)
	}
	return graph.Flatten(conns)
}

// Full flattens the whole network.
func (s *NetworkStore) Full() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return graph.Flatten(s.graph.Connections())
}

// FindPath resolves both track ids and returns the ids along the shortest
// path, or an empty slice when there is none.
func (s *NetworkStore) FindPath(fromID, toID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, ok := s.graph.TrackSection(graph.ID(fromID))
	if !ok {
		return nil, fmt.Errorf("track %q: %w", fromID, ErrNotFound)
	}
	to, ok := s.graph.TrackSection(graph.ID(toID))
	if !ok {
		return nil, fmt.Errorf("track %q: %w", toID, ErrNotFound)
	}

	path := s.graph.FindPath(from, to)
	ids := make([]string, len(path))
	for i, t := range path {
		ids[i] = string(t.ID())
	}
	return ids, nil
}

// EntityView is the serialized form of a single entity with its kind.
type EntityView struct {
	Kind   string `json:"kind"`
	Entity any    `json:"entity"`
}

func (s *NetworkStore) Entity(id string) (*EntityView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.graph.Lookup(graph.ID(id))
	if !ok {
		return nil, fmt.Errorf("entity %q: %w", id, ErrNotFound)
	}

	view := &EntityView{Kind: e.Kind().String()}
	switch v := e.(type) {
	case *graph.Connection:
		view.Entity = v.Serialize()
	case *graph.TrackSection:
		view.Entity = v.Serialize()
	case *graph.Platform:
		view.Entity = v.Serialize()
	case *graph.Route:
		view.Entity = v.Serialize()
	}
	return view, nil
}

type Stats struct {
	Connections   int       `json:"connections"`
	TrackSections int       `json:"trackSections"`
	Platforms     int       `json:"platforms"`
	Routes        int       `json:"routes"`
	Cells         int       `json:"cells"`
	Version       string    `json:"version"`
	LoadedAt      time.Time `json:"loadedAt"`
}

func (s *NetworkStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Connections:   s.graph.Count(graph.KindConnection),
		TrackSections: s.graph.Count(graph.KindTrackSection),
		Platforms:     s.graph.Count(graph.KindPlatform),
		Routes:        s.graph.Count(graph.KindRoute),
		Cells:         s.graph.Cells(),
		Version:       s.version,
		LoadedAt:      s.loadedAt,
	}
}

func (s *NetworkStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Count(graph.KindConnection)
}
