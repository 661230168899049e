package graph

import "fmt"

// State is the construction state of a track section. Only forward
// transitions happen: Dangling -> HalfOpen -> Closed.
type State int

const (
	Dangling State = iota
	HalfOpen
	Closed
)

func (s State) String() string {
	switch s {
	case Dangling:
		return "dangling"
	case HalfOpen:
		return "half-open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// TrackSection is an edge between up to two connections, carrying any
// number of platforms. Once ConnectionB is set it is never reassigned.
type TrackSection struct {
	g         *Graph
	id        ID
	seq       int
	a, b      ID
	platforms []ID
}

// StartTrack creates a connection at (x, y) and a half-open track leaving it.
func StartTrack(g *Graph, x, y float64) *TrackSection {
	t := g.newTrack()
	c := NewConnection(g, x, y)
	t.a = c.id
	c.attach(t)
	return t
}

func (t *TrackSection) ID() ID { return t.id }

// ConnectionA returns the start connection, or nil when unset.
func (t *TrackSection) ConnectionA() *Connection {
	if t.a == "" {
		return nil
	}
	return t.g.resolveConnection(t.a)
}

// ConnectionB returns the end connection, or nil when unset.
func (t *TrackSection) ConnectionB() *Connection {
	if t.b == "" {
		return nil
	}
	return t.g.resolveConnection(t.b)
}

func (t *TrackSection) State() State {
	switch {
	case t.b != "":
		return Closed
	case t.a != "":
		return HalfOpen
	default:
		return Dangling
	}
}

// Platforms returns the platforms on this track in attachment order.
func (t *TrackSection) Platforms() []*Platform {
	out := make([]*Platform, 0, len(t.platforms))
	for _, id := range t.platforms {
		out = append(out, t.g.resolvePlatform(id))
	}
	return out
}

// FirstA is the first track incident to connection A, or nil.
func (t *TrackSection) FirstA() *TrackSection {
	if a := t.ConnectionA(); a != nil {
		return a.First()
	}
	return nil
}

// SecondB is the second track incident to connection B, or nil.
func (t *TrackSection) SecondB() *TrackSection {
	if b := t.ConnectionB(); b != nil {
		return b.Second()
	}
	return nil
}

// Extend closes t at a new connection (x, y) and returns a half-open
// continuation starting there.
func (t *TrackSection) Extend(x, y float64) (*TrackSection, error) {
	if t.b != "" {
		return nil, stateErr("extend", t, "connection B already set")
	}
	node := NewConnection(t.g, x, y)
	t.b = node.id
	node.attach(t)

	next := t.g.newTrack()
	next.a = node.id
	node.attach(next)
	return next, nil
}

// Terminate closes t at a new connection (x, y) without continuing.
func (t *TrackSection) Terminate(x, y float64) (*TrackSection, error) {
	if t.b != "" {
		return nil, stateErr("terminate", t, "connection B already set")
	}
	t.close(x, y)
	return t, nil
}

func (t *TrackSection) close(x, y float64) *Connection {
	node := NewConnection(t.g, x, y)
	t.b = node.id
	node.attach(t)
	return node
}

// Join terminates t at (x, y) and ends other at the same connection,
// merging two open chains.
func (t *TrackSection) Join(other *TrackSection, x, y float64) (*TrackSection, error) {
	if t.b != "" {
		return nil, stateErr("join", t, "connection B already set")
	}
	if other.b != "" {
		return nil, stateErr("join", other, "connection B of joined track already set")
	}
	if other == t {
		return nil, stateErr("join", t, "cannot join a track to itself")
	}
	node := t.close(x, y)
	other.b = node.id
	node.attach(other)
	return t, nil
}

// BranchFrom forks a sibling track off connection A. When build is not nil
// it receives the sibling before BranchFrom returns, so the branch can be
// laid inline. t itself is returned unchanged.
func (t *TrackSection) BranchFrom(build func(branch *TrackSection) error) (*TrackSection, error) {
	if t.a == "" {
		return nil, stateErr("branch", t, "connection A not set")
	}
	branch := t.g.resolveConnection(t.a).Branch()
	if build != nil {
		if err := build(branch); err != nil {
			return nil, fmt.Errorf("build branch from %s: %w", t.id, err)
		}
	}
	return t, nil
}

// AddPlatform puts existing on t, or a new platform when existing is nil.
func (t *TrackSection) AddPlatform(existing *Platform) *Platform {
	p := existing
	if p == nil {
		p = NewPlatform(t.g)
	}
	p.tracks = append(p.tracks, t.id)
	t.platforms = append(t.platforms, p.id)
	return p
}

// Neighbors lists the tracks sharing an endpoint with t. A track reached
// through both endpoints is listed twice.
func (t *TrackSection) Neighbors() []*TrackSection {
	var out []*TrackSection
	for _, end := range [2]ID{t.a, t.b} {
		if end == "" {
			continue
		}
		for _, id := range t.g.resolveConnection(end).tracks {
			if id != t.id {
				out = append(out, t.g.resolveTrack(id))
			}
		}
	}
	return out
}

func (t *TrackSection) String() string {
	a, b := "null", "null"
	if c := t.ConnectionA(); c != nil {
		a = c.String()
	}
	if c := t.ConnectionB(); c != nil {
		b = c.String()
	}
	return fmt.Sprintf("TrackSection: %s - A: %s - B: %s", t.id, a, b)
}
