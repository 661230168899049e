package graph

import "github.com/google/uuid"

// ID identifies an entity of any kind. All kinds share one namespace.
type ID string

// Kind tags the variant held by an Entity.
type Kind int

const (
	KindConnection Kind = iota + 1
	KindTrackSection
	KindPlatform
	KindRoute
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindTrackSection:
		return "trackSection"
	case KindPlatform:
		return "platform"
	case KindRoute:
		return "route"
	default:
		return "unknown"
	}
}

// Entity is one of *Connection, *TrackSection, *Platform or *Route.
type Entity interface {
	ID() ID
	Kind() Kind
	entity()
}

func (*Connection) entity()   {}
func (*TrackSection) entity() {}
func (*Platform) entity()     {}
func (*Route) entity()        {}

func (c *Connection) Kind() Kind   { return KindConnection }
func (t *TrackSection) Kind() Kind { return KindTrackSection }
func (p *Platform) Kind() Kind     { return KindPlatform }
func (r *Route) Kind() Kind        { return KindRoute }

// newID draws a fresh UUID, skipping the astronomically unlikely collision.
func (g *Graph) newID() ID {
	for {
		id := ID(uuid.NewString())
		if _, taken := g.entities[id]; !taken {
			return id
		}
	}
}

func (g *Graph) register(e Entity) {
	g.entities[e.ID()] = e
	g.counts[e.Kind()]++
}

// Lookup returns the entity registered under id.
func (g *Graph) Lookup(id ID) (Entity, bool) {
	e, ok := g.entities[id]
	return e, ok
}

func (g *Graph) Connection(id ID) (*Connection, bool) {
	c, ok := g.entities[id].(*Connection)
	return c, ok
}

func (g *Graph) TrackSection(id ID) (*TrackSection, bool) {
	t, ok := g.entities[id].(*TrackSection)
	return t, ok
}

func (g *Graph) Platform(id ID) (*Platform, bool) {
	p, ok := g.entities[id].(*Platform)
	return p, ok
}

func (g *Graph) Route(id ID) (*Route, bool) {
	r, ok := g.entities[id].(*Route)
	return r, ok
}

// Len is the number of registered entities of every kind.
func (g *Graph) Len() int {
	return len(g.entities)
}

// Count is the number of registered entities of one kind.
func (g *Graph) Count(k Kind) int {
	return g.counts[k]
}

// resolve follows an id link. A miss means a link was written one-sided,
// which the construction API never does, so it panics.
func (g *Graph) resolveConnection(id ID) *Connection {
	c, ok := g.Connection(id)
	if !ok {
		panic("graph: dangling connection link " + string(id))
	}
	return c
}

func (g *Graph) resolveTrack(id ID) *TrackSection {
	t, ok := g.TrackSection(id)
	if !ok {
		panic("graph: dangling track link " + string(id))
	}
	return t
}

func (g *Graph) resolvePlatform(id ID) *Platform {
	p, ok := g.Platform(id)
	if !ok {
		panic("graph: dangling platform link " + string(id))
	}
	return p
}

func (g *Graph) resolveRoute(id ID) *Route {
	r, ok := g.Route(id)
	if !ok {
		panic("graph: dangling route link " + string(id))
	}
	return r
}
