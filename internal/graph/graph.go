// Package graph is the in-memory track network: connections (nodes), track
// sections (edges), platforms and routes, all owned by a Graph and linked to
// each other by id in both directions. Nothing is ever removed.
package graph

// Graph owns every entity and the geo index over connections.
type Graph struct {
	entities map[ID]Entity
	counts   map[Kind]int

	// creation order, used for deterministic iteration
	connections []*Connection
	tracks      []*TrackSection

	geo map[string][]ID
}

func New() *Graph {
	return &Graph{
		entities: make(map[ID]Entity),
		counts:   make(map[Kind]int),
		geo:      make(map[string][]ID),
	}
}

// Connections returns every connection in creation order.
func (g *Graph) Connections() []*Connection {
	out := make([]*Connection, len(g.connections))
	copy(out, g.connections)
	return out
}

// TrackSections returns every track section in creation order.
func (g *Graph) TrackSections() []*TrackSection {
	out := make([]*TrackSection, len(g.tracks))
	copy(out, g.tracks)
	return out
}

func (g *Graph) newTrack() *TrackSection {
	t := &TrackSection{g: g, id: g.newID(), seq: len(g.tracks)}
	g.register(t)
	g.tracks = append(g.tracks, t)
	return t
}
