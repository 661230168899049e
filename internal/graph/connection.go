package graph

import "fmt"

// Connection is a fixed point joining any number of track sections.
type Connection struct {
	g      *Graph
	id     ID
	x, y   float64
	tracks []ID
}

// NewConnection registers a connection at (x, y) with no incident tracks.
func NewConnection(g *Graph, x, y float64) *Connection {
	c := &Connection{g: g, id: g.newID(), x: x, y: y}
	g.register(c)
	g.connections = append(g.connections, c)
	g.insertConnection(c)
	return c
}

func (c *Connection) ID() ID     { return c.id }
func (c *Connection) X() float64 { return c.x }
func (c *Connection) Y() float64 { return c.y }

// Tracks returns the incident track sections in attachment order.
func (c *Connection) Tracks() []*TrackSection {
	out := make([]*TrackSection, 0, len(c.tracks))
	for _, id := range c.tracks {
		out = append(out, c.g.resolveTrack(id))
	}
	return out
}

// First is the first incident track, or nil.
func (c *Connection) First() *TrackSection {
	if len(c.tracks) < 1 {
		return nil
	}
	return c.g.resolveTrack(c.tracks[0])
}

// Second is the second incident track, or nil.
func (c *Connection) Second() *TrackSection {
	if len(c.tracks) < 2 {
		return nil
	}
	return c.g.resolveTrack(c.tracks[1])
}

func (c *Connection) attach(t *TrackSection) {
	c.tracks = append(c.tracks, t.id)
}

// Extend lays a new track from c to a new connection at (x, y) and returns
// the new connection.
func (c *Connection) Extend(x, y float64) *Connection {
	next := NewConnection(c.g, x, y)
	t := c.g.newTrack()
	t.a = c.id
	t.b = next.id
	c.attach(t)
	next.attach(t)
	return next
}

// Connect lays a track directly between c and other and returns other.
func (c *Connection) Connect(other *Connection) *Connection {
	t := c.g.newTrack()
	t.a = c.id
	t.b = other.id
	c.attach(t)
	other.attach(t)
	return other
}

// FindTrackTo returns the first incident track that ends at other, or nil.
func (c *Connection) FindTrackTo(other *Connection) *TrackSection {
	for _, id := range c.tracks {
		t := c.g.resolveTrack(id)
		far := t.b
		if t.a != c.id {
			far = t.a
		}
		if far == other.id {
			return t
		}
	}
	return nil
}

// Branch starts a half-open track at c. The caller finishes it.
func (c *Connection) Branch() *TrackSection {
	t := c.g.newTrack()
	t.a = c.id
	c.attach(t)
	return t
}

func (c *Connection) String() string {
	return fmt.Sprintf("C: %g,%g", c.x, c.y)
}
