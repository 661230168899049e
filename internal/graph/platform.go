package graph

// Platform groups track sections into one station. Its tracks may belong
// to otherwise unrelated chains, which is how two networks are coupled.
type Platform struct {
	g      *Graph
	id     ID
	tracks []ID
	routes []ID
}

func NewPlatform(g *Graph) *Platform {
	p := &Platform{g: g, id: g.newID()}
	g.register(p)
	return p
}

func (p *Platform) ID() ID { return p.id }

// Attach extends the platform across t.
func (p *Platform) Attach(t *TrackSection) *Platform {
	return t.AddPlatform(p)
}

func (p *Platform) Tracks() []*TrackSection {
	out := make([]*TrackSection, 0, len(p.tracks))
	for _, id := range p.tracks {
		out = append(out, p.g.resolveTrack(id))
	}
	return out
}

func (p *Platform) Routes() []*Route {
	out := make([]*Route, 0, len(p.routes))
	for _, id := range p.routes {
		out = append(out, p.g.resolveRoute(id))
	}
	return out
}
