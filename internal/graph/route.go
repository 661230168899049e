package graph

// Route is an itinerary of platform stops. Stops may repeat.
type Route struct {
	g     *Graph
	id    ID
	stops []ID
}

func NewRoute(g *Graph) *Route {
	r := &Route{g: g, id: g.newID()}
	g.register(r)
	return r
}

func (r *Route) ID() ID { return r.id }

// AddStop appends p to the itinerary and records r on p.
func (r *Route) AddStop(p *Platform) *Route {
	r.stops = append(r.stops, p.id)
	p.routes = append(p.routes, r.id)
	return r
}

func (r *Route) Stops() []*Platform {
	out := make([]*Platform, 0, len(r.stops))
	for _, id := range r.stops {
		out = append(out, r.g.resolvePlatform(id))
	}
	return out
}
