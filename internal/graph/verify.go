package graph

import (
	"errors"
	"fmt"
	"slices"
)

// Verify checks that every link is recorded on both sides and that every
// connection sits in exactly one geo bucket, the right one. It reports all
// violations at once.
func (g *Graph) Verify() error {
	var errs []error

	for _, c := range g.connections {
		for _, tid := range c.tracks {
			t, ok := g.TrackSection(tid)
			if !ok {
				errs = append(errs, fmt.Errorf("connection %s: unknown track %s", c.id, tid))
				continue
			}
			if t.a != c.id && t.b != c.id {
				errs = append(errs, fmt.Errorf("connection %s: track %s does not end here", c.id, tid))
			}
		}
		if n := countID(g.geo[GeoKey(c.x, c.y)], c.id); n != 1 {
			errs = append(errs, fmt.Errorf("connection %s: found %d times in bucket %s", c.id, n, GeoKey(c.x, c.y)))
		}
	}

	for _, t := range g.tracks {
		for _, end := range [2]ID{t.a, t.b} {
			if end == "" {
				continue
			}
			c, ok := g.Connection(end)
			if !ok {
				errs = append(errs, fmt.Errorf("track %s: unknown connection %s", t.id, end))
				continue
			}
			if !slices.Contains(c.tracks, t.id) {
				errs = append(errs, fmt.Errorf("track %s: missing from connection %s", t.id, end))
			}
		}
		if t.a == "" && t.b != "" {
			errs = append(errs, fmt.Errorf("track %s: connection B set without connection A", t.id))
		}
		for _, pid := range t.platforms {
			p, ok := g.Platform(pid)
			if !ok {
				errs = append(errs, fmt.Errorf("track %s: unknown platform %s", t.id, pid))
				continue
			}
			if !slices.Contains(p.tracks, t.id) {
				errs = append(errs, fmt.Errorf("track %s: missing from platform %s", t.id, pid))
			}
		}
	}

	for _, e := range g.entities {
		switch v := e.(type) {
		case *Platform:
			for _, tid := range v.tracks {
				t, ok := g.TrackSection(tid)
				if !ok || !slices.Contains(t.platforms, v.id) {
					errs = append(errs, fmt.Errorf("platform %s: track %s does not list it", v.id, tid))
				}
			}
			for _, rid := range v.routes {
				r, ok := g.Route(rid)
				if !ok || !slices.Contains(r.stops, v.id) {
					errs = append(errs, fmt.Errorf("platform %s: route %s does not stop here", v.id, rid))
				}
			}
		case *Route:
			for _, pid := range v.stops {
				p, ok := g.Platform(pid)
				if !ok || !slices.Contains(p.routes, v.id) {
					errs = append(errs, fmt.Errorf("route %s: platform %s does not list it", v.id, pid))
				}
			}
		}
	}

	return errors.Join(errs...)
}

func countID(ids []ID, id ID) int {
	n := 0
	for _, v := range ids {
		if v == id {
			n++
		}
	}
	return n
}
