package graph

import "commuter/internal/domain"

func idStrings(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func optionalID(id ID) *string {
	if id == "" {
		return nil
	}
	s := string(id)
	return &s
}

func (c *Connection) Serialize() domain.SerializedConnection {
	return domain.SerializedConnection{
		ID:            string(c.id),
		X:             c.x,
		Y:             c.y,
		TrackSections: idStrings(c.tracks),
	}
}

func (t *TrackSection) Serialize() domain.SerializedTrackSection {
	return domain.SerializedTrackSection{
		ID:          string(t.id),
		ConnectionA: optionalID(t.a),
		ConnectionB: optionalID(t.b),
		Platforms:   idStrings(t.platforms),
	}
}

func (p *Platform) Serialize() domain.SerializedPlatform {
	return domain.SerializedPlatform{
		ID:            string(p.id),
		TrackSections: idStrings(p.tracks),
		Routes:        idStrings(p.routes),
	}
}

func (r *Route) Serialize() domain.SerializedRoute {
	return domain.SerializedRoute{
		ID:    string(r.id),
		Stops: idStrings(r.stops),
	}
}

// Flatten collects conns plus the tracks incident to them, the platforms on
// those tracks and the routes serving those platforms. It does not follow a
// platform's other tracks or a route's other stops.
func Flatten(conns []*Connection) *domain.Snapshot {
	snap := domain.NewSnapshot()

	for _, conn := range conns {
		if _, seen := snap.Connections[string(conn.id)]; seen {
			continue
		}
		snap.Connections[string(conn.id)] = conn.Serialize()

		for _, tid := range conn.tracks {
			if _, seen := snap.TrackSections[string(tid)]; seen {
				continue
			}
			track := conn.g.resolveTrack(tid)
			snap.TrackSections[string(tid)] = track.Serialize()

			for _, pid := range track.platforms {
				if _, seen := snap.Platforms[string(pid)]; seen {
					continue
				}
				platform := conn.g.resolvePlatform(pid)
				snap.Platforms[string(pid)] = platform.Serialize()

				for _, rid := range platform.routes {
					if _, seen := snap.Routes[string(rid)]; !seen {
						snap.Routes[string(rid)] = conn.g.resolveRoute(rid).Serialize()
					}
				}
			}
		}
	}

	return snap
}
