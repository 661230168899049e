package layout

import (
	"fmt"

	"commuter/internal/graph"
)

// Network is a built layout: the graph plus the names the layout used.
type Network struct {
	Graph     *graph.Graph
	Chains    map[string][]*graph.TrackSection
	Platforms map[string]*graph.Platform
	Routes    map[string]*graph.Route
}

// Track returns the track a reference points at.
func (n *Network) Track(ref TrackRef) (*graph.TrackSection, error) {
	tracks, ok := n.Chains[ref.Chain]
	if !ok {
		return nil, fmt.Errorf("unknown chain %q", ref.Chain)
	}
	if ref.Index < 0 || ref.Index >= len(tracks) {
		return nil, fmt.Errorf("chain %q has %d tracks, no index %d", ref.Chain, len(tracks), ref.Index)
	}
	return tracks[ref.Index], nil
}

type builder struct {
	net *Network
	// opened by a branch step, not laid yet
	heads map[string]*graph.TrackSection
	// last track of each finished chain
	tails map[string]*graph.TrackSection
}

// Build lays the layout on a fresh graph. Chains are laid in declaration
// order, so a chain opened by a branch must be declared after its opener,
// and a join may only target a chain declared earlier.
func (l *Layout) Build() (*Network, error) {
	b := &builder{
		net: &Network{
			Graph:     graph.New(),
			Chains:    make(map[string][]*graph.TrackSection, len(l.Chains)),
			Platforms: make(map[string]*graph.Platform, len(l.Platforms)),
			Routes:    make(map[string]*graph.Route, len(l.Routes)),
		},
		heads: make(map[string]*graph.TrackSection),
		tails: make(map[string]*graph.TrackSection),
	}

	for _, c := range l.Chains {
		if err := b.layChain(c); err != nil {
			return nil, fmt.Errorf("chain %q: %w", c.ID, err)
		}
	}
	for i, link := range l.Links {
		if err := b.link(link); err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
	}
	for _, p := range l.Platforms {
		if err := b.platform(p); err != nil {
			return nil, fmt.Errorf("platform %q: %w", p.ID, err)
		}
	}
	for _, r := range l.Routes {
		route := graph.NewRoute(b.net.Graph)
		for _, stop := range r.Stops {
			route.AddStop(b.net.Platforms[stop])
		}
		b.net.Routes[r.ID] = route
	}

	return b.net, nil
}

func (b *builder) layChain(c Chain) error {
	g := b.net.Graph

	var cur *graph.TrackSection
	if c.Start != nil {
		cur = graph.StartTrack(g, c.Start.X(), c.Start.Y())
	} else {
		head, ok := b.heads[c.ID]
		if !ok {
			return fmt.Errorf("declared before the chain that branches it")
		}
		cur = head
		delete(b.heads, c.ID)
	}
	b.net.Chains[c.ID] = append(b.net.Chains[c.ID], cur)

	for i, s := range c.Steps {
		var err error
		switch {
		case s.Extend != nil:
			var next *graph.TrackSection
			next, err = cur.Extend(s.Extend.X(), s.Extend.Y())
			if err == nil {
				cur = next
				b.net.Chains[c.ID] = append(b.net.Chains[c.ID], cur)
			}
		case s.Terminate != nil:
			_, err = cur.Terminate(s.Terminate.X(), s.Terminate.Y())
		case s.Branch != "":
			name := s.Branch
			_, err = cur.BranchFrom(func(branch *graph.TrackSection) error {
				b.heads[name] = branch
				return nil
			})
		case s.Join != nil:
			other, ok := b.tails[s.Join.Chain]
			if !ok {
				err = fmt.Errorf("join target %q is not laid yet", s.Join.Chain)
				break
			}
			_, err = cur.Join(other, s.Join.At.X(), s.Join.At.Y())
		}
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}

	b.tails[c.ID] = cur
	return nil
}

func (b *builder) link(l Link) error {
	from, err := b.net.Track(l.From)
	if err != nil {
		return err
	}
	to, err := b.net.Track(l.To)
	if err != nil {
		return err
	}
	from.ConnectionA().Connect(to.ConnectionA())
	return nil
}

func (b *builder) platform(p Platform) error {
	var platform *graph.Platform
	for _, ref := range p.Tracks {
		track, err := b.net.Track(ref)
		if err != nil {
			return err
		}
		platform = track.AddPlatform(platform)
	}
	b.net.Platforms[p.ID] = platform
	return nil
}
