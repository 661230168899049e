package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustTrack unwraps a (track, error) result, failing the test on error.
func mustTrack(t *testing.T) func(*TrackSection, error) *TrackSection {
	return func(track *TrackSection, err error) *TrackSection {
		t.Helper()
		require.NoError(t, err)
		require.NotNil(t, track)
		return track
	}
}

func TestStartTrack(t *testing.T) {
	g := New()
	track := StartTrack(g, -2.24, 3.14)

	require.NotNil(t, track.ConnectionA())
	assert.Nil(t, track.ConnectionB())
	assert.Equal(t, HalfOpen, track.State())

	conn := track.ConnectionA()
	assert.Len(t, conn.Tracks(), 1)
	assert.Equal(t, -2.24, conn.X())
	assert.Equal(t, 3.14, conn.Y())
	require.NoError(t, g.Verify())
}

func TestTrackExtend(t *testing.T) {
	g := New()
	track := StartTrack(g, -2.24, 3.14)
	extension := mustTrack(t)(track.Extend(2, 4.5))

	node := track.ConnectionB()
	require.NotNil(t, node)
	require.Len(t, node.Tracks(), 2)
	assert.Same(t, track, node.Tracks()[0])
	assert.Same(t, extension, node.Tracks()[1])
	assert.Same(t, node, extension.ConnectionA())
	assert.Nil(t, extension.ConnectionB())
	assert.Equal(t, Closed, track.State())
	require.NoError(t, g.Verify())
}

func TestTrackExtendClosedFails(t *testing.T) {
	g := New()
	track := StartTrack(g, 0, 0)
	_, err := track.Extend(1, 1)
	require.NoError(t, err)
	before := g.Len()

	_, err = track.Extend(2, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrState))

	var stateErr *StateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, "extend", stateErr.Op)
	assert.Equal(t, track.ID(), stateErr.Track)

	_, err = track.Terminate(2, 2)
	assert.ErrorIs(t, err, ErrState)

	assert.Equal(t, before, g.Len(), "failed calls must not register entities")
	assert.Equal(t, 1.0, track.ConnectionB().X())
}

func TestTrackTerminate(t *testing.T) {
	g := New()
	track := StartTrack(g, 0, 0)
	same := mustTrack(t)(track.Terminate(1, 2))

	assert.Same(t, track, same)
	assert.Equal(t, Closed, track.State())
	end := track.ConnectionB()
	require.NotNil(t, end)
	assert.Equal(t, []*TrackSection{track}, end.Tracks())
	assert.Equal(t, 2, g.Count(KindConnection))
	assert.Equal(t, 1, g.Count(KindTrackSection))
	require.NoError(t, g.Verify())
}

func TestTrackJoin(t *testing.T) {
	g := New()
	tA := StartTrack(g, 1, 1)
	tB := StartTrack(g, 2, 2)
	mustTrack(t)(tA.Join(tB, 1, 2))

	require.NotNil(t, tA.ConnectionB())
	assert.Same(t, tA.ConnectionB(), tB.ConnectionB())
	assert.Equal(t, 1.0, tB.ConnectionB().X())
	assert.Equal(t, 2.0, tB.ConnectionB().Y())
	assert.ElementsMatch(t, []*TrackSection{tA, tB}, tA.ConnectionB().Tracks())
	require.NoError(t, g.Verify())
}

func TestTrackJoinRejectsClosedTracks(t *testing.T) {
	g := New()
	open := StartTrack(g, 0, 0)
	closed := mustTrack(t)(StartTrack(g, 5, 5).Terminate(6, 6))

	_, err := open.Join(closed, 1, 1)
	assert.ErrorIs(t, err, ErrState)
	assert.Nil(t, open.ConnectionB(), "open track must stay open")

	_, err = closed.Join(open, 1, 1)
	assert.ErrorIs(t, err, ErrState)

	_, err = open.Join(open, 1, 1)
	assert.ErrorIs(t, err, ErrState)
	require.NoError(t, g.Verify())
}

func TestTrackBranchFrom(t *testing.T) {
	g := New()
	track := mustTrack(t)(StartTrack(g, 0.2, 3.3).Extend(2.2, -5.6))

	var branch *TrackSection
	same := mustTrack(t)(track.BranchFrom(func(b *TrackSection) error {
		branch = b
		_, err := b.Extend(4, 4)
		return err
	}))

	assert.Same(t, track, same)
	require.NotNil(t, branch)
	assert.Same(t, track.ConnectionA(), branch.ConnectionA())
	assert.Nil(t, track.ConnectionB(), "branching leaves the main track untouched")
	assert.Len(t, track.ConnectionA().Tracks(), 3)
	require.NoError(t, g.Verify())
}

func TestTrackBranchFromWithoutStart(t *testing.T) {
	g := New()
	dangling := g.newTrack()
	assert.Equal(t, Dangling, dangling.State())

	_, err := dangling.BranchFrom(nil)
	assert.ErrorIs(t, err, ErrState)
}

func TestTrackBranchFromBuilderError(t *testing.T) {
	g := New()
	track := StartTrack(g, 0, 0)
	_, err := track.BranchFrom(func(b *TrackSection) error {
		if _, err := b.Terminate(1, 1); err != nil {
			return err
		}
		_, err := b.Terminate(2, 2)
		return err
	})
	assert.ErrorIs(t, err, ErrState)
}

func TestTrackAddPlatform(t *testing.T) {
	g := New()
	trackA := StartTrack(g, -2.24, 3.14)
	trackB := StartTrack(g, 3, 4)

	platform := trackA.AddPlatform(nil)
	assert.Equal(t, []*TrackSection{trackA}, platform.Tracks())
	assert.Equal(t, []*Platform{platform}, trackA.Platforms())

	assert.Same(t, platform, trackB.AddPlatform(platform))
	assert.Equal(t, []*TrackSection{trackA, trackB}, platform.Tracks())
	assert.Equal(t, []*Platform{platform}, trackA.Platforms())
	assert.Equal(t, []*Platform{platform}, trackB.Platforms())
	require.NoError(t, g.Verify())
}

func TestRouteAddStop(t *testing.T) {
	g := New()
	p1 := StartTrack(g, 0, 0).AddPlatform(nil)
	p2 := StartTrack(g, 5, 5).AddPlatform(nil)

	route := NewRoute(g).AddStop(p1).AddStop(p2).AddStop(p1)
	assert.Equal(t, []*Platform{p1, p2, p1}, route.Stops())
	assert.Equal(t, []*Route{route, route}, p1.Routes())
	assert.Equal(t, []*Route{route}, p2.Routes())
	require.NoError(t, g.Verify())
}

func TestTrackNeighbors(t *testing.T) {
	g := New()
	a := NewConnection(g, 0, 0)
	b := a.Extend(1, 0)
	a.Extend(0, 1)
	b.Extend(2, 0)

	middle := a.FindTrackTo(b)
	require.NotNil(t, middle)
	assert.Len(t, middle.Neighbors(), 2)
	for _, n := range middle.Neighbors() {
		assert.NotSame(t, middle, n)
	}

	// two tracks between the same pair of connections see each other twice
	c := NewConnection(g, 9, 9)
	d := c.Extend(9, 8)
	c.Connect(d)
	loop := c.Tracks()
	require.Len(t, loop, 2)
	assert.Equal(t, []*TrackSection{loop[1], loop[1]}, loop[0].Neighbors())
}

func TestConnectionExtend(t *testing.T) {
	g := New()
	a := NewConnection(g, -2.24, 3.14)
	b := a.Extend(2, 4.5)
	c := a.Extend(1, 1)

	require.NotNil(t, a.First())
	require.NotNil(t, a.Second())
	assert.Equal(t, 2.0, b.X())
	assert.Equal(t, 4.5, b.Y())
	assert.Same(t, a.First(), b.First())
	assert.Nil(t, b.Second())
	assert.Equal(t, 1.0, c.X())
	assert.Equal(t, 1.0, c.Y())
	assert.Same(t, a.Second(), c.First())
	assert.Nil(t, c.Second())
	require.NoError(t, g.Verify())
}

func TestConnectionConnectAndFindTrackTo(t *testing.T) {
	g := New()
	a := NewConnection(g, 0, 0)
	b := NewConnection(g, 3, 0)

	assert.Nil(t, a.FindTrackTo(b))
	assert.Same(t, b, a.Connect(b))

	track := a.FindTrackTo(b)
	require.NotNil(t, track)
	assert.Same(t, track, b.FindTrackTo(a))
	assert.Same(t, a, track.ConnectionA())
	assert.Same(t, b, track.ConnectionB())
	require.NoError(t, g.Verify())
}

func TestFindTrackToSelf(t *testing.T) {
	g := New()
	a := NewConnection(g, 0, 0)
	a.Connect(NewConnection(g, 1, 0))
	StartTrack(g, 5, 5)

	assert.Nil(t, a.FindTrackTo(a), "a track leaving a is not a loop")

	a.Connect(a)
	loop := a.FindTrackTo(a)
	require.NotNil(t, loop)
	assert.Same(t, a, loop.ConnectionA())
	assert.Same(t, a, loop.ConnectionB())
}

func TestConnectionBranch(t *testing.T) {
	g := New()
	track := mustTrack(t)(StartTrack(g, 0.2, 3.3).Extend(2.2, -5.6))
	forked := track.ConnectionA().Branch()

	assert.Same(t, track.ConnectionA(), forked.ConnectionA())
	assert.Equal(t, HalfOpen, forked.State())
	assert.Same(t, forked.ConnectionA(), track.ConnectionA().Tracks()[0].ConnectionB())
}

func TestRegistry(t *testing.T) {
	g := New()
	track := StartTrack(g, 3.99, 4)

	e, ok := g.Lookup(track.ID())
	require.True(t, ok)
	assert.Equal(t, KindTrackSection, e.Kind())
	assert.Same(t, track, e)

	conn, ok := g.Connection(track.ConnectionA().ID())
	require.True(t, ok)
	assert.Same(t, track.ConnectionA(), conn)

	_, ok = g.Connection(track.ID())
	assert.False(t, ok, "typed lookup must not cross kinds")
	assert.Equal(t, 2, g.Len())

	bucket := g.GeoBucket(3.5, 4.9)
	require.Len(t, bucket, 1)
	assert.Same(t, track.ConnectionA(), bucket[0])
}

func TestRegistryIDsUnique(t *testing.T) {
	g := New()
	seen := make(map[ID]struct{})
	last := StartTrack(g, 0, 0)
	for i := 0; i < 200; i++ {
		var err error
		last, err = last.Extend(float64(i), 0)
		require.NoError(t, err)
	}
	last.AddPlatform(nil)
	NewRoute(g)

	for _, c := range g.Connections() {
		seen[c.ID()] = struct{}{}
	}
	for _, tr := range g.TrackSections() {
		seen[tr.ID()] = struct{}{}
	}
	assert.Equal(t, g.Len(), len(seen)+2)
}
