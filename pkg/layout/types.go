package layout

// Point is an [x, y] pair in network coordinates
type Point [2]float64

func (p Point) X() float64 { return p[0] }
func (p Point) Y() float64 { return p[1] }

// Layout describes a network as a list of track chains plus the stations
// and routes laid over them
type Layout struct {
	Chains    []Chain    `yaml:"chains" validate:"required,min=1,dive"`
	Links     []Link     `yaml:"links" validate:"dive"`
	Platforms []Platform `yaml:"platforms" validate:"dive"`
	Routes    []Route    `yaml:"routes" validate:"dive"`
}

// Chain is a run of track sections laid one after the other. A chain either
// has its own start point or is opened by a branch step of an earlier chain.
type Chain struct {
	ID    string `yaml:"id" validate:"required"`
	Start *Point `yaml:"start,omitempty"`
	Steps []Step `yaml:"steps" validate:"dive"`
}

// Step applies exactly one action to the chain's current track
type Step struct {
	Extend    *Point `yaml:"extend,omitempty"`
	Terminate *Point `yaml:"terminate,omitempty"`
	Branch    string `yaml:"branch,omitempty"`
	Join      *Join  `yaml:"join,omitempty"`
}

// Join ends the current track and the open track of another chain at one
// shared connection
type Join struct {
	Chain string `yaml:"chain" validate:"required"`
	At    Point  `yaml:"at"`
}

// TrackRef points at the index-th track laid by a chain, its head being 0
type TrackRef struct {
	Chain string `yaml:"chain" validate:"required"`
	Index int    `yaml:"index" validate:"gte=0"`
}

// Link lays a track straight between the start connections of two
// referenced tracks, closing a loop between chains
type Link struct {
	From TrackRef `yaml:"from"`
	To   TrackRef `yaml:"to"`
}

type Platform struct {
	ID     string     `yaml:"id" validate:"required"`
	Tracks []TrackRef `yaml:"tracks" validate:"required,min=1,dive"`
}

type Route struct {
	ID    string   `yaml:"id" validate:"required"`
	Stops []string `yaml:"stops" validate:"required,min=1,dive,required"`
}
