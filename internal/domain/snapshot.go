package domain

// SerializedConnection is the wire form of a connection
type SerializedConnection struct {
	ID            string   `json:"id"`
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	TrackSections []string `json:"trackSections"`
}

// SerializedTrackSection is the wire form of a track section.
// Unset endpoints are null.
type SerializedTrackSection struct {
	ID          string   `json:"id"`
	ConnectionA *string  `json:"connectionA"`
	ConnectionB *string  `json:"connectionB"`
	Platforms   []string `json:"platforms"`
}

// SerializedPlatform is the wire form of a platform
type SerializedPlatform struct {
	ID            string   `json:"id"`
	TrackSections []string `json:"trackSections"`
	Routes        []string `json:"routes"`
}

// SerializedRoute is the wire form of a route
type SerializedRoute struct {
	ID    string   `json:"id"`
	Stops []string `json:"stops"`
}

// Snapshot is a flat, id-keyed view of part of the network
type Snapshot struct {
	Connections   map[string]SerializedConnection   `json:"connections"`
	TrackSections map[string]SerializedTrackSection `json:"trackSections"`
	Platforms     map[string]SerializedPlatform     `json:"platforms"`
	Routes        map[string]SerializedRoute        `json:"routes"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Connections:   make(map[string]SerializedConnection),
		TrackSections: make(map[string]SerializedTrackSection),
		Platforms:     make(map[string]SerializedPlatform),
		Routes:        make(map[string]SerializedRoute),
	}
}

// Merge copies every entry of other into s
func (s *Snapshot) Merge(other *Snapshot) {
	for id, c := range other.Connections {
		s.Connections[id] = c
	}
	for id, t := range other.TrackSections {
		s.TrackSections[id] = t
	}
	for id, p := range other.Platforms {
		s.Platforms[id] = p
	}
	for id, r := range other.Routes {
		s.Routes[id] = r
	}
}

// Rect is an axis-aligned query rectangle in network coordinates
type Rect struct {
	MinX   float64 `json:"minX"`
	MinY   float64 `json:"minY"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromCorners builds the rectangle spanned by (x0, y0) and (x1, y1)
func RectFromCorners(x0, y0, x1, y1 float64) Rect {
	return Rect{MinX: x0, MinY: y0, Width: x1 - x0, Height: y1 - y0}
}
