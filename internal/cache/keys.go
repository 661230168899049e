package cache

import (
	"fmt"
	"strconv"

	"commuter/internal/domain"
)

const (
	KeyNetworkVersion = "network:version"
	PatternRange      = "range:*"
)

func KeySyncFull(version string) string {
	return fmt.Sprintf("sync:full:%s", version)
}

// KeyRange identifies a range query on one network version. Coordinates use
// the shortest exact float form so equal rectangles share an entry.
func KeyRange(version string, rect domain.Rect) string {
	return fmt.Sprintf("range:%s:%s:%s:%s:%s", version,
		formatCoord(rect.MinX), formatCoord(rect.MinY),
		formatCoord(rect.Width), formatCoord(rect.Height))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
