package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"commuter/internal/domain"
)

func TestKeyRange(t *testing.T) {
	rect := domain.RectFromCorners(0, 1.5, 10, 3)
	assert.Equal(t, "range:abc:0:1.5:10:1.5", KeyRange("abc", rect))

	same := domain.Rect{MinX: 0.0, MinY: 1.50, Width: 10, Height: 1.5}
	assert.Equal(t, KeyRange("abc", rect), KeyRange("abc", same))
	assert.NotEqual(t, KeyRange("abc", rect), KeyRange("def", rect))
}

func TestKeySyncFull(t *testing.T) {
	assert.Equal(t, "sync:full:v1", KeySyncFull("v1"))
}
