package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointBBox(t *testing.T) {
	bbox := PointBBox(40.7, -74.0, 0.2)

	assert.InDelta(t, -74.2, bbox.West, 1e-9)
	assert.InDelta(t, 40.5, bbox.South, 1e-9)
	assert.InDelta(t, -73.8, bbox.East, 1e-9)
	assert.InDelta(t, 40.9, bbox.North, 1e-9)
}
