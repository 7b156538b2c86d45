package mercator

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestProjectUnproject(t *testing.T) {
	tests := []struct {
		Lon, Lat float64
		X, Y     float64
	}{
		{0, 0, 0.5, 0.5},
		{-180, 0, 0, 0.5},
		{180, 0, 1, 0.5},
		{0, MaxLatitude, 0.5, 0},
		{0, -MaxLatitude, 0.5, 1},
	}

	for _, test := range tests {
		x, y := Project(test.Lon, test.Lat)
		assert.InDelta(t, test.X, x, 1e-9)
		assert.InDelta(t, test.Y, y, 1e-9)

		lon, lat := Unproject(x, y)
		assert.InDelta(t, test.Lon, lon, 1e-9)
		assert.InDelta(t, test.Lat, lat, 1e-9)
	}
}

func TestProject_clampsLatitude(t *testing.T) {
	_, y := Project(0, 90)
	assert.InDelta(t, 0, y, 1e-9)
}

func TestTransform_CameraForBounds(t *testing.T) {
	tr := NewTransform(256, 256)

	center, _ := tr.CameraForBounds(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{50, 60}}, 0)
	assert.InDelta(t, 25, center[0], 1e-6)
	assert.InDelta(t, 35.26438968275954, center[1], 1e-6)

	center, _ = tr.CameraForBounds(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{50, 60}}, 20)
	assert.InDelta(t, 25, center[0], 1e-6)
	assert.InDelta(t, 35.26438968275954, center[1], 1e-6)

	tr = NewTransform(512, 512)
	center, zoom := tr.CameraForBounds(orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{0, 0}}, 0)
	assert.InDelta(t, -0.5, center[0], 1e-2)
	assert.InDelta(t, -0.5, center[1], 1e-2)
	assert.InDelta(t, 8.492, zoom, 1e-2)
}

func TestTransform_CameraForBounds_padding(t *testing.T) {
	tr := NewTransform(512, 512)
	bound := orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{0, 0}}

	_, zoomNoPadding := tr.CameraForBounds(bound, 0)
	_, zoomPadding := tr.CameraForBounds(bound, 128)

	// half of the space available means one zoom level less
	assert.InDelta(t, zoomNoPadding-1, zoomPadding, 1e-6)
}

func TestTransform_CameraForBounds_clampsZoom(t *testing.T) {
	tr := NewTransform(512, 512)

	_, zoom := tr.CameraForBounds(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{0.0000001, 0.0000001}}, 0)
	assert.Equal(t, float64(MaxZoom), zoom)
}

func TestTransform_LonLatToScreen(t *testing.T) {
	tr := NewTransform(512, 512)

	x, y := tr.LonLatToScreen(0, 0)
	assert.InDelta(t, 256, x, 1e-9)
	assert.InDelta(t, 256, y, 1e-9)

	// the whole world is 512px wide at zoom 0
	x, _ = tr.LonLatToScreen(90, 0)
	assert.InDelta(t, 384, x, 1e-9)

	// with a bearing of 90 degrees, east is at the top
	tr.Bearing = 90
	x, y = tr.LonLatToScreen(90, 0)
	assert.InDelta(t, 256, x, 1e-9)
	assert.InDelta(t, 128, y, 1e-9)
}

func TestTransform_JumpTo(t *testing.T) {
	tr := NewTransform(10, 10)
	tr.JumpTo(orb.Point{10, 89}, 30)

	assert.Equal(t, 10.0, tr.Center[0])
	assert.Equal(t, MaxLatitude, tr.Center[1])
	assert.Equal(t, float64(MaxZoom), tr.Zoom)
}

func TestTileToBound(t *testing.T) {
	bound := TileToBound(0, 0, 0)
	assert.InDelta(t, -180, bound.Min[0], 1e-9)
	assert.InDelta(t, 180, bound.Max[0], 1e-9)
	assert.InDelta(t, MaxLatitude, bound.Max[1], 1e-6)

	tile := LonLatToTile(-0.5, 0.5, 1)
	assert.Equal(t, uint32(0), tile.X)
	assert.Equal(t, uint32(0), tile.Y)

	assert.Equal(t, uint32(3), FlipY(0, 2))
	assert.True(t, IsValidTile(1, 1, 1))
	assert.False(t, IsValidTile(2, 0, 1))
}
