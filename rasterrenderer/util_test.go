package rasterrenderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/jamesrr39/gomgl/mercator"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestNewImageWithBackground(t *testing.T) {
	img := NewImageWithBackground(image.Rect(0, 0, 2, 2), color.NRGBA{255, 0, 0, 128})

	assert.Equal(t, color.RGBA{128, 0, 0, 128}, img.RGBAAt(1, 1))
}

func Test_screenProjector(t *testing.T) {
	transform := mercator.NewTransform(100, 50)

	projector := screenProjector{transform, 2}

	x, y := projector.project(orb.Point{0, 0})
	assert.Equal(t, 100.0, x)
	assert.Equal(t, 50.0, y)

	// at zoom 0 the world is 512 logical pixels wide
	x, _ = projector.project(orb.Point{90, 0})
	assert.InDelta(t, 100+128*2, x, 1e-9)
}
