package rasterrenderer

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/jamesrr39/gomgl/mercator"
	"github.com/paulmach/orb"
)

func NewImageWithBackground(r image.Rectangle, c color.Color) *image.RGBA {
	img := image.NewRGBA(r)

	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	return img
}

// screenProjector converts lon/lat to physical pixels
type screenProjector struct {
	transform *mercator.Transform
	ratio     float64
}

func (p screenProjector) project(point orb.Point) (float64, float64) {
	x, y := p.transform.LonLatToScreen(point[0], point[1])
	return x * p.ratio, y * p.ratio
}
