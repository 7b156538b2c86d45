package rasterrenderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/jamesrr39/gomgl/maprenderer"
	"github.com/jamesrr39/gomgl/styling"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// labelAnchors returns where symbols for a geometry are placed: on each point, the middle vertex of lines and the centroid of polygons
func labelAnchors(geometry orb.Geometry) []orb.Point {
	switch g := geometry.(type) {
	case orb.Point:
		return []orb.Point{g}
	case orb.MultiPoint:
		return g
	case orb.LineString:
		if len(g) == 0 {
			return nil
		}
		return []orb.Point{g[len(g)/2]}
	case orb.MultiLineString:
		var anchors []orb.Point
		for _, lineString := range g {
			anchors = append(anchors, labelAnchors(lineString)...)
		}
		return anchors
	case orb.Polygon, orb.Bound:
		centroid, _ := planar.CentroidArea(g)
		return []orb.Point{centroid}
	case orb.MultiPolygon:
		var anchors []orb.Point
		for _, polygon := range g {
			anchors = append(anchors, labelAnchors(polygon)...)
		}
		return anchors
	case orb.Collection:
		var anchors []orb.Point
		for _, child := range g {
			anchors = append(anchors, labelAnchors(child)...)
		}
		return anchors
	}
	return nil
}

func (f *HeadlessFrontend) drawSymbol(img *image.RGBA, projector screenProjector, geometry orb.Geometry, symbolStyle *styling.SymbolStyle, req *maprenderer.RenderRequest) errorsx.Error {
	var styleImage *maprenderer.StyleImage
	if symbolStyle.IconImage != "" {
		styleImage = req.Images[symbolStyle.IconImage]
		if styleImage == nil {
			req.Warning(maprenderer.EventImage, fmt.Sprintf("Image %q could not be loaded. Please make sure you have added the image with AddImage()", symbolStyle.IconImage))
		}
	}

	for _, anchor := range labelAnchors(geometry) {
		x, y := projector.project(anchor)

		if styleImage != nil {
			drawIcon(img, x, y, styleImage, symbolStyle.IconSize*req.Ratio, symbolStyle.IconOpacity, symbolStyle.IconColor)
		}

		if symbolStyle.Text != "" {
			err := f.drawText(img, x, y, symbolStyle, req.Ratio)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

const (
	// the alpha value of the glyph outline in a signed distance field image
	sdfEdge  = 0.75
	sdfGamma = 0.05
)

func drawIcon(img *image.RGBA, x, y float64, styleImage *maprenderer.StyleImage, size, opacity float64, iconColor color.Color) {
	pixelRatio := styleImage.PixelRatio
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	scale := size / pixelRatio

	srcBounds := styleImage.Image.Bounds()
	width := int(math.Round(float64(srcBounds.Dx()) * scale))
	height := int(math.Round(float64(srcBounds.Dy()) * scale))
	if width <= 0 || height <= 0 || opacity <= 0 {
		return
	}

	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), styleImage.Image, srcBounds, xdraw.Src, nil)

	minX := int(math.Round(x)) - width/2
	minY := int(math.Round(y)) - height/2
	dstRect := image.Rect(minX, minY, minX+width, minY+height)

	opacity = math.Min(opacity, 1)

	if styleImage.SDF {
		if iconColor == nil {
			iconColor = color.Black
		}
		draw.DrawMask(img, dstRect, image.NewUniform(iconColor), image.Point{}, sdfMask(scaled, opacity), image.Point{}, draw.Over)
		return
	}

	mask := image.NewUniform(color.Alpha{uint8(math.Round(opacity * 255))})
	draw.DrawMask(img, dstRect, scaled, image.Point{}, mask, image.Point{}, draw.Over)
}

// sdfMask turns the distance field in the alpha channel into coverage, smoothed across the edge
func sdfMask(sdf *image.RGBA, opacity float64) *image.Alpha {
	mask := image.NewAlpha(sdf.Bounds())
	for i := range mask.Pix {
		distance := float64(sdf.Pix[i*4+3]) / 255
		coverage := (distance - (sdfEdge - sdfGamma)) / (2 * sdfGamma)
		coverage = math.Max(0, math.Min(1, coverage))
		mask.Pix[i] = uint8(math.Round(coverage * opacity * 255))
	}
	return mask
}

// drawText draws the label centered on x, y
func (f *HeadlessFrontend) drawText(img *image.RGBA, x, y float64, symbolStyle *styling.SymbolStyle, ratio float64) errorsx.Error {
	if f.font == nil {
		return errorsx.Errorf("no font available to draw text %q", symbolStyle.Text)
	}

	textSize := symbolStyle.TextSize * ratio
	if textSize <= 0 {
		return nil
	}

	face := truetype.NewFace(f.font, &truetype.Options{Size: textSize, DPI: 72})
	defer face.Close()

	textWidth := float64(font.MeasureString(face, symbolStyle.Text)) / 64

	// text-offset is in ems
	originX := x - textWidth/2 + symbolStyle.TextOffset[0]*textSize
	originY := y + textSize*0.35 + symbolStyle.TextOffset[1]*textSize

	if symbolStyle.TextHaloColor != nil && symbolStyle.TextHaloWidth > 0 {
		haloWidth := symbolStyle.TextHaloWidth * ratio
		for _, offset := range [][2]float64{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}} {
			err := f.drawString(img, symbolStyle.Text, originX+offset[0]*haloWidth, originY+offset[1]*haloWidth, textSize, symbolStyle.TextHaloColor)
			if err != nil {
				return err
			}
		}
	}

	return f.drawString(img, symbolStyle.Text, originX, originY, textSize, symbolStyle.TextColor)
}

func (f *HeadlessFrontend) drawString(img *image.RGBA, text string, x, y, textSize float64, textColor color.Color) errorsx.Error {
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(f.font)
	ctx.SetFontSize(textSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(textColor))

	_, err := ctx.DrawString(text, fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)})
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}
