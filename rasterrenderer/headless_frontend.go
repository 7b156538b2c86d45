package rasterrenderer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/freetype/truetype"
	"github.com/jamesrr39/gomgl/maprenderer"
	"github.com/jamesrr39/gomgl/styling"
	"github.com/jamesrr39/gomgl/styling/mapboxglstyle"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var _ maprenderer.MapRenderer = &HeadlessFrontend{}

// HeadlessFrontend is a software renderer. It draws inline GeoJSON sources, with zoom functions evaluated
// and data-driven expressions skipped.
type HeadlessFrontend struct {
	font *truetype.Font
}

func NewHeadlessFrontend(font *truetype.Font) *HeadlessFrontend {
	return &HeadlessFrontend{font}
}

type backgroundStyle struct {
	Color  color.Color
	ZIndex int
}

func (bs *backgroundStyle) GetZIndex() int {
	return bs.ZIndex
}

type drawItem struct {
	ItemStyle styling.ItemStyle
	Feature   *geojson.Feature
}

func (f *HeadlessFrontend) RenderMap(ctx context.Context, req *maprenderer.RenderRequest) (*image.RGBA, errorsx.Error) {
	if req.Style == nil || req.Transform == nil {
		return nil, errorsx.Errorf("render request must have a style and a transform")
	}

	if !(req.Ratio > 0) || math.IsInf(req.Ratio, 0) {
		return nil, errorsx.Errorf("invalid pixel ratio: %v", req.Ratio)
	}

	endCollectSpan := maprenderer.StartSpan(ctx, "collect features")
	items := f.collectItems(req)
	endCollectSpan()

	endDrawSpan := maprenderer.StartSpan(ctx, fmt.Sprintf("draw %d items", len(items)))
	defer endDrawSpan()

	img := image.NewRGBA(req.PhysicalSize())
	projector := screenProjector{req.Transform, req.Ratio}

	styling.SortByZIndex(items, func(item drawItem) styling.ItemStyle {
		return item.ItemStyle
	})

	for _, item := range items {
		switch itemStyle := item.ItemStyle.(type) {
		case *backgroundStyle:
			draw.Draw(img, img.Bounds(), image.NewUniform(itemStyle.Color), image.Point{}, draw.Over)
		case *styling.FillStyle:
			drawFill(img, projector, item.Feature.Geometry, itemStyle, req.Ratio)
		case *styling.LineStyle:
			drawLine(img, projector, item.Feature.Geometry, itemStyle, req.Ratio)
		case *styling.CircleStyle:
			drawCircle(img, projector, item.Feature.Geometry, itemStyle, req.Ratio)
		case *styling.SymbolStyle:
			err := f.drawSymbol(img, projector, item.Feature.Geometry, itemStyle, req)
			if err != nil {
				return nil, err
			}
		default:
			return nil, errorsx.Errorf("didn't understand item style %#v", item.ItemStyle)
		}
	}

	return img, nil
}

func (f *HeadlessFrontend) collectItems(req *maprenderer.RenderRequest) []drawItem {
	zoomLevel := req.Transform.Zoom
	visibleBound := req.Transform.VisibleBound()

	var items []drawItem

	for layerIndex, layer := range req.Style.Layers() {
		if !layer.IsVisible() || !layer.IsVisibleAtZoomLevel(zoomLevel) {
			continue
		}

		switch layer.Type {
		case mapboxglstyle.LayerTypeBackground:
			c := layer.GetBackgroundColor(zoomLevel)
			if c != nil {
				items = append(items, drawItem{ItemStyle: &backgroundStyle{c, layerIndex}})
			}
			continue
		case mapboxglstyle.LayerTypeFill, mapboxglstyle.LayerTypeLine, mapboxglstyle.LayerTypeCircle, mapboxglstyle.LayerTypeSymbol:
		default:
			req.Debug(maprenderer.EventRender, fmt.Sprintf("layer %q: %s layers are not rendered", layer.ID, layer.Type))
			continue
		}

		fc := f.sourceData(req, layer)
		if fc == nil {
			continue
		}

		for _, feature := range fc.Features {
			if feature.Geometry == nil || !layer.IsFeatureShown(feature) {
				continue
			}

			var itemStyle styling.ItemStyle
			switch layer.Type {
			case mapboxglstyle.LayerTypeFill:
				if !isPolygonal(feature.Geometry) || !feature.Geometry.Bound().Intersects(visibleBound) {
					continue
				}
				fillStyle := layer.GetFillStyle(zoomLevel, layerIndex)
				if fillStyle != nil {
					itemStyle = fillStyle
				}
			case mapboxglstyle.LayerTypeLine:
				if isPuntal(feature.Geometry) || !feature.Geometry.Bound().Intersects(visibleBound) {
					continue
				}
				lineStyle := layer.GetLineStyle(zoomLevel, layerIndex)
				if lineStyle != nil {
					itemStyle = lineStyle
				}
			case mapboxglstyle.LayerTypeCircle:
				if !isPuntal(feature.Geometry) {
					continue
				}
				circleStyle := layer.GetCircleStyle(zoomLevel, layerIndex)
				if circleStyle != nil {
					itemStyle = circleStyle
				}
			case mapboxglstyle.LayerTypeSymbol:
				symbolStyle := layer.GetSymbolStyle(feature.Properties, zoomLevel, layerIndex)
				if symbolStyle != nil {
					itemStyle = symbolStyle
				}
			}

			if itemStyle == nil {
				// this feature shouldn't be shown
				continue
			}

			items = append(items, drawItem{itemStyle, feature})
		}
	}

	return items
}

// sourceData returns the GeoJSON for the layer's source, or nil if there is nothing this frontend can draw
func (f *HeadlessFrontend) sourceData(req *maprenderer.RenderRequest, layer *mapboxglstyle.Layer) *geojson.FeatureCollection {
	source := req.Style.GetSource(layer.Source)
	if source == nil {
		req.Warning(maprenderer.EventStyle, fmt.Sprintf("layer %q: source %q not found", layer.ID, layer.Source))
		return nil
	}

	if source.Type() != mapboxglstyle.SourceTypeGeoJSON {
		req.Debug(maprenderer.EventRender, fmt.Sprintf("layer %q: %s sources are not rendered", layer.ID, source.Type()))
		return nil
	}

	return req.SourceData[layer.Source]
}

func isPuntal(geometry orb.Geometry) bool {
	switch geometry.(type) {
	case orb.Point, orb.MultiPoint:
		return true
	}
	return false
}

func isPolygonal(geometry orb.Geometry) bool {
	switch geometry.(type) {
	case orb.Polygon, orb.MultiPolygon, orb.Bound, orb.Collection:
		return true
	}
	return false
}

func addRingToPath(gc *draw2dimg.GraphicContext, projector screenProjector, points []orb.Point, closePath bool) {
	for i, point := range points {
		x, y := projector.project(point)
		if i == 0 {
			gc.MoveTo(x, y)
		} else {
			gc.LineTo(x, y)
		}
	}
	if closePath && len(points) > 0 {
		gc.Close()
	}
}

func polygons(geometry orb.Geometry) []orb.Polygon {
	switch g := geometry.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}
	case orb.MultiPolygon:
		return g
	case orb.Bound:
		return []orb.Polygon{g.ToPolygon()}
	case orb.Collection:
		var out []orb.Polygon
		for _, child := range g {
			out = append(out, polygons(child)...)
		}
		return out
	}
	return nil
}

func lineStrings(geometry orb.Geometry) []orb.LineString {
	switch g := geometry.(type) {
	case orb.LineString:
		return []orb.LineString{g}
	case orb.MultiLineString:
		return g
	case orb.Ring:
		return []orb.LineString{orb.LineString(g)}
	case orb.Polygon, orb.MultiPolygon, orb.Bound:
		// lines are drawn along the polygon rings
		var out []orb.LineString
		for _, polygon := range polygons(g) {
			for _, ring := range polygon {
				out = append(out, orb.LineString(ring))
			}
		}
		return out
	case orb.Collection:
		var out []orb.LineString
		for _, child := range g {
			out = append(out, lineStrings(child)...)
		}
		return out
	}
	return nil
}

func points(geometry orb.Geometry) []orb.Point {
	switch g := geometry.(type) {
	case orb.Point:
		return []orb.Point{g}
	case orb.MultiPoint:
		return g
	case orb.Collection:
		var out []orb.Point
		for _, child := range g {
			out = append(out, points(child)...)
		}
		return out
	}
	return nil
}

func drawFill(img *image.RGBA, projector screenProjector, geometry orb.Geometry, fillStyle *styling.FillStyle, ratio float64) {
	gc := draw2dimg.NewGraphicContext(img)
	gc.SetFillRule(draw2d.FillRuleEvenOdd)
	gc.SetFillColor(fillStyle.FillColor)

	gc.BeginPath()
	for _, polygon := range polygons(geometry) {
		// inner rings are holes through the even-odd rule
		for _, ring := range polygon {
			addRingToPath(gc, projector, ring, true)
		}
	}

	if fillStyle.OutlineColor == nil {
		gc.Fill()
		return
	}

	gc.SetStrokeColor(fillStyle.OutlineColor)
	gc.SetLineWidth(ratio)
	gc.FillStroke()
}

func lineCap(name string) draw2d.LineCap {
	switch name {
	case "round":
		return draw2d.RoundCap
	case "square":
		return draw2d.SquareCap
	default:
		return draw2d.ButtCap
	}
}

func lineJoin(name string) draw2d.LineJoin {
	switch name {
	case "round":
		return draw2d.RoundJoin
	case "bevel":
		return draw2d.BevelJoin
	default:
		return draw2d.MiterJoin
	}
}

func drawLine(img *image.RGBA, projector screenProjector, geometry orb.Geometry, lineStyle *styling.LineStyle, ratio float64) {
	gc := draw2dimg.NewGraphicContext(img)
	gc.SetStrokeColor(lineStyle.LineColor)
	gc.SetLineWidth(lineStyle.LineWidth * ratio)
	gc.SetLineCap(lineCap(lineStyle.LineCap))
	gc.SetLineJoin(lineJoin(lineStyle.LineJoin))

	if len(lineStyle.LineDashPolicy) != 0 {
		var dashes []float64
		for _, dash := range lineStyle.LineDashPolicy {
			dashes = append(dashes, dash*ratio)
		}
		gc.SetLineDash(dashes, 0)
	}

	gc.BeginPath()
	for _, lineString := range lineStrings(geometry) {
		addRingToPath(gc, projector, lineString, false)
	}
	gc.Stroke()
}

func drawCircle(img *image.RGBA, projector screenProjector, geometry orb.Geometry, circleStyle *styling.CircleStyle, ratio float64) {
	for _, point := range points(geometry) {
		x, y := projector.project(point)

		gc := draw2dimg.NewGraphicContext(img)
		gc.SetFillColor(circleStyle.FillColor)
		gc.BeginPath()
		draw2dkit.Circle(gc, x, y, circleStyle.Radius*ratio)

		if circleStyle.StrokeWidth <= 0 {
			gc.Fill()
			continue
		}

		gc.SetStrokeColor(circleStyle.StrokeColor)
		gc.SetLineWidth(circleStyle.StrokeWidth * ratio)
		gc.FillStroke()
	}
}
