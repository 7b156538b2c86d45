package maprenderer

import (
	"context"
	"image"

	"github.com/jamesrr39/gomgl/mercator"
	"github.com/jamesrr39/gomgl/mgldal"
	"github.com/jamesrr39/gomgl/styling/mapboxglstyle"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb/geojson"
)

// MapRenderer draws a frame for a style and camera.
// The returned image is premultiplied, and its size is the viewport size multiplied by the pixel ratio.
type MapRenderer interface {
	RenderMap(ctx context.Context, req *RenderRequest) (*image.RGBA, errorsx.Error)
}

// StyleImage is an image added to the style, e.g. for use as an "icon-image"
type StyleImage struct {
	Image      *image.RGBA // premultiplied
	PixelRatio float64
	SDF        bool // drawn as a mask tinted with "icon-color"
}

type RenderRequest struct {
	Style     *mapboxglstyle.Style
	Transform *mercator.Transform
	Ratio     float64
	// GeoJSON data, keyed by source ID
	SourceData map[string]*geojson.FeatureCollection
	// resolved tilesets of vector and raster sources, keyed by source ID
	TileSets map[string]*mgldal.TileJSON
	Images   map[string]*StyleImage
	Log      LogFunc
}

// PhysicalSize is the size of the rendered frame in pixels
func (r *RenderRequest) PhysicalSize() image.Rectangle {
	return image.Rect(0, 0, PhysicalDimension(r.Transform.Width, r.Ratio), PhysicalDimension(r.Transform.Height, r.Ratio))
}

func PhysicalDimension(logical uint32, ratio float64) int {
	return int(float64(logical)*ratio + 0.5)
}

func (r *RenderRequest) log(severity EventSeverity, event Event, message string) {
	if r.Log == nil {
		return
	}

	r.Log(LogMessage{
		Severity: severity,
		Event:    event,
		Code:     -1,
		Message:  message,
	})
}

func (r *RenderRequest) Debug(event Event, message string) {
	r.log(SeverityDebug, event, message)
}

func (r *RenderRequest) Warning(event Event, message string) {
	r.log(SeverityWarning, event, message)
}
