package rasterrenderer

import (
	"context"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	snapshot "github.com/jamesrr39/go-snapshot-testing"
	"github.com/jamesrr39/gomgl/fonts"
	"github.com/jamesrr39/gomgl/maprenderer"
	"github.com/jamesrr39/gomgl/mercator"
	"github.com/jamesrr39/gomgl/styling/mapboxglstyle"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFrontend(t *testing.T) *HeadlessFrontend {
	font, err := fonts.DefaultFont()
	require.NoError(t, err)

	return NewHeadlessFrontend(font)
}

func newTestRequest(t *testing.T, styleJSON, geoJSON string, width, height uint32, ratio float64) (*maprenderer.RenderRequest, *[]maprenderer.LogMessage) {
	style, err := mapboxglstyle.Parse(strings.NewReader(styleJSON))
	require.NoError(t, err)

	var messages []maprenderer.LogMessage

	req := &maprenderer.RenderRequest{
		Style:      style,
		Transform:  mercator.NewTransform(width, height),
		Ratio:      ratio,
		SourceData: make(map[string]*geojson.FeatureCollection),
		Images:     make(map[string]*maprenderer.StyleImage),
		Log: func(message maprenderer.LogMessage) {
			messages = append(messages, message)
		},
	}

	if geoJSON != "" {
		fc, err := geojson.UnmarshalFeatureCollection([]byte(geoJSON))
		require.NoError(t, err)
		req.SourceData["geojson"] = fc
	}

	return req, &messages
}

const pointGeoJSON = `{"type": "FeatureCollection", "features": [
	{"type": "Feature", "properties": {"name": "Null Island", "kind": "island"}, "geometry": {"type": "Point", "coordinates": [0, 0]}}
]}`

func TestHeadlessFrontend_RenderMap_background(t *testing.T) {
	req, _ := newTestRequest(t, `{
		"version": 8,
		"layers": [{"id": "bg", "type": "background", "paint": {"background-color": "#ff0000"}}]
	}`, "", 4, 4, 2)

	img, err := newTestFrontend(t).RenderMap(context.Background(), req)
	require.NoError(t, err)

	// physical size is logical size * ratio
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())

	snapshot.AssertMatchesSnapshot(t, "TestHeadlessFrontend_RenderMap_background", snapshot.NewImageSnapshot(img))
}

func TestHeadlessFrontend_RenderMap_fill(t *testing.T) {
	req, _ := newTestRequest(t, `{
		"version": 8,
		"sources": {"geojson": {"type": "geojson", "data": {"type": "FeatureCollection", "features": []}}},
		"layers": [
			{"id": "bg", "type": "background", "paint": {"background-color": "white"}},
			{"id": "box", "type": "fill", "source": "geojson", "paint": {"fill-color": "#0000ff"}}
		]
	}`, `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[-170, -80], [170, -80], [170, 80], [-170, 80], [-170, -80]]]}}
	]}`, 4, 4, 1)

	img, err := newTestFrontend(t).RenderMap(context.Background(), req)
	require.NoError(t, err)

	snapshot.AssertMatchesSnapshot(t, "TestHeadlessFrontend_RenderMap_fill", snapshot.NewImageSnapshot(img))
}

func TestHeadlessFrontend_RenderMap_fillHole(t *testing.T) {
	req, _ := newTestRequest(t, `{
		"version": 8,
		"sources": {"geojson": {"type": "geojson", "data": {"type": "FeatureCollection", "features": []}}},
		"layers": [{"id": "box", "type": "fill", "source": "geojson", "paint": {"fill-color": "#0000ff"}}]
	}`, `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [
			[[-170, -80], [170, -80], [170, 80], [-170, 80], [-170, -80]],
			[[-10, -10], [10, -10], [10, 10], [-10, 10], [-10, -10]]
		]}}
	]}`, 64, 64, 1)

	img, err := newTestFrontend(t).RenderMap(context.Background(), req)
	require.NoError(t, err)

	// the hole is around the center, the rest is filled
	assert.Equal(t, color.RGBA{0, 0, 0, 0}, img.RGBAAt(32, 32))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(2, 2))
}

func TestHeadlessFrontend_RenderMap_circle(t *testing.T) {
	req, _ := newTestRequest(t, `{
		"version": 8,
		"sources": {"geojson": {"type": "geojson", "data": {"type": "FeatureCollection", "features": []}}},
		"layers": [{"id": "points", "type": "circle", "source": "geojson", "paint": {"circle-color": "#00ff00", "circle-radius": 4}}]
	}`, pointGeoJSON, 20, 20, 1)

	img, err := newTestFrontend(t).RenderMap(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{0, 255, 0, 255}, img.RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{0, 0, 0, 0}, img.RGBAAt(1, 1))
}

func TestHeadlessFrontend_RenderMap_line(t *testing.T) {
	req, _ := newTestRequest(t, `{
		"version": 8,
		"sources": {"geojson": {"type": "geojson", "data": {"type": "FeatureCollection", "features": []}}},
		"layers": [{"id": "line", "type": "line", "source": "geojson", "paint": {"line-color": "#000000", "line-width": 4}}]
	}`, `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[-90, 0], [90, 0]]}}
	]}`, 20, 20, 1)

	img, err := newTestFrontend(t).RenderMap(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{0, 0, 0, 0}, img.RGBAAt(10, 2))
}

func TestHeadlessFrontend_RenderMap_skippedLayers(t *testing.T) {
	req, messages := newTestRequest(t, `{
		"version": 8,
		"sources": {
			"geojson": {"type": "geojson", "data": {"type": "FeatureCollection", "features": []}},
			"tiles": {"type": "vector", "url": "mbtiles:///tmp/a.mbtiles"}
		},
		"layers": [
			{"id": "hidden", "type": "circle", "source": "geojson", "layout": {"visibility": "none"}},
			{"id": "zoomed-out", "type": "circle", "source": "geojson", "minzoom": 5},
			{"id": "filtered", "type": "circle", "source": "geojson", "filter": ["==", "kind", "city"]},
			{"id": "vector", "type": "circle", "source": "tiles", "source-layer": "places"},
			{"id": "hills", "type": "hillshade", "source": "tiles"}
		]
	}`, pointGeoJSON, 20, 20, 1)

	img, err := newTestFrontend(t).RenderMap(context.Background(), req)
	require.NoError(t, err)

	for _, pixel := range []image.Point{{10, 10}, {0, 0}, {19, 19}} {
		assert.Equal(t, color.RGBA{0, 0, 0, 0}, img.RGBAAt(pixel.X, pixel.Y))
	}

	require.Len(t, *messages, 2)
	assert.Equal(t, maprenderer.LogMessage{
		Severity: maprenderer.SeverityDebug,
		Event:    maprenderer.EventRender,
		Code:     -1,
		Message:  `layer "vector": vector sources are not rendered`,
	}, (*messages)[0])
	assert.Equal(t, `layer "hills": hillshade layers are not rendered`, (*messages)[1].Message)
}

func TestHeadlessFrontend_RenderMap_symbol(t *testing.T) {
	req, messages := newTestRequest(t, `{
		"version": 8,
		"sources": {"geojson": {"type": "geojson", "data": {"type": "FeatureCollection", "features": []}}},
		"layers": [
			{"id": "icons", "type": "symbol", "source": "geojson", "layout": {"icon-image": "{kind}"}},
			{"id": "missing-icons", "type": "symbol", "source": "geojson", "layout": {"icon-image": "not-added"}},
			{"id": "labels", "type": "symbol", "source": "geojson", "layout": {"text-field": "{name}", "text-size": 12, "text-offset": [0, 2]}, "paint": {"text-color": "#ff0000"}}
		]
	}`, pointGeoJSON, 100, 100, 1)

	icon := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(icon.Pix); i += 4 {
		copy(icon.Pix[i:i+4], []byte{0, 255, 0, 255})
	}
	req.Images["island"] = &maprenderer.StyleImage{Image: icon, PixelRatio: 1}

	img, err := newTestFrontend(t).RenderMap(context.Background(), req)
	require.NoError(t, err)

	// icon is drawn centered on the point
	iconPixel := img.RGBAAt(50, 50)
	assert.Greater(t, iconPixel.A, uint8(250))
	assert.Greater(t, iconPixel.G, uint8(200))

	// the label is drawn below the point
	labelPixelCount := 0
	for y := 55; y < 80; y++ {
		for x := 0; x < 100; x++ {
			if img.RGBAAt(x, y).R > 0 {
				labelPixelCount++
			}
		}
	}
	assert.Greater(t, labelPixelCount, 0)

	require.Len(t, *messages, 1)
	assert.Equal(t, maprenderer.SeverityWarning, (*messages)[0].Severity)
	assert.Contains(t, (*messages)[0].Message, `Image "not-added" could not be loaded`)
}

func TestHeadlessFrontend_RenderMap_badRequest(t *testing.T) {
	_, err := newTestFrontend(t).RenderMap(context.Background(), &maprenderer.RenderRequest{})
	require.Error(t, err)
}

func TestHeadlessFrontend_RenderMap_badRatio(t *testing.T) {
	for _, ratio := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		req, _ := newTestRequest(t, `{"version": 8, "sources": {}, "layers": []}`, "", 4, 4, ratio)

		_, err := newTestFrontend(t).RenderMap(context.Background(), req)
		assert.Error(t, err, "ratio %v", ratio)
	}
}

func TestHeadlessFrontend_RenderMap_sdfIcon(t *testing.T) {
	req, _ := newTestRequest(t, `{
		"version": 8,
		"sources": {"geojson": {"type": "geojson", "data": {"type": "FeatureCollection", "features": []}}},
		"layers": [
			{"id": "icons", "type": "symbol", "source": "geojson", "layout": {"icon-image": "marker"}, "paint": {"icon-color": "#ff0000"}}
		]
	}`, pointGeoJSON, 100, 100, 1)

	// the inside of the shape is above the SDF edge, the border below it
	icon := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x >= 2 && x < 6 && y >= 2 && y < 6 {
				icon.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				icon.SetRGBA(x, y, color.RGBA{100, 100, 100, 100})
			}
		}
	}
	req.Images["marker"] = &maprenderer.StyleImage{Image: icon, PixelRatio: 1, SDF: true}

	img, err := newTestFrontend(t).RenderMap(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(50, 50))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(46, 46))
}
