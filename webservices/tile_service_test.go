package webservices

import (
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jamesrr39/gomgl/styling"
	"github.com/stretchr/testify/assert"
)

func TestTileService(t *testing.T) {
	service := NewTileService(newTestLogger(), newTestRenderConfig(t), newTestStyleSet(t))

	rec := httptest.NewRecorder()
	service.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blue/1/0/0.png", nil))

	img := decodePNGResponse(t, rec)
	assert.Equal(t, image.Rect(0, 0, 256, 256), img.Bounds())
	assert.Equal(t, blue, nrgbaAt(img, 128, 128))

	rec = httptest.NewRecorder()
	service.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/default/0/0/0@2x.png", nil))

	img = decodePNGResponse(t, rec)
	assert.Equal(t, image.Rect(0, 0, 512, 512), img.Bounds())
	assert.Equal(t, blue, nrgbaAt(img, 0, 511))
}

func TestTileService_tileCoverage(t *testing.T) {
	// covers the north-west quarter of the world, i.e. exactly tile 1/0/0
	quarterStyle := &styling.NamedStyle{ID: "quarter", Definition: `{
		"version": 8,
		"sources": {"quarter": {"type": "geojson", "data": {"type": "Polygon", "coordinates": [[[-180, 0], [0, 0], [0, 85.0511], [-180, 85.0511], [-180, 0]]]}}},
		"layers": [{"id": "quarter", "type": "fill", "source": "quarter", "paint": {"fill-color": "#FF0000"}}]
	}`}

	service := NewTileService(newTestLogger(), newTestRenderConfig(t), newTestStyleSet(t, quarterStyle))

	red := color.NRGBA{255, 0, 0, 255}

	rec := httptest.NewRecorder()
	service.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quarter/1/0/0.png", nil))
	img := decodePNGResponse(t, rec)
	for _, point := range []image.Point{{128, 128}, {10, 10}, {245, 245}, {10, 245}, {245, 10}} {
		assert.Equal(t, red, nrgbaAt(img, point.X, point.Y), "point %v", point)
	}

	rec = httptest.NewRecorder()
	service.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quarter/1/1/1.png", nil))
	img = decodePNGResponse(t, rec)
	assert.Equal(t, color.NRGBA{}, nrgbaAt(img, 128, 128))

	// zoom 2 tiles inside the quarter are covered too
	rec = httptest.NewRecorder()
	service.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quarter/2/1/1.png", nil))
	img = decodePNGResponse(t, rec)
	assert.Equal(t, red, nrgbaAt(img, 128, 128))
}

func TestTileService_errors(t *testing.T) {
	service := NewTileService(newTestLogger(), newTestRenderConfig(t), newTestStyleSet(t))

	tests := []struct {
		path         string
		expectedCode int
	}{
		{"/missing/0/0/0.png", http.StatusNotFound},
		{"/blue/1/2/0.png", http.StatusBadRequest},
		{"/blue/1/0/2", http.StatusBadRequest},
		{"/blue/a/0/0.png", http.StatusBadRequest},
		{"/blue/1/0/0@x.png", http.StatusBadRequest},
		{"/blue/30/0/0.png", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			service.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func TestTileMapOptions_center(t *testing.T) {
	// options only carry the camera, so check them through a map
	m := newMapFromOptions(t, tileMapOptions(1, 1, 0, 1))

	lon, lat, err := m.Center()
	assert.NoError(t, err)
	assert.InDelta(t, 90, lon, 0.000001)
	assert.InDelta(t, 66.51326044311186, lat, 0.000001)

	w, h, err := m.Size()
	assert.NoError(t, err)
	assert.Equal(t, uint32(512), w)
	assert.Equal(t, uint32(512), h)

	ratio, err := m.Ratio()
	assert.NoError(t, err)
	assert.Equal(t, 0.5, ratio)
}
