package mgl

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io/ioutil"
	"net/http"
	"strings"
	"testing"

	snapshot "github.com/jamesrr39/go-snapshot-testing"
	"github.com/jamesrr39/gomgl/maprenderer"
	"github.com/jamesrr39/gomgl/resource"
	"github.com/jamesrr39/goutil/gofs/mockfs"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockDoer serves the given bodies by URL, and 404s for anything else
func newMockDoer(bodies map[string]string, requestedURLs *[]string) *httpextra.MockDoer {
	return &httpextra.MockDoer{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			*requestedURLs = append(*requestedURLs, req.URL.String())

			body, ok := bodies[req.URL.String()]
			if !ok {
				return &http.Response{
					StatusCode: http.StatusNotFound,
					Header:     http.Header{},
					Body:       ioutil.NopCloser(strings.NewReader("not found")),
				}, nil
			}

			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{},
				Body:       ioutil.NopCloser(strings.NewReader(body)),
			}, nil
		},
	}
}

func TestMap_RenderBuffer(t *testing.T) {
	m := newTestMap(t, "example-style-solid-background.json", WithSize(10, 10), WithRatio(2))

	buf, err := m.RenderBuffer(context.Background())
	require.NoError(t, err)

	// the buffer is the physical size
	require.Len(t, buf, 20*20*4)
	assert.Equal(t, bytes.Repeat([]byte{0, 0, 255, 255}, 20*20), buf)
}

func TestMap_RenderBuffer_emptyStyle(t *testing.T) {
	m := newTestMap(t, "example-style-empty.json", WithSize(256, 256), WithRatio(1))

	buf, err := m.RenderBuffer(context.Background())
	require.NoError(t, err)
	assert.Len(t, buf, 4*256*256)
}

func TestMap_RenderImage_solidBackground(t *testing.T) {
	m := newTestMap(t, "example-style-solid-background.json", WithSize(10, 10), WithRatio(2))

	img, err := m.RenderImage(context.Background())
	require.NoError(t, err)

	snapshot.AssertMatchesSnapshot(t, "TestMap_RenderImage_solidBackground", snapshot.NewImageSnapshot(img))
}

func TestMap_RenderPNG(t *testing.T) {
	m := newTestMap(t, "example-style-solid-background.json", WithSize(10, 5), WithRatio(1.5))

	b, err := m.RenderPNG(context.Background())
	require.NoError(t, err)

	img, decodeErr := png.Decode(bytes.NewReader(b))
	require.NoError(t, decodeErr)

	assert.Equal(t, image.Rect(0, 0, 15, 8), img.Bounds())
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, color.NRGBAModel.Convert(img.At(7, 4)))
}

func TestMap_RenderBuffer_geoJSON(t *testing.T) {
	m := newTestMap(t, "example-style-geojson.json", WithSize(10, 10))

	buf, err := m.RenderBuffer(context.Background())
	require.NoError(t, err)

	// the semi transparent box covers the whole viewport
	centerPixel := buf[(5*10+5)*4 : (5*10+5)*4+4]
	assert.InDelta(t, 255, centerPixel[0], 2)
	assert.Equal(t, uint8(0), centerPixel[1])
	assert.Equal(t, uint8(0), centerPixel[2])
	assert.InDelta(t, 128, centerPixel[3], 2)

	// hidden layers are not drawn
	require.NoError(t, m.SetVisibility("box", false))
	buf, err = m.RenderBuffer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 10*10*4), buf)
}

func TestMap_Render_setGeoJSON(t *testing.T) {
	m, err := NewMap("", WithSize(20, 20))
	require.NoError(t, err)
	defer m.Release()

	require.NoError(t, m.AddSource("geojson", `{"type": "geojson", "data": {"type": "FeatureCollection", "features": []}}`))
	require.NoError(t, m.AddLayer(`{"id": "points", "type": "circle", "source": "geojson", "paint": {"circle-color": "#00FF00", "circle-radius": 4}}`))

	img, err := m.RenderImage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0, 0, 0}, img.RGBAAt(10, 10))

	require.NoError(t, m.SetGeoJSON("geojson", `{"type": "Point", "coordinates": [0, 0]}`))

	img, err = m.RenderImage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, img.RGBAAt(10, 10))
}

func TestMap_Render_icon(t *testing.T) {
	m, err := NewMap(`{
		"version": 8,
		"sources": {"geojson": {"type": "geojson", "data": {"type": "Point", "coordinates": [0, 0]}}},
		"layers": [{"id": "icons", "type": "symbol", "source": "geojson", "layout": {"icon-image": "red"}}]
	}`, WithSize(20, 20))
	require.NoError(t, err)
	defer m.Release()

	require.NoError(t, m.AddImage("red", solidPixels(4, 4, []byte{255, 0, 0, 255}), 4, 4, 1, false))

	img, err := m.RenderImage(context.Background())
	require.NoError(t, err)

	pixel := img.RGBAAt(10, 10)
	assert.Greater(t, pixel.R, uint8(250))
	assert.Greater(t, pixel.A, uint8(250))
	assert.Equal(t, color.RGBA{0, 0, 0, 0}, img.RGBAAt(1, 1))
}

func TestMap_Load_urlStyle(t *testing.T) {
	fs := mockfs.NewMockFs()
	require.NoError(t, fs.MkdirAll("/styles", 0755))
	require.NoError(t, fs.MkdirAll("/data", 0755))
	require.NoError(t, fs.WriteFile("/styles/url-sources.json", []byte(readStyle(t, "example-style-url-sources.json")), 0644))
	require.NoError(t, fs.WriteFile("/data/points.geojson", []byte(`{"type": "Point", "coordinates": [0, 0]}`), 0644))

	var requestedURLs []string
	client := newMockDoer(map[string]string{
		"http://tiles.example.com/land.json": `{"tilejson": "2.2.0", "name": "land", "tiles": ["http://tiles.example.com/{z}/{x}/{y}.pbf"]}`,
	}, &requestedURLs)

	observer := NewRecordingLogObserver()

	m, err := NewMap(
		"file:///styles/url-sources.json",
		WithSize(20, 20),
		WithFileSource(resource.NewDefaultFileSource(fs, client)),
		WithLogObserver(observer),
	)
	require.NoError(t, err)
	defer m.Release()

	// the style is empty until it is loaded
	layers, err := m.ListLayers()
	require.NoError(t, err)
	assert.Empty(t, layers)

	require.NoError(t, m.Load(context.Background()))

	layers, err = m.ListLayers()
	require.NoError(t, err)
	assert.Equal(t, []string{"background", "points", "land"}, layers)
	assert.Equal(t, []string{"http://tiles.example.com/land.json"}, requestedURLs)
	assert.Equal(t, "land", m.tileSets["land"].Name)

	img, err := m.RenderImage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, img.RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(1, 1))

	// loaded resources are not fetched again
	assert.Len(t, requestedURLs, 1)

	assert.Equal(t, 1, observer.Count(Message{
		Severity: maprenderer.SeverityDebug,
		Event:    maprenderer.EventRender,
		Code:     -1,
		Message:  `layer "land": vector sources are not rendered`,
	}, false))
	assert.Equal(t, 1, observer.Count(Message{
		Severity: maprenderer.SeverityDebug,
		Event:    maprenderer.EventStyle,
		Code:     -1,
		Message:  `loaded tileset "land"`,
	}, true))
}

func newURLStyleMap(t *testing.T) *Map {
	fs := mockfs.NewMockFs()
	require.NoError(t, fs.MkdirAll("/styles", 0755))
	require.NoError(t, fs.MkdirAll("/data", 0755))
	require.NoError(t, fs.WriteFile("/styles/url-sources.json", []byte(readStyle(t, "example-style-url-sources.json")), 0644))
	require.NoError(t, fs.WriteFile("/data/points.geojson", []byte(`{"type": "Point", "coordinates": [0, 0]}`), 0644))

	var requestedURLs []string
	client := newMockDoer(map[string]string{
		"http://tiles.example.com/land.json": `{"tilejson": "2.2.0", "name": "land", "tiles": ["http://tiles.example.com/{z}/{x}/{y}.pbf"]}`,
	}, &requestedURLs)

	m, err := NewMap(
		"file:///styles/url-sources.json",
		WithSize(20, 20),
		WithFileSource(resource.NewDefaultFileSource(fs, client)),
	)
	require.NoError(t, err)
	t.Cleanup(m.Release)

	return m
}

func TestMap_Load_urlStyleKeepsEarlierChanges(t *testing.T) {
	m := newURLStyleMap(t)

	require.NoError(t, m.AddSource("extra", `{"type": "geojson", "data": {"type": "Point", "coordinates": [5, 5]}}`))
	require.NoError(t, m.AddLayer(`{"id": "extra", "type": "circle", "source": "extra"}`))
	require.NoError(t, m.SetPaintProperty("extra", "circle-color", "#0000FF"))
	require.NoError(t, m.SetVisibility("extra", false))

	// a failed change is not replayed
	assertCause[*NotFoundError](t, m.SetVisibility("points", false), "points is not a valid layer")

	require.NoError(t, m.Load(context.Background()))

	layers, err := m.ListLayers()
	require.NoError(t, err)
	assert.Equal(t, []string{"background", "points", "land", "extra"}, layers)

	sources, err := m.ListSources()
	require.NoError(t, err)
	assert.Equal(t, []string{"points", "land", "extra"}, sources)

	circleColor, err := m.GetPaintProperty("extra", "circle-color")
	require.NoError(t, err)
	require.NotNil(t, circleColor)
	assert.JSONEq(t, `["rgba", 0, 0, 255, 1]`, *circleColor)

	visible, err := m.GetVisibility("extra")
	require.NoError(t, err)
	assert.False(t, visible)

	visible, err = m.GetVisibility("points")
	require.NoError(t, err)
	assert.True(t, visible)
}

func TestMap_Load_urlStyleConflictingChange(t *testing.T) {
	m := newURLStyleMap(t)

	// "points" only exists once the style is fetched
	require.NoError(t, m.AddSource("points", `{"type": "geojson", "data": {"type": "FeatureCollection", "features": []}}`))

	assertCause[*InvalidArgumentError](t, m.Load(context.Background()), "source points already exists")
}

func TestMap_Load_provider(t *testing.T) {
	var requestedURLs []string
	client := newMockDoer(map[string]string{
		"https://api.maptiler.com/maps/streets/style.json?key=a+token": readStyle(t, "example-style-solid-background.json"),
	}, &requestedURLs)

	m, err := NewMap(
		"maptiler://maps/streets",
		WithSize(4, 4),
		WithProvider("maptiler"),
		WithToken("a token"),
		WithFileSource(resource.NewDefaultFileSource(mockfs.NewMockFs(), client)),
	)
	require.NoError(t, err)
	defer m.Release()

	buf, err := m.RenderBuffer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0, 0, 255, 255}, 4*4), buf)
	assert.Equal(t, []string{"https://api.maptiler.com/maps/streets/style.json?key=a+token"}, requestedURLs)
}

func TestMap_Load_errors(t *testing.T) {
	var requestedURLs []string
	fileSource := resource.NewDefaultFileSource(mockfs.NewMockFs(), newMockDoer(nil, &requestedURLs))

	observer := NewRecordingLogObserver()
	m, err := NewMap("file:///missing/style.json", WithFileSource(fileSource), WithLogObserver(observer))
	require.NoError(t, err)
	defer m.Release()

	require.Error(t, m.Load(context.Background()))
	require.Error(t, m.Render(context.Background()))

	unchecked := observer.Unchecked()
	require.Len(t, unchecked, 2)
	assert.Equal(t, maprenderer.SeverityError, unchecked[0].Severity)
	assert.Equal(t, "failed to load style file:///missing/style.json", unchecked[0].Message)
	assert.Equal(t, 0, observer.UncheckedCount())

	m2, err := NewMap(`{
		"version": 8,
		"sources": {"remote": {"type": "geojson", "data": "http://example.com/missing.geojson"}},
		"layers": []
	}`, WithFileSource(fileSource))
	require.NoError(t, err)
	defer m2.Release()

	err = m2.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected response code 200 but got 404")

	// provider URLs need a provider
	m3, err := NewMap("mapbox://styles/mapbox/streets-v11", WithFileSource(fileSource))
	require.NoError(t, err)
	defer m3.Release()

	require.Error(t, m3.Load(context.Background()))
}
