package mgl

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/jamesrr39/gomgl/fonts"
	"github.com/jamesrr39/gomgl/maprenderer"
	"github.com/jamesrr39/gomgl/mercator"
	"github.com/jamesrr39/gomgl/mgldal"
	"github.com/jamesrr39/gomgl/rasterrenderer"
	"github.com/jamesrr39/gomgl/resource"
	"github.com/jamesrr39/gomgl/styling/mapboxglstyle"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Map is a headless map: a style plus a camera, which can be rendered to an image.
// All methods are safe for concurrent use.
type Map struct {
	mu       sync.Mutex
	released bool

	style *mapboxglstyle.Style
	// set when the style is loaded from a URL, until it has been fetched
	styleURL string

	transform *mercator.Transform
	ratio     float64

	token             string
	tileServerOptions *resource.TileServerOptions

	fileSource resource.FileSource
	renderer   maprenderer.MapRenderer
	observer   LogObserver

	sourceData    map[string]*geojson.FeatureCollection
	tileSets      map[string]*mgldal.TileJSON
	images        map[string]*maprenderer.StyleImage
	featureStates map[featureKey]map[string]interface{}

	// style changes made before the URL style was fetched
	pendingStyleEdits []func() errorsx.Error
}

// NewMap creates a map. The style is either a style JSON document, a URL to one, or empty.
// URL styles are fetched on the first Load or Render.
func NewMap(style string, options ...Option) (*Map, errorsx.Error) {
	opts := new(mapOptions)
	for _, option := range options {
		option(opts)
	}

	m := &Map{
		token:         opts.token,
		fileSource:    opts.fileSource,
		renderer:      opts.renderer,
		observer:      opts.observer,
		sourceData:    make(map[string]*geojson.FeatureCollection),
		tileSets:      make(map[string]*mgldal.TileJSON),
		images:        make(map[string]*maprenderer.StyleImage),
		featureStates: make(map[featureKey]map[string]interface{}),
	}

	if opts.provider != "" {
		tileServerOptions, ok := resource.ConfigurationForProvider(opts.provider)
		if !ok {
			return nil, invalidArgument("invalid provider: %s", opts.provider)
		}

		if tileServerOptions.RequiresAPIKey && opts.token == "" {
			return nil, invalidArgument("provider '%s' requires a token", opts.provider)
		}

		m.tileServerOptions = tileServerOptions
	}

	width := uint32OrDefault(opts.width, DefaultWidth)
	height := uint32OrDefault(opts.height, DefaultHeight)
	err := validateSize(width, height)
	if err != nil {
		return nil, err
	}

	m.ratio = float64OrDefault(opts.ratio, 1)
	err = validateRatio(m.ratio)
	if err != nil {
		return nil, err
	}

	zoom := float64OrDefault(opts.zoom, 0)
	err = validateZoom(zoom)
	if err != nil {
		return nil, err
	}

	longitude := float64OrDefault(opts.longitude, 0)
	latitude := float64OrDefault(opts.latitude, 0)
	err = validateLonLat(longitude, latitude)
	if err != nil {
		return nil, err
	}

	if m.fileSource == nil {
		m.fileSource = resource.NewDefaultFileSource(gofs.NewOsFs(), http.DefaultClient)
	}

	if m.renderer == nil {
		font, err := fonts.DefaultFont()
		if err != nil {
			return nil, err
		}
		m.renderer = rasterrenderer.NewHeadlessFrontend(font)
	}

	switch {
	case style == "":
		m.style = mapboxglstyle.NewEmptyStyle()
	case strings.HasPrefix(style, "{"):
		parsedStyle, err := mapboxglstyle.Parse(strings.NewReader(style))
		if err != nil {
			return nil, invalidArgument("style could not be parsed: %s", err.Error())
		}
		m.style = parsedStyle
		m.emitStyleWarnings()
	case mgldal.IsURL(style):
		m.style = mapboxglstyle.NewEmptyStyle()
		m.styleURL = style
	default:
		return nil, invalidArgument("style is not valid")
	}

	m.transform = mercator.NewTransform(width, height)
	m.transform.JumpTo(orb.Point{
		longitude,
		latitude,
	}, zoom)

	return m, nil
}

// lockIfNotReleased locks the map. If it returns an error, the map is not locked.
func (m *Map) lockIfNotReleased() errorsx.Error {
	m.mu.Lock()
	if m.released {
		m.mu.Unlock()
		return errorsx.Wrap(ErrReleased)
	}
	return nil
}

// Release frees the style, data and images held by the map. Calling it more than once is harmless.
func (m *Map) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released {
		return
	}

	m.released = true
	m.style = nil
	m.sourceData = nil
	m.tileSets = nil
	m.images = nil
	m.featureStates = nil
	m.pendingStyleEdits = nil
}

func (m *Map) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released {
		return "Map(released)"
	}

	return fmt.Sprintf(
		"Map(size=%dx%d, ratio=%v, center=(%v, %v), zoom=%v, bearing=%v, pitch=%v)",
		m.transform.Width,
		m.transform.Height,
		m.ratio,
		m.transform.Center[0],
		m.transform.Center[1],
		m.transform.Zoom,
		m.transform.Bearing,
		m.transform.Pitch,
	)
}

// emitStyleWarnings reports the parts of the style that were dropped when it was parsed
func (m *Map) emitStyleWarnings() {
	for _, warning := range m.style.Warnings() {
		m.emit(maprenderer.LogMessage{
			Severity: maprenderer.SeverityWarning,
			Event:    maprenderer.EventStyle,
			Code:     -1,
			Message:  warning,
		})
	}
}

func (m *Map) emit(message maprenderer.LogMessage) {
	if m.observer == nil {
		return
	}
	m.observer.OnRecord(message)
}

func (m *Map) debug(event maprenderer.Event, format string, args ...interface{}) {
	m.emit(maprenderer.LogMessage{
		Severity: maprenderer.SeverityDebug,
		Event:    event,
		Code:     -1,
		Message:  fmt.Sprintf(format, args...),
	})
}
