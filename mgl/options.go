package mgl

import (
	"github.com/jamesrr39/gomgl/maprenderer"
	"github.com/jamesrr39/gomgl/resource"
)

const (
	DefaultWidth  = 256
	DefaultHeight = 256
)

type mapOptions struct {
	width      *uint32
	height     *uint32
	ratio      *float64
	longitude  *float64
	latitude   *float64
	zoom       *float64
	token      string
	provider   string
	fileSource resource.FileSource
	renderer   maprenderer.MapRenderer
	observer   LogObserver
}

// Option configures a Map in NewMap. Options that are not given use their default.
type Option func(*mapOptions)

func WithSize(width, height uint32) Option {
	return func(o *mapOptions) {
		o.width = &width
		o.height = &height
	}
}

func WithWidth(width uint32) Option {
	return func(o *mapOptions) {
		o.width = &width
	}
}

func WithHeight(height uint32) Option {
	return func(o *mapOptions) {
		o.height = &height
	}
}

// WithRatio sets the pixel ratio. The rendered image is the map size multiplied by the ratio.
func WithRatio(ratio float64) Option {
	return func(o *mapOptions) {
		o.ratio = &ratio
	}
}

func WithCenter(longitude, latitude float64) Option {
	return func(o *mapOptions) {
		o.longitude = &longitude
		o.latitude = &latitude
	}
}

func WithLongitude(longitude float64) Option {
	return func(o *mapOptions) {
		o.longitude = &longitude
	}
}

func WithLatitude(latitude float64) Option {
	return func(o *mapOptions) {
		o.latitude = &latitude
	}
}

func WithZoom(zoom float64) Option {
	return func(o *mapOptions) {
		o.zoom = &zoom
	}
}

// WithToken sets the API key used for provider URLs
func WithToken(token string) Option {
	return func(o *mapOptions) {
		o.token = token
	}
}

// WithProvider selects the tile server configuration for provider URLs, e.g. "mapbox", "maptiler" or "maplibre"
func WithProvider(provider string) Option {
	return func(o *mapOptions) {
		o.provider = provider
	}
}

func WithFileSource(fileSource resource.FileSource) Option {
	return func(o *mapOptions) {
		o.fileSource = fileSource
	}
}

func WithRenderer(renderer maprenderer.MapRenderer) Option {
	return func(o *mapOptions) {
		o.renderer = renderer
	}
}

func WithLogObserver(observer LogObserver) Option {
	return func(o *mapOptions) {
		o.observer = observer
	}
}

func uint32OrDefault(val *uint32, defaultVal uint32) uint32 {
	if val == nil {
		return defaultVal
	}
	return *val
}

func float64OrDefault(val *float64, defaultVal float64) float64 {
	if val == nil {
		return defaultVal
	}
	return *val
}
