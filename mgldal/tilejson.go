package mgldal

// TileJSON describes a tileset, see https://github.com/mapbox/tilejson-spec
type TileJSON struct {
	TileJSON     string        `json:"tilejson"`
	Name         string        `json:"name,omitempty"`
	Description  string        `json:"description,omitempty"`
	Attribution  string        `json:"attribution,omitempty"`
	Format       string        `json:"format,omitempty"`
	Scheme       string        `json:"scheme,omitempty"`
	Tiles        []string      `json:"tiles"`
	MinZoom      *float64      `json:"minzoom,omitempty"`
	MaxZoom      *float64      `json:"maxzoom,omitempty"`
	Bounds       []float64     `json:"bounds,omitempty"`
	Center       []float64     `json:"center,omitempty"`
	VectorLayers []interface{} `json:"vector_layers,omitempty"`
}
