package styling

// BuiltinStyle is the fallback style. It draws the "data" GeoJSON source with a basic palette
// keyed on OpenStreetMap-like properties (landuse, natural, highway, railway, place).
func BuiltinStyle() *NamedStyle {
	return &NamedStyle{
		ID:         BUILTIN_STYLEID,
		Definition: builtinStyleDefinition,
	}
}

const builtinStyleDefinition = `{
  "version": 8,
  "name": "gomgl builtin",
  "sources": {
    "data": {
      "type": "geojson",
      "data": {"type": "FeatureCollection", "features": []}
    }
  },
  "layers": [
    {
      "id": "background",
      "type": "background",
      "paint": {"background-color": "#ffffff"}
    },
    {
      "id": "forest",
      "type": "fill",
      "source": "data",
      "filter": ["any", ["==", "natural", "wood"], ["==", "landuse", "forest"]],
      "paint": {"fill-color": "rgb(172,200,160)"}
    },
    {
      "id": "residential",
      "type": "fill",
      "source": "data",
      "filter": ["==", "landuse", "residential"],
      "paint": {"fill-color": "rgb(223,223,223)"}
    },
    {
      "id": "railway",
      "type": "line",
      "source": "data",
      "filter": ["has", "railway"],
      "paint": {"line-color": "rgb(190,190,190)", "line-width": 3}
    },
    {
      "id": "highway-path",
      "type": "line",
      "source": "data",
      "filter": ["in", "highway", "footway", "path", "steps"],
      "paint": {"line-color": "#00ff00", "line-dasharray": [1, 2, 3]}
    },
    {
      "id": "highway-cycleway",
      "type": "line",
      "source": "data",
      "filter": ["in", "highway", "bridleway", "cycleway"],
      "paint": {"line-color": "#00ff00", "line-dasharray": [20, 5]}
    },
    {
      "id": "highway-minor",
      "type": "line",
      "source": "data",
      "filter": ["in", "highway", "unclassified", "residential", "service", "track"],
      "paint": {"line-color": "#bcaca5"}
    },
    {
      "id": "highway-tertiary",
      "type": "line",
      "source": "data",
      "filter": ["==", "highway", "tertiary"],
      "paint": {"line-color": "#f38d9e", "line-width": 2}
    },
    {
      "id": "highway-secondary",
      "type": "line",
      "source": "data",
      "filter": ["==", "highway", "secondary"],
      "paint": {"line-color": "#f6f9bf", "line-width": 3}
    },
    {
      "id": "highway-primary",
      "type": "line",
      "source": "data",
      "filter": ["in", "highway", "primary", "primary_link"],
      "paint": {"line-color": "#ffd4a5", "line-width": 3}
    },
    {
      "id": "highway-trunk",
      "type": "line",
      "source": "data",
      "filter": ["==", "highway", "trunk"],
      "paint": {"line-color": "#ffae9b", "line-width": 4}
    },
    {
      "id": "highway-motorway",
      "type": "line",
      "source": "data",
      "filter": ["==", "highway", "motorway"],
      "paint": {"line-color": "#f38d9e", "line-width": 4}
    },
    {
      "id": "place",
      "type": "symbol",
      "source": "data",
      "filter": ["all", ["==", "$type", "Point"], ["has", "place"], ["has", "name"]],
      "layout": {"text-field": "{name}", "text-size": 16},
      "paint": {"text-color": "#000000"}
    }
  ]
}`
