package mapboxglstyle

import (
	"encoding/json"
	"fmt"
	"image/color"
	"regexp"
	"sort"
	"strings"

	"github.com/jamesrr39/gomgl/styling"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb/geojson"
)

type LayerType string

const (
	LayerTypeBackground    LayerType = "background"
	LayerTypeFill          LayerType = "fill"
	LayerTypeLine          LayerType = "line"
	LayerTypeSymbol        LayerType = "symbol"
	LayerTypeRaster        LayerType = "raster"
	LayerTypeCircle        LayerType = "circle"
	LayerTypeFillExtrusion LayerType = "fill-extrusion"
	LayerTypeHeatmap       LayerType = "heatmap"
	LayerTypeHillshade     LayerType = "hillshade"
)

func (t LayerType) IsValid() bool {
	_, ok := paintProperties[t]
	return ok
}

type Layer struct {
	ID          string
	Type        LayerType
	Source      string
	SourceLayer string
	MinZoom     *float64
	MaxZoom     *float64
	Filter      Filter
	Layout      PropertyValues
	Paint       PropertyValues
	Metadata    interface{}

	// keys this package doesn't know about, kept so that they survive a round trip
	extra map[string]json.RawMessage
}

type layerJSON struct {
	ID          string         `json:"id"`
	Type        LayerType      `json:"type"`
	Source      string         `json:"source,omitempty"`
	SourceLayer string         `json:"source-layer,omitempty"`
	MinZoom     *float64       `json:"minzoom,omitempty"`
	MaxZoom     *float64       `json:"maxzoom,omitempty"`
	Filter      interface{}    `json:"filter,omitempty"`
	Layout      PropertyValues `json:"layout,omitempty"`
	Paint       PropertyValues `json:"paint,omitempty"`
	Metadata    interface{}    `json:"metadata,omitempty"`
}

var knownLayerKeys = map[string]bool{
	"id": true, "type": true, "source": true, "source-layer": true, "minzoom": true,
	"maxzoom": true, "filter": true, "layout": true, "paint": true, "metadata": true,
}

// ParseLayer decodes and validates a layer. Color values are normalized.
func ParseLayer(data []byte) (*Layer, errorsx.Error) {
	layer := new(Layer)
	err := json.Unmarshal(data, layer)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	validateErr := layer.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	return layer, nil
}

// parseStyleLayer parses a layer of a style document. Unlike ParseLayer it drops what it can't use:
// a layer of an unknown type is skipped (nil is returned) and unknown or invalid properties are removed.
// Each thing dropped is described by a warning.
func parseStyleLayer(data []byte) (*Layer, []string, errorsx.Error) {
	layer := new(Layer)
	err := json.Unmarshal(data, layer)
	if err != nil {
		return nil, nil, errorsx.Wrap(err)
	}

	if layer.Type != "" && !layer.Type.IsValid() {
		return nil, []string{fmt.Sprintf("layer %q has an unknown type %q and was skipped", layer.ID, layer.Type)}, nil
	}

	var warnings []string
	for _, name := range sortedPropertyNames(layer.Paint) {
		setErr := layer.SetPaintProperty(name, layer.Paint[name])
		if setErr != nil {
			delete(layer.Paint, name)
			warnings = append(warnings, fmt.Sprintf("layer %q: paint property %q was ignored: %s", layer.ID, name, setErr.Error()))
		}
	}

	for _, name := range sortedPropertyNames(layer.Layout) {
		setErr := layer.SetLayoutProperty(name, layer.Layout[name])
		if setErr != nil {
			delete(layer.Layout, name)
			warnings = append(warnings, fmt.Sprintf("layer %q: layout property %q was ignored: %s", layer.ID, name, setErr.Error()))
		}
	}

	validateErr := layer.Validate()
	if validateErr != nil {
		return nil, nil, validateErr
	}

	return layer, warnings, nil
}

func sortedPropertyNames(values PropertyValues) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Layer) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	var lj layerJSON
	err = json.Unmarshal(data, &lj)
	if err != nil {
		return err
	}

	extra := make(map[string]json.RawMessage)
	for key, val := range raw {
		if !knownLayerKeys[key] {
			extra[key] = val
		}
	}

	*l = Layer{
		ID:          lj.ID,
		Type:        lj.Type,
		Source:      lj.Source,
		SourceLayer: lj.SourceLayer,
		MinZoom:     lj.MinZoom,
		MaxZoom:     lj.MaxZoom,
		Filter:      lj.Filter,
		Layout:      lj.Layout,
		Paint:       lj.Paint,
		Metadata:    lj.Metadata,
		extra:       extra,
	}

	return nil
}

func (l *Layer) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(layerJSON{
		ID:          l.ID,
		Type:        l.Type,
		Source:      l.Source,
		SourceLayer: l.SourceLayer,
		MinZoom:     l.MinZoom,
		MaxZoom:     l.MaxZoom,
		Filter:      l.Filter,
		Layout:      l.Layout,
		Paint:       l.Paint,
		Metadata:    l.Metadata,
	})
	if err != nil {
		return nil, err
	}

	if len(l.extra) == 0 {
		return b, nil
	}

	var merged map[string]json.RawMessage
	err = json.Unmarshal(b, &merged)
	if err != nil {
		return nil, err
	}

	for key, val := range l.extra {
		merged[key] = val
	}

	return json.Marshal(merged)
}

// Validate checks the layer and normalizes its property values
func (l *Layer) Validate() errorsx.Error {
	if l.ID == "" {
		return errorsx.Errorf("layer must have an id")
	}

	if l.Type == "" {
		return errorsx.Errorf("layer %q must have a type", l.ID)
	}

	if !l.Type.IsValid() {
		return errorsx.Errorf("layer %q has an invalid type: %q", l.ID, l.Type)
	}

	if l.Type != LayerTypeBackground && l.Source == "" {
		return errorsx.Errorf("layer %q must have a source", l.ID)
	}

	if l.MaxZoom != nil && l.MinZoom != nil {
		if *l.MaxZoom < *l.MinZoom {
			return errorsx.Errorf("max zoom is smaller than min zoom")
		}
	}

	if l.MaxZoom != nil && (*l.MaxZoom < 0 || *l.MaxZoom > 24) {
		return errorsx.Errorf("max zoom must be between 0 and 24 (inclusive) but was %f", *l.MaxZoom)
	}

	if l.MinZoom != nil && (*l.MinZoom < 0 || *l.MinZoom > 24) {
		return errorsx.Errorf("min zoom must be between 0 and 24 (inclusive) but was %f", *l.MinZoom)
	}

	err := ValidateFilter(l.Filter)
	if err != nil {
		return errorsx.Wrap(err, "layer", l.ID)
	}

	for name, val := range l.Paint {
		err = l.SetPaintProperty(name, val)
		if err != nil {
			return errorsx.Wrap(err, "layer", l.ID)
		}
	}

	for name, val := range l.Layout {
		err = l.SetLayoutProperty(name, val)
		if err != nil {
			return errorsx.Wrap(err, "layer", l.ID)
		}
	}

	return nil
}

func (l *Layer) SetFilter(filter Filter) errorsx.Error {
	err := ValidateFilter(filter)
	if err != nil {
		return err
	}

	l.Filter = filter
	return nil
}

// SetPaintProperty sets a paint property. A nil value unsets it.
func (l *Layer) SetPaintProperty(name string, value interface{}) errorsx.Error {
	kind, ok := PaintPropertyKind(l.Type, name)
	if !ok {
		return errorsx.Errorf("%q is not a paint property of %s layers", name, l.Type)
	}

	normalized, err := NormalizePropertyValue(kind, value)
	if err != nil {
		return errorsx.Wrap(err, "property", name)
	}

	if normalized == nil {
		delete(l.Paint, name)
		return nil
	}

	if l.Paint == nil {
		l.Paint = make(PropertyValues)
	}
	l.Paint[name] = normalized
	return nil
}

func (l *Layer) GetPaintProperty(name string) (interface{}, errorsx.Error) {
	_, ok := PaintPropertyKind(l.Type, name)
	if !ok {
		return nil, errorsx.Errorf("%q is not a paint property of %s layers", name, l.Type)
	}

	return l.Paint[name], nil
}

// SetLayoutProperty sets a layout property. A nil value unsets it.
func (l *Layer) SetLayoutProperty(name string, value interface{}) errorsx.Error {
	kind, ok := LayoutPropertyKind(l.Type, name)
	if !ok {
		return errorsx.Errorf("%q is not a layout property of %s layers", name, l.Type)
	}

	if name == "visibility" && value != nil && value != VisibilityVisible && value != VisibilityNone {
		return errorsx.Errorf("visibility must be %q or %q", VisibilityVisible, VisibilityNone)
	}

	normalized, err := NormalizePropertyValue(kind, value)
	if err != nil {
		return errorsx.Wrap(err, "property", name)
	}

	if normalized == nil {
		delete(l.Layout, name)
		return nil
	}

	if l.Layout == nil {
		l.Layout = make(PropertyValues)
	}
	l.Layout[name] = normalized
	return nil
}

func (l *Layer) GetLayoutProperty(name string) (interface{}, errorsx.Error) {
	_, ok := LayoutPropertyKind(l.Type, name)
	if !ok {
		return nil, errorsx.Errorf("%q is not a layout property of %s layers", name, l.Type)
	}

	return l.Layout[name], nil
}

func (l *Layer) IsVisible() bool {
	return l.Layout.Visibility() != VisibilityNone
}

func (l *Layer) SetVisible(visible bool) {
	if l.Layout == nil {
		l.Layout = make(PropertyValues)
	}

	if visible {
		l.Layout["visibility"] = VisibilityVisible
		return
	}
	l.Layout["visibility"] = VisibilityNone
}

// IsVisibleAtZoomLevel checks the layer's zoom range: minzoom is inclusive, maxzoom exclusive
func (l *Layer) IsVisibleAtZoomLevel(zoomLevel float64) bool {
	if l.MinZoom != nil && zoomLevel < *l.MinZoom {
		return false
	}
	if l.MaxZoom != nil && zoomLevel >= *l.MaxZoom {
		return false
	}
	return true
}

func (l *Layer) IsFeatureShown(feature *geojson.Feature) bool {
	return IsFeatureShown(l.Filter, feature)
}

// Clone returns a copy of the layer that can be changed without affecting this one
func (l *Layer) Clone() *Layer {
	clone := *l
	clone.Layout = l.Layout.clone()
	clone.Paint = l.Paint.clone()
	return &clone
}

func colorOrDefault(c *Color, defaultColor Color, opacity float64) color.Color {
	if c == nil {
		c = &defaultColor
	}
	return c.NRGBA(opacity)
}

var defaultBlack = Color{A: 1}

// GetBackgroundColor returns the color to fill the whole map with, or nil if the background is fully transparent
func (l *Layer) GetBackgroundColor(zoomLevel float64) color.Color {
	opacity := l.Paint.NumberAtZoomLevel("background-opacity", zoomLevel, 1)
	c := colorOrDefault(l.Paint.ColorAtZoomLevel("background-color", zoomLevel), defaultBlack, opacity)
	if c.(color.NRGBA).A == 0 {
		return nil
	}
	return c
}

func (l *Layer) GetFillStyle(zoomLevel float64, layerIndex int) *styling.FillStyle {
	opacity := l.Paint.NumberAtZoomLevel("fill-opacity", zoomLevel, 1)
	if opacity <= 0 {
		return nil
	}

	fillStyle := &styling.FillStyle{
		FillColor: colorOrDefault(l.Paint.ColorAtZoomLevel("fill-color", zoomLevel), defaultBlack, opacity),
		ZIndex:    layerIndex,
	}

	outlineColor := l.Paint.ColorAtZoomLevel("fill-outline-color", zoomLevel)
	if outlineColor != nil {
		fillStyle.OutlineColor = outlineColor.NRGBA(opacity)
	}

	return fillStyle
}

func (l *Layer) GetLineStyle(zoomLevel float64, layerIndex int) *styling.LineStyle {
	opacity := l.Paint.NumberAtZoomLevel("line-opacity", zoomLevel, 1)
	lineWidth := l.Paint.NumberAtZoomLevel("line-width", zoomLevel, 1)
	if opacity <= 0 || lineWidth <= 0 {
		// nothing to see
		return nil
	}

	var dashPolicy []float64
	for _, dash := range l.Paint.NumberArray("line-dasharray") {
		// dash lengths are in line widths
		dashPolicy = append(dashPolicy, dash*lineWidth)
	}

	return &styling.LineStyle{
		LineColor:      colorOrDefault(l.Paint.ColorAtZoomLevel("line-color", zoomLevel), defaultBlack, opacity),
		LineWidth:      lineWidth,
		LineDashPolicy: dashPolicy,
		LineCap:        l.Layout.StringValue("line-cap"),
		LineJoin:       l.Layout.StringValue("line-join"),
		ZIndex:         layerIndex,
	}
}

func (l *Layer) GetCircleStyle(zoomLevel float64, layerIndex int) *styling.CircleStyle {
	opacity := l.Paint.NumberAtZoomLevel("circle-opacity", zoomLevel, 1)
	radius := l.Paint.NumberAtZoomLevel("circle-radius", zoomLevel, 5)
	if radius <= 0 {
		return nil
	}

	strokeOpacity := l.Paint.NumberAtZoomLevel("circle-stroke-opacity", zoomLevel, 1)

	return &styling.CircleStyle{
		Radius:      radius,
		FillColor:   colorOrDefault(l.Paint.ColorAtZoomLevel("circle-color", zoomLevel), defaultBlack, opacity),
		StrokeColor: colorOrDefault(l.Paint.ColorAtZoomLevel("circle-stroke-color", zoomLevel), defaultBlack, strokeOpacity),
		StrokeWidth: l.Paint.NumberAtZoomLevel("circle-stroke-width", zoomLevel, 0),
		ZIndex:      layerIndex,
	}
}

// GetSymbolStyle resolves the label and icon of a feature. It returns nil if there is neither.
func (l *Layer) GetSymbolStyle(properties map[string]interface{}, zoomLevel float64, layerIndex int) *styling.SymbolStyle {
	text := resolveTokens(l.Layout.StringValue("text-field"), properties)
	switch l.Layout.StringValue("text-transform") {
	case "uppercase":
		text = strings.ToUpper(text)
	case "lowercase":
		text = strings.ToLower(text)
	}

	iconImage := resolveTokens(l.Layout.StringValue("icon-image"), properties)

	if text == "" && iconImage == "" {
		return nil
	}

	textOpacity := l.Paint.NumberAtZoomLevel("text-opacity", zoomLevel, 1)

	symbolStyle := &styling.SymbolStyle{
		Text:          text,
		TextSize:      l.Layout.NumberAtZoomLevel("text-size", zoomLevel, 16),
		TextColor:     colorOrDefault(l.Paint.ColorAtZoomLevel("text-color", zoomLevel), defaultBlack, textOpacity),
		TextHaloWidth: l.Paint.NumberAtZoomLevel("text-halo-width", zoomLevel, 0),
		IconImage:     iconImage,
		IconSize:      l.Layout.NumberAtZoomLevel("icon-size", zoomLevel, 1),
		IconOpacity:   l.Paint.NumberAtZoomLevel("icon-opacity", zoomLevel, 1),
		IconColor:     colorOrDefault(l.Paint.ColorAtZoomLevel("icon-color", zoomLevel), defaultBlack, 1),
		ZIndex:        layerIndex,
	}

	haloColor := l.Paint.ColorAtZoomLevel("text-halo-color", zoomLevel)
	if haloColor != nil {
		symbolStyle.TextHaloColor = haloColor.NRGBA(textOpacity)
	}

	offset := l.Layout.NumberArray("text-offset")
	if len(offset) == 2 {
		symbolStyle.TextOffset = [2]float64{offset[0], offset[1]}
	}

	return symbolStyle
}

var tokenRegexp = regexp.MustCompile(`\{([^{}]+)\}`)

// resolveTokens replaces {property} tokens with the feature's property values
func resolveTokens(template string, properties map[string]interface{}) string {
	if template == "" {
		return ""
	}

	return tokenRegexp.ReplaceAllStringFunc(template, func(token string) string {
		key := token[1 : len(token)-1]
		val, ok := properties[key]
		if !ok || val == nil {
			return ""
		}
		return formatTokenValue(val)
	})
}

func formatTokenValue(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
