package mapboxglstyle

import (
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

type PropertyKind int

const (
	PropertyKindNumber PropertyKind = iota
	PropertyKindColor
	PropertyKindString
	PropertyKindBool
	PropertyKindNumberArray
	PropertyKindStringArray
	PropertyKindFormatted
	PropertyKindTransition
)

const transitionSuffix = "-transition"

type propertyTable map[string]PropertyKind

var paintProperties = map[LayerType]propertyTable{
	LayerTypeBackground: {
		"background-color":   PropertyKindColor,
		"background-opacity": PropertyKindNumber,
		"background-pattern": PropertyKindString,
	},
	LayerTypeFill: {
		"fill-antialias":        PropertyKindBool,
		"fill-opacity":          PropertyKindNumber,
		"fill-color":            PropertyKindColor,
		"fill-outline-color":    PropertyKindColor,
		"fill-translate":        PropertyKindNumberArray,
		"fill-translate-anchor": PropertyKindString,
		"fill-pattern":          PropertyKindString,
	},
	LayerTypeLine: {
		"line-opacity":          PropertyKindNumber,
		"line-color":            PropertyKindColor,
		"line-translate":        PropertyKindNumberArray,
		"line-translate-anchor": PropertyKindString,
		"line-width":            PropertyKindNumber,
		"line-gap-width":        PropertyKindNumber,
		"line-offset":           PropertyKindNumber,
		"line-blur":             PropertyKindNumber,
		"line-dasharray":        PropertyKindNumberArray,
		"line-pattern":          PropertyKindString,
		"line-gradient":         PropertyKindColor,
	},
	LayerTypeCircle: {
		"circle-radius":           PropertyKindNumber,
		"circle-color":            PropertyKindColor,
		"circle-blur":             PropertyKindNumber,
		"circle-opacity":          PropertyKindNumber,
		"circle-translate":        PropertyKindNumberArray,
		"circle-translate-anchor": PropertyKindString,
		"circle-pitch-scale":      PropertyKindString,
		"circle-pitch-alignment":  PropertyKindString,
		"circle-stroke-width":     PropertyKindNumber,
		"circle-stroke-color":     PropertyKindColor,
		"circle-stroke-opacity":   PropertyKindNumber,
	},
	LayerTypeSymbol: {
		"icon-opacity":          PropertyKindNumber,
		"icon-color":            PropertyKindColor,
		"icon-halo-color":       PropertyKindColor,
		"icon-halo-width":       PropertyKindNumber,
		"icon-halo-blur":        PropertyKindNumber,
		"icon-translate":        PropertyKindNumberArray,
		"icon-translate-anchor": PropertyKindString,
		"text-opacity":          PropertyKindNumber,
		"text-color":            PropertyKindColor,
		"text-halo-color":       PropertyKindColor,
		"text-halo-width":       PropertyKindNumber,
		"text-halo-blur":        PropertyKindNumber,
		"text-translate":        PropertyKindNumberArray,
		"text-translate-anchor": PropertyKindString,
	},
	LayerTypeRaster: {
		"raster-opacity":        PropertyKindNumber,
		"raster-hue-rotate":     PropertyKindNumber,
		"raster-brightness-min": PropertyKindNumber,
		"raster-brightness-max": PropertyKindNumber,
		"raster-saturation":     PropertyKindNumber,
		"raster-contrast":       PropertyKindNumber,
		"raster-resampling":     PropertyKindString,
		"raster-fade-duration":  PropertyKindNumber,
	},
	LayerTypeFillExtrusion: {
		"fill-extrusion-opacity":           PropertyKindNumber,
		"fill-extrusion-color":             PropertyKindColor,
		"fill-extrusion-translate":         PropertyKindNumberArray,
		"fill-extrusion-translate-anchor":  PropertyKindString,
		"fill-extrusion-pattern":           PropertyKindString,
		"fill-extrusion-height":            PropertyKindNumber,
		"fill-extrusion-base":              PropertyKindNumber,
		"fill-extrusion-vertical-gradient": PropertyKindBool,
	},
	LayerTypeHeatmap: {
		"heatmap-radius":    PropertyKindNumber,
		"heatmap-weight":    PropertyKindNumber,
		"heatmap-intensity": PropertyKindNumber,
		"heatmap-color":     PropertyKindColor,
		"heatmap-opacity":   PropertyKindNumber,
	},
	LayerTypeHillshade: {
		"hillshade-illumination-direction": PropertyKindNumber,
		"hillshade-illumination-anchor":    PropertyKindString,
		"hillshade-exaggeration":           PropertyKindNumber,
		"hillshade-shadow-color":           PropertyKindColor,
		"hillshade-highlight-color":        PropertyKindColor,
		"hillshade-accent-color":           PropertyKindColor,
	},
}

var layoutProperties = map[LayerType]propertyTable{
	LayerTypeBackground: {},
	LayerTypeFill: {
		"fill-sort-key": PropertyKindNumber,
	},
	LayerTypeLine: {
		"line-cap":         PropertyKindString,
		"line-join":        PropertyKindString,
		"line-miter-limit": PropertyKindNumber,
		"line-round-limit": PropertyKindNumber,
		"line-sort-key":    PropertyKindNumber,
	},
	LayerTypeCircle: {
		"circle-sort-key": PropertyKindNumber,
	},
	LayerTypeSymbol: {
		"symbol-placement":        PropertyKindString,
		"symbol-spacing":          PropertyKindNumber,
		"symbol-avoid-edges":      PropertyKindBool,
		"symbol-sort-key":         PropertyKindNumber,
		"symbol-z-order":          PropertyKindString,
		"icon-allow-overlap":      PropertyKindBool,
		"icon-ignore-placement":   PropertyKindBool,
		"icon-optional":           PropertyKindBool,
		"icon-rotation-alignment": PropertyKindString,
		"icon-size":               PropertyKindNumber,
		"icon-text-fit":           PropertyKindString,
		"icon-text-fit-padding":   PropertyKindNumberArray,
		"icon-image":              PropertyKindFormatted,
		"icon-rotate":             PropertyKindNumber,
		"icon-padding":            PropertyKindNumber,
		"icon-keep-upright":       PropertyKindBool,
		"icon-offset":             PropertyKindNumberArray,
		"icon-anchor":             PropertyKindString,
		"icon-pitch-alignment":    PropertyKindString,
		"text-pitch-alignment":    PropertyKindString,
		"text-rotation-alignment": PropertyKindString,
		"text-field":              PropertyKindFormatted,
		"text-font":               PropertyKindStringArray,
		"text-size":               PropertyKindNumber,
		"text-max-width":          PropertyKindNumber,
		"text-line-height":        PropertyKindNumber,
		"text-letter-spacing":     PropertyKindNumber,
		"text-justify":            PropertyKindString,
		"text-radial-offset":      PropertyKindNumber,
		"text-variable-anchor":    PropertyKindStringArray,
		"text-anchor":             PropertyKindString,
		"text-max-angle":          PropertyKindNumber,
		"text-writing-mode":       PropertyKindStringArray,
		"text-rotate":             PropertyKindNumber,
		"text-padding":            PropertyKindNumber,
		"text-keep-upright":       PropertyKindBool,
		"text-transform":          PropertyKindString,
		"text-offset":             PropertyKindNumberArray,
		"text-allow-overlap":      PropertyKindBool,
		"text-ignore-placement":   PropertyKindBool,
		"text-optional":           PropertyKindBool,
	},
	LayerTypeRaster:        {},
	LayerTypeFillExtrusion: {},
	LayerTypeHeatmap:       {},
	LayerTypeHillshade:     {},
}

// PaintPropertyKind looks up a paint property for a layer type. Transition properties (e.g. "fill-color-transition") are valid for every paint property.
func PaintPropertyKind(layerType LayerType, name string) (PropertyKind, bool) {
	table, ok := paintProperties[layerType]
	if !ok {
		return 0, false
	}

	if strings.HasSuffix(name, transitionSuffix) {
		_, ok := table[strings.TrimSuffix(name, transitionSuffix)]
		return PropertyKindTransition, ok
	}

	kind, ok := table[name]
	return kind, ok
}

// LayoutPropertyKind looks up a layout property for a layer type. "visibility" is valid for every layer type.
func LayoutPropertyKind(layerType LayerType, name string) (PropertyKind, bool) {
	table, ok := layoutProperties[layerType]
	if !ok {
		return 0, false
	}

	if name == "visibility" {
		return PropertyKindString, true
	}

	kind, ok := table[name]
	return kind, ok
}

// NormalizePropertyValue validates a property value and converts colors into ["rgba", r, g, b, a] form
func NormalizePropertyValue(kind PropertyKind, value interface{}) (interface{}, errorsx.Error) {
	if value == nil {
		return nil, nil
	}

	if kind == PropertyKindTransition {
		obj, ok := value.(map[string]interface{})
		if !ok {
			return nil, errorsx.Errorf("transition must be an object")
		}
		for key, val := range obj {
			if key != "duration" && key != "delay" {
				return nil, errorsx.Errorf("unknown transition key %q", key)
			}
			if _, ok := val.(float64); !ok {
				return nil, errorsx.Errorf("transition %s must be a number", key)
			}
		}
		return obj, nil
	}

	if kind == PropertyKindColor {
		return NormalizeColorValue(value)
	}

	if obj, ok := value.(map[string]interface{}); ok {
		fn, err := parseFunctionObject(obj)
		if err != nil {
			return nil, err
		}
		for _, stop := range fn.Stops {
			if !isConstantOfKind(kind, stop.Value) {
				return nil, errorsx.Errorf("invalid function stop value %v", stop.Value)
			}
		}
		return obj, nil
	}

	if isConstantOfKind(kind, value) {
		return value, nil
	}

	if arr, ok := value.([]interface{}); ok && isExpression(arr) {
		return value, nil
	}

	return nil, errorsx.Errorf("invalid value of type %T", value)
}

func isConstantOfKind(kind PropertyKind, value interface{}) bool {
	switch kind {
	case PropertyKindNumber:
		_, ok := value.(float64)
		return ok
	case PropertyKindString, PropertyKindFormatted:
		_, ok := value.(string)
		return ok
	case PropertyKindBool:
		_, ok := value.(bool)
		return ok
	case PropertyKindNumberArray:
		arr, ok := value.([]interface{})
		if !ok {
			return false
		}
		for _, item := range arr {
			if _, ok := item.(float64); !ok {
				return false
			}
		}
		return true
	case PropertyKindStringArray:
		arr, ok := value.([]interface{})
		if !ok {
			return false
		}
		for _, item := range arr {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}
