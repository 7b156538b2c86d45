package mapboxglstyle

import (
	"fmt"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	FilterOperatorEquals       = "=="
	FilterOperatorNotEqual     = "!="
	FilterOperatorLess         = "<"
	FilterOperatorLessEqual    = "<="
	FilterOperatorGreater      = ">"
	FilterOperatorGreaterEqual = ">="
	FilterOperatorAny          = "any"
	FilterOperatorAll          = "all"
	FilterOperatorNone         = "none"
	FilterOperatorIn           = "in"
	FilterOperatorNotIn        = "!in"
	FilterOperatorHas          = "has"
	FilterOperatorNotHas       = "!has"
)

const (
	FilterThingType           = "$type"
	FilterThingID             = "$id"
	FilterThingTypePoint      = "Point"
	FilterThingTypeLineString = "LineString"
	FilterThingTypePolygon    = "Polygon"
)

/*
	"filter": ["==", "$type", "Point"]

	"filter": ["all",["==","$type","Polygon"],["in","class","residential","suburb","neighbourhood"]]
*/

// Filter is a decoded filter JSON value; nil means no filter
type Filter interface{}

// ValidateFilter checks that a legacy filter is well formed. Expression filters only need to be an array starting with an operator.
func ValidateFilter(filter Filter) errorsx.Error {
	if filter == nil {
		return nil
	}

	base, ok := filter.([]interface{})
	if !ok || len(base) == 0 {
		return errorsx.Errorf("filter must be a non-empty array")
	}

	operator, ok := base[0].(string)
	if !ok {
		return errorsx.Errorf("filter operator must be a string")
	}

	if isExpressionFilter(base) {
		return nil
	}

	switch operator {
	case FilterOperatorAll, FilterOperatorAny, FilterOperatorNone:
		for _, subFilter := range base[1:] {
			err := ValidateFilter(subFilter)
			if err != nil {
				return err
			}
		}
		return nil
	case FilterOperatorEquals, FilterOperatorNotEqual, FilterOperatorLess, FilterOperatorLessEqual, FilterOperatorGreater, FilterOperatorGreaterEqual:
		if len(base) != 3 {
			return errorsx.Errorf("filter %q needs a key and a value", operator)
		}
		if !isScalar(base[2]) {
			return errorsx.Errorf("filter %q value must be a string, number, boolean or null", operator)
		}
		return nil
	case FilterOperatorIn, FilterOperatorNotIn:
		if len(base) < 2 {
			return errorsx.Errorf("filter %q needs a key", operator)
		}
		if _, ok := base[1].(string); !ok {
			return errorsx.Errorf("filter %q key must be a string", operator)
		}
		for _, val := range base[2:] {
			if !isScalar(val) {
				return errorsx.Errorf("filter %q values must be strings, numbers, booleans or null", operator)
			}
		}
		return nil
	case FilterOperatorHas, FilterOperatorNotHas:
		if len(base) != 2 {
			return errorsx.Errorf("filter %q needs exactly one key", operator)
		}
		if _, ok := base[1].(string); !ok {
			return errorsx.Errorf("filter %q key must be a string", operator)
		}
		return nil
	default:
		return errorsx.Errorf("unknown filter operator %q", operator)
	}
}

// isExpressionFilter tells legacy filters apart from expression filters.
// Legacy comparison filters always have a string key in second position.
func isExpressionFilter(base []interface{}) bool {
	operator := base[0].(string)
	switch operator {
	case FilterOperatorAll, FilterOperatorAny:
		for _, subFilter := range base[1:] {
			arr, ok := subFilter.([]interface{})
			if !ok {
				// e.g. ["all", true]
				return true
			}
			if len(arr) > 0 {
				if _, ok := arr[0].(string); ok && isExpressionFilter(arr) {
					return true
				}
			}
		}
		return false
	case FilterOperatorNone:
		return false
	case FilterOperatorEquals, FilterOperatorNotEqual, FilterOperatorLess, FilterOperatorLessEqual, FilterOperatorGreater, FilterOperatorGreaterEqual, FilterOperatorIn, FilterOperatorHas:
		if len(base) < 2 {
			return false
		}
		_, isKey := base[1].(string)
		return !isKey
	case FilterOperatorNotIn, FilterOperatorNotHas:
		return false
	default:
		return expressionOperators[operator]
	}
}

var expressionOperators = map[string]bool{
	"!": true, "get": true, "has": true, "match": true, "case": true, "coalesce": true,
	"step": true, "interpolate": true, "literal": true, "let": true, "var": true,
	"to-boolean": true, "to-number": true, "to-string": true, "boolean": true, "number": true,
	"string": true, "geometry-type": true, "id": true, "zoom": true, "feature-state": true,
	"within": true, "in": true, "index-of": true, "slice": true, "length": true,
}

func isScalar(val interface{}) bool {
	switch val.(type) {
	case nil, string, float64, bool:
		return true
	default:
		return false
	}
}

// IsFeatureShown evaluates a legacy filter against a GeoJSON feature. Expression filters are not evaluated and always show the feature.
func IsFeatureShown(filter Filter, feature *geojson.Feature) bool {
	if filter == nil {
		return true
	}

	base, ok := filter.([]interface{})
	if !ok || len(base) == 0 {
		return true
	}

	operator, ok := base[0].(string)
	if !ok || isExpressionFilter(base) {
		return true
	}

	switch operator {
	case FilterOperatorAll:
		for _, subFilter := range base[1:] {
			if !IsFeatureShown(subFilter, feature) {
				return false
			}
		}
		return true
	case FilterOperatorAny:
		for _, subFilter := range base[1:] {
			if IsFeatureShown(subFilter, feature) {
				return true
			}
		}
		return false
	case FilterOperatorNone:
		for _, subFilter := range base[1:] {
			if IsFeatureShown(subFilter, feature) {
				return false
			}
		}
		return true
	case FilterOperatorHas, FilterOperatorNotHas:
		if len(base) != 2 {
			return false
		}
		_, has := featureValue(feature, filterKey(base))
		if operator == FilterOperatorHas {
			return has
		}
		return !has
	case FilterOperatorIn, FilterOperatorNotIn:
		if len(base) < 2 {
			return false
		}
		val, has := featureValue(feature, filterKey(base))
		found := false
		if has {
			for _, candidate := range base[2:] {
				if valuesEqual(val, candidate) {
					found = true
					break
				}
			}
		}
		if operator == FilterOperatorIn {
			return found
		}
		return !found
	case FilterOperatorEquals, FilterOperatorNotEqual, FilterOperatorLess, FilterOperatorLessEqual, FilterOperatorGreater, FilterOperatorGreaterEqual:
		if len(base) != 3 {
			return false
		}
		val, has := featureValue(feature, filterKey(base))
		switch operator {
		case FilterOperatorEquals:
			return has && valuesEqual(val, base[2])
		case FilterOperatorNotEqual:
			return !has || !valuesEqual(val, base[2])
		}
		if !has {
			return false
		}
		cmp, comparable := compareValues(val, base[2])
		if !comparable {
			return false
		}
		switch operator {
		case FilterOperatorLess:
			return cmp < 0
		case FilterOperatorLessEqual:
			return cmp <= 0
		case FilterOperatorGreater:
			return cmp > 0
		default:
			return cmp >= 0
		}
	default:
		return true
	}
}

func featureValue(feature *geojson.Feature, key string) (interface{}, bool) {
	switch key {
	case FilterThingType:
		return geometryFilterType(feature.Geometry), true
	case FilterThingID:
		if feature.ID == nil {
			return nil, false
		}
		return normalizeScalar(feature.ID), true
	}

	val, ok := feature.Properties[key]
	if !ok {
		return nil, false
	}
	return normalizeScalar(val), true
}

func geometryFilterType(geom orb.Geometry) string {
	switch geom.(type) {
	case orb.Point, orb.MultiPoint:
		return FilterThingTypePoint
	case orb.LineString, orb.MultiLineString:
		return FilterThingTypeLineString
	case orb.Polygon, orb.MultiPolygon, orb.Ring, orb.Bound:
		return FilterThingTypePolygon
	default:
		return ""
	}
}

func normalizeScalar(val interface{}) interface{} {
	switch v := val.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float32:
		return float64(v)
	case uint64:
		return float64(v)
	default:
		return val
	}
}

func valuesEqual(a, b interface{}) bool {
	a = normalizeScalar(a)
	b = normalizeScalar(b)
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
	}
}

// compareValues compares two values of the same type. Values of different types are not comparable.
func compareValues(a, b interface{}) (int, bool) {
	a = normalizeScalar(a)
	b = normalizeScalar(b)
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

func filterKey(base []interface{}) string {
	key, _ := base[1].(string)
	return key
}
