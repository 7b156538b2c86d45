package mgl

import (
	"math"

	"github.com/jamesrr39/gomgl/mercator"
	"github.com/jamesrr39/goutil/errorsx"
)

const (
	MaxRatio   = 8
	MaxBearing = 360
	MaxPitch   = 85
)

func validateDimension(name string, val uint32) errorsx.Error {
	if val == 0 {
		return outOfRange("%s must be greater than 0", name)
	}
	return nil
}

func validateSize(width, height uint32) errorsx.Error {
	err := validateDimension("width", width)
	if err != nil {
		return err
	}

	return validateDimension("height", height)
}

func validateRatio(ratio float64) errorsx.Error {
	if math.IsNaN(ratio) {
		return outOfRange("ratio must be a number")
	}
	if ratio <= 0 {
		return outOfRange("ratio must be greater than 0")
	}
	if ratio > MaxRatio {
		return outOfRange("ratio must be no greater than %d", MaxRatio)
	}
	return nil
}

// validateBetween checks min <= val <= max
func validateBetween(name string, val, min, max float64) errorsx.Error {
	if math.IsNaN(val) {
		return outOfRange("%s must be a number", name)
	}
	if val < min {
		return outOfRange("%s must be at least %v", name, min)
	}
	if val > max {
		return outOfRange("%s must be no greater than %v", name, max)
	}
	return nil
}

func validateZoom(zoom float64) errorsx.Error {
	return validateBetween("zoom", zoom, mercator.MinZoom, mercator.MaxZoom)
}

func validateBearing(bearing float64) errorsx.Error {
	return validateBetween("bearing", bearing, 0, MaxBearing)
}

func validatePitch(pitch float64) errorsx.Error {
	return validateBetween("pitch", pitch, 0, MaxPitch)
}

func validateCoordinate(name string, val float64) errorsx.Error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return invalidArgument("%s must be a finite number", name)
	}
	return nil
}

func validateLonLat(longitude, latitude float64) errorsx.Error {
	err := validateCoordinate("longitude", longitude)
	if err != nil {
		return err
	}

	return validateCoordinate("latitude", latitude)
}
