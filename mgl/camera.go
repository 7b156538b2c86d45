package mgl

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
)

func (m *Map) Bearing() (float64, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return 0, err
	}
	defer m.mu.Unlock()

	return m.transform.Bearing, nil
}

// Center returns the longitude and latitude of the center of the map
func (m *Map) Center() (float64, float64, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return 0, 0, err
	}
	defer m.mu.Unlock()

	return m.transform.Center[0], m.transform.Center[1], nil
}

func (m *Map) Pitch() (float64, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return 0, err
	}
	defer m.mu.Unlock()

	return m.transform.Pitch, nil
}

func (m *Map) Zoom() (float64, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return 0, err
	}
	defer m.mu.Unlock()

	return m.transform.Zoom, nil
}

// Size returns the logical width and height of the map
func (m *Map) Size() (uint32, uint32, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return 0, 0, err
	}
	defer m.mu.Unlock()

	return m.transform.Width, m.transform.Height, nil
}

func (m *Map) Ratio() (float64, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return 0, err
	}
	defer m.mu.Unlock()

	return m.ratio, nil
}

func (m *Map) SetBearing(bearing float64) errorsx.Error {
	err := validateBearing(bearing)
	if err != nil {
		return err
	}

	err = m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	m.transform.Bearing = bearing
	return nil
}

func (m *Map) SetPitch(pitch float64) errorsx.Error {
	err := validatePitch(pitch)
	if err != nil {
		return err
	}

	err = m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	m.transform.Pitch = pitch
	return nil
}

func (m *Map) SetZoom(zoom float64) errorsx.Error {
	err := validateZoom(zoom)
	if err != nil {
		return err
	}

	err = m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	m.transform.JumpTo(m.transform.Center, zoom)
	return nil
}

// SetCenter moves the center of the map. The latitude is clamped to the range web mercator can show.
func (m *Map) SetCenter(longitude, latitude float64) errorsx.Error {
	err := validateLonLat(longitude, latitude)
	if err != nil {
		return err
	}

	err = m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	m.transform.JumpTo(orb.Point{longitude, latitude}, m.transform.Zoom)
	return nil
}

func (m *Map) SetSize(width, height uint32) errorsx.Error {
	err := validateSize(width, height)
	if err != nil {
		return err
	}

	err = m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	m.transform.Width = width
	m.transform.Height = height
	return nil
}

// SetBounds fits the camera to the bounds, with padding pixels of inset on every side.
// The corners may be given in any order.
func (m *Map) SetBounds(xmin, ymin, xmax, ymax, padding float64) errorsx.Error {
	for _, val := range []float64{xmin, ymin, xmax, ymax} {
		err := validateCoordinate("bounds", val)
		if err != nil {
			return err
		}
	}

	if !(padding >= 0) {
		return outOfRange("padding must be at least 0")
	}

	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	bound := orb.Bound{Min: orb.Point{xmin, ymin}, Max: orb.Point{xmin, ymin}}.Extend(orb.Point{xmax, ymax})

	center, zoom := m.transform.CameraForBounds(bound, padding)

	m.transform.JumpTo(center, zoom)
	return nil
}
