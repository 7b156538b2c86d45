package mgl

import (
	"math"
	"sort"

	"github.com/jamesrr39/gomgl/maprenderer"
	"github.com/jamesrr39/gomgl/mglimage"
	"github.com/jamesrr39/goutil/errorsx"
)

// AddImage adds an image to the style, for use by e.g. "icon-image".
// pixels are unpremultiplied RGBA, width*height*4 bytes long. An image with the same name is replaced.
func (m *Map) AddImage(name string, pixels []byte, width, height uint32, ratio float64, sdf bool) errorsx.Error {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return outOfRange("ratio must be a number")
	}
	if ratio <= 0 {
		return outOfRange("ratio must be greater than 0")
	}

	err := validateSize(width, height)
	if err != nil {
		return err
	}

	img, err := mglimage.Premultiply(pixels, int(width), int(height))
	if err != nil {
		return invalidArgument("%s", err.Error())
	}

	err = m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	m.images[name] = &maprenderer.StyleImage{
		Image:      img,
		PixelRatio: ratio,
		SDF:        sdf,
	}

	return nil
}

func (m *Map) RemoveImage(name string) errorsx.Error {
	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	delete(m.images, name)
	return nil
}

// ListImages returns the names of the added images, sorted
func (m *Map) ListImages() ([]string, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	names := []string{}
	for name := range m.images {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}
