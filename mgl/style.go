package mgl

import (
	"encoding/json"

	"github.com/jamesrr39/gomgl/mgldal"
	"github.com/jamesrr39/gomgl/styling/mapboxglstyle"
	"github.com/jamesrr39/goutil/errorsx"
)

func (m *Map) ListLayers() ([]string, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	return m.style.LayerIDs(), nil
}

func (m *Map) ListSources() ([]string, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	return m.style.SourceIDs(), nil
}

// AddSource adds a source from its JSON options, e.g. {"type": "geojson", "data": {...}}
func (m *Map) AddSource(sourceID, options string) errorsx.Error {
	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	return m.applyStyleEdit(func() errorsx.Error {
		source, err := mapboxglstyle.ParseSource(sourceID, []byte(options))
		if err != nil {
			return invalidArgument("invalid source: %s", err.Error())
		}

		err = m.style.AddSource(source)
		if err != nil {
			return invalidArgument("%s", err.Error())
		}

		return nil
	})
}

// RemoveSource removes a source. A source that is still used by a layer can't be removed.
func (m *Map) RemoveSource(sourceID string) errorsx.Error {
	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	return m.applyStyleEdit(func() errorsx.Error {
		removed, err := m.style.RemoveSource(sourceID)
		if err != nil {
			return invalidArgument("%s", err.Error())
		}

		if !removed {
			return sourceNotFound(sourceID)
		}

		delete(m.sourceData, sourceID)
		delete(m.tileSets, sourceID)
		return nil
	})
}

// AddLayer adds a layer from its JSON definition, on top of the existing layers
func (m *Map) AddLayer(options string) errorsx.Error {
	return m.AddLayerBefore(options, "")
}

// AddLayerBefore adds a layer below the layer beforeID
func (m *Map) AddLayerBefore(options, beforeID string) errorsx.Error {
	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	return m.applyStyleEdit(func() errorsx.Error {
		layer, err := mapboxglstyle.ParseLayer([]byte(options))
		if err != nil {
			return invalidArgument("invalid layer: %s", err.Error())
		}

		if beforeID != "" && m.style.GetLayer(beforeID) == nil {
			return layerNotFound(beforeID)
		}

		err = m.style.AddLayer(layer, beforeID)
		if err != nil {
			return invalidArgument("%s", err.Error())
		}

		return nil
	})
}

func (m *Map) RemoveLayer(layerID string) errorsx.Error {
	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	return m.applyStyleEdit(func() errorsx.Error {
		if !m.style.RemoveLayer(layerID) {
			return layerNotFound(layerID)
		}

		for key := range m.featureStates {
			if key.LayerID == layerID {
				delete(m.featureStates, key)
			}
		}

		return nil
	})
}

// applyStyleEdit runs edit against the current style. While a URL style has not been fetched yet,
// successful edits are kept and replayed onto the fetched style by load.
// It must be called with the lock held.
func (m *Map) applyStyleEdit(edit func() errorsx.Error) errorsx.Error {
	err := edit()
	if err != nil {
		return err
	}

	if m.styleURL != "" {
		m.pendingStyleEdits = append(m.pendingStyleEdits, edit)
	}

	return nil
}

// getLayer must be called with the lock held
func (m *Map) getLayer(layerID string) (*mapboxglstyle.Layer, errorsx.Error) {
	layer := m.style.GetLayer(layerID)
	if layer == nil {
		return nil, layerNotFound(layerID)
	}

	return layer, nil
}

func (m *Map) GetLayerJSON(layerID string) (string, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return "", err
	}
	defer m.mu.Unlock()

	layer, err := m.getLayer(layerID)
	if err != nil {
		return "", err
	}

	b, marshalErr := json.Marshal(layer)
	if marshalErr != nil {
		return "", errorsx.Wrap(marshalErr, "layerID", layerID)
	}

	return string(b), nil
}

// GetFilter returns the layer's filter as JSON, or nil if it has no filter
func (m *Map) GetFilter(layerID string) (*string, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	layer, err := m.getLayer(layerID)
	if err != nil {
		return nil, err
	}

	return marshalOptional(layer.Filter)
}

// SetFilter sets the layer's filter from JSON. A nil or empty filter removes it.
func (m *Map) SetFilter(layerID string, filter *string) errorsx.Error {
	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	return m.applyStyleEdit(func() errorsx.Error {
		layer, err := m.getLayer(layerID)
		if err != nil {
			return err
		}

		if filter == nil || *filter == "" {
			layer.Filter = nil
			return nil
		}

		var decoded interface{}
		unmarshalErr := json.Unmarshal([]byte(*filter), &decoded)
		if unmarshalErr != nil {
			return invalidArgument("invalid filter: %s", unmarshalErr)
		}

		if _, ok := decoded.([]interface{}); !ok {
			return invalidArgument("invalid filter: filter must be an array")
		}

		err = layer.SetFilter(decoded)
		if err != nil {
			return invalidArgument("invalid filter: %s", err.Error())
		}

		return nil
	})
}

// GetPaintProperty returns the property value as JSON, or nil if it is not set. Colors are returned as ["rgba", r, g, b, a].
func (m *Map) GetPaintProperty(layerID, property string) (*string, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	layer, err := m.getLayer(layerID)
	if err != nil {
		return nil, err
	}

	if _, ok := mapboxglstyle.PaintPropertyKind(layer.Type, property); !ok {
		return nil, nil
	}

	return marshalOptional(layer.Paint[property])
}

// SetPaintProperty sets a paint property from JSON. Color properties also accept a bare color string, e.g. #FF0000.
func (m *Map) SetPaintProperty(layerID, property, value string) errorsx.Error {
	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	return m.applyStyleEdit(func() errorsx.Error {
		layer, err := m.getLayer(layerID)
		if err != nil {
			return err
		}

		kind, ok := mapboxglstyle.PaintPropertyKind(layer.Type, property)
		if !ok {
			return invalidArgument("Invalid value for paint property %s", property)
		}

		decoded, err := decodePropertyValue(kind, value)
		if err != nil {
			return invalidArgument("Invalid value for paint property %s: %s", property, err.Error())
		}

		err = layer.SetPaintProperty(property, decoded)
		if err != nil {
			return invalidArgument("Invalid value for paint property %s: %s", property, err.Error())
		}

		return nil
	})
}

// GetLayoutProperty returns the property value as JSON, or nil if it is not set
func (m *Map) GetLayoutProperty(layerID, property string) (*string, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	layer, err := m.getLayer(layerID)
	if err != nil {
		return nil, err
	}

	if _, ok := mapboxglstyle.LayoutPropertyKind(layer.Type, property); !ok {
		return nil, nil
	}

	return marshalOptional(layer.Layout[property])
}

func (m *Map) SetLayoutProperty(layerID, property, value string) errorsx.Error {
	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	return m.applyStyleEdit(func() errorsx.Error {
		layer, err := m.getLayer(layerID)
		if err != nil {
			return err
		}

		kind, ok := mapboxglstyle.LayoutPropertyKind(layer.Type, property)
		if !ok {
			return invalidArgument("Invalid value for layout property %s", property)
		}

		decoded, err := decodePropertyValue(kind, value)
		if err != nil {
			return invalidArgument("Invalid value for layout property %s: %s", property, err.Error())
		}

		err = layer.SetLayoutProperty(property, decoded)
		if err != nil {
			return invalidArgument("Invalid value for layout property %s: %s", property, err.Error())
		}

		return nil
	})
}

func (m *Map) GetVisibility(layerID string) (bool, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return false, err
	}
	defer m.mu.Unlock()

	layer, err := m.getLayer(layerID)
	if err != nil {
		return false, err
	}

	return layer.IsVisible(), nil
}

func (m *Map) SetVisibility(layerID string, visible bool) errorsx.Error {
	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	return m.applyStyleEdit(func() errorsx.Error {
		layer, err := m.getLayer(layerID)
		if err != nil {
			return err
		}

		layer.SetVisible(visible)
		return nil
	})
}

// SetGeoJSON replaces the data of a GeoJSON source. The data can be a Geometry, Feature or FeatureCollection.
func (m *Map) SetGeoJSON(sourceID, geoJSON string) errorsx.Error {
	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	return m.applyStyleEdit(func() errorsx.Error {
		source := m.style.GetSource(sourceID)
		if source == nil {
			return sourceNotFound(sourceID)
		}

		if source.Type() != mapboxglstyle.SourceTypeGeoJSON {
			return invalidArgument("%s is not a GeoJSON source", sourceID)
		}

		fc, err := mgldal.ParseGeoJSON([]byte(geoJSON))
		if err != nil {
			return invalidArgument("invalid GeoJSON: %s", err.Error())
		}

		var decoded interface{}
		unmarshalErr := json.Unmarshal([]byte(geoJSON), &decoded)
		if unmarshalErr != nil {
			return errorsx.Wrap(unmarshalErr)
		}

		source.SetData(decoded)
		m.sourceData[sourceID] = fc
		return nil
	})
}

// decodePropertyValue decodes a JSON property value. Values that aren't JSON are taken as a color string for color properties.
func decodePropertyValue(kind mapboxglstyle.PropertyKind, value string) (interface{}, errorsx.Error) {
	var decoded interface{}
	err := json.Unmarshal([]byte(value), &decoded)
	if err == nil {
		return decoded, nil
	}

	if kind == mapboxglstyle.PropertyKindColor {
		return value, nil
	}

	return nil, errorsx.Wrap(err)
}

func marshalOptional(value interface{}) (*string, errorsx.Error) {
	if value == nil {
		return nil, nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	s := string(b)
	return &s, nil
}
