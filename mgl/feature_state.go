package mgl

import (
	"encoding/json"

	"github.com/jamesrr39/goutil/errorsx"
)

type featureKey struct {
	SourceID  string
	LayerID   string
	FeatureID string
}

// featureStateKey checks that the source and then the layer exist. It must be called with the lock held.
func (m *Map) featureStateKey(sourceID, layerID, featureID string) (featureKey, errorsx.Error) {
	if m.style.GetSource(sourceID) == nil {
		return featureKey{}, sourceNotFound(sourceID)
	}

	if m.style.GetLayer(layerID) == nil {
		return featureKey{}, notFound("%s is not a valid layer in map", layerID)
	}

	return featureKey{
		SourceID:  sourceID,
		LayerID:   layerID,
		FeatureID: featureID,
	}, nil
}

// GetFeatureState returns the state of a feature as a JSON object, or nil if the feature has no state
func (m *Map) GetFeatureState(sourceID, layerID, featureID string) (*string, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	key, err := m.featureStateKey(sourceID, layerID, featureID)
	if err != nil {
		return nil, err
	}

	state, ok := m.featureStates[key]
	if !ok {
		return nil, nil
	}

	return marshalOptional(state)
}

// SetFeatureState merges a JSON object into the state of a feature
func (m *Map) SetFeatureState(sourceID, layerID, featureID, state string) errorsx.Error {
	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	key, err := m.featureStateKey(sourceID, layerID, featureID)
	if err != nil {
		return err
	}

	var decoded map[string]interface{}
	unmarshalErr := json.Unmarshal([]byte(state), &decoded)
	if unmarshalErr != nil || decoded == nil {
		return invalidArgument("feature state must be a JSON object: %q", state)
	}

	existing, ok := m.featureStates[key]
	if !ok {
		existing = make(map[string]interface{})
		m.featureStates[key] = existing
	}

	for k, v := range decoded {
		existing[k] = v
	}

	return nil
}

// RemoveFeatureState removes one key from the state of a feature. An empty stateKey removes the whole state.
func (m *Map) RemoveFeatureState(sourceID, layerID, featureID, stateKey string) errorsx.Error {
	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	key, err := m.featureStateKey(sourceID, layerID, featureID)
	if err != nil {
		return err
	}

	if stateKey == "" {
		delete(m.featureStates, key)
		return nil
	}

	state, ok := m.featureStates[key]
	if !ok {
		return nil
	}

	delete(state, stateKey)
	if len(state) == 0 {
		delete(m.featureStates, key)
	}

	return nil
}
