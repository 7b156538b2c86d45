package mapboxglstyle

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"

	"github.com/jamesrr39/goutil/errorsx"
)

// Style is a Mapbox GL / MapLibre style document. Sources and layers keep their document order.
type Style struct {
	Version int
	Name    string
	Center  []float64
	Zoom    *float64
	Bearing *float64
	Pitch   *float64
	Glyphs  string
	Sprite  interface{}

	sources  []*Source
	layers   []*Layer
	extra    map[string]json.RawMessage
	warnings []string
}

type styleJSON struct {
	Version int               `json:"version"`
	Name    string            `json:"name,omitempty"`
	Center  []float64         `json:"center,omitempty"`
	Zoom    *float64          `json:"zoom,omitempty"`
	Bearing *float64          `json:"bearing,omitempty"`
	Pitch   *float64          `json:"pitch,omitempty"`
	Glyphs  string            `json:"glyphs,omitempty"`
	Sprite  interface{}       `json:"sprite,omitempty"`
	Sources json.RawMessage   `json:"sources,omitempty"`
	Layers  []json.RawMessage `json:"layers,omitempty"`
}

var knownStyleKeys = map[string]bool{
	"version": true, "name": true, "center": true, "zoom": true, "bearing": true,
	"pitch": true, "glyphs": true, "sprite": true, "sources": true, "layers": true,
}

func NewEmptyStyle() *Style {
	return &Style{
		Version: 8,
		extra:   make(map[string]json.RawMessage),
	}
}

func Parse(reader io.Reader) (*Style, errorsx.Error) {
	data, err := ioutil.ReadAll(reader)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	var raw map[string]json.RawMessage
	err = json.Unmarshal(data, &raw)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	var sj styleJSON
	err = json.Unmarshal(data, &sj)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	style := &Style{
		Version: sj.Version,
		Name:    sj.Name,
		Center:  sj.Center,
		Zoom:    sj.Zoom,
		Bearing: sj.Bearing,
		Pitch:   sj.Pitch,
		Glyphs:  sj.Glyphs,
		Sprite:  sj.Sprite,
		extra:   make(map[string]json.RawMessage),
	}

	for key, val := range raw {
		if !knownStyleKeys[key] {
			style.extra[key] = val
		}
	}

	if len(sj.Sources) != 0 && string(sj.Sources) != "null" {
		sourceIDs, err := orderedKeys(sj.Sources)
		if err != nil {
			return nil, err
		}

		var sourcesMap map[string]json.RawMessage
		unmarshalErr := json.Unmarshal(sj.Sources, &sourcesMap)
		if unmarshalErr != nil {
			return nil, errorsx.Wrap(unmarshalErr)
		}

		for _, sourceID := range sourceIDs {
			source, err := ParseSource(sourceID, sourcesMap[sourceID])
			if err != nil {
				return nil, err
			}
			style.sources = append(style.sources, source)
		}
	}

	for _, layerData := range sj.Layers {
		layer, warnings, err := parseStyleLayer(layerData)
		if err != nil {
			return nil, err
		}

		style.warnings = append(style.warnings, warnings...)
		if layer == nil {
			continue
		}

		if style.GetLayer(layer.ID) != nil {
			return nil, errorsx.Errorf("duplicate layer id %q", layer.ID)
		}

		style.layers = append(style.layers, layer)
	}

	return style, nil
}

// orderedKeys returns the keys of a JSON object in document order
func orderedKeys(data json.RawMessage) ([]string, errorsx.Error) {
	decoder := json.NewDecoder(bytes.NewReader(data))

	token, err := decoder.Token()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, errorsx.Errorf("expected a JSON object")
	}

	var keys []string
	for decoder.More() {
		token, err = decoder.Token()
		if err != nil {
			return nil, errorsx.Wrap(err)
		}

		key, ok := token.(string)
		if !ok {
			return nil, errorsx.Errorf("expected an object key but got %v", token)
		}
		keys = append(keys, key)

		// skip the value
		var skip json.RawMessage
		err = decoder.Decode(&skip)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
	}

	return keys, nil
}

func (s *Style) Layers() []*Layer {
	return s.layers
}

func (s *Style) Sources() []*Source {
	return s.sources
}

// Warnings describes the parts of the document that were dropped when it was parsed
func (s *Style) Warnings() []string {
	return s.warnings
}

func (s *Style) LayerIDs() []string {
	ids := []string{}
	for _, layer := range s.layers {
		ids = append(ids, layer.ID)
	}
	return ids
}

func (s *Style) SourceIDs() []string {
	ids := []string{}
	for _, source := range s.sources {
		ids = append(ids, source.ID)
	}
	return ids
}

func (s *Style) GetLayer(id string) *Layer {
	for _, layer := range s.layers {
		if layer.ID == id {
			return layer
		}
	}
	return nil
}

func (s *Style) GetSource(id string) *Source {
	for _, source := range s.sources {
		if source.ID == id {
			return source
		}
	}
	return nil
}

// AddLayer appends a layer. If beforeID is not empty, the layer is inserted before that layer instead.
func (s *Style) AddLayer(layer *Layer, beforeID string) errorsx.Error {
	if s.GetLayer(layer.ID) != nil {
		return errorsx.Errorf("layer %s already exists", layer.ID)
	}

	if beforeID == "" {
		s.layers = append(s.layers, layer)
		return nil
	}

	for i, existing := range s.layers {
		if existing.ID == beforeID {
			s.layers = append(s.layers[:i], append([]*Layer{layer}, s.layers[i:]...)...)
			return nil
		}
	}

	return errorsx.Errorf("layer %s does not exist", beforeID)
}

// RemoveLayer removes a layer, returning false if it doesn't exist
func (s *Style) RemoveLayer(id string) bool {
	for i, layer := range s.layers {
		if layer.ID == id {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Style) AddSource(source *Source) errorsx.Error {
	if s.GetSource(source.ID) != nil {
		return errorsx.Errorf("source %s already exists", source.ID)
	}

	s.sources = append(s.sources, source)
	return nil
}

// RemoveSource removes a source. Sources still used by a layer can't be removed.
func (s *Style) RemoveSource(id string) (bool, errorsx.Error) {
	for _, layer := range s.layers {
		if layer.Source == id {
			return false, errorsx.Errorf("source %s is in use by layer %s", id, layer.ID)
		}
	}

	for i, source := range s.sources {
		if source.ID == id {
			s.sources = append(s.sources[:i], s.sources[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Style) MarshalJSON() ([]byte, error) {
	sourcesBuf := bytes.NewBufferString("{")
	for i, source := range s.sources {
		if i > 0 {
			sourcesBuf.WriteString(",")
		}
		key, err := json.Marshal(source.ID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(source)
		if err != nil {
			return nil, err
		}
		sourcesBuf.Write(key)
		sourcesBuf.WriteString(":")
		sourcesBuf.Write(val)
	}
	sourcesBuf.WriteString("}")

	layers := []json.RawMessage{}
	for _, layer := range s.layers {
		b, err := json.Marshal(layer)
		if err != nil {
			return nil, err
		}
		layers = append(layers, b)
	}

	b, err := json.Marshal(styleJSON{
		Version: s.Version,
		Name:    s.Name,
		Center:  s.Center,
		Zoom:    s.Zoom,
		Bearing: s.Bearing,
		Pitch:   s.Pitch,
		Glyphs:  s.Glyphs,
		Sprite:  s.Sprite,
		Sources: sourcesBuf.Bytes(),
		Layers:  layers,
	})
	if err != nil {
		return nil, err
	}

	if len(s.extra) == 0 {
		return b, nil
	}

	// unknown keys go at the end
	b = bytes.TrimSuffix(b, []byte("}"))
	for key, val := range s.extra {
		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		b = append(b, ',')
		b = append(b, keyBytes...)
		b = append(b, ':')
		b = append(b, val...)
	}
	b = append(b, '}')

	return b, nil
}
