package mgldal

import (
	"encoding/json"

	"github.com/jamesrr39/goutil/errorsx"
)

// parseVectorLayers reads the vector_layers from the "json" metadata row of a vector MBTiles file
func parseVectorLayers(metadataJSON string) ([]interface{}, errorsx.Error) {
	var doc struct {
		VectorLayers []interface{} `json:"vector_layers"`
	}

	err := json.Unmarshal([]byte(metadataJSON), &doc)
	if err != nil {
		return nil, errorsx.Wrap(err, "metadata", "json")
	}

	return doc.VectorLayers, nil
}
