package mgldal

import (
	"path/filepath"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestMBTiles(t *testing.T, metadata map[string]string) string {
	path := filepath.Join(t.TempDir(), "test.mbtiles")

	db, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	db.MustExec(`CREATE TABLE metadata (name text, value text)`)
	db.MustExec(`CREATE TABLE tiles (zoom_level integer, tile_column integer, tile_row integer, tile_data blob)`)

	for name, value := range metadata {
		db.MustExec(`INSERT INTO metadata (name, value) VALUES (?, ?)`, name, value)
	}

	// tile 1/0/0 (XYZ) is stored in TMS row 1
	db.MustExec(`INSERT INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)`, 1, 0, 1, []byte("tile-1-0-0"))

	return path
}

func TestMBTilesConn_TileJSON(t *testing.T) {
	path := createTestMBTiles(t, map[string]string{
		"name":    "test tiles",
		"format":  "pbf",
		"minzoom": "0",
		"maxzoom": "14",
		"bounds":  "-180,-85.0511,180,85.0511",
		"center":  "10.75, 59.91, 5",
		"json":    `{"vector_layers": [{"id": "water", "fields": {}}]}`,
	})

	conn, err := OpenMBTiles(path)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "mbtiles://"+path, conn.Name())

	tileJSON, err := conn.TileJSON("mbtiles://" + path + "/{z}/{x}/{y}")
	require.NoError(t, err)

	minZoom, maxZoom := 0.0, 14.0
	assert.Equal(t, &TileJSON{
		TileJSON:     "2.2.0",
		Name:         "test tiles",
		Format:       "pbf",
		Scheme:       "xyz",
		Tiles:        []string{"mbtiles://" + path + "/{z}/{x}/{y}"},
		MinZoom:      &minZoom,
		MaxZoom:      &maxZoom,
		Bounds:       []float64{-180, -85.0511, 180, 85.0511},
		Center:       []float64{10.75, 59.91, 5},
		VectorLayers: []interface{}{map[string]interface{}{"id": "water", "fields": map[string]interface{}{}}},
	}, tileJSON)
}

func TestMBTilesConn_TileJSON_badMetadata(t *testing.T) {
	path := createTestMBTiles(t, map[string]string{
		"bounds": "1,2,3",
	})

	conn, err := OpenMBTiles(path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.TileJSON("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 4 comma separated numbers")
}

func TestMBTilesConn_Tile(t *testing.T) {
	path := createTestMBTiles(t, nil)

	conn, err := OpenMBTiles(path)
	require.NoError(t, err)
	defer conn.Close()

	data, err := conn.Tile(1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("tile-1-0-0"), data)

	_, err = conn.Tile(1, 1, 1)
	require.Error(t, err)
	assert.Equal(t, errorsx.ObjectNotFound, errorsx.Cause(err))

	_, err = conn.Tile(1, 2, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tile 1/2/0")
}

func TestOpenMBTiles_notExist(t *testing.T) {
	_, err := OpenMBTiles(filepath.Join(t.TempDir(), "does-not-exist.mbtiles"))
	require.Error(t, err)
}
