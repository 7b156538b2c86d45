package webservices

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jamesrr39/gomgl/mgldal"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, b []byte) []byte {
	buf := bytes.NewBuffer(nil)
	writer := gzip.NewWriter(buf)
	_, err := writer.Write(b)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return buf.Bytes()
}

func newTestTilesetService(t *testing.T, gzippedTile []byte) *TilesetService {
	path := filepath.Join(t.TempDir(), "land.mbtiles")

	db, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)

	db.MustExec(`CREATE TABLE metadata (name text, value text)`)
	db.MustExec(`CREATE TABLE tiles (zoom_level integer, tile_column integer, tile_row integer, tile_data blob)`)
	db.MustExec(`INSERT INTO metadata (name, value) VALUES ('name', 'land'), ('format', 'pbf'), ('maxzoom', '4')`)

	// rows are stored in TMS order: XYZ 1/0/0 is row 1
	db.MustExec(`INSERT INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (1, 0, 1, ?)`, gzippedTile)
	db.MustExec(`INSERT INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (0, 0, 0, ?)`, []byte("plain tile"))
	require.NoError(t, db.Close())

	conn, err := mgldal.OpenMBTiles(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
	})

	return NewTilesetService(newTestLogger(), map[string]*mgldal.MBTilesConn{"land": conn}, "/api/tilesets")
}

func TestTilesetService_TileJSON(t *testing.T) {
	service := newTestTilesetService(t, gzipBytes(t, []byte("vector tile")))

	assert.Equal(t, []string{"land"}, service.Names())

	rec := httptest.NewRecorder()
	service.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com/land", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tileJSON mgldal.TileJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tileJSON))

	maxZoom := 4.0
	assert.Equal(t, mgldal.TileJSON{
		TileJSON: "2.2.0",
		Name:     "land",
		Format:   "pbf",
		Scheme:   "xyz",
		Tiles:    []string{"http://example.com/api/tilesets/land/{z}/{x}/{y}"},
		MaxZoom:  &maxZoom,
	}, tileJSON)
}

func TestTilesetService_Tile(t *testing.T) {
	gzippedTile := gzipBytes(t, []byte("vector tile"))
	service := newTestTilesetService(t, gzippedTile)

	rec := httptest.NewRecorder()
	service.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/land/1/0/0.pbf", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "application/x-protobuf", rec.Header().Get("Content-Type"))
	assert.Equal(t, gzippedTile, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	service.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/land/0/0/0", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "application/x-protobuf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "plain tile", rec.Body.String())
}

func TestTilesetService_errors(t *testing.T) {
	service := newTestTilesetService(t, gzipBytes(t, []byte("vector tile")))

	tests := []struct {
		path         string
		expectedCode int
	}{
		{"/missing", http.StatusNotFound},
		{"/missing/0/0/0.pbf", http.StatusNotFound},
		{"/land/1/1/1.pbf", http.StatusNotFound},
		{"/land/1/0/2.pbf", http.StatusBadRequest},
		{"/land/a/0/0.pbf", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			service.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}
