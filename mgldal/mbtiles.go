package mgldal

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jamesrr39/gomgl/mercator"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// MBTilesConn reads an MBTiles file, see https://github.com/mapbox/mbtiles-spec
type MBTilesConn struct {
	path string
	db   *sqlx.DB
}

func OpenMBTiles(path string) (*MBTilesConn, errorsx.Error) {
	db, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, errorsx.Wrap(err, "path", path)
	}

	return &MBTilesConn{path, db}, nil
}

func (conn *MBTilesConn) Name() string {
	return fmt.Sprintf("mbtiles://%s", conn.path)
}

func (conn *MBTilesConn) Close() errorsx.Error {
	return errorsx.Wrap(conn.db.Close())
}

type metadataRow struct {
	Name  string `db:"name"`
	Value string `db:"value"`
}

func (conn *MBTilesConn) Metadata() (map[string]string, errorsx.Error) {
	var rows []*metadataRow
	err := conn.db.Select(&rows, `SELECT name, value FROM metadata`)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	metadata := make(map[string]string)
	for _, row := range rows {
		metadata[row.Name] = row.Value
	}

	return metadata, nil
}

// Tile returns the tile data for a tile in XYZ coordinates. MBTiles stores rows in TMS order, so the row is flipped.
func (conn *MBTilesConn) Tile(z, x, y uint32) ([]byte, errorsx.Error) {
	if !mercator.IsValidTile(x, y, z) {
		return nil, errorsx.Errorf("invalid tile %d/%d/%d", z, x, y)
	}

	var data []byte
	err := conn.db.Get(&data, `
		SELECT tile_data
		FROM tiles
		WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`,
		z, x, mercator.FlipY(y, z))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errorsx.Wrap(errorsx.ObjectNotFound, "tile", fmt.Sprintf("%d/%d/%d", z, x, y))
		}
		return nil, errorsx.Wrap(err)
	}

	return data, nil
}

// TileJSON builds TileJSON from the metadata table. tilesURL is the template clients should fetch tiles from.
func (conn *MBTilesConn) TileJSON(tilesURL string) (*TileJSON, errorsx.Error) {
	metadata, err := conn.Metadata()
	if err != nil {
		return nil, err
	}

	tileJSON := &TileJSON{
		TileJSON:    "2.2.0",
		Name:        metadata["name"],
		Description: metadata["description"],
		Attribution: metadata["attribution"],
		Format:      metadata["format"],
		Scheme:      "xyz",
		Tiles:       []string{tilesURL},
	}

	if val, ok := metadata["minzoom"]; ok {
		minZoom, parseErr := strconv.ParseFloat(val, 64)
		if parseErr != nil {
			return nil, errorsx.Wrap(parseErr, "metadata", "minzoom")
		}
		tileJSON.MinZoom = &minZoom
	}

	if val, ok := metadata["maxzoom"]; ok {
		maxZoom, parseErr := strconv.ParseFloat(val, 64)
		if parseErr != nil {
			return nil, errorsx.Wrap(parseErr, "metadata", "maxzoom")
		}
		tileJSON.MaxZoom = &maxZoom
	}

	if val, ok := metadata["bounds"]; ok {
		tileJSON.Bounds, err = parseFloatList(val, 4)
		if err != nil {
			return nil, errorsx.Wrap(err, "metadata", "bounds")
		}
	}

	if val, ok := metadata["center"]; ok {
		tileJSON.Center, err = parseFloatList(val, 3)
		if err != nil {
			return nil, errorsx.Wrap(err, "metadata", "center")
		}
	}

	if val, ok := metadata["json"]; ok {
		vectorLayers, err := parseVectorLayers(val)
		if err != nil {
			return nil, err
		}
		tileJSON.VectorLayers = vectorLayers
	}

	return tileJSON, nil
}

func parseFloatList(s string, expectedLen int) ([]float64, errorsx.Error) {
	fragments := strings.Split(s, ",")
	if len(fragments) != expectedLen {
		return nil, errorsx.Errorf("expected %d comma separated numbers but got %q", expectedLen, s)
	}

	var out []float64
	for _, fragment := range fragments {
		f, err := strconv.ParseFloat(strings.TrimSpace(fragment), 64)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
		out = append(out, f)
	}

	return out, nil
}
