package webservices

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/gomgl/mercator"
	"github.com/jamesrr39/gomgl/mgldal"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
)

var gzipMagicBytes = []byte{0x1f, 0x8b}

// TilesetService serves MBTiles files as they are, along with their TileJSON
type TilesetService struct {
	logger    *logpkg.Logger
	tilesets  map[string]*mgldal.MBTilesConn
	mountPath string
	chi.Router
}

// NewTilesetService creates the service. mountPath is where the service is mounted, e.g. "/api/tilesets", and is used for the tile URLs in the TileJSON.
func NewTilesetService(logger *logpkg.Logger, tilesets map[string]*mgldal.MBTilesConn, mountPath string) *TilesetService {
	ts := &TilesetService{logger, tilesets, mountPath, chi.NewRouter()}

	ts.Get("/{tilesetName}", ts.handleGetTileJSON)
	ts.Get("/{tilesetName}/{z}/{x}/{y}", ts.handleGetTile)

	return ts
}

func (ts *TilesetService) Names() []string {
	names := []string{}
	for name := range ts.tilesets {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (ts *TilesetService) getTileset(name string) (*mgldal.MBTilesConn, errorsx.Error) {
	conn, ok := ts.tilesets[name]
	if !ok {
		return nil, errorsx.Wrap(errorsx.ObjectNotFound, "tileset", name)
	}

	return conn, nil
}

func (ts *TilesetService) handleGetTileJSON(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "tilesetName")
	conn, err := ts.getTileset(name)
	if err != nil {
		errorsx.HTTPError(w, ts.logger, err, http.StatusNotFound)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	tilesURL := fmt.Sprintf("%s://%s%s/%s/{z}/{x}/{y}", scheme, r.Host, ts.mountPath, name)

	tileJSON, err := conn.TileJSON(tilesURL)
	if err != nil {
		errorsx.HTTPError(w, ts.logger, err, http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, tileJSON)
}

func (ts *TilesetService) handleGetTile(w http.ResponseWriter, r *http.Request) {
	conn, err := ts.getTileset(chi.URLParam(r, "tilesetName"))
	if err != nil {
		errorsx.HTTPError(w, ts.logger, err, http.StatusNotFound)
		return
	}

	z, x, y, _, err := parseTileCoords(chi.URLParam(r, "z"), chi.URLParam(r, "x"), trimExtension(chi.URLParam(r, "y")))
	if err != nil {
		errorsx.HTTPError(w, ts.logger, err, http.StatusBadRequest)
		return
	}

	if !mercator.IsValidTile(x, y, z) {
		errorsx.HTTPError(w, ts.logger, newParamError("invalid tile %d/%d/%d", z, x, y), http.StatusBadRequest)
		return
	}

	data, err := conn.Tile(z, x, y)
	if err != nil {
		errorsx.HTTPError(w, ts.logger, err, statusCodeForError(err))
		return
	}

	// vector tiles are usually stored gzipped
	if bytes.HasPrefix(data, gzipMagicBytes) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "application/x-protobuf")
	} else {
		contentType := http.DetectContentType(data)
		if contentType == "application/octet-stream" || contentType == "text/plain; charset=utf-8" {
			contentType = "application/x-protobuf"
		}
		w.Header().Set("Content-Type", contentType)
	}

	_, writeErr := w.Write(data)
	if writeErr != nil {
		ts.logger.Warn("failed to write tile: %q", writeErr)
	}
}

func trimExtension(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[:i]
		}
	}
	return s
}
