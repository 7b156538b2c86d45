package webservices

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/jamesrr39/gomgl/mercator"
	"github.com/jamesrr39/gomgl/mgl"
	"github.com/jamesrr39/gomgl/styling"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
)

const TileSize = 256

// TileService renders raster XYZ tiles of the loaded styles
type TileService struct {
	logger   *logpkg.Logger
	config   *RenderConfig
	styleSet *styling.StyleSet
	chi.Router
}

func NewTileService(logger *logpkg.Logger, config *RenderConfig, styleSet *styling.StyleSet) *TileService {
	ts := &TileService{logger, config, styleSet, chi.NewRouter()}

	ts.Get("/{styleId}/{z}/{x}/{y}", ts.handleGetTile)

	return ts
}

func (ts *TileService) handleGetTile(w http.ResponseWriter, r *http.Request) {
	style, err := getStyle(ts.styleSet, chi.URLParam(r, "styleId"))
	if err != nil {
		errorsx.HTTPError(w, ts.logger, errorsx.Wrap(err), http.StatusNotFound)
		return
	}

	z, x, y, ratio, err := parseTileCoords(chi.URLParam(r, "z"), chi.URLParam(r, "x"), chi.URLParam(r, "y"))
	if err != nil {
		errorsx.HTTPError(w, ts.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}

	if !mercator.IsValidTile(x, y, z) || z > mercator.MaxZoom {
		errorsx.HTTPError(w, ts.logger, newParamError("invalid tile %d/%d/%d", z, x, y), http.StatusBadRequest)
		return
	}

	ts.logger.Debug("serving tile z, x, y: %d %d %d (style %q)", z, x, y, style.GetStyleID())

	b, err := ts.config.renderPNG(r.Context(), ts.logger, ts.config.FileSource, style.GetDefinition(), tileMapOptions(z, x, y, ratio), nil)
	if err != nil {
		errorsx.HTTPError(w, ts.logger, errorsx.Wrap(err), statusCodeForError(err))
		return
	}

	writePNG(w, ts.logger, b)
}

// tileMapOptions sets up the camera so that the viewport covers exactly one tile.
// The world is mercator.TileSize wide at zoom 0, so the viewport is that size, and the ratio scales it down to TileSize pixels.
func tileMapOptions(z, x, y uint32, ratio float64) []mgl.Option {
	tilesAtZoom := float64(uint64(1) << z)
	lon, lat := mercator.Unproject((float64(x)+0.5)/tilesAtZoom, (float64(y)+0.5)/tilesAtZoom)

	return []mgl.Option{
		mgl.WithSize(mercator.TileSize, mercator.TileSize),
		mgl.WithRatio(ratio * TileSize / mercator.TileSize),
		mgl.WithCenter(lon, lat),
		mgl.WithZoom(float64(z)),
	}
}
