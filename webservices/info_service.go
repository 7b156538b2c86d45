package webservices

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/gomgl/styling"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
)

func NewInfoService(logger *logpkg.Logger, styleSet *styling.StyleSet, tilesetNames []string) *InfoService {
	ws := &InfoService{logger, styleSet, tilesetNames, chi.NewRouter()}
	ws.Get("/", ws.handleGet)
	ws.Get("/styles/{styleId}", ws.handleGetStyle)

	return ws
}

type InfoService struct {
	logger       *logpkg.Logger
	styleSet     *styling.StyleSet
	tilesetNames []string
	chi.Router
}

type stylesType struct {
	DefaultStyleID string   `json:"defaultStyleId"`
	StyleIDs       []string `json:"styleIds"`
}

type infoType struct {
	Style    stylesType `json:"style"`
	Tilesets []string   `json:"tilesets"`
}

func (ws *InfoService) handleGet(w http.ResponseWriter, r *http.Request) {
	style := stylesType{
		ws.styleSet.GetDefaultStyle().GetStyleID(),
		ws.styleSet.GetAllStyleIDs(),
	}

	tilesetNames := ws.tilesetNames
	if tilesetNames == nil {
		tilesetNames = []string{}
	}

	render.JSON(w, r, infoType{style, tilesetNames})
}

// handleGetStyle returns the style document as it was loaded
func (ws *InfoService) handleGetStyle(w http.ResponseWriter, r *http.Request) {
	style, err := getStyle(ws.styleSet, chi.URLParam(r, "styleId"))
	if err != nil {
		errorsx.HTTPError(w, ws.logger, err, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(style.GetDefinition()))
}
