package webservices

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/jamesrr39/gomgl/mgl"
	"github.com/jamesrr39/gomgl/styling"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
)

// StaticService renders static images of the loaded styles
type StaticService struct {
	logger   *logpkg.Logger
	config   *RenderConfig
	styleSet *styling.StyleSet
	chi.Router
}

func NewStaticService(logger *logpkg.Logger, config *RenderConfig, styleSet *styling.StyleSet) *StaticService {
	ss := &StaticService{logger, config, styleSet, chi.NewRouter()}

	ss.Get("/{styleId}/{center}/{size}", ss.handleGetStatic)

	return ss
}

func (ss *StaticService) handleGetStatic(w http.ResponseWriter, r *http.Request) {
	style, err := getStyle(ss.styleSet, chi.URLParam(r, "styleId"))
	if err != nil {
		errorsx.HTTPError(w, ss.logger, errorsx.Wrap(err), http.StatusNotFound)
		return
	}

	params, err := parseCenterSegment(chi.URLParam(r, "center"))
	if err != nil {
		errorsx.HTTPError(w, ss.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}

	width, height, ratio, err := parseSizeSegment(chi.URLParam(r, "size"))
	if err != nil {
		errorsx.HTTPError(w, ss.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}

	options := append(params.options, mgl.WithSize(width, height), mgl.WithRatio(ratio))

	b, err := ss.config.renderPNG(r.Context(), ss.logger, ss.config.FileSource, style.GetDefinition(), options, func(m *mgl.Map) errorsx.Error {
		return params.apply(m)
	})
	if err != nil {
		errorsx.HTTPError(w, ss.logger, errorsx.Wrap(err), statusCodeForError(err))
		return
	}

	writePNG(w, ss.logger, b)
}

// getStyle returns the default style for the "default" ID
func getStyle(styleSet *styling.StyleSet, styleID string) (styling.Style, errorsx.Error) {
	if styleID == "default" {
		return styleSet.GetDefaultStyle(), nil
	}

	style := styleSet.GetStyleByID(styleID)
	if style == nil {
		return nil, errorsx.Errorf("couldn't get requested style %q (style not loaded)", styleID)
	}

	return style, nil
}
