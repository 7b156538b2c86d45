package webservices

import (
	"io/ioutil"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/jamesrr39/gomgl/mgl"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
)

const maxStyleBodySize = 10 * 1024 * 1024

// RenderService renders a style sent in the request body
type RenderService struct {
	logger *logpkg.Logger
	config *RenderConfig
	chi.Router
}

func NewRenderService(logger *logpkg.Logger, config *RenderConfig) *RenderService {
	rs := &RenderService{logger, config, chi.NewRouter()}

	rs.Post("/", rs.handlePost)

	return rs
}

func (rs *RenderService) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxStyleBodySize))
	if err != nil {
		errorsx.HTTPError(w, rs.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}

	if len(body) == 0 {
		errorsx.HTTPError(w, rs.logger, newParamError("no style in request body"), http.StatusBadRequest)
		return
	}

	params, err := parseMapQuery(r.URL.Query())
	if err != nil {
		errorsx.HTTPError(w, rs.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}

	fileSource := &remoteOnlyFileSource{rs.config.FileSource}

	b, err := rs.config.renderPNG(r.Context(), rs.logger, fileSource, string(body), params.options, func(m *mgl.Map) errorsx.Error {
		return params.apply(m)
	})
	if err != nil {
		errorsx.HTTPError(w, rs.logger, errorsx.Wrap(err), statusCodeForError(err))
		return
	}

	writePNG(w, rs.logger, b)
}
