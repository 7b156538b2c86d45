package webservices

import (
	"context"
	"net"
	"net/http"

	"github.com/jamesrr39/gomgl/maprenderer"
	"github.com/jamesrr39/gomgl/mgl"
	"github.com/jamesrr39/gomgl/mgldal"
	"github.com/jamesrr39/gomgl/resource"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/semaphore"
	"github.com/pkg/profile"
)

const DefaultMaxConcurrentRenders = 4

// RenderConfig is shared by the services that render maps
type RenderConfig struct {
	FileSource resource.FileSource
	Renderer   maprenderer.MapRenderer
	Provider   string
	Token      string
	// limits how many maps are rendered at the same time
	Sema          *semaphore.Semaphore
	ShouldProfile bool
}

func NewRenderConfig(fileSource resource.FileSource, renderer maprenderer.MapRenderer, maxConcurrentRenders uint, shouldProfile bool) *RenderConfig {
	if fileSource == nil {
		fileSource = resource.NewDefaultFileSource(gofs.NewOsFs(), http.DefaultClient)
	}

	return &RenderConfig{
		FileSource:    fileSource,
		Renderer:      renderer,
		Sema:          semaphore.NewSemaphore(maxConcurrentRenders),
		ShouldProfile: shouldProfile,
	}
}

func (c *RenderConfig) mapOptions(logger *logpkg.Logger, fileSource resource.FileSource) []mgl.Option {
	options := []mgl.Option{
		mgl.WithLogObserver(mgl.NewLoggerObserver(logger)),
		mgl.WithFileSource(fileSource),
	}
	if c.Renderer != nil {
		options = append(options, mgl.WithRenderer(c.Renderer))
	}
	if c.Provider != "" {
		options = append(options, mgl.WithProvider(c.Provider), mgl.WithToken(c.Token))
	}
	return options
}

// renderPNG creates a map for the style, lets setup position the camera, and renders it
func (c *RenderConfig) renderPNG(ctx context.Context, logger *logpkg.Logger, fileSource resource.FileSource, style string, options []mgl.Option, setup func(m *mgl.Map) errorsx.Error) ([]byte, errorsx.Error) {
	if c.ShouldProfile {
		defer profile.Start().Stop()
	}

	m, err := mgl.NewMap(style, append(c.mapOptions(logger, fileSource), options...)...)
	if err != nil {
		return nil, err
	}
	defer m.Release()

	if setup != nil {
		err = setup(m)
		if err != nil {
			return nil, err
		}
	}

	c.Sema.Add()
	defer c.Sema.Done()

	return m.RenderPNG(ctx)
}

func writePNG(w http.ResponseWriter, logger *logpkg.Logger, b []byte) {
	w.Header().Set("Content-Type", "image/png")
	_, err := w.Write(b)
	if err != nil {
		switch err.(type) {
		case *net.OpError:
			// broken pipe (request cancelled). Do nothing
		default:
			logger.Warn("failed to write PNG response: %q", err)
		}
	}
}

// statusCodeForError maps argument errors to 4xx codes, and anything else to a 500
func statusCodeForError(err error) int {
	cause := errorsx.Cause(err)
	switch cause.(type) {
	case *mgl.OutOfRangeError, *mgl.InvalidArgumentError, *paramError:
		return http.StatusBadRequest
	case *mgl.NotFoundError:
		return http.StatusNotFound
	}

	if cause == errorsx.ObjectNotFound {
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

// remoteOnlyFileSource refuses to read from the server's own disk. It is used for styles sent by clients.
type remoteOnlyFileSource struct {
	fileSource resource.FileSource
}

func (s *remoteOnlyFileSource) Fetch(ctx context.Context, url string) ([]byte, errorsx.Error) {
	resourceURL, err := mgldal.ParseResourceURL(url)
	if err != nil {
		return nil, err
	}

	switch resourceURL.Scheme {
	case mgldal.SchemeHTTP, mgldal.SchemeHTTPS:
		return s.fileSource.Fetch(ctx, url)
	default:
		return nil, newParamError("%s URLs are not allowed in posted styles", resourceURL.Scheme)
	}
}
