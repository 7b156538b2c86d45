package resource

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/jamesrr39/gomgl/mgldal"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/goutil/userextra"
)

// FileSource fetches styles and source data by URL.
// Provider URLs (mapbox://, etc) should be normalized with a TileServerOptions first.
type FileSource interface {
	Fetch(ctx context.Context, url string) ([]byte, errorsx.Error)
}

type DefaultFileSource struct {
	fs     gofs.Fs
	client httpextra.Doer
}

func NewDefaultFileSource(fs gofs.Fs, client httpextra.Doer) *DefaultFileSource {
	return &DefaultFileSource{fs, client}
}

func (s *DefaultFileSource) Fetch(ctx context.Context, url string) ([]byte, errorsx.Error) {
	resourceURL, err := mgldal.ParseResourceURL(url)
	if err != nil {
		return nil, err
	}

	switch resourceURL.Scheme {
	case mgldal.SchemeFile:
		return s.fetchFile(resourceURL.Path)
	case mgldal.SchemeHTTP, mgldal.SchemeHTTPS:
		return s.fetchHTTP(ctx, url)
	case mgldal.SchemeMBTiles:
		return fetchMBTilesTileJSON(resourceURL)
	default:
		return nil, errorsx.Errorf("cannot fetch %q: %s URLs must be normalized with a tile server configuration", url, resourceURL.Scheme)
	}
}

func (s *DefaultFileSource) fetchFile(path string) ([]byte, errorsx.Error) {
	expandedPath, err := userextra.ExpandUser(path)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}

	b, err := s.fs.ReadFile(expandedPath)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", expandedPath)
	}

	return b, nil
}

func (s *DefaultFileSource) fetchHTTP(ctx context.Context, url string) ([]byte, errorsx.Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errorsx.Wrap(err, "url", url)
	}
	defer resp.Body.Close()

	err = httpextra.CheckResponseCode(http.StatusOK, resp.StatusCode)
	if err != nil {
		return nil, errorsx.Wrap(err, "url", url, "body", httpextra.GetBodyOrErrorMsg(resp))
	}

	reader, err := httpextra.RemoveGzip(resp)
	if err != nil {
		return nil, errorsx.Wrap(err, "url", url)
	}
	defer reader.Close()

	b, err := ioutil.ReadAll(reader)
	if err != nil {
		return nil, errorsx.Wrap(err, "url", url)
	}

	return b, nil
}

func fetchMBTilesTileJSON(resourceURL mgldal.ResourceURL) ([]byte, errorsx.Error) {
	path, err := userextra.ExpandUser(resourceURL.Path)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", resourceURL.Path)
	}

	conn, openErr := mgldal.OpenMBTiles(path)
	if openErr != nil {
		return nil, openErr
	}
	defer conn.Close()

	tileJSON, tileJSONErr := conn.TileJSON(resourceURL.String() + "/{z}/{x}/{y}")
	if tileJSONErr != nil {
		return nil, tileJSONErr
	}

	b, err := json.Marshal(tileJSON)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return b, nil
}
