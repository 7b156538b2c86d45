package mgldal

import (
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

type Scheme string

const (
	SchemeFile     Scheme = "file"
	SchemeHTTP     Scheme = "http"
	SchemeHTTPS    Scheme = "https"
	SchemeMBTiles  Scheme = "mbtiles"
	SchemeMapbox   Scheme = "mapbox"
	SchemeMapTiler Scheme = "maptiler"
	SchemeMapLibre Scheme = "maplibre"
)

type ResourceURL struct {
	Scheme Scheme
	Path   string
}

func (u ResourceURL) String() string {
	return string(u.Scheme) + ConnectionPathSeparator + u.Path
}

const ConnectionPathSeparator = "://"

// IsURL returns true if the string looks like a URL, i.e. it has a "scheme://" prefix
func IsURL(str string) bool {
	return strings.Contains(str, ConnectionPathSeparator)
}

func ParseResourceURL(str string) (ResourceURL, errorsx.Error) {
	idx := strings.Index(str, ConnectionPathSeparator)
	if idx < 0 {
		return ResourceURL{}, errorsx.Errorf("couldn't find connection path separator %q in URL %q", ConnectionPathSeparator, str)
	}

	scheme := Scheme(strings.ToLower(str[:idx]))
	switch scheme {
	case SchemeFile, SchemeHTTP, SchemeHTTPS, SchemeMBTiles, SchemeMapbox, SchemeMapTiler, SchemeMapLibre:
	default:
		return ResourceURL{}, errorsx.Errorf("unsupported URL scheme %q", scheme)
	}

	return ResourceURL{
		Scheme: scheme,
		Path:   str[idx+len(ConnectionPathSeparator):],
	}, nil
}
