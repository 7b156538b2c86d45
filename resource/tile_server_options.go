package resource

import (
	"net/url"
	"strings"

	"github.com/jamesrr39/gomgl/mgldal"
	"github.com/jamesrr39/goutil/errorsx"
)

type ResourceKind int

const (
	ResourceKindStyle ResourceKind = iota + 1
	ResourceKindSource
	ResourceKindSprite
	ResourceKindGlyphs
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceKindStyle:
		return "style"
	case ResourceKindSource:
		return "source"
	case ResourceKindSprite:
		return "sprite"
	case ResourceKindGlyphs:
		return "glyphs"
	default:
		return "unknown"
	}
}

// URLTemplate maps "<scheme>://<domain>/<path>" onto the tile server.
// An empty DomainName matches any path, and "{path}" in the template is replaced with "/<path>".
type URLTemplate struct {
	DomainName string
	Template   string
}

type TileServerOptions struct {
	Name                string
	BaseURL             string
	URIScheme           mgldal.Scheme
	APIKeyParameterName string
	RequiresAPIKey      bool
	Templates           map[ResourceKind]URLTemplate
}

func MapboxConfiguration() *TileServerOptions {
	return &TileServerOptions{
		Name:                "mapbox",
		BaseURL:             "https://api.mapbox.com",
		URIScheme:           mgldal.SchemeMapbox,
		APIKeyParameterName: "access_token",
		RequiresAPIKey:      true,
		Templates: map[ResourceKind]URLTemplate{
			ResourceKindStyle:  {"styles", "/styles/v1{path}"},
			ResourceKindSource: {"", "/v4{path}.json"},
			ResourceKindSprite: {"sprites", "/styles/v1{path}/sprite"},
			ResourceKindGlyphs: {"fonts", "/fonts/v1{path}"},
		},
	}
}

func MapTilerConfiguration() *TileServerOptions {
	return &TileServerOptions{
		Name:                "maptiler",
		BaseURL:             "https://api.maptiler.com",
		URIScheme:           mgldal.SchemeMapTiler,
		APIKeyParameterName: "key",
		RequiresAPIKey:      true,
		Templates: map[ResourceKind]URLTemplate{
			ResourceKindStyle:  {"maps", "/maps{path}/style.json"},
			ResourceKindSource: {"sources", "/tiles{path}/tiles.json"},
			ResourceKindSprite: {"maps", "/maps{path}/sprite"},
			ResourceKindGlyphs: {"fonts", "/fonts{path}"},
		},
	}
}

func MapLibreConfiguration() *TileServerOptions {
	return &TileServerOptions{
		Name:      "maplibre",
		BaseURL:   "https://demotiles.maplibre.org",
		URIScheme: mgldal.SchemeMapLibre,
		Templates: map[ResourceKind]URLTemplate{
			ResourceKindStyle:  {"maps", "/styles{path}/style.json"},
			ResourceKindSource: {"tiles", "/tiles{path}.json"},
			ResourceKindSprite: {"sprites", "/styles{path}/sprite"},
			ResourceKindGlyphs: {"fonts", "/font{path}"},
		},
	}
}

// ConfigurationForProvider picks the tile server by a substring match on the provider name.
// ok is false when the provider isn't recognised.
func ConfigurationForProvider(provider string) (options *TileServerOptions, ok bool) {
	switch {
	case strings.Contains(provider, "mapbox"):
		return MapboxConfiguration(), true
	case strings.Contains(provider, "maptiler"):
		return MapTilerConfiguration(), true
	case strings.Contains(provider, "maplibre"):
		return MapLibreConfiguration(), true
	default:
		return nil, false
	}
}

// NormalizeURL turns a "<provider>://" URL into an HTTPS URL on the tile server.
// URLs with any other scheme are returned unchanged.
func (o *TileServerOptions) NormalizeURL(kind ResourceKind, rawURL, apiKey string) (string, errorsx.Error) {
	prefix := string(o.URIScheme) + mgldal.ConnectionPathSeparator
	if !strings.HasPrefix(rawURL, prefix) {
		return rawURL, nil
	}

	tmpl, ok := o.Templates[kind]
	if !ok {
		return "", errorsx.Errorf("%s does not serve %s URLs", o.Name, kind)
	}

	path := strings.TrimPrefix(rawURL, prefix)
	if tmpl.DomainName != "" {
		domainPrefix := tmpl.DomainName + "/"
		if !strings.HasPrefix(path, domainPrefix) {
			return "", errorsx.Errorf("invalid %s URL %q: expected %s%s", kind, rawURL, prefix, domainPrefix)
		}
		path = strings.TrimPrefix(path, domainPrefix)
	}

	if path == "" {
		return "", errorsx.Errorf("invalid %s URL %q: no path", kind, rawURL)
	}

	normalized := o.BaseURL + strings.Replace(tmpl.Template, "{path}", "/"+path, 1)

	if o.APIKeyParameterName != "" && apiKey != "" {
		separator := "?"
		if strings.Contains(normalized, "?") {
			separator = "&"
		}
		normalized += separator + o.APIKeyParameterName + "=" + url.QueryEscape(apiKey)
	}

	return normalized, nil
}
