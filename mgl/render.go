package mgl

import (
	"bytes"
	"context"
	"encoding/json"
	"image"

	"github.com/jamesrr39/gomgl/maprenderer"
	"github.com/jamesrr39/gomgl/mgldal"
	"github.com/jamesrr39/gomgl/mglimage"
	"github.com/jamesrr39/gomgl/resource"
	"github.com/jamesrr39/gomgl/styling/mapboxglstyle"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb/geojson"
)

// Load fetches the style, if it was given as a URL, and the resources its sources point to
func (m *Map) Load(ctx context.Context) errorsx.Error {
	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	return m.load(ctx)
}

// load must be called with the lock held
func (m *Map) load(ctx context.Context) errorsx.Error {
	endSpan := maprenderer.StartSpan(ctx, "load map resources")
	defer endSpan()

	if m.styleURL != "" {
		data, err := m.fetch(ctx, resource.ResourceKindStyle, m.styleURL)
		if err != nil {
			return err
		}

		style, err := mapboxglstyle.Parse(bytes.NewReader(data))
		if err != nil {
			return invalidArgument("style at %q could not be parsed: %s", m.styleURL, err.Error())
		}

		styleURL := m.styleURL
		m.style = style
		m.styleURL = ""
		m.emitStyleWarnings()

		edits := m.pendingStyleEdits
		m.pendingStyleEdits = nil
		for _, edit := range edits {
			err = edit()
			if err != nil {
				return errorsx.Wrap(err, "styleURL", styleURL, "reason", "change made before the style was loaded could not be applied")
			}
		}
	}

	for _, source := range m.style.Sources() {
		var err errorsx.Error
		switch source.Type() {
		case mapboxglstyle.SourceTypeGeoJSON:
			err = m.loadGeoJSONSource(ctx, source)
		case mapboxglstyle.SourceTypeVector, mapboxglstyle.SourceTypeRaster, mapboxglstyle.SourceTypeRasterDEM:
			err = m.loadTileSet(ctx, source)
		}
		if err != nil {
			return errorsx.Wrap(err, "sourceID", source.ID)
		}
	}

	return nil
}

func (m *Map) loadGeoJSONSource(ctx context.Context, source *mapboxglstyle.Source) errorsx.Error {
	if _, ok := m.sourceData[source.ID]; ok {
		return nil
	}

	fc, err := m.loadGeoJSON(ctx, source.Data())
	if err != nil {
		return err
	}

	m.sourceData[source.ID] = fc
	return nil
}

// loadGeoJSON parses the "data" of a GeoJSON source, which is either inline GeoJSON or a URL
func (m *Map) loadGeoJSON(ctx context.Context, data interface{}) (*geojson.FeatureCollection, errorsx.Error) {
	url, isURL := data.(string)
	if !isURL {
		fc, err := mgldal.ParseGeoJSONValue(data)
		if err != nil {
			return nil, invalidArgument("invalid GeoJSON: %s", err.Error())
		}
		return fc, nil
	}

	b, err := m.fetch(ctx, resource.ResourceKindSource, url)
	if err != nil {
		return nil, err
	}

	fc, err := mgldal.ParseGeoJSON(b)
	if err != nil {
		return nil, invalidArgument("invalid GeoJSON at %q: %s", url, err.Error())
	}

	return fc, nil
}

func (m *Map) loadTileSet(ctx context.Context, source *mapboxglstyle.Source) errorsx.Error {
	url := source.URL()
	if url == "" {
		return nil
	}

	if _, ok := m.tileSets[source.ID]; ok {
		return nil
	}

	b, err := m.fetch(ctx, resource.ResourceKindSource, url)
	if err != nil {
		return err
	}

	tileSet := new(mgldal.TileJSON)
	unmarshalErr := json.Unmarshal(b, tileSet)
	if unmarshalErr != nil {
		return invalidArgument("invalid TileJSON at %q: %s", url, unmarshalErr)
	}

	m.tileSets[source.ID] = tileSet
	m.debug(maprenderer.EventStyle, "source %q: loaded tileset %q with %d tile URLs", source.ID, tileSet.Name, len(tileSet.Tiles))
	return nil
}

// fetch normalizes provider URLs with the tile server configuration and fetches the resource
func (m *Map) fetch(ctx context.Context, kind resource.ResourceKind, url string) ([]byte, errorsx.Error) {
	resolvedURL := url
	if m.tileServerOptions != nil {
		var err errorsx.Error
		resolvedURL, err = m.tileServerOptions.NormalizeURL(kind, url, m.token)
		if err != nil {
			return nil, invalidArgument("%s", err.Error())
		}
	}

	endSpan := maprenderer.StartSpan(ctx, "fetch "+kind.String())
	defer endSpan()

	b, err := m.fileSource.Fetch(ctx, resolvedURL)
	if err != nil {
		// the resolved URL may carry the token, so only the URL as given is logged
		m.emit(maprenderer.LogMessage{
			Severity: maprenderer.SeverityError,
			Event:    maprenderer.EventHTTPRequest,
			Code:     -1,
			Message:  "failed to load " + kind.String() + " " + url,
		})
		return nil, err
	}

	m.debug(maprenderer.EventHTTPRequest, "loaded %s %s (%d bytes)", kind, url, len(b))
	return b, nil
}

// renderImage must be called with the lock held
func (m *Map) renderImage(ctx context.Context) (*image.RGBA, errorsx.Error) {
	err := m.load(ctx)
	if err != nil {
		return nil, err
	}

	endSpan := maprenderer.StartSpan(ctx, "render map")
	defer endSpan()

	return m.renderer.RenderMap(ctx, &maprenderer.RenderRequest{
		Style:      m.style,
		Transform:  m.transform.Clone(),
		Ratio:      m.ratio,
		SourceData: m.sourceData,
		TileSets:   m.tileSets,
		Images:     m.images,
		Log:        m.emit,
	})
}

// Render loads the map and renders a frame, discarding the image
func (m *Map) Render(ctx context.Context) errorsx.Error {
	err := m.lockIfNotReleased()
	if err != nil {
		return err
	}
	defer m.mu.Unlock()

	_, err = m.renderImage(ctx)
	return err
}

// RenderImage renders a frame. The image is alpha-premultiplied, and its size is the map size multiplied by the ratio.
func (m *Map) RenderImage(ctx context.Context) (*image.RGBA, errorsx.Error) {
	err := m.lockIfNotReleased()
	if err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	return m.renderImage(ctx)
}

// RenderPNG renders a frame and encodes it as a PNG
func (m *Map) RenderPNG(ctx context.Context) ([]byte, errorsx.Error) {
	img, err := m.RenderImage(ctx)
	if err != nil {
		return nil, err
	}

	return mglimage.EncodePNG(img)
}

// RenderBuffer renders a frame and returns its straight alpha RGBA bytes
func (m *Map) RenderBuffer(ctx context.Context) ([]byte, errorsx.Error) {
	img, err := m.RenderImage(ctx)
	if err != nil {
		return nil, err
	}

	return mglimage.Buffer(img), nil
}
