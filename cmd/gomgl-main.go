package main

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/gomgl/fonts"
	"github.com/jamesrr39/gomgl/mgl"
	"github.com/jamesrr39/gomgl/mgldal"
	"github.com/jamesrr39/gomgl/rasterrenderer"
	"github.com/jamesrr39/gomgl/resource"
	"github.com/jamesrr39/gomgl/styling"
	"github.com/jamesrr39/gomgl/styling/mapboxglstyle"
	"github.com/jamesrr39/gomgl/webservices"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/goutil/logpkg"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/pkg/profile"
)

const (
	DEFAULT_PORT     = 9000
	DEFAULT_ROOT_DIR = "~/.local/share/github.com/jamesrr39/gomgl/"
	tilesetsPath     = "/api/tilesets"
)

var logger *logpkg.Logger

func main() {
	verbose := kingpin.Flag("v", "verbose logging").Bool()

	setupRender()
	setupServe()

	kingpin.CommandLine.PreAction(func(ctx *kingpin.ParseContext) error {
		logLevel := logpkg.LogLevelInfo
		if *verbose {
			logLevel = logpkg.LogLevelDebug
		}
		logger = logpkg.NewLogger(os.Stderr, logLevel)
		return nil
	})

	kingpin.Parse()
}

func defaultPathsConfig() (*mgldal.PathsConfig, errorsx.Error) {
	return mgldal.NewPathsConfig(
		filepath.Join(DEFAULT_ROOT_DIR, "styles"),
		filepath.Join(DEFAULT_ROOT_DIR, "trace"),
	)
}

type renderFlags struct {
	width, height   *uint
	ratio           *float64
	lon, lat, zoom  *float64
	bearing, pitch  *float64
	bounds          *string
	padding         *float64
	token, provider *string
	shouldProfile   *bool
}

func setupRender() {
	cmd := kingpin.Command("render", "render a style to a PNG file")
	style := cmd.Arg("style", "style to render. Either a path to a style JSON file, or a URL (file://, http(s)://, mapbox://, maptiler://, maplibre://)").Required().String()
	outPath := cmd.Arg("out", "path of the PNG file to write").Required().String()
	flags := renderFlags{
		width:         cmd.Flag("width", "width of the image in logical pixels").Default(fmt.Sprintf("%d", mgl.DefaultWidth)).Uint(),
		height:        cmd.Flag("height", "height of the image in logical pixels").Default(fmt.Sprintf("%d", mgl.DefaultHeight)).Uint(),
		ratio:         cmd.Flag("ratio", "pixel ratio").Default("1").Float64(),
		lon:           cmd.Flag("lon", "longitude of the center").Default("0").Float64(),
		lat:           cmd.Flag("lat", "latitude of the center").Default("0").Float64(),
		zoom:          cmd.Flag("zoom", "zoom level").Default("0").Float64(),
		bearing:       cmd.Flag("bearing", "bearing in degrees").Default("0").Float64(),
		pitch:         cmd.Flag("pitch", "pitch in degrees").Default("0").Float64(),
		bounds:        cmd.Flag("bounds", "fit the map to these bounds, instead of using lon, lat and zoom. [xmin,ymin,xmax,ymax] Example: -1,50,1,52").String(),
		padding:       cmd.Flag("padding", "padding around the bounds, in logical pixels").Default("0").Float64(),
		token:         cmd.Flag("token", "API key for the tile provider").Envar("GOMGL_TOKEN").String(),
		provider:      cmd.Flag("provider", "tile provider (mapbox, maptiler, maplibre)").String(),
		shouldProfile: cmd.Flag("profile", "profile the render performance").Bool(),
	}
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		run := func() errorsx.Error {
			if *flags.shouldProfile {
				defer profile.Start(profile.CPUProfile).Stop()
			}

			startTime := time.Now()

			b, err := renderToPNG(*style, flags)
			if err != nil {
				return errorsx.Wrap(err)
			}

			err = errorsx.Wrap(ioutil.WriteFile(*outPath, b, 0644))
			if err != nil {
				return err
			}

			logger.Info("rendered %q to %q in %s", *style, *outPath, time.Since(startTime))
			return nil
		}

		err := run()
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	})
}

func renderToPNG(style string, flags renderFlags) ([]byte, errorsx.Error) {
	if !mgldal.IsURL(style) {
		b, err := ioutil.ReadFile(style)
		if err != nil {
			return nil, errorsx.Wrap(err, "path", style)
		}
		style = string(bytes.TrimSpace(b))
	}

	options := []mgl.Option{
		mgl.WithSize(uint32(*flags.width), uint32(*flags.height)),
		mgl.WithRatio(*flags.ratio),
		mgl.WithCenter(*flags.lon, *flags.lat),
		mgl.WithZoom(*flags.zoom),
		mgl.WithLogObserver(mgl.NewLoggerObserver(logger)),
	}
	if *flags.provider != "" {
		options = append(options, mgl.WithProvider(*flags.provider), mgl.WithToken(*flags.token))
	}

	m, err := mgl.NewMap(style, options...)
	if err != nil {
		return nil, err
	}
	defer m.Release()

	err = m.SetBearing(*flags.bearing)
	if err != nil {
		return nil, err
	}

	err = m.SetPitch(*flags.pitch)
	if err != nil {
		return nil, err
	}

	if *flags.bounds != "" {
		bounds, err := parseBounds(*flags.bounds)
		if err != nil {
			return nil, err
		}

		err = m.SetBounds(bounds[0], bounds[1], bounds[2], bounds[3], *flags.padding)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("rendering %s", m)

	return m.RenderPNG(context.Background())
}

func parseBounds(boundsStr string) ([]float64, errorsx.Error) {
	fragments := strings.Split(boundsStr, ",")
	if len(fragments) != 4 {
		return nil, errorsx.Errorf("expected 4 bounds, but found %d", len(fragments))
	}

	var bounds []float64
	for _, fragment := range fragments {
		bound, err := strconv.ParseFloat(strings.TrimSpace(fragment), 64)
		if err != nil {
			return nil, errorsx.Wrap(err, "bounds", boundsStr)
		}
		bounds = append(bounds, bound)
	}

	return bounds, nil
}

var addrHelp = fmt.Sprintf(
	`address to serve on. Ex: ':%d' listen on port %d to traffic from anywhere. 'localhost:%d' listen on port %d to traffic from localhost`,
	DEFAULT_PORT, DEFAULT_PORT, DEFAULT_PORT, DEFAULT_PORT,
)

func setupServe() {
	cmd := kingpin.Command("serve", "serve webserver")
	addr := cmd.Flag("addr", addrHelp).Default(fmt.Sprintf(":%d", DEFAULT_PORT)).String()
	stylesDir := cmd.Flag("styles-dir", "folder containing style definitions (*.json). The style ID is the file name without the extension").String()
	traceDir := cmd.Flag("trace-dir", "folder to write request traces to").String()
	defaultStyleID := cmd.Flag("default-style-id", "default style to render").Default(styling.BUILTIN_STYLEID).String()
	mbtilesPaths := cmd.Flag("mbtiles", "MBTiles file to serve. Can be given more than once").Strings()
	maxConcurrentRenders := cmd.Flag("max-concurrent-renders", "maximum amount of maps rendered at the same time").Default(fmt.Sprintf("%d", webservices.DefaultMaxConcurrentRenders)).Uint()
	token := cmd.Flag("token", "API key for the tile provider").Envar("GOMGL_TOKEN").String()
	provider := cmd.Flag("provider", "tile provider (mapbox, maptiler, maplibre)").String()
	shouldProfile := cmd.Flag("profile", "profile the request performance").Bool()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		run := func() errorsx.Error {
			pathsConfig, err := defaultPathsConfig()
			if err != nil {
				return err
			}

			if *stylesDir != "" || *traceDir != "" {
				flagPaths, err := mgldal.NewPathsConfig(*stylesDir, *traceDir)
				if err != nil {
					return err
				}
				if flagPaths.StylesDir != "" {
					pathsConfig.StylesDir = flagPaths.StylesDir
				}
				if flagPaths.TraceDir != "" {
					pathsConfig.TraceDir = flagPaths.TraceDir
				}
			}

			err = pathsConfig.EnsurePaths()
			if err != nil {
				return err
			}

			styleSet, err := loadStylesFromDir(pathsConfig.StylesDir, *defaultStyleID)
			if err != nil {
				return err
			}

			tilesets, err := openTilesets(*mbtilesPaths)
			if err != nil {
				return err
			}
			defer func() {
				for _, conn := range tilesets {
					conn.Close()
				}
			}()

			font, err := fonts.DefaultFont()
			if err != nil {
				return err
			}

			config := webservices.NewRenderConfig(
				resource.NewDefaultFileSource(gofs.NewOsFs(), http.DefaultClient),
				rasterrenderer.NewHeadlessFrontend(font),
				*maxConcurrentRenders,
				*shouldProfile,
			)
			config.Provider = *provider
			config.Token = *token

			router, err := createServer(logger, pathsConfig, styleSet, tilesets, config)
			if err != nil {
				return err
			}

			server := httpextra.NewServerWithTimeouts()
			server.Addr = *addr
			server.Handler = router

			logger.Info("about to start serving on %q", *addr)

			return errorsx.Wrap(server.ListenAndServe())
		}

		err := run()
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	})
}

// loadStylesFromDir loads every *.json file in the dir. Files that are not valid styles are skipped.
func loadStylesFromDir(dir, defaultStyleID string) (*styling.StyleSet, errorsx.Error) {
	fileInfos, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	styles := []styling.Style{styling.BuiltinStyle()}
	for _, fileInfo := range fileInfos {
		if fileInfo.IsDir() || filepath.Ext(fileInfo.Name()) != ".json" {
			continue
		}

		filePath := filepath.Join(dir, fileInfo.Name())
		style, err := loadStyle(filePath)
		if err != nil {
			logger.Error("error loading style from %q. Error: %q", filePath, err)
			continue
		}

		styles = append(styles, style)
	}

	sort.Slice(styles, func(a, b int) bool {
		return styles[a].GetStyleID() < styles[b].GetStyleID()
	})

	styleSet, err := styling.NewStyleSet(styles, defaultStyleID)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	logger.Info("loaded styles: %s", strings.Join(styleSet.GetAllStyleIDs(), ", "))

	return styleSet, nil
}

func loadStyle(filePath string) (styling.Style, errorsx.Error) {
	b, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	// parse the style up front, so that broken styles are found at startup instead of on the first request
	parsedStyle, parseErr := mapboxglstyle.Parse(bytes.NewReader(b))
	if parseErr != nil {
		return nil, errorsx.Wrap(parseErr)
	}

	for _, warning := range parsedStyle.Warnings() {
		logger.Warn("style %q: %s", filePath, warning)
	}

	return &styling.NamedStyle{
		ID:         strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath)),
		Definition: string(b),
	}, nil
}

// openTilesets opens the MBTiles files, keyed by file name without the extension
func openTilesets(paths []string) (map[string]*mgldal.MBTilesConn, errorsx.Error) {
	tilesets := make(map[string]*mgldal.MBTilesConn)
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if _, ok := tilesets[name]; ok {
			return nil, errorsx.Errorf("duplicate tileset name %q (from %q)", name, path)
		}

		conn, err := mgldal.OpenMBTiles(path)
		if err != nil {
			return nil, err
		}

		tilesets[name] = conn
	}

	return tilesets, nil
}

func createServer(logger *logpkg.Logger, pathsConfig *mgldal.PathsConfig, styleSet *styling.StyleSet, tilesets map[string]*mgldal.MBTilesConn, config *webservices.RenderConfig) (chi.Router, errorsx.Error) {
	traceFilePath := filepath.Join(pathsConfig.TraceDir, fmt.Sprintf("trace_%s.pbf", time.Now().Format("2006-01-02__03_04_05")))
	logger.Info("tracing at %q", traceFilePath)

	traceFile, err := os.Create(traceFilePath)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	tracer := tracing.NewTracer(traceFile)

	tilesetService := webservices.NewTilesetService(logger, tilesets, tilesetsPath)

	router := chi.NewRouter()
	router.Use(middleware.DefaultLogger)
	router.Use(tracing.Middleware(tracer))
	router.Route("/api/", func(r chi.Router) {
		r.Mount("/info", webservices.NewInfoService(logger, styleSet, tilesetService.Names()))
		r.Mount("/render", webservices.NewRenderService(logger, config))
		r.Mount("/static/", webservices.NewStaticService(logger, config, styleSet))
		r.Mount("/tiles/", webservices.NewTileService(logger, config, styleSet))
	})
	router.Mount(tilesetsPath, tilesetService)

	return router, nil
}
