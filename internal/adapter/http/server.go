// Package adapthttp is the driving HTTP adapter: a JSON API plus a
// server-sent-events stream of the entry timeline.
package adapthttp

import (
	"net/http"

	"go.uber.org/zap"

	"weightlog/internal/app"
	"weightlog/internal/chart"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	weight   *app.WeightService
	timeline *app.Timeline
	charts   *app.ChartsService
	webDir   string
	log      *zap.Logger

	chartCanvas chart.Canvas
}

// New creates a Server wired to the given application services. webDir may
// be empty to serve the API only.
func New(ws *app.WeightService, tl *app.Timeline, cs *app.ChartsService, webDir string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		weight:      ws,
		timeline:    tl,
		charts:      cs,
		webDir:      webDir,
		log:         log,
		chartCanvas: chart.Canvas{Width: 800, Height: 400},
	}
}

// WithChartSize sets the canvas used when a chart request omits width or
// height.
func (s *Server) WithChartSize(width, height int) *Server {
	if width > 0 && height > 0 {
		s.chartCanvas = chart.Canvas{Width: float64(width), Height: float64(height)}.Clamp()
	}
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/entries", s.handleEntries)
	api.HandleFunc("/entries/", s.handleEntryByID)
	api.HandleFunc("/entries/stream", s.handleEntriesStream)

	api.HandleFunc("/draft", s.handleDraft)
	api.HandleFunc("/draft/adjust", s.handleDraftAdjust)
	api.HandleFunc("/draft/date", s.handleDraftDate)
	api.HandleFunc("/draft/time", s.handleDraftTime)
	api.HandleFunc("/draft/save", s.handleDraftSave)

	api.HandleFunc("/charts/geometry", s.handleChartGeometry)
	api.HandleFunc("/charts/weight.svg", s.handleChartImage(chart.FormatSVG))
	api.HandleFunc("/charts/weight.png", s.handleChartImage(chart.FormatPNG))
	api.HandleFunc("/charts/baseline", s.handleChartBaseline)
	api.HandleFunc("/charts/zoom-in", s.handleChartZoom(s.charts.ZoomIn))
	api.HandleFunc("/charts/zoom-out", s.handleChartZoom(s.charts.ZoomOut))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.webDir != "" {
		root.Handle("/", spaFromDisk(s.webDir))
	}

	return s.loggingMiddleware(withNoCache(root))
}
