package adapthttp

import (
	"bytes"
	"context"
	"net/http"

	"go.uber.org/zap"

	"weightlog/internal/app"
	"weightlog/internal/chart"
)

func (s *Server) canvasFromQuery(r *http.Request) chart.Canvas {
	return chart.Canvas{
		Width:  float64(intQuery(r, "width", int(s.chartCanvas.Width))),
		Height: float64(intQuery(r, "height", int(s.chartCanvas.Height))),
	}.Clamp()
}

func (s *Server) handleChartGeometry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	g, ok, err := s.charts.Geometry(r.Context(), s.canvasFromQuery(r), floatQuery(r, "min"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"empty": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"empty": false, "geometry": g})
}

func (s *Server) handleChartImage(format chart.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		g, ok, err := s.charts.Geometry(r.Context(), s.canvasFromQuery(r), floatQuery(r, "min"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		var buf bytes.Buffer
		if err := chart.Render(&buf, g, format); err != nil {
			s.log.Error("render chart", zap.String("format", string(format)), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func (s *Server) handleChartBaseline(w http.ResponseWriter, r *http.Request) {
	var (
		b   app.Baseline
		err error
	)
	switch r.Method {
	case http.MethodGet:
		b, err = s.charts.Baseline(r.Context())
	case http.MethodDelete:
		b, err = s.charts.ResetBaseline(r.Context())
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleChartZoom(zoom func(context.Context) (app.Baseline, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		b, err := zoom(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}
