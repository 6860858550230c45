package adapthttp

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"weightlog/internal/app"
	"weightlog/internal/domain"
)

type entryView struct {
	ID        int64   `json:"id"`
	Weight    float64 `json:"weight"`
	Timestamp int64   `json:"timestamp"`
	Display   string  `json:"display"`
}

func (s *Server) snapshotView(snap app.Snapshot) map[string]any {
	loc := s.weight.Location()
	items := make([]entryView, len(snap.Entries))
	for i, e := range snap.Entries {
		items[i] = entryView{
			ID:        e.ID,
			Weight:    e.Weight,
			Timestamp: e.Timestamp,
			Display:   domain.FormatTimestamp(e.Timestamp, loc),
		}
	}
	return map[string]any{"version": snap.Version, "items": items}
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		snap, err := s.timeline.Current(ctx)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.snapshotView(snap))

	case http.MethodPost:
		var body struct {
			Weight    float64 `json:"weight"`
			Timestamp *int64  `json:"timestamp"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if body.Timestamp == nil {
			writeCodedError(w, http.StatusBadRequest, "missing_timestamp", errors.New("timestamp is required"))
			return
		}
		id, err := s.weight.Record(ctx, body.Weight, *body.Timestamp)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": id})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleEntryByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/entries/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("invalid entry id"))
		return
	}
	if err := s.weight.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
