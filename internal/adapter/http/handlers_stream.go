package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// keepAliveInterval is how often an idle stream sends a comment line.
const keepAliveInterval = 25 * time.Second

// handleEntriesStream pushes every timeline snapshot as a server-sent event,
// starting with the current one.
func (s *Server) handleEntriesStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	ctx := r.Context()
	sub, err := s.timeline.Subscribe(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case snap, ok := <-sub.Updates():
			if !ok {
				return
			}
			data, err := json.Marshal(s.snapshotView(snap))
			if err != nil {
				s.log.Error("encode snapshot", zap.Error(err))
				return
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: timeline\ndata: %s\n\n", snap.Version, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
