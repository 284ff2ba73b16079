package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/modtoolkit/internal/server/httpserver/mw"
	"github.com/dmitrijs2005/modtoolkit/internal/server/models"
)

// WatchTools streams the caller's tool collection over SSE. The first event
// carries the current snapshot; every subsequent event carries the full
// collection as it stands after a change. The stream ends when the client
// disconnects.
func (h *Handler) WatchTools(w http.ResponseWriter, r *http.Request) {
	userID, _ := mw.UserID(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := h.hub.Subscribe(userID)
	defer cancel()

	// Initial snapshot so the client renders without waiting for a change.
	snapshot, err := h.tools.List(r.Context(), userID)
	if err != nil {
		h.logger.Error(r.Context(), "watch: initial snapshot failed", "user_id", userID, "error", err)
		writeError(w, err)
		return
	}
	if err := writeSnapshotEvent(w, snapshot); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, ok := <-ch:
			if !ok {
				return
			}
			if err := writeSnapshotEvent(w, snapshot); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSnapshotEvent(w http.ResponseWriter, snapshot []*models.Tool) error {
	if snapshot == nil {
		snapshot = []*models.Tool{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)
	return err
}
