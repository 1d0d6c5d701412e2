package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/warescan/warescan/internal/api/middleware"
	"github.com/warescan/warescan/internal/api/response"
	"github.com/warescan/warescan/internal/feed"
)

const streamHeartbeat = 30 * time.Second

// StreamHandler serves live snapshot feeds over Server-Sent Events.
// Clients receive the current snapshot on connect and a full replacement
// snapshot after every mutation, mirroring the replace-not-merge
// semantics of the feed hub.
type StreamHandler struct {
	hub *feed.Hub
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(hub *feed.Hub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// Scans handles GET /scans/stream.
func (h *StreamHandler) Scans(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, feed.TopicScans)
}

// Users handles GET /users/stream.
func (h *StreamHandler) Users(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, feed.TopicUsers)
}

func (h *StreamHandler) stream(w http.ResponseWriter, r *http.Request, topic string) {
	requestID := middleware.GetRequestID(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.Err(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "Streaming is not supported", requestID)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	snapshots, cancel := h.hub.Subscribe(topic)
	defer cancel()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case snapshot := <-snapshots:
			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", snapshot)
			flusher.Flush()
		}
	}
}
