package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"videoforge/internal/creator"
	"videoforge/internal/ports"
)

const progressPollInterval = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the member site on another origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleProgress streams status updates for a request over a websocket.
// The connection closes after the terminal status is delivered.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("request_id")

	if _, err := s.statuses.Get(r.Context(), requestID); err != nil {
		if errors.Is(err, ports.ErrStatusNotFound) {
			s.respondError(w, http.StatusNotFound, "İstek bulunamadı")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "Durum okunamadı")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Websocket upgrade failed", "request_id", requestID, "error", err)
		return
	}
	defer conn.Close()

	// The hijacked connection inherits the server write deadline, which
	// would kill streams outliving it. Renders run for minutes.
	conn.SetWriteDeadline(time.Time{})

	s.logger.Info("Progress stream opened", "request_id", requestID)
	s.metrics.IncrementCounter("http.progress.connections", nil)

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	var lastSent ports.StatusRecord
	for {
		record, err := s.statuses.Get(r.Context(), requestID)
		if err != nil {
			s.logger.Warn("Progress stream lost status record", "request_id", requestID, "error", err)
			return
		}

		if record != lastSent {
			if err := conn.WriteJSON(record); err != nil {
				s.logger.Info("Progress stream client gone", "request_id", requestID)
				return
			}
			lastSent = record
		}

		if record.Status == creator.StatusCompleted || record.Status == creator.StatusFailed {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, record.Status))
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
