package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"musicstats/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for simplicity
	},
}

// handleWebSocket pushes a summary on connect and after every reload. The
// connection's query string selects the range and truncation, as for
// /api/summary.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if _, err := s.queryConfig(query); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	metrics.WebSocketClients.Inc()
	defer metrics.WebSocketClients.Dec()

	updates := s.store.Subscribe()
	defer s.store.Unsubscribe(updates)

	// Detect client close; the read loop only drains control frames.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func() bool {
		summary, _, err := s.summarize(query)
		if err != nil {
			s.logger.Warn("WebSocket summary failed: %v", err)
			msg, _ := json.Marshal(map[string]string{"error": err.Error()})
			return conn.WriteMessage(websocket.TextMessage, msg) == nil
		}
		data, err := json.Marshal(summary)
		if err != nil {
			s.logger.Error("Failed to marshal summary: %v", err)
			return true
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Debug("WebSocket write failed: %v", err)
			return false
		}
		return true
	}

	if !send() {
		return
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return
			}
			if !send() {
				return
			}

		case <-ticker.C:
			// Send ping to keep connection alive
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-closed:
			return
		}
	}
}
