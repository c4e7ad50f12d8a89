package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings with this period to detect dead peers.
	pingPeriod = 54 * time.Second
)

// reloadEvent is pushed to connected browsers when a template changes,
// so open pages can refresh themselves.
type reloadEvent struct {
	Event    string `json:"event"`
	Template string `json:"template"`
}

// handleReload upgrades the connection and streams template-change
// events until the peer disconnects or the server stops.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		http.Error(w, "live reload unavailable", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	events, unsubscribe := s.engine.Subscribe()
	defer unsubscribe()
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := s.ping(ctx, conn); err != nil {
				return
			}

		case name := <-events:
			if err := s.push(ctx, conn, reloadEvent{Event: "template_changed", Template: name}); err != nil {
				return
			}
		}
	}
}

func (s *Server) ping(ctx context.Context, conn *websocket.Conn) error {
	pingCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	return conn.Ping(pingCtx)
}

func (s *Server) push(ctx context.Context, conn *websocket.Conn, event reloadEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	return conn.Write(writeCtx, websocket.MessageText, payload)
}
