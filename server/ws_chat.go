package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"doccast/logger"
	"doccast/model"
)

const (
	wsWriteWait      = 30 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10 // must be shorter than wsPongWait
	wsMaxMessageSize = 8192
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // the gateway fronts a single first-party UI
	},
}

// chatSocket serializes writes to one websocket connection. The read loop
// and the ping goroutine both send frames; gorilla/websocket permits only
// one concurrent writer.
type chatSocket struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *chatSocket) writeJSON(payload interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := s.conn.WriteJSON(payload); err != nil {
		logger.Warn("[ChatWS] write failed", logger.ErrorField(err))
	}
}

func (s *chatSocket) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

// ChatSocketHandler relays assistant messages over a websocket. Each
// inbound frame is one ChatRequest; each reply is one ChatResponse. The
// connection is independent of the REST chat relay and carries no history
// of its own.
func (h *APIHandler) ChatSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("[ChatWS] upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()
	sock := &chatSocket{conn: conn}

	conn.SetReadLimit(wsMaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)

	// Keepalive pings; the read deadline above closes idle connections.
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sock.ping(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("[ChatWS] read error", logger.ErrorField(err))
			}
			return
		}

		var req model.ChatRequest
		if err := json.Unmarshal(data, &req); err != nil || req.Message == "" {
			sock.writeJSON(map[string]string{"error": "No message provided"})
			continue
		}

		reply, err := h.askAssistant(r, req.Message)
		if err != nil {
			logger.Error("[ChatWS] assistant call failed", logger.ErrorField(err))
			sock.writeJSON(map[string]string{"error": "Failed to get chatbot response"})
			continue
		}

		sock.writeJSON(model.ChatResponse{Success: true, Response: reply})
	}
}
