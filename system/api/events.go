package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/timewave-computer/causality/system/executor"
)

// eventHub fans out TEG execution events to every connected websocket
// client, grounded on the domain stack's live-event-stream requirement
// for observability.
type eventHub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newEventHub() *eventHub {
	return &eventHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The admin event stream is consumed by operator tooling, not
			// browser pages, so any origin is accepted.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// programEvent is one message pushed over the event stream.
type programEvent struct {
	ProgramID string `json:"program_id"`
	Status    string `json:"status"`
	Errors    int    `json:"errors,omitempty"`
}

func (h *eventHub) serveWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	go h.drainClient(conn)
}

// drainClient discards inbound frames (the stream is push-only) until the
// client disconnects, then removes it from the broadcast set.
func (h *eventHub) drainClient(conn *websocket.Conn) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *eventHub) broadcastResult(id string, result *executor.TegResult) {
	status := "completed"
	if len(result.Errors) > 0 {
		status = "failed"
	}
	h.broadcast(programEvent{ProgramID: id, Status: status, Errors: len(result.Errors)})
}

func (h *eventHub) broadcast(evt programEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
