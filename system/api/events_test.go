package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestEventHubBroadcastsResultToConnectedClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := newEventHub()
	engine := gin.New()
	engine.GET("/ws", hub.serveWS)
	server := httptest.NewServer(engine)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// give the server goroutine a moment to register the client.
	time.Sleep(10 * time.Millisecond)

	hub.broadcast(programEvent{ProgramID: "p1", Status: "completed"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var evt programEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if evt.ProgramID != "p1" || evt.Status != "completed" {
		t.Fatalf("unexpected event: %+v", evt)
	}
}
