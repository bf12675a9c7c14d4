package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// dialHub starts hub behind an httptest server and connects n clients.
func dialHub(t *testing.T, hub *Hub, n int) []*websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conns := make([]*websocket.Conn, 0, n)
	for i := 0; i < n; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("Failed to connect client %d: %v", i, err)
		}
		t.Cleanup(func() { _ = conn.Close() })
		conns = append(conns, conn)
	}

	// Give time for registration
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() < n && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	return conns
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return event
}

func TestHub_PublishWithoutClients(t *testing.T) {
	hub := NewHub(quietLogger(), nil)
	go hub.Run()
	defer hub.Stop()

	// Must return immediately rather than block on the broadcast channel.
	hub.Publish(EventDeckValidated, map[string]bool{"isValid": true})

	var nilHub *Hub
	nilHub.Publish(EventDeckValidated, nil)
}

func TestHub_BroadcastToClients(t *testing.T) {
	hub := NewHub(quietLogger(), nil)
	go hub.Run()
	defer hub.Stop()

	conns := dialHub(t, hub, 3)
	if count := hub.ClientCount(); count != 3 {
		t.Fatalf("Expected 3 clients, got %d", count)
	}

	hub.Publish(EventBuildRecorded, map[string]string{"commander": "Krenko, Mob Boss"})

	for i, conn := range conns {
		event := readEvent(t, conn)
		if event.Type != EventBuildRecorded {
			t.Errorf("Client %d expected %s, got %s", i, EventBuildRecorded, event.Type)
		}
		data, ok := event.Data.(map[string]any)
		if !ok || data["commander"] != "Krenko, Mob Boss" {
			t.Errorf("Client %d got unexpected data %v", i, event.Data)
		}
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := NewHub(quietLogger(), nil)
	go hub.Run()
	defer hub.Stop()

	conns := dialHub(t, hub, 1)
	_ = conns[0].Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if count := hub.ClientCount(); count != 0 {
		t.Errorf("Expected 0 clients after disconnect, got %d", count)
	}
}

func TestHub_Stop(t *testing.T) {
	hub := NewHub(quietLogger(), nil)
	go hub.Run()

	hub.Stop()
	hub.Stop() // idempotent

	deadline := time.Now().Add(time.Second)
	for !hub.IsStopped() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !hub.IsStopped() {
		t.Fatal("hub should report stopped")
	}
	if hub.BroadcastEvent(Event{Type: EventMetaAnalyzed}) {
		t.Error("BroadcastEvent should fail after Stop")
	}

	rec := httptest.NewRecorder()
	hub.ServeWs(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 after stop, got %d", rec.Code)
	}
}

func TestHub_RejectsOrigin(t *testing.T) {
	hub := NewHub(quietLogger(), func(*http.Request) bool { return false })
	go hub.Run()
	defer hub.Stop()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	if _, _, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Error("expected handshake to be rejected")
	}
}

func TestHub_ServeWsAfterStopBeforeRun(t *testing.T) {
	hub := NewHub(quietLogger(), nil)
	// Run never started: the upgrade succeeds but registration sees done.
	hub.Stop()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the server to close the connection")
	}
	if count := hub.ClientCount(); count != 0 {
		t.Errorf("Expected 0 clients, got %d", count)
	}
}
