package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-wekbridge/pkg/motion"
)

func TestNewHub(t *testing.T) {
	h := New("monitor")

	if h.ClientCount() != 0 {
		t.Error("ClientCount should be 0 initially")
	}
	if h.IsRunning() {
		t.Error("hub should not be running before Run")
	}
}

func TestNewMessage_StampsTime(t *testing.T) {
	msg, err := NewMessage(Event{Type: FrameEvent, SessionID: "abc", Values: []float32{0.5}})
	if err != nil {
		t.Fatalf("NewMessage error: %v", err)
	}
	if msg.SessionID != "abc" {
		t.Errorf("SessionID = %q, want abc", msg.SessionID)
	}

	var ev Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if ev.Timestamp == 0 {
		t.Error("timestamp should be set")
	}
}

func TestBroadcast_NoClients(t *testing.T) {
	h := New("monitor")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	// Should not block or panic
	for i := 0; i < 10; i++ {
		h.Broadcast(Event{Type: FrameEvent})
	}
}

func TestBroadcast_QueueFullDrops(t *testing.T) {
	h := New("monitor") // not running: nothing drains the queue

	for i := 0; i < 300; i++ {
		h.Broadcast(Event{Type: FrameEvent})
	}
	if h.Dropped() != 300-256 {
		t.Errorf("Dropped = %d, want %d", h.Dropped(), 300-256)
	}
}

func TestClient_Wants(t *testing.T) {
	all := &Client{}
	one := &Client{session: "a"}

	if !all.wants(Message{SessionID: "b"}) {
		t.Error("unfiltered client should want every session")
	}
	if !one.wants(Message{SessionID: "a"}) || one.wants(Message{SessionID: "b"}) {
		t.Error("filtered client should only want its session")
	}
}

func TestMonitorWebSocket(t *testing.T) {
	h := New("monitor")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ws/monitor", h.Handler())

	go app.Listen(":18190")
	defer app.Shutdown()
	time.Sleep(100 * time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18190/ws/monitor?session=s1", nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()

	time.Sleep(50 * time.Millisecond)
	if h.ClientCount() != 1 {
		t.Fatalf("ClientCount = %d, want 1", h.ClientCount())
	}

	// Filtered out, then delivered
	h.Broadcast(Event{Type: FrameEvent, SessionID: "other", Modality: motion.Body})
	h.Broadcast(Event{Type: FrameEvent, SessionID: "s1", Modality: motion.Face, Values: []float32{0.25}})

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}

	var ev Event
	json.Unmarshal(data, &ev)
	if ev.SessionID != "s1" || ev.Modality != motion.Face || len(ev.Values) != 1 {
		t.Errorf("event = %+v, want the s1 face frame", ev)
	}

	ws.Close()
	time.Sleep(100 * time.Millisecond)
	if h.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0 after disconnect", h.ClientCount())
	}
}
