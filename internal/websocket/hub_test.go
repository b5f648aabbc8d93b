package websocket

import (
	"encoding/json"
	"testing"

	"github.com/mkeren/pawtrack/internal/logging"
)

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.send:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return msg
	default:
		t.Fatal("no message queued")
		return Message{}
	}
}

func TestNewMessageType(t *testing.T) {
	msg := NewMessage("event", "created", "e1", map[string]any{"family_total": 5})
	if msg.Type != "event_created" {
		t.Errorf("type = %q, want event_created", msg.Type)
	}
	if msg.ID != "e1" {
		t.Errorf("id = %q, want e1", msg.ID)
	}
}

func TestBroadcastScopedToHousehold(t *testing.T) {
	hub := NewHub(logging.Discard())

	c1 := NewClient(hub, nil, "h1")
	c2 := NewClient(hub, nil, "h1")
	other := NewClient(hub, nil, "h2")
	for _, c := range []*Client{c1, c2, other} {
		hub.Register(c)
	}

	hub.Broadcast("h1", NewMessage("event", "created", "e1", nil))

	for _, c := range []*Client{c1, c2} {
		msg := receive(t, c)
		if msg.Entity != "event" || msg.Action != "created" {
			t.Errorf("message = %+v", msg)
		}
	}
	select {
	case <-other.send:
		t.Error("client in another household received the broadcast")
	default:
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(logging.Discard())
	c := NewClient(hub, nil, "h1")
	hub.Register(c)

	// One past the buffer; the overflow message is dropped, not blocked on.
	for i := 0; i <= sendBufferSize; i++ {
		hub.Broadcast("h1", NewMessage("event", "created", "e", nil))
	}
	if got := len(c.send); got != sendBufferSize {
		t.Errorf("queued = %d, want %d", got, sendBufferSize)
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(logging.Discard())
	c := NewClient(hub, nil, "h1")

	hub.Register(c)
	if hub.ClientCount() != 1 {
		t.Fatalf("count = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(c)
	if hub.ClientCount() != 0 {
		t.Fatalf("count = %d, want 0", hub.ClientCount())
	}
	if _, open := <-c.send; open {
		t.Error("send channel must be closed on unregister")
	}

	// A second unregister is a no-op, not a double close.
	hub.Unregister(c)
}
