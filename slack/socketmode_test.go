package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

// socketFixture serves apps.connections.open plus one scripted websocket
// session. Later connection attempts are refused so a test observes a
// single pass through the script.
func socketFixture(t *testing.T, script func(ctx context.Context, conn *websocket.Conn)) *Client {
	t.Helper()
	var server *httptest.Server
	var opened atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/apps.connections.open", func(w http.ResponseWriter, r *http.Request) {
		if opened.Add(1) > 1 {
			w.Write([]byte(`{"ok":false,"error":"script_finished"}`))
			return
		}
		wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
		fmt.Fprintf(w, `{"ok":true,"url":%q}`, wsURL)
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept websocket: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "script done")
		script(r.Context(), conn)
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "xoxb-bot", "xapp-app")
}

func readAck(ctx context.Context, conn *websocket.Conn) (string, error) {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return "", err
	}
	var ack struct {
		EnvelopeID string `json:"envelope_id"`
	}
	if err := json.Unmarshal(data, &ack); err != nil {
		return "", err
	}
	return ack.EnvelopeID, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSocketModeDeliversUserMessages(t *testing.T) {
	acks := make(chan string, 4)
	client := socketFixture(t, func(ctx context.Context, conn *websocket.Conn) {
		conn.Write(ctx, websocket.MessageText, []byte(`{"type":"hello","num_connections":1}`))
		conn.Write(ctx, websocket.MessageText, []byte(`{"type":"events_api","envelope_id":"env-1",`+
			`"payload":{"type":"event_callback","event":{"type":"message","text":"!help","user":"U1","ts":"171.5","channel":"C1"}}}`))
		if id, err := readAck(ctx, conn); err == nil {
			acks <- id
		}
		conn.Write(ctx, websocket.MessageText, []byte(`{"type":"events_api","envelope_id":"env-2",`+
			`"payload":{"type":"event_callback","event":{"type":"message","text":"!board","bot_id":"B9","ts":"171.6","channel":"C1"}}}`))
		if id, err := readAck(ctx, conn); err == nil {
			acks <- id
		}
		conn.Write(ctx, websocket.MessageText, []byte(`{"type":"disconnect","reason":"test_complete"}`))
	})

	got := make(chan Message, 8)
	sm := NewSocketMode(client, func(_ context.Context, msg Message) { got <- msg }, nil, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- sm.Run(ctx) }()

	select {
	case msg := <-got:
		if msg.Text != "!help" || msg.Channel != "C1" || msg.TS != "171.5" || msg.User != "U1" {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-ctx.Done():
		t.Fatal("no message delivered before timeout")
	}

	if id := <-acks; id != "env-1" {
		t.Fatalf("first ack %q, want env-1", id)
	}
	if id := <-acks; id != "env-2" {
		t.Fatalf("bot envelopes still need their ack, got %q", id)
	}

	select {
	case msg := <-got:
		t.Fatalf("bot message slipped through the filter: %+v", msg)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	<-done
}

func TestSocketModeAllowsWhitelistedBot(t *testing.T) {
	client := socketFixture(t, func(ctx context.Context, conn *websocket.Conn) {
		conn.Write(ctx, websocket.MessageText, []byte(`{"type":"hello","num_connections":1}`))
		conn.Write(ctx, websocket.MessageText, []byte(`{"type":"events_api","envelope_id":"env-1",`+
			`"payload":{"type":"event_callback","event":{"type":"message","text":"!fast","bot_id":"B9","ts":"171.7","channel":"C2"}}}`))
		readAck(ctx, conn)
		conn.Write(ctx, websocket.MessageText, []byte(`{"type":"disconnect","reason":"test_complete"}`))
	})

	got := make(chan Message, 8)
	sm := NewSocketMode(client, func(_ context.Context, msg Message) { got <- msg }, []string{"B9"}, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- sm.Run(ctx) }()

	select {
	case msg := <-got:
		if msg.Text != "!fast" || msg.Channel != "C2" {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-ctx.Done():
		t.Fatal("whitelisted bot message was not delivered")
	}

	cancel()
	<-done
}
