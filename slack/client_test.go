package slack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPostMessage(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = r.PostForm
		w.Write([]byte(`{"ok":true,"channel":"C1","ts":"1712345678.000100"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "xoxb-bot", "xapp-app")
	ts, err := client.PostMessage(context.Background(), "C1", "hello elves")
	if err != nil {
		t.Fatalf("post message: %v", err)
	}
	if ts != "1712345678.000100" {
		t.Fatalf("unexpected ts %q", ts)
	}
	if gotPath != "/chat.postMessage" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer xoxb-bot" {
		t.Fatalf("posting must use the bot token, got %q", gotAuth)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
	if got := gotForm["channel"]; len(got) != 1 || got[0] != "C1" {
		t.Fatalf("unexpected channel field %v", got)
	}
	if got := gotForm["text"]; len(got) != 1 || got[0] != "hello elves" {
		t.Fatalf("unexpected text field %v", got)
	}
	if _, ok := gotForm["thread_ts"]; ok {
		t.Fatalf("top-level message must not carry thread_ts")
	}
}

func TestPostThreadMessage(t *testing.T) {
	var gotThreadTS string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotThreadTS = r.PostForm.Get("thread_ts")
		w.Write([]byte(`{"ok":true,"ts":"1712345678.000200"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "xoxb-bot", "xapp-app")
	if _, err := client.PostThreadMessage(context.Background(), "C1", "1712345678.000100", "in thread"); err != nil {
		t.Fatalf("post thread message: %v", err)
	}
	if gotThreadTS != "1712345678.000100" {
		t.Fatalf("unexpected thread_ts %q", gotThreadTS)
	}
}

func TestPostMessageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "xoxb-bot", "xapp-app")
	_, err := client.PostMessage(context.Background(), "C-missing", "hello")
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("expected the api error code, got %v", err)
	}
}

func TestPostMessageThrottled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "xoxb-bot", "xapp-app")
	_, err := client.PostMessage(context.Background(), "C1", "hello")
	if err == nil || !strings.Contains(err.Error(), "retry after 30s") {
		t.Fatalf("expected throttle hint, got %v", err)
	}
}

func TestConnectionsOpen(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok":true,"url":"wss://wss-primary.slack.com/link/?ticket=abc"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "xoxb-bot", "xapp-app")
	url, err := client.ConnectionsOpen(context.Background())
	if err != nil {
		t.Fatalf("connections open: %v", err)
	}
	if gotPath != "/apps.connections.open" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer xapp-app" {
		t.Fatalf("socket mode must use the app token, got %q", gotAuth)
	}
	if url != "wss://wss-primary.slack.com/link/?ticket=abc" {
		t.Fatalf("unexpected url %q", url)
	}
}
