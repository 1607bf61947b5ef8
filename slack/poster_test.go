package slack

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"golang.org/x/time/rate"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
	"github.com/gcalmettes/christmas-elf-officer/core"
)

type postedMessage struct {
	Channel  string
	ThreadTS string
	Text     string
}

// newPostRecorder returns an unthrottled client against a fixture that
// records every chat.postMessage call and hands back increasing
// timestamps.
func newPostRecorder(t *testing.T) (*Client, func() []postedMessage) {
	t.Helper()
	var mu sync.Mutex
	var posts []postedMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		mu.Lock()
		posts = append(posts, postedMessage{
			Channel:  r.PostForm.Get("channel"),
			ThreadTS: r.PostForm.Get("thread_ts"),
			Text:     r.PostForm.Get("text"),
		})
		ts := fmt.Sprintf("100.%d", len(posts))
		mu.Unlock()
		fmt.Fprintf(w, `{"ok":true,"ts":%q}`, ts)
	}))
	t.Cleanup(server.Close)
	client := &Client{
		apiURL:   server.URL,
		botToken: "xoxb-bot",
		appToken: "xapp-app",
		http:     server.Client(),
		limiter:  rate.NewLimiter(rate.Inf, 0),
	}
	return client, func() []postedMessage {
		mu.Lock()
		defer mu.Unlock()
		return append([]postedMessage(nil), posts...)
	}
}

func TestPosterRoutesEvents(t *testing.T) {
	client, recorded := newPostRecorder(t)
	poster := NewPoster(client, "C-default", "C-mon", quietLogger())

	events := make(chan core.Event, 4)
	events <- core.PrivateUpdated{}
	events <- core.CommandReply{Channel: "C-ask", ThreadTS: "42.1", Text: "pong"}
	events <- core.SolutionsThreadToOpen{Day: 9}
	events <- core.GlobalHero{Name: "alice", Part: aoc.Part2, Rank: 3}
	close(events)

	poster.Run(context.Background(), events)

	posts := recorded()
	if len(posts) != 5 {
		t.Fatalf("expected 5 posts, got %d: %+v", len(posts), posts)
	}
	if posts[0].Channel != "C-mon" || !strings.Contains(posts[0].Text, "successfully updated") {
		t.Fatalf("heartbeat should land in the monitoring channel: %+v", posts[0])
	}
	if posts[1].Channel != "C-ask" || posts[1].ThreadTS != "42.1" || posts[1].Text != "pong" {
		t.Fatalf("command reply should answer in the asking thread: %+v", posts[1])
	}
	if posts[2].Channel != "C-default" || !strings.Contains(posts[2].Text, "Daily discussion thread for day 9") {
		t.Fatalf("solutions thread should open in the default channel: %+v", posts[2])
	}
	if posts[3].Channel != "C-default" || posts[3].ThreadTS != "100.3" || posts[3].Text != spoilerWarning {
		t.Fatalf("solutions thread must be seeded with the spoiler warning: %+v", posts[3])
	}
	if posts[4].Channel != "C-default" || !strings.Contains(posts[4].Text, "made it to the global leaderboard") {
		t.Fatalf("announcements should land in the default channel: %+v", posts[4])
	}
}

func TestPosterSkipsHeartbeatWithoutMonitoringChannel(t *testing.T) {
	client, recorded := newPostRecorder(t)
	poster := NewPoster(client, "C-default", "", quietLogger())

	events := make(chan core.Event, 1)
	events <- core.PrivateUpdated{}
	close(events)

	poster.Run(context.Background(), events)

	if posts := recorded(); len(posts) != 0 {
		t.Fatalf("heartbeat without a monitoring channel must not post: %+v", posts)
	}
}

func TestPosterSkipsEmptyRenders(t *testing.T) {
	client, recorded := newPostRecorder(t)
	poster := NewPoster(client, "C-default", "C-mon", quietLogger())

	events := make(chan core.Event, 1)
	events <- core.NewEntries{}
	close(events)

	poster.Run(context.Background(), events)

	if posts := recorded(); len(posts) != 0 {
		t.Fatalf("an empty update must not post: %+v", posts)
	}
}

type boardStub struct {
	snap *aoc.Snapshot
}

func (b boardStub) PrivateSnapshot() *aoc.Snapshot { return b.snap }

func TestCommandHandlerQueuesReply(t *testing.T) {
	events := make(chan core.Event, 1)
	handler := NewCommandHandler(boardStub{snap: aoc.NewSnapshot()}, events, quietLogger())

	handler(context.Background(), Message{Channel: "C-ask", TS: "42.9", Text: "!help"})

	select {
	case ev := <-events:
		reply, ok := ev.(core.CommandReply)
		if !ok {
			t.Fatalf("expected a command reply, got %T", ev)
		}
		if reply.Channel != "C-ask" || reply.ThreadTS != "42.9" {
			t.Fatalf("reply should thread under the asking message: %+v", reply)
		}
		if !strings.Contains(reply.Text, "CEO commands handbook") {
			t.Fatalf("help reply looks wrong: %q", reply.Text)
		}
	default:
		t.Fatal("no reply queued")
	}
}

func TestCommandHandlerIgnoresChatter(t *testing.T) {
	events := make(chan core.Event, 1)
	handler := NewCommandHandler(boardStub{snap: aoc.NewSnapshot()}, events, quietLogger())

	handler(context.Background(), Message{Channel: "C-ask", TS: "42.9", Text: "good morning everyone"})

	select {
	case ev := <-events:
		t.Fatalf("chatter must not produce a reply, got %T", ev)
	default:
	}
}
