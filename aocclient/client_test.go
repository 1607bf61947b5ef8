package aocclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
)

const privateFixture = `{
  "event": "2022",
  "owner_id": 261166,
  "members": {
    "261166": {
      "name": "gcalmettes",
      "id": 261166,
      "global_score": 32,
      "local_score": 470,
      "stars": 3,
      "last_star_ts": 1670069286,
      "completion_day_level": {
        "1": {
          "1": {"get_star_ts": 1669871650, "star_index": 1},
          "2": {"get_star_ts": 1669871940, "star_index": 2}
        },
        "2": {
          "1": {"get_star_ts": 1669958100, "star_index": 5}
        }
      }
    },
    "999": {
      "name": null,
      "id": 999,
      "global_score": 0,
      "local_score": 12,
      "stars": 1,
      "last_star_ts": 1669873000,
      "completion_day_level": {
        "1": {
          "1": {"get_star_ts": 1669873000, "star_index": 3}
        }
      }
    }
  }
}`

const globalFixture = `<!DOCTYPE html>
<html><body><main>
<p>First hundred users to get <span class="leaderboard-daydesc-both">both stars</span> on Day 9:</p>
<div class="leaderboard-entry" data-user-id="123"><span class="leaderboard-position">  1)</span> <span class="leaderboard-time">Dec 09  00:05:33</span> <a href="https://example.com" target="_blank"><span class="leaderboard-userphoto"><img src="p.png"/></span>Speedy Coder</a> <a href="/2022/support" class="supporter-badge" target="_blank">(AoC++)</a></div>
<div class="leaderboard-entry" data-user-id="456"><span class="leaderboard-position">  2)</span> <span class="leaderboard-time">Dec 09  00:07:01</span> <span class="leaderboard-anon">(anonymous user #456)</span></div>
<p class="leaderboard-daydesc-first">First hundred users to get the first star on Day 9:</p>
<div class="leaderboard-entry" data-user-id="123"><span class="leaderboard-position">  1)</span> <span class="leaderboard-time">Dec 09  00:02:05</span> Speedy Coder</div>
</main></body></html>`

const challengeFixture = `<!DOCTYPE html>
<html><body><main><article class="day-desc"><h2>--- Day 9: Rope Bridge ---</h2><p>This rope bridge creaks...</p></article></main></body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "cookie-under-test", 261166, time.Second), server
}

func TestPrivateLeaderboard(t *testing.T) {
	var gotPath, gotCookie string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte(privateFixture))
	})

	snap, err := client.PrivateLeaderboard(context.Background(), 2022)
	if err != nil {
		t.Fatalf("private leaderboard: %v", err)
	}
	if gotPath != "/2022/leaderboard/private/view/261166.json" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotCookie != "session=cookie-under-test" {
		t.Fatalf("unexpected cookie header %q", gotCookie)
	}

	if got := snap.Board.Len(); got != 4 {
		t.Fatalf("expected 4 entries, got %d", got)
	}

	owner := aoc.MemberID{Name: "gcalmettes", Number: 261166}
	first, err := aoc.NewEntry(time.Unix(1669871650, 0), 2022, 1, aoc.Part1, owner)
	if err != nil {
		t.Fatalf("build expected entry: %v", err)
	}
	if !snap.Board.Has(first) {
		t.Fatalf("board is missing the day 1 part 1 completion")
	}

	anon := aoc.MemberID{Name: "anonymous user #999", Number: 999}
	if !snap.Board.HasMember(anon) {
		t.Fatalf("anonymous member not synthesised, members: %v", snap.Board.Members())
	}

	if got := snap.GlobalScores[aoc.YearMember{Year: 2022, Member: owner}]; got != 32 {
		t.Fatalf("expected global score 32, got %d", got)
	}
	if _, ok := snap.GlobalScores[aoc.YearMember{Year: 2022, Member: anon}]; ok {
		t.Fatalf("zero global score should not be recorded")
	}
}

func TestPrivateLeaderboardStaleSession(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	})

	_, err := client.PrivateLeaderboard(context.Background(), 2022)
	if err == nil {
		t.Fatalf("expected an error for a 500 response")
	}
	if !strings.Contains(err.Error(), "session cookie") {
		t.Fatalf("expected stale session hint, got %v", err)
	}
}

func TestPrivateLeaderboardMalformed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"event": "not-a-year", "members": {}}`))
	})

	_, err := client.PrivateLeaderboard(context.Background(), 2022)
	if !errors.Is(err, aoc.ErrParse) {
		t.Fatalf("expected parse failure, got %v", err)
	}
}

func TestGlobalLeaderboard(t *testing.T) {
	var gotCookie string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte(globalFixture))
	})

	board, err := client.GlobalLeaderboard(context.Background(), 2022, 9)
	if err != nil {
		t.Fatalf("global leaderboard: %v", err)
	}
	if gotCookie != "" {
		t.Fatalf("global pages are public, cookie %q should not be sent", gotCookie)
	}
	if got := board.Len(); got != 3 {
		t.Fatalf("expected 3 entries, got %d", got)
	}

	speedy := aoc.MemberID{Name: "Speedy Coder", Number: 123}
	release := aoc.ReleaseTime(2022, 9)

	both, err := aoc.NewRankedEntry(release.Add(5*time.Minute+33*time.Second), 2022, 9, aoc.Part2, speedy, 1)
	if err != nil {
		t.Fatalf("build expected entry: %v", err)
	}
	if !board.Has(both) {
		t.Fatalf("missing ranked part 2 entry, entries: %v", board.Entries())
	}

	firstStar, err := aoc.NewRankedEntry(release.Add(2*time.Minute+5*time.Second), 2022, 9, aoc.Part1, speedy, 1)
	if err != nil {
		t.Fatalf("build expected entry: %v", err)
	}
	if !board.Has(firstStar) {
		t.Fatalf("entries after the first-star banner should be part 1")
	}

	anon := aoc.MemberID{Name: "anonymous user #456", Number: 456}
	hidden, err := aoc.NewRankedEntry(release.Add(7*time.Minute+time.Second), 2022, 9, aoc.Part2, anon, 2)
	if err != nil {
		t.Fatalf("build expected entry: %v", err)
	}
	if !board.Has(hidden) {
		t.Fatalf("anonymous entry not normalised, entries: %v", board.Entries())
	}
}

func TestGlobalLeaderboardRejectsMalformedEntry(t *testing.T) {
	broken := strings.Replace(globalFixture, "  1)", "??", 1)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(broken))
	})

	_, err := client.GlobalLeaderboard(context.Background(), 2022, 9)
	if !errors.Is(err, aoc.ErrParse) {
		t.Fatalf("malformed entries must not be dropped silently, got %v", err)
	}
}

func TestGlobalLeaderboardOvernightFinish(t *testing.T) {
	overnight := `<html><body>
<div class="leaderboard-entry" data-user-id="7"><span class="leaderboard-position">99)</span> <span class="leaderboard-time">Dec 10  01:30:00</span> Night Owl</div>
</body></html>`
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(overnight))
	})

	board, err := client.GlobalLeaderboard(context.Background(), 2022, 9)
	if err != nil {
		t.Fatalf("global leaderboard: %v", err)
	}
	owl := aoc.MemberID{Name: "Night Owl", Number: 7}
	want, err := aoc.NewRankedEntry(aoc.ReleaseTime(2022, 9).Add(25*time.Hour+30*time.Minute), 2022, 9, aoc.Part2, owl, 99)
	if err != nil {
		t.Fatalf("build expected entry: %v", err)
	}
	if !board.Has(want) {
		t.Fatalf("overnight finish should count against the puzzle day, entries: %v", board.Entries())
	}
}

func TestDailyChallenge(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2022/day/9" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(challengeFixture))
	})

	title, err := client.DailyChallenge(context.Background(), 2022, 9)
	if err != nil {
		t.Fatalf("daily challenge: %v", err)
	}
	if title != "--- Day 9: Rope Bridge ---" {
		t.Fatalf("unexpected title %q", title)
	}
}

func TestDailyChallengeMissingTitle(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>nothing here</p></body></html>"))
	})

	_, err := client.DailyChallenge(context.Background(), 2022, 9)
	if !errors.Is(err, aoc.ErrParse) {
		t.Fatalf("expected parse failure, got %v", err)
	}
}
