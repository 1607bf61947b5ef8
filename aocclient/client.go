// Package aocclient talks to the Advent of Code website. It owns every
// upstream request the bot makes: the private leaderboard JSON API, the
// global daily leaderboard pages and the puzzle page itself. Responses
// are turned into aoc values; anything that does not fit the model
// surfaces as an error instead of being dropped.
package aocclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
)

// DefaultBaseURL is the production Advent of Code site.
const DefaultBaseURL = "https://adventofcode.com"

const defaultTimeout = 5 * time.Second

// Client fetches leaderboard data from the Advent of Code website. The
// session cookie is only attached to private leaderboard requests; the
// global pages are public.
type Client struct {
	baseURL       string
	sessionCookie string
	boardID       int64
	http          *http.Client
	limiter       *rate.Limiter
}

// NewClient constructs a client against the given site. The limiter
// spaces requests out so scheduled polls never burst against upstream.
func NewClient(baseURL, sessionCookie string, boardID int64, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		sessionCookie: sessionCookie,
		boardID:       boardID,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// PrivateLeaderboard fetches and parses the private leaderboard JSON for
// one event year. The returned snapshot carries every completion fact
// plus the nonzero global scores upstream reports.
func (c *Client) PrivateLeaderboard(ctx context.Context, year int) (*aoc.Snapshot, error) {
	path := fmt.Sprintf("/%d/leaderboard/private/view/%d.json", year, c.boardID)
	body, err := c.get(ctx, path, true)
	if err != nil {
		return nil, err
	}
	snap, err := parsePrivateLeaderboard(body)
	if err != nil {
		return nil, err
	}
	snap.Timestamp = time.Now().UTC()
	return snap, nil
}

// GlobalLeaderboard fetches and parses the public global leaderboard
// page for one day. Entries carry the published positions; a finished
// page yields one hundred entries per part.
func (c *Client) GlobalLeaderboard(ctx context.Context, year, day int) (*aoc.Leaderboard, error) {
	path := fmt.Sprintf("/%d/leaderboard/day/%d", year, day)
	body, err := c.get(ctx, path, false)
	if err != nil {
		return nil, err
	}
	return parseGlobalLeaderboard(body, year, day)
}

// DailyChallenge fetches the puzzle page and returns its title.
func (c *Client) DailyChallenge(ctx context.Context, year, day int) (string, error) {
	path := fmt.Sprintf("/%d/day/%d", year, day)
	body, err := c.get(ctx, path, false)
	if err != nil {
		return "", err
	}
	return parseChallengeTitle(body)
}

func (c *Client) get(ctx context.Context, path string, withSession bool) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "christmas-elf-officer")
	if withSession {
		req.Header.Set("Cookie", "session="+c.sessionCookie)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aoc %s: %w", path, err)
	}
	defer resp.Body.Close()
	// The private API answers 500 instead of 401 when the cookie is stale.
	if withSession && resp.StatusCode == http.StatusInternalServerError {
		return nil, fmt.Errorf("aoc %s failed: status=%d, session cookie might have expired", path, resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("aoc %s failed: status=%d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("aoc %s: read body: %w", path, err)
	}
	return body, nil
}
