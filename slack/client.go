// Package slack is the bot's chat transport. It wraps the two Web API
// calls the bot needs, keeps the app's Socket Mode websocket alive and
// routes engine events to the right channels.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// DefaultAPIURL is the production Slack Web API.
const DefaultAPIURL = "https://slack.com/api"

const defaultTimeout = 10 * time.Second

// Client calls the Slack Web API: messages are posted with the bot
// token, Socket Mode connections are opened with the app token.
type Client struct {
	apiURL   string
	botToken string
	appToken string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient constructs a client against the given API base. The limiter
// keeps posting around the one message per second Slack allows per
// channel.
func NewClient(apiURL, botToken, appToken string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiURL:   strings.TrimRight(apiURL, "/"),
		botToken: botToken,
		appToken: appToken,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type postMessageResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// PostMessage posts text to a channel and returns the message timestamp,
// which doubles as the thread id for later replies.
func (c *Client) PostMessage(ctx context.Context, channel, text string) (string, error) {
	return c.PostThreadMessage(ctx, channel, "", text)
}

// PostThreadMessage posts text as a reply inside a thread. An empty
// threadTS makes it a top-level message.
func (c *Client) PostThreadMessage(ctx context.Context, channel, threadTS, text string) (string, error) {
	form := url.Values{}
	form.Set("channel", channel)
	form.Set("text", text)
	if threadTS != "" {
		form.Set("thread_ts", threadTS)
	}
	var out postMessageResponse
	if err := c.call(ctx, "chat.postMessage", c.botToken, form, &out); err != nil {
		return "", err
	}
	if !out.OK {
		return "", fmt.Errorf("slack chat.postMessage: %s", apiError(out.Error))
	}
	return out.TS, nil
}

type connectionsOpenResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	URL   string `json:"url"`
}

// ConnectionsOpen requests a fresh Socket Mode websocket URL. The URL is
// single use and short lived, so call it right before dialing.
func (c *Client) ConnectionsOpen(ctx context.Context) (string, error) {
	var out connectionsOpenResponse
	if err := c.call(ctx, "apps.connections.open", c.appToken, url.Values{}, &out); err != nil {
		return "", err
	}
	if !out.OK {
		return "", fmt.Errorf("slack apps.connections.open: %s", apiError(out.Error))
	}
	return out.URL, nil
}

func (c *Client) call(ctx context.Context, method, token string, form url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/"+method, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("slack %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("slack %s throttled, retry after %ss", method, resp.Header.Get("Retry-After"))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack %s failed: status=%d", method, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("slack %s: decode response: %w", method, err)
	}
	return nil
}

func apiError(code string) string {
	if code == "" {
		return "response not ok"
	}
	return code
}
