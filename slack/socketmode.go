package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"nhooyr.io/websocket"
)

const (
	wsDialTimeout  = 5 * time.Second
	wsWriteTimeout = 10 * time.Second

	// Slack event payloads can carry full message bodies, so the read
	// window needs more than the library's 32KiB default.
	wsReadLimit = 1 << 20
)

// Message is one chat message delivered over Socket Mode.
type Message struct {
	Channel  string
	TS       string
	ThreadTS string
	Text     string
	User     string
}

// MessageFunc handles one delivered message.
type MessageFunc func(ctx context.Context, msg Message)

// SocketMode keeps the app's websocket to Slack alive: it dials the URL
// handed out by apps.connections.open, acks every envelope and delivers
// message events to the handler. Slack refreshes connections roughly
// hourly through a disconnect envelope, so serving spans reconnects
// until the context ends.
type SocketMode struct {
	client         *Client
	handler        MessageFunc
	logger         *slog.Logger
	authorizedBots map[string]struct{}
}

// NewSocketMode wires a connection manager to the handler. Messages
// authored by bots are dropped unless their bot id was explicitly
// allowed, so the bot never answers itself.
func NewSocketMode(client *Client, handler MessageFunc, authorizedBots []string, logger *slog.Logger) *SocketMode {
	if logger == nil {
		logger = slog.Default()
	}
	allowed := make(map[string]struct{}, len(authorizedBots))
	for _, id := range authorizedBots {
		allowed[id] = struct{}{}
	}
	return &SocketMode{
		client:         client,
		handler:        handler,
		logger:         logger,
		authorizedBots: allowed,
	}
}

// Run connects and serves until the context is cancelled. Dropped
// connections and refused dials retry with a doubling delay capped at a
// minute; a requested refresh reconnects immediately.
func (s *SocketMode) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		err := s.connectAndServe(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			backoff = time.Second
			continue
		}
		s.logger.Error("socket mode connection lost",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", backoff))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > time.Minute {
			backoff = time.Minute
		}
	}
}

type envelope struct {
	Type           string          `json:"type"`
	EnvelopeID     string          `json:"envelope_id"`
	Payload        json.RawMessage `json:"payload"`
	Reason         string          `json:"reason"`
	NumConnections int             `json:"num_connections"`
}

type acknowledge struct {
	EnvelopeID string `json:"envelope_id"`
}

func (s *SocketMode) connectAndServe(ctx context.Context) error {
	wssURL, err := s.client.ConnectionsOpen(ctx)
	if err != nil {
		return err
	}
	dialCtx, cancel := context.WithTimeout(ctx, wsDialTimeout)
	conn, _, err := websocket.Dial(dialCtx, wssURL, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("dial socket mode: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "reconnecting")
	conn.SetReadLimit(wsReadLimit)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.logger.Error("socket mode: bad envelope", slog.String("error", err.Error()))
			continue
		}
		switch env.Type {
		case "hello":
			s.logger.Info("socket mode connected", slog.Int("connections", env.NumConnections))
		case "disconnect":
			s.logger.Info("socket mode refresh requested", slog.String("reason", env.Reason))
			return nil
		case "events_api":
			// Ack first: Slack retries unacked envelopes, and a reply is
			// not worth a duplicate announcement.
			if err := s.ack(ctx, conn, env.EnvelopeID); err != nil {
				return err
			}
			s.dispatch(ctx, env.Payload)
		default:
			if env.EnvelopeID != "" {
				if err := s.ack(ctx, conn, env.EnvelopeID); err != nil {
					return err
				}
			}
		}
	}
}

func (s *SocketMode) ack(ctx context.Context, conn *websocket.Conn, id string) error {
	data, err := json.Marshal(acknowledge{EnvelopeID: id})
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

type eventsAPIPayload struct {
	Type  string       `json:"type"`
	Event messageEvent `json:"event"`
}

type messageEvent struct {
	Type     string `json:"type"`
	SubType  string `json:"subtype"`
	Text     string `json:"text"`
	User     string `json:"user"`
	BotID    string `json:"bot_id"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts"`
	Channel  string `json:"channel"`
}

func (s *SocketMode) dispatch(ctx context.Context, payload []byte) {
	var body eventsAPIPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		s.logger.Error("socket mode: bad event payload", slog.String("error", err.Error()))
		return
	}
	ev := body.Event
	if ev.Type != "message" || ev.Text == "" || ev.Channel == "" {
		return
	}
	if ev.BotID != "" {
		if _, ok := s.authorizedBots[ev.BotID]; !ok {
			return
		}
	}
	if s.handler == nil {
		return
	}
	s.handler(ctx, Message{
		Channel:  ev.Channel,
		TS:       ev.TS,
		ThreadTS: ev.ThreadTS,
		Text:     ev.Text,
		User:     ev.User,
	})
}
