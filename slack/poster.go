package slack

import (
	"context"
	"log/slog"
	"time"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
	"github.com/gcalmettes/christmas-elf-officer/core"
	"github.com/gcalmettes/christmas-elf-officer/observability"
)

// spoilerWarning seeds the daily solutions thread so the first reply a
// member opens is still spoiler free.
const spoilerWarning = ":warning: Last warning, spoiler ahead!"

// Poster drains the event queue into the chat. Announcements land in
// the default channel, command replies go back to the thread that
// asked, and the refresh heartbeat is kept out of everyone's way in the
// monitoring channel.
type Poster struct {
	client            *Client
	defaultChannel    string
	monitoringChannel string
	logger            *slog.Logger
	now               func() time.Time
}

// NewPoster wires the consumer side of the event queue. An empty
// monitoring channel drops heartbeats instead of posting them.
func NewPoster(client *Client, defaultChannel, monitoringChannel string, logger *slog.Logger) *Poster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poster{
		client:            client,
		defaultChannel:    defaultChannel,
		monitoringChannel: monitoringChannel,
		logger:            logger,
		now:               time.Now,
	}
}

// Run consumes events until the context ends or the queue closes.
// Posting failures are logged and skipped; one missed announcement must
// not wedge the queue for the ones behind it.
func (p *Poster) Run(ctx context.Context, events <-chan core.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			p.post(ctx, ev)
		}
	}
}

func (p *Poster) post(ctx context.Context, ev core.Event) {
	text := ev.Render(p.now())
	if text == "" {
		return
	}
	kind := eventName(ev)
	var err error
	switch e := ev.(type) {
	case core.PrivateUpdated:
		if p.monitoringChannel == "" {
			return
		}
		_, err = p.client.PostMessage(ctx, p.monitoringChannel, text)
	case core.CommandReply:
		_, err = p.client.PostThreadMessage(ctx, e.Channel, e.ThreadTS, text)
	case core.SolutionsThreadToOpen:
		var ts string
		ts, err = p.client.PostMessage(ctx, p.defaultChannel, text)
		if err == nil {
			_, err = p.client.PostThreadMessage(ctx, p.defaultChannel, ts, spoilerWarning)
		}
	default:
		_, err = p.client.PostMessage(ctx, p.defaultChannel, text)
	}
	observability.Slack().ObserveMessage(kind, err)
	if err != nil {
		p.logger.Error("post event", slog.String("event", kind), slog.String("error", err.Error()))
	}
}

func eventName(ev core.Event) string {
	switch ev.(type) {
	case core.DailyChallengeUp:
		return "daily_challenge"
	case core.SolutionsThreadToOpen:
		return "solutions_thread"
	case core.PrivateUpdated:
		return "private_updated"
	case core.NewEntries:
		return "new_entries"
	case core.NewMembers:
		return "new_members"
	case core.GlobalComplete:
		return "global_complete"
	case core.GlobalHero:
		return "global_hero"
	case core.HardChallenge:
		return "hard_challenge"
	case core.DailySummary:
		return "daily_summary"
	case core.CommandReply:
		return "command_reply"
	default:
		return "unknown"
	}
}

// BoardSource hands out an independent copy of the private board.
type BoardSource interface {
	PrivateSnapshot() *aoc.Snapshot
}

// NewCommandHandler returns the message handler answering bot commands:
// parse the text, compute the reply against the current board and queue
// it for the poster, threaded under the asking message.
func NewCommandHandler(boards BoardSource, events chan<- core.Event, logger *slog.Logger) MessageFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, msg Message) {
		if !core.IsCommand(msg.Text) {
			return
		}
		now := time.Now()
		cmd, ok := core.ParseCommand(msg.Text, now)
		if !ok {
			return
		}
		observability.Slack().RecordCommand(commandName(cmd.Kind))
		started := time.Now()
		text := cmd.Respond(boards.PrivateSnapshot(), now)
		observability.Standings().Observe(commandName(cmd.Kind), time.Since(started))
		reply := core.CommandReply{Channel: msg.Channel, ThreadTS: msg.TS, Text: text}
		select {
		case events <- reply:
		case <-ctx.Done():
			logger.Warn("dropping command reply", slog.String("channel", msg.Channel))
		}
	}
}

func commandName(kind core.CommandKind) string {
	switch kind {
	case core.CommandHelp:
		return "help"
	case core.CommandRanking:
		return "fast"
	case core.CommandBoard:
		return "board"
	case core.CommandTDF:
		return "tdf"
	case core.CommandNotValid:
		return "not_valid"
	default:
		return "unknown"
	}
}
