package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
	"github.com/gcalmettes/christmas-elf-officer/core"
	"github.com/gcalmettes/christmas-elf-officer/observability"
	"github.com/gcalmettes/christmas-elf-officer/storage"
)

// Fetcher is the upstream surface the jobs poll. *aocclient.Client
// satisfies it; tests substitute fixtures.
type Fetcher interface {
	PrivateLeaderboard(ctx context.Context, year int) (*aoc.Snapshot, error)
	GlobalLeaderboard(ctx context.Context, year, day int) (*aoc.Leaderboard, error)
	DailyChallenge(ctx context.Context, year, day int) (string, error)
}

// Options tune the jobs beyond their cron specs.
type Options struct {
	// GlobalPollInterval spaces the polls of the open global board.
	GlobalPollInterval time.Duration
	// AllYears widens the bootstrap to every event since 2015.
	AllYears bool
}

// Jobs bundles the scheduled work over the shared cache and event
// queue. Every method satisfies JobFunc; the lock is held only inside
// the cache calls, never across fetches or sends.
type Jobs struct {
	fetch   Fetcher
	cache   *storage.Cache
	archive *storage.Archive
	events  chan<- core.Event
	logger  *slog.Logger
	opts    Options
	now     func() time.Time
}

// NewJobs wires the job set. A nil archive disables persistence.
func NewJobs(fetch Fetcher, cache *storage.Cache, archive *storage.Archive, events chan<- core.Event, opts Options, logger *slog.Logger) *Jobs {
	if opts.GlobalPollInterval <= 0 {
		opts.GlobalPollInterval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Jobs{
		fetch:   fetch,
		cache:   cache,
		archive: archive,
		events:  events,
		logger:  logger,
		opts:    opts,
		now:     time.Now,
	}
}

// Bootstrap loads the private board without announcing anything, so a
// fresh process does not replay the whole season into the channel. It
// covers the current event year, or every year since 2015 when the
// all years option is on.
func (j *Jobs) Bootstrap(ctx context.Context) error {
	year, _ := aoc.CurrentYearDay(j.now())
	years := []int{year}
	if j.opts.AllYears {
		years = years[:0]
		for y := aoc.FirstEventYear; y <= year; y++ {
			years = append(years, y)
		}
	}
	for _, y := range years {
		if err := j.refreshPrivate(ctx, y, false); err != nil {
			return fmt.Errorf("bootstrap year %d: %w", y, err)
		}
	}
	return nil
}

// RefreshPrivate fetches the private board for the current event year,
// merges it and announces what changed.
func (j *Jobs) RefreshPrivate(ctx context.Context) error {
	year, _ := aoc.CurrentYearDay(j.now())
	return j.refreshPrivate(ctx, year, true)
}

func (j *Jobs) refreshPrivate(ctx context.Context, year int, announce bool) error {
	started := time.Now()
	snap, err := j.fetch.PrivateLeaderboard(ctx, year)
	if err != nil {
		observability.Poll().Observe("private", 0, time.Since(started), err)
		return fmt.Errorf("refresh private board: %w", err)
	}
	before, after, first := j.cache.UpdatePrivate(snap)
	added := after.Difference(before)
	observability.Poll().Observe("private", len(added), time.Since(started), nil)
	private, global := j.cache.Sizes()
	observability.Cache().Record(private, global, len(after.Members()))

	if err := j.archive.SaveEntries(ctx, added); err != nil {
		// The cache already holds the data; a failed write costs warm
		// restart coverage, not correctness.
		j.logger.Warn("archive write failed", slog.String("error", err.Error()))
	}

	if !announce {
		return nil
	}
	j.send(ctx, core.PrivateUpdated{})
	if first {
		return nil
	}
	if names := aoc.NewMembers(before, after); len(names) > 0 {
		j.send(ctx, core.NewMembers{Names: names})
	}
	if highlights := aoc.ComputeHighlights(before, after); len(highlights) > 0 {
		j.send(ctx, core.NewEntries{Highlights: highlights})
	}
	return nil
}

type heroKey struct {
	number int64
	part   aoc.Part
}

// WatchGlobal polls the day's global board until both parts are full,
// shouting out any private member spotted on it and teasing the channel
// when the morning drags on. It runs once per puzzle day.
func (j *Jobs) WatchGlobal(ctx context.Context) error {
	year, day := aoc.CurrentYearDay(j.now())
	j.logger.Info("watching global board", slog.Int("year", year), slog.Int("day", day))

	seen := make(map[heroKey]struct{})
	ticker := time.NewTicker(j.opts.GlobalPollInterval)
	defer ticker.Stop()

	for cycle := 1; ; cycle++ {
		started := time.Now()
		fetched, err := j.fetch.GlobalLeaderboard(ctx, year, day)
		if err != nil {
			observability.Poll().Observe("global", 0, time.Since(started), err)
			j.logger.Error("global poll failed", slog.Int("day", day), slog.String("error", err.Error()))
		} else {
			added, board := j.cache.UpdateGlobal(fetched)
			observability.Poll().Observe("global", len(added), time.Since(started), nil)

			members := j.cache.PrivateSnapshot().Board.MemberNumbers()
			for _, e := range added {
				name, ours := members[e.Member.Number]
				if !ours {
					continue
				}
				key := heroKey{number: e.Member.Number, part: e.Part}
				if _, known := seen[key]; known {
					continue
				}
				seen[key] = struct{}{}
				j.send(ctx, core.GlobalHero{Name: name, Part: e.Part, Rank: e.Rank})
			}

			if board.IsGlobalComplete(year, day) {
				stats, err := aoc.DayStatistics(board, year, day)
				if err != nil {
					return fmt.Errorf("day %d statistics: %w", day, err)
				}
				j.send(ctx, core.GlobalComplete{Year: year, Day: day, Stats: stats})
				return nil
			}
		}

		if cycle >= 5 && (cycle-5)%3 == 0 {
			minutes := int(j.now().Sub(aoc.ReleaseTime(year, day)).Minutes())
			j.send(ctx, core.HardChallenge{Minutes: minutes, Cycle: cycle})
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// AnnounceDailyChallenge fetches the fresh puzzle's title and announces
// it.
func (j *Jobs) AnnounceDailyChallenge(ctx context.Context) error {
	year, day := aoc.CurrentYearDay(j.now())
	started := time.Now()
	title, err := j.fetch.DailyChallenge(ctx, year, day)
	observability.Poll().Observe("challenge", 0, time.Since(started), err)
	if err != nil {
		return fmt.Errorf("day %d challenge: %w", day, err)
	}
	j.send(ctx, core.DailyChallengeUp{Year: year, Day: day, Title: title})
	return nil
}

// OpenSolutionsThread asks for the day's spoiler thread.
func (j *Jobs) OpenSolutionsThread(ctx context.Context) error {
	_, day := aoc.CurrentYearDay(j.now())
	j.send(ctx, core.SolutionsThreadToOpen{Day: day})
	return nil
}

// DailySummary recaps the closing day's podium. Scheduled just before
// the 05:00 unlock, when the closing day is still the current one.
func (j *Jobs) DailySummary(ctx context.Context) error {
	year, day := aoc.CurrentYearDay(j.now())
	board := j.cache.PrivateSnapshot().Board
	p1 := aoc.StandingsTime(board, aoc.RankingPart1, year, day)
	p2 := aoc.StandingsTime(board, aoc.RankingPart2, year, day)
	delta := aoc.StandingsTime(board, aoc.RankingDelta, year, day)
	if len(p1) == 0 && len(p2) == 0 {
		// Nobody solved anything; stay quiet rather than post an empty
		// recap.
		return nil
	}
	j.send(ctx, core.DailySummary{Year: year, Day: day, P1: p1, P2: p2, Delta: delta})
	return nil
}

func (j *Jobs) send(ctx context.Context, ev core.Event) {
	select {
	case j.events <- ev:
	case <-ctx.Done():
		j.logger.Warn("event dropped", slog.String("event", fmt.Sprintf("%T", ev)))
	}
}
