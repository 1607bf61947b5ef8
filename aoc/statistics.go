package aoc

import (
	"fmt"
	"sort"
	"time"
)

// overflowRank marks a delta inferred for a member who only appears on
// the part one board: their real part two finish fell outside the
// published top hundred.
const overflowRank = 101

// DeltaStat is a part one to part two transition together with the
// final board position of its owner.
type DeltaStat struct {
	Duration time.Duration
	Rank     int
}

// Statistics summarises a finished global daily board: the extremes of
// each part and of the transition between parts.
type Statistics struct {
	P1Fast time.Duration
	P1Slow time.Duration
	P2Fast time.Duration
	P2Slow time.Duration

	DeltaFast DeltaStat
	DeltaSlow DeltaStat
}

type daySolve struct {
	since time.Duration
	rank  int
}

// DayStatistics computes the global statistics for one day's board.
// Members appearing on a single part get a conservative inferred delta:
// part one only members are assumed to have finished just after the
// slowest published part two and are pushed past the top hundred; part
// two only members are assumed to have cleared part one just after the
// slowest published part one time. Reported extremes only consider
// members whose final position made the board.
func DayStatistics(lb *Leaderboard, year, day int) (Statistics, error) {
	if lb == nil {
		return Statistics{}, fmt.Errorf("day %d of %d: no board: %w", day, year, ErrMissingStatistic)
	}
	p1 := make(map[int64]daySolve)
	p2 := make(map[int64]daySolve)
	for e := range lb.entries {
		if e.Year != year || e.Day != day {
			continue
		}
		solve := daySolve{since: e.SinceRelease(), rank: e.Rank}
		byPart := p1
		if e.Part == Part2 {
			byPart = p2
		}
		if prev, ok := byPart[e.Member.Number]; !ok || solve.since < prev.since {
			byPart[e.Member.Number] = solve
		}
	}
	if len(p1) == 0 {
		return Statistics{}, fmt.Errorf("day %d of %d part 1: %w", day, year, ErrMissingStatistic)
	}
	if len(p2) == 0 {
		return Statistics{}, fmt.Errorf("day %d of %d part 2: %w", day, year, ErrMissingStatistic)
	}

	stats := Statistics{}
	stats.P1Fast, stats.P1Slow = extremes(p1)
	stats.P2Fast, stats.P2Slow = extremes(p2)

	deltas := make([]DeltaStat, 0, len(p1))
	for number, first := range p1 {
		if second, ok := p2[number]; ok {
			deltas = append(deltas, DeltaStat{Duration: second.since - first.since, Rank: second.rank})
			continue
		}
		deltas = append(deltas, DeltaStat{Duration: stats.P2Slow - first.since + time.Second, Rank: overflowRank})
	}
	for number, second := range p2 {
		if _, ok := p1[number]; ok {
			continue
		}
		deltas = append(deltas, DeltaStat{Duration: second.since - stats.P1Slow - time.Second, Rank: second.rank})
	}

	eligible := deltas[:0]
	for _, d := range deltas {
		if d.Rank <= 100 {
			eligible = append(eligible, d)
		}
	}
	if len(eligible) == 0 {
		return Statistics{}, fmt.Errorf("day %d of %d deltas: %w", day, year, ErrMissingStatistic)
	}
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Duration != eligible[j].Duration {
			return eligible[i].Duration < eligible[j].Duration
		}
		return eligible[i].Rank < eligible[j].Rank
	})
	stats.DeltaFast = eligible[0]
	stats.DeltaSlow = eligible[len(eligible)-1]
	return stats, nil
}

func extremes(solves map[int64]daySolve) (fast, slow time.Duration) {
	first := true
	for _, s := range solves {
		if first {
			fast, slow = s.since, s.since
			first = false
			continue
		}
		if s.since < fast {
			fast = s.since
		}
		if s.since > slow {
			slow = s.since
		}
	}
	return fast, slow
}
