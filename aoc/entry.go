// Package aoc models Advent of Code completion events and derives
// leaderboards, standings and statistics from them. Everything in the
// package is pure data manipulation; fetching and presentation live in
// their own packages.
package aoc

import (
	"fmt"
	"time"
)

const (
	// FirstEventYear is the first year an Advent of Code event ran.
	FirstEventYear = 2015
	// LastEventDay is the final puzzle day of every event.
	LastEventDay = 25
	// GlobalBoardCapacity is the number of entries a finished global
	// daily leaderboard publishes, one hundred per part.
	GlobalBoardCapacity = 200

	releaseHourUTC = 5
)

// Part identifies which half of a daily puzzle a star rewards.
type Part uint8

const (
	// Part1 is the first half of a daily puzzle.
	Part1 Part = 1
	// Part2 is the second half, unlocked by completing the first.
	Part2 Part = 2
)

// Valid reports whether the part is one of the two puzzle halves.
func (p Part) Valid() bool {
	return p == Part1 || p == Part2
}

func (p Part) String() string {
	switch p {
	case Part1:
		return "1"
	case Part2:
		return "2"
	default:
		return fmt.Sprintf("part(%d)", uint8(p))
	}
}

// ParsePart converts the upstream string form of a puzzle part.
func ParsePart(s string) (Part, error) {
	switch s {
	case "1":
		return Part1, nil
	case "2":
		return Part2, nil
	default:
		return 0, fmt.Errorf("parse part %q: %w", s, ErrParse)
	}
}

// MemberID identifies a participant. Both fields take part in equality:
// a member renaming themselves is indistinguishable from one member
// leaving and another arriving.
type MemberID struct {
	Name   string
	Number int64
}

// AnonymousName synthesizes the display name upstream uses for members
// who hide their identity.
func AnonymousName(number int64) string {
	return fmt.Sprintf("anonymous user #%d", number)
}

// Entry is one immutable completion fact: a member finished a puzzle
// part at a given instant. Rank is zero unless the entry was observed on
// a ranked global daily board, where it carries the published position.
// The whole tuple is the identity, so an Entry works as a map key and
// repeated observations of the same fact collapse.
type Entry struct {
	Timestamp time.Time
	Year      int
	Day       int
	Part      Part
	Member    MemberID
	Rank      int
}

// NewEntry validates and builds an unranked completion fact. The
// timestamp is normalised to UTC so equal instants compare equal.
func NewEntry(ts time.Time, year, day int, part Part, member MemberID) (Entry, error) {
	return NewRankedEntry(ts, year, day, part, member, 0)
}

// NewRankedEntry builds a completion fact carrying a global board
// position between 1 and 100.
func NewRankedEntry(ts time.Time, year, day int, part Part, member MemberID, rank int) (Entry, error) {
	if year < FirstEventYear {
		return Entry{}, fmt.Errorf("year %d predates the first event: %w", year, ErrParse)
	}
	if day < 1 || day > LastEventDay {
		return Entry{}, fmt.Errorf("day %d outside 1-%d: %w", day, LastEventDay, ErrParse)
	}
	if !part.Valid() {
		return Entry{}, fmt.Errorf("invalid part %d: %w", uint8(part), ErrParse)
	}
	if rank < 0 || rank > 100 {
		return Entry{}, fmt.Errorf("rank %d outside 0-100: %w", rank, ErrParse)
	}
	return Entry{
		Timestamp: ts.UTC(),
		Year:      year,
		Day:       day,
		Part:      part,
		Member:    member,
		Rank:      rank,
	}, nil
}

// ReleaseTime returns the instant a puzzle unlocks: midnight US Eastern,
// which is 05:00 UTC, on the given December day.
func ReleaseTime(year, day int) time.Time {
	return time.Date(year, time.December, day, releaseHourUTC, 0, 0, 0, time.UTC)
}

// SinceRelease returns how long after the puzzle unlocked the star was
// earned.
func (e Entry) SinceRelease() time.Duration {
	return e.Timestamp.Sub(ReleaseTime(e.Year, e.Day))
}

// UntilNextRelease returns how long before the following day's unlock
// the star was earned. Day 25 measures against the would-be December 26
// release so late finishes stay comparable.
func (e Entry) UntilNextRelease() time.Duration {
	return ReleaseTime(e.Year, e.Day+1).Sub(e.Timestamp)
}

// CurrentYearDay maps a clock instant to the event year and latest
// unlocked day it belongs to. During December the boundary follows the
// 05:00 UTC release; the rest of the year resolves to the final day of
// the most recent event.
func CurrentYearDay(now time.Time) (year, day int) {
	now = now.UTC()
	if now.Month() != time.December {
		return now.Year() - 1, LastEventDay
	}
	day = now.Day()
	if now.Hour() < releaseHourUTC {
		day--
	}
	if day < 1 {
		return now.Year() - 1, LastEventDay
	}
	if day > LastEventDay {
		day = LastEventDay
	}
	return now.Year(), day
}

// ElapsedEventDays counts how many of a year's puzzles have unlocked by
// the given instant, capped at the event length. Before the event opens
// it reports zero.
func ElapsedEventDays(year int, now time.Time) int {
	opening := ReleaseTime(year, 1)
	if now.Before(opening) {
		return 0
	}
	days := int(now.Sub(opening)/(24*time.Hour)) + 1
	if days > LastEventDay {
		days = LastEventDay
	}
	return days
}
