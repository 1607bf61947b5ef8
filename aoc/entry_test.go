package aoc

import (
	"errors"
	"testing"
	"time"
)

var (
	alice = MemberID{Name: "alice", Number: 1}
	bob   = MemberID{Name: "bob", Number: 2}
	carol = MemberID{Name: "carol", Number: 3}
)

func star(year, day int, part Part, m MemberID, after time.Duration) Entry {
	return Entry{
		Timestamp: ReleaseTime(year, day).Add(after),
		Year:      year,
		Day:       day,
		Part:      part,
		Member:    m,
	}
}

func rankedStar(year, day int, part Part, m MemberID, after time.Duration, rank int) Entry {
	e := star(year, day, part, m, after)
	e.Rank = rank
	return e
}

func TestParsePart(t *testing.T) {
	p, err := ParsePart("1")
	if err != nil || p != Part1 {
		t.Fatalf("parse part 1: %v %v", p, err)
	}
	p, err = ParsePart("2")
	if err != nil || p != Part2 {
		t.Fatalf("parse part 2: %v %v", p, err)
	}
	if _, err := ParsePart("3"); !errors.Is(err, ErrParse) {
		t.Fatalf("expected parse failure, got %v", err)
	}
}

func TestNewEntryValidation(t *testing.T) {
	ts := time.Date(2022, time.December, 1, 5, 30, 0, 0, time.UTC)
	if _, err := NewEntry(ts, 2014, 1, Part1, alice); !errors.Is(err, ErrParse) {
		t.Fatalf("expected year validation error, got %v", err)
	}
	if _, err := NewEntry(ts, 2022, 0, Part1, alice); !errors.Is(err, ErrParse) {
		t.Fatalf("expected day validation error, got %v", err)
	}
	if _, err := NewEntry(ts, 2022, 26, Part1, alice); !errors.Is(err, ErrParse) {
		t.Fatalf("expected day validation error, got %v", err)
	}
	if _, err := NewEntry(ts, 2022, 1, Part(7), alice); !errors.Is(err, ErrParse) {
		t.Fatalf("expected part validation error, got %v", err)
	}
	if _, err := NewRankedEntry(ts, 2022, 1, Part1, alice, 101); !errors.Is(err, ErrParse) {
		t.Fatalf("expected rank validation error, got %v", err)
	}
	e, err := NewRankedEntry(ts.In(time.FixedZone("EST", -5*3600)), 2022, 1, Part1, alice, 42)
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}
	if e.Timestamp.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", e.Timestamp.Location())
	}
	if !e.Timestamp.Equal(ts) || e.Rank != 42 {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestReleaseClock(t *testing.T) {
	release := ReleaseTime(2022, 5)
	want := time.Date(2022, time.December, 5, 5, 0, 0, 0, time.UTC)
	if !release.Equal(want) {
		t.Fatalf("release time: got %v want %v", release, want)
	}
	e := star(2022, 5, Part1, alice, 42*time.Minute)
	if e.SinceRelease() != 42*time.Minute {
		t.Fatalf("since release: %v", e.SinceRelease())
	}
	if e.UntilNextRelease() != 24*time.Hour-42*time.Minute {
		t.Fatalf("until next release: %v", e.UntilNextRelease())
	}
	e25 := star(2022, 25, Part2, alice, time.Hour)
	if e25.UntilNextRelease() != 23*time.Hour {
		t.Fatalf("day 25 until next release: %v", e25.UntilNextRelease())
	}
}

func TestCurrentYearDay(t *testing.T) {
	cases := []struct {
		now       time.Time
		year, day int
	}{
		{time.Date(2022, time.December, 3, 4, 59, 0, 0, time.UTC), 2022, 2},
		{time.Date(2022, time.December, 3, 5, 0, 0, 0, time.UTC), 2022, 3},
		{time.Date(2022, time.December, 1, 4, 0, 0, 0, time.UTC), 2021, 25},
		{time.Date(2022, time.December, 28, 12, 0, 0, 0, time.UTC), 2022, 25},
		{time.Date(2022, time.June, 10, 12, 0, 0, 0, time.UTC), 2021, 25},
		{time.Date(2023, time.January, 2, 12, 0, 0, 0, time.UTC), 2022, 25},
	}
	for _, tc := range cases {
		year, day := CurrentYearDay(tc.now)
		if year != tc.year || day != tc.day {
			t.Fatalf("current year/day at %v: got %d/%d want %d/%d", tc.now, year, day, tc.year, tc.day)
		}
	}
}

func TestElapsedEventDays(t *testing.T) {
	cases := []struct {
		now  time.Time
		want int
	}{
		{time.Date(2022, time.November, 30, 23, 0, 0, 0, time.UTC), 0},
		{time.Date(2022, time.December, 1, 4, 59, 0, 0, time.UTC), 0},
		{time.Date(2022, time.December, 1, 5, 0, 0, 0, time.UTC), 1},
		{time.Date(2022, time.December, 3, 4, 59, 0, 0, time.UTC), 2},
		{time.Date(2022, time.December, 3, 5, 0, 0, 0, time.UTC), 3},
		{time.Date(2022, time.December, 26, 12, 0, 0, 0, time.UTC), 25},
		{time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC), 25},
	}
	for _, tc := range cases {
		if got := ElapsedEventDays(2022, tc.now); got != tc.want {
			t.Fatalf("elapsed days at %v: got %d want %d", tc.now, got, tc.want)
		}
	}
}

func TestAnonymousName(t *testing.T) {
	if got := AnonymousName(12345); got != "anonymous user #12345" {
		t.Fatalf("anonymous name: %q", got)
	}
}
