package storage

import (
	"testing"
	"time"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
)

var (
	alice = aoc.MemberID{Name: "alice", Number: 1}
	bob   = aoc.MemberID{Name: "bob", Number: 2}
)

func star(year, day int, part aoc.Part, m aoc.MemberID, after time.Duration) aoc.Entry {
	return aoc.Entry{
		Timestamp: aoc.ReleaseTime(year, day).Add(after),
		Year:      year,
		Day:       day,
		Part:      part,
		Member:    m,
	}
}

func TestCacheUpdatePrivate(t *testing.T) {
	cache := NewCache()

	first := aoc.NewSnapshot()
	first.Board.Add(star(2022, 1, aoc.Part1, alice, 10*time.Minute))
	before, after, isFirst := cache.UpdatePrivate(first)
	if !isFirst {
		t.Fatalf("expected first load")
	}
	if before.Len() != 0 || after.Len() != 1 {
		t.Fatalf("unexpected board sizes: %d %d", before.Len(), after.Len())
	}

	second := aoc.NewSnapshot()
	second.Board.Add(star(2022, 1, aoc.Part1, alice, 10*time.Minute))
	second.Board.Add(star(2022, 1, aoc.Part2, alice, 25*time.Minute))
	before, after, isFirst = cache.UpdatePrivate(second)
	if isFirst {
		t.Fatalf("second update must not report first load")
	}
	if before.Len() != 1 || after.Len() != 2 {
		t.Fatalf("unexpected board sizes: %d %d", before.Len(), after.Len())
	}
	if diff := after.Difference(before); len(diff) != 1 || diff[0].Part != aoc.Part2 {
		t.Fatalf("unexpected diff: %v", diff)
	}

	// Returned boards are copies: mutating them must not reach the cache.
	after.Add(star(2022, 5, aoc.Part1, bob, time.Minute))
	if got := cache.PrivateSnapshot().Board.Len(); got != 2 {
		t.Fatalf("mutation leaked into cache, len %d", got)
	}
}

func TestCacheUpdateGlobal(t *testing.T) {
	cache := NewCache()

	poll1 := aoc.LeaderboardOf(
		star(2022, 3, aoc.Part1, alice, 2*time.Minute),
	)
	added, board := cache.UpdateGlobal(poll1)
	if len(added) != 1 || board.Len() != 1 {
		t.Fatalf("unexpected first poll result: %d %d", len(added), board.Len())
	}

	poll2 := aoc.LeaderboardOf(
		star(2022, 3, aoc.Part1, alice, 2*time.Minute),
		star(2022, 3, aoc.Part1, bob, 3*time.Minute),
	)
	added, board = cache.UpdateGlobal(poll2)
	if len(added) != 1 || added[0].Member != bob {
		t.Fatalf("expected only the new fact: %v", added)
	}
	if board.Len() != 2 {
		t.Fatalf("expected accumulated board, got %d", board.Len())
	}

	private, global := cache.Sizes()
	if private != 0 || global != 2 {
		t.Fatalf("unexpected sizes: %d %d", private, global)
	}
}
