package aoc

import (
	"sort"
	"time"
)

// Leaderboard is a set of completion facts. Entries are never mutated or
// removed; folding new observations in is a union, so merges are
// idempotent and order-independent.
type Leaderboard struct {
	entries map[Entry]struct{}
}

// NewLeaderboard returns an empty board.
func NewLeaderboard() *Leaderboard {
	return &Leaderboard{entries: make(map[Entry]struct{})}
}

// LeaderboardOf builds a board from the given entries, collapsing
// duplicates.
func LeaderboardOf(entries ...Entry) *Leaderboard {
	lb := NewLeaderboard()
	for _, e := range entries {
		lb.Add(e)
	}
	return lb
}

// Add inserts a single fact. Re-adding an identical fact is a no-op.
func (l *Leaderboard) Add(e Entry) {
	l.entries[e] = struct{}{}
}

// Has reports whether the exact fact is present.
func (l *Leaderboard) Has(e Entry) bool {
	if l == nil {
		return false
	}
	_, ok := l.entries[e]
	return ok
}

// Len returns the number of distinct facts on the board.
func (l *Leaderboard) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Entries returns every fact in a stable order.
func (l *Leaderboard) Entries() []Entry {
	if l == nil {
		return nil
	}
	out := make([]Entry, 0, len(l.entries))
	for e := range l.entries {
		out = append(out, e)
	}
	sortEntries(out)
	return out
}

// Clone returns an independent copy of the board.
func (l *Leaderboard) Clone() *Leaderboard {
	clone := NewLeaderboard()
	if l == nil {
		return clone
	}
	for e := range l.entries {
		clone.entries[e] = struct{}{}
	}
	return clone
}

// Merge folds every fact of other into the receiver. Merging is a set
// union: applying the same update twice, or two updates in either
// order, yields the same board.
func (l *Leaderboard) Merge(other *Leaderboard) {
	if other == nil {
		return
	}
	for e := range other.entries {
		l.entries[e] = struct{}{}
	}
}

// Difference returns the facts present here and absent from baseline,
// compared on the full identity tuple. A renamed member shows up as a
// departure plus an arrival since the name is part of the identity.
func (l *Leaderboard) Difference(baseline *Leaderboard) []Entry {
	if l == nil {
		return nil
	}
	var out []Entry
	for e := range l.entries {
		if !baseline.Has(e) {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out
}

// HasMember reports whether the exact identity earned any star, any
// year.
func (l *Leaderboard) HasMember(m MemberID) bool {
	if l == nil {
		return false
	}
	for e := range l.entries {
		if e.Member == m {
			return true
		}
	}
	return false
}

// Members lists every distinct identity on the board, ordered by member
// number then name.
func (l *Leaderboard) Members() []MemberID {
	if l == nil {
		return nil
	}
	seen := make(map[MemberID]struct{})
	for e := range l.entries {
		seen[e.Member] = struct{}{}
	}
	return sortedMembers(seen)
}

// MembersForYear lists the identities holding at least one star in the
// given event year.
func (l *Leaderboard) MembersForYear(year int) []MemberID {
	if l == nil {
		return nil
	}
	seen := make(map[MemberID]struct{})
	for e := range l.entries {
		if e.Year == year {
			seen[e.Member] = struct{}{}
		}
	}
	return sortedMembers(seen)
}

// MemberNumbers maps every numeric id on the board to one of its display
// names. Numeric matching is what hero detection wants, because the
// global board may render a member's name differently.
func (l *Leaderboard) MemberNumbers() map[int64]string {
	if l == nil {
		return nil
	}
	out := make(map[int64]string)
	for e := range l.entries {
		out[e.Member.Number] = e.Member.Name
	}
	return out
}

// IsGlobalComplete reports whether the board holds the full published
// global leaderboard for a day: one hundred entries for each part.
func (l *Leaderboard) IsGlobalComplete(year, day int) bool {
	if l == nil {
		return false
	}
	count := 0
	for e := range l.entries {
		if e.Year == year && e.Day == day {
			count++
		}
	}
	return count == GlobalBoardCapacity
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Part != b.Part {
			return a.Part < b.Part
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.Member.Number != b.Member.Number {
			return a.Member.Number < b.Member.Number
		}
		return a.Member.Name < b.Member.Name
	})
}

func sortedMembers(set map[MemberID]struct{}) []MemberID {
	out := make([]MemberID, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// YearMember keys per-season member data such as global scores.
type YearMember struct {
	Year   int
	Member MemberID
}

// Snapshot bundles what one upstream poll carries: the completion facts
// plus the externally assigned global scores, which live outside the
// entry set because upstream reassigns them wholesale.
type Snapshot struct {
	Timestamp    time.Time
	Board        *Leaderboard
	GlobalScores map[YearMember]int
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Board:        NewLeaderboard(),
		GlobalScores: make(map[YearMember]int),
	}
}

// Merge folds an incoming snapshot in: board union, global scores taken
// from the newer observation, timestamp advanced to it.
func (s *Snapshot) Merge(in *Snapshot) {
	if in == nil {
		return
	}
	s.Board.Merge(in.Board)
	for k, v := range in.GlobalScores {
		s.GlobalScores[k] = v
	}
	if in.Timestamp.After(s.Timestamp) {
		s.Timestamp = in.Timestamp
	}
}

// Clone returns a deep copy safe to hand to readers.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return NewSnapshot()
	}
	clone := &Snapshot{
		Timestamp:    s.Timestamp,
		Board:        s.Board.Clone(),
		GlobalScores: make(map[YearMember]int, len(s.GlobalScores)),
	}
	for k, v := range s.GlobalScores {
		clone.GlobalScores[k] = v
	}
	return clone
}
