package aoc

import (
	"sort"
	"time"
)

// Highlight describes what one member gained on one day between two
// observations of a board: stars earned, the local points those stars
// were worth, and the part one to part two transition when the update
// contains both halves.
type Highlight struct {
	Year      int
	Day       int
	Member    MemberID
	Stars     int
	NewPoints int
	Delta     time.Duration
	HasDelta  bool
}

// ComputeHighlights diffs two boards and folds the fresh facts into one
// highlight per touched member and day, biggest point gain first. The
// point gain is the member's local score for that day on the newer
// board minus the same score on the older one, so late completions of
// old puzzles are credited at their true worth.
func ComputeHighlights(older, newer *Leaderboard) []Highlight {
	diff := newer.Difference(older)
	if len(diff) == 0 {
		return nil
	}
	type key struct {
		year   int
		member MemberID
		day    int
	}
	groups := make(map[key]map[Part]time.Time)
	for _, e := range diff {
		k := key{year: e.Year, member: e.Member, day: e.Day}
		parts := groups[k]
		if parts == nil {
			parts = make(map[Part]time.Time)
			groups[k] = parts
		}
		if prev, ok := parts[e.Part]; !ok || e.Timestamp.Before(prev) {
			parts[e.Part] = e.Timestamp
		}
	}

	type yearDay struct{ year, day int }
	newScores := make(map[yearDay]map[MemberID]int)
	oldScores := make(map[yearDay]map[MemberID]int)
	scoresFor := func(cache map[yearDay]map[MemberID]int, lb *Leaderboard, k yearDay) map[MemberID]int {
		scores, ok := cache[k]
		if !ok {
			scores = dayScores(lb, k.year, k.day)
			cache[k] = scores
		}
		return scores
	}

	out := make([]Highlight, 0, len(groups))
	for k, parts := range groups {
		yd := yearDay{year: k.year, day: k.day}
		h := Highlight{
			Year:      k.year,
			Day:       k.day,
			Member:    k.member,
			Stars:     len(parts),
			NewPoints: scoresFor(newScores, newer, yd)[k.member] - scoresFor(oldScores, older, yd)[k.member],
		}
		if t1, ok1 := parts[Part1]; ok1 {
			if t2, ok2 := parts[Part2]; ok2 {
				h.Delta = t2.Sub(t1)
				h.HasDelta = true
			}
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.NewPoints != b.NewPoints {
			return a.NewPoints > b.NewPoints
		}
		if a.Stars != b.Stars {
			return a.Stars > b.Stars
		}
		if a.Member.Number != b.Member.Number {
			return a.Member.Number < b.Member.Number
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Day < b.Day
	})
	return out
}

// NewMembers lists the names appearing on the newer board and not on
// the older one. Identities match on name and number together, so a
// renamed member is reported as new.
func NewMembers(older, newer *Leaderboard) []string {
	known := make(map[MemberID]struct{})
	for _, m := range older.Members() {
		known[m] = struct{}{}
	}
	var out []string
	for _, m := range newer.Members() {
		if _, ok := known[m]; !ok {
			out = append(out, m.Name)
		}
	}
	sort.Strings(out)
	return out
}

// dayScores returns each member's local points for one day of a year.
func dayScores(lb *Leaderboard, year, day int) map[MemberID]int {
	members := lb.MembersForYear(year)
	if len(members) == 0 {
		return nil
	}
	n := len(members)
	out := make(map[MemberID]int)
	for key, group := range groupByDayPart(lb, year) {
		if key.day != day {
			continue
		}
		for i, e := range group {
			out[e.Member] += n - i
		}
	}
	return out
}
