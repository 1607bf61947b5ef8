package aoc

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Scoring selects how the classic board is ordered.
type Scoring uint8

const (
	// ScoringLocal orders by the private-board local score.
	ScoringLocal Scoring = iota
	// ScoringStars orders by star count, earliest last star first on ties.
	ScoringStars
)

func (s Scoring) String() string {
	if s == ScoringStars {
		return "stars"
	}
	return "local"
}

// ParseScoring converts the user-facing name of a board ordering.
func ParseScoring(s string) (Scoring, error) {
	switch s {
	case "local":
		return ScoringLocal, nil
	case "stars":
		return ScoringStars, nil
	default:
		return 0, fmt.Errorf("unknown scoring %q", s)
	}
}

// Jersey selects one of the Tour de France style season classifications.
type Jersey uint8

const (
	// JerseyYellow is the general classification: cumulative part two
	// solve time, a flat penalty standing in for unfinished days.
	JerseyYellow Jersey = iota
	// JerseyGreen is the sprinter classification: points for the
	// fastest part one to part two transitions each day.
	JerseyGreen
	// JerseyCombative rewards finishing closest to the next unlock,
	// the daily ride at the front of the peloton.
	JerseyCombative
)

func (j Jersey) String() string {
	switch j {
	case JerseyGreen:
		return "green"
	case JerseyCombative:
		return "combative"
	default:
		return "yellow"
	}
}

// ParseJersey converts the user-facing name of a classification.
func ParseJersey(s string) (Jersey, error) {
	switch s {
	case "yellow":
		return JerseyYellow, nil
	case "green":
		return JerseyGreen, nil
	case "combative":
		return JerseyCombative, nil
	default:
		return 0, fmt.Errorf("unknown jersey %q", s)
	}
}

// Ranking selects which per-day duration a time ranking reports.
type Ranking uint8

const (
	// RankingDelta orders by the time between the two parts.
	RankingDelta Ranking = iota
	// RankingPart1 orders by time from release to the first star.
	RankingPart1
	// RankingPart2 orders by time from release to the second star.
	RankingPart2
	// RankingLimit orders by how close the second star landed to the
	// next day's unlock.
	RankingLimit
)

func (r Ranking) String() string {
	switch r {
	case RankingPart1:
		return "p1"
	case RankingPart2:
		return "p2"
	case RankingLimit:
		return "limit"
	default:
		return "delta"
	}
}

// ParseRanking converts the user-facing name of a time ranking.
func ParseRanking(s string) (Ranking, error) {
	switch s {
	case "delta":
		return RankingDelta, nil
	case "p1":
		return RankingPart1, nil
	case "p2":
		return RankingPart2, nil
	case "limit":
		return RankingLimit, nil
	default:
		return 0, fmt.Errorf("unknown ranking %q", s)
	}
}

const (
	// PenaltyUnfinishedDay is charged on the yellow jersey for every
	// chargeable day without a part two completion, and caps what an
	// observed completion can cost.
	PenaltyUnfinishedDay = 7 * 24 * time.Hour

	// CombativeMaxPoints is the combative award for finishing right at
	// the wire.
	CombativeMaxPoints = 100
	// CombativeDecayPerMinute shrinks the award per minute of margin
	// left before the next unlock.
	CombativeDecayPerMinute = 0.005
)

// GreenPointsTable awards the fifteen fastest part one to part two
// transitions of a day, best first.
var GreenPointsTable = [...]int{50, 30, 20, 18, 16, 14, 12, 10, 8, 7, 6, 5, 4, 3, 2}

// DayCell is one member's haul for a single day on the classic board.
type DayCell struct {
	Stars int
	Score int
}

// BoardRow is one member's line on the classic board.
type BoardRow struct {
	Member MemberID
	Days   [LastEventDay]DayCell
	Stars  int
	Score  int
}

// MemberScore pairs a member with a point total.
type MemberScore struct {
	Member MemberID
	Score  int
}

// MemberDuration pairs a member with a measured duration.
type MemberDuration struct {
	Member   MemberID
	Duration time.Duration
}

// TDFRow is one member's line in a jersey classification. Total is
// seconds for the yellow jersey and points otherwise; Count is the
// tie-break companion, penalized days for yellow and scoring days for
// the points jerseys.
type TDFRow struct {
	Member MemberID
	Total  int64
	Count  int64
}

// StandingsBoard computes the classic private board for a year. Each
// completed part awards local points by completion order: the first of
// N season members earns N, the last earns 1.
func StandingsBoard(lb *Leaderboard, scoring Scoring, year int) []BoardRow {
	members := lb.MembersForYear(year)
	if len(members) == 0 {
		return nil
	}
	n := len(members)
	rows := make(map[MemberID]*BoardRow, n)
	for _, m := range members {
		rows[m] = &BoardRow{Member: m}
	}
	lastStar := make(map[MemberID]time.Time, n)
	for key, group := range groupByDayPart(lb, year) {
		for i, e := range group {
			row := rows[e.Member]
			points := n - i
			row.Days[key.day-1].Stars++
			row.Days[key.day-1].Score += points
			row.Stars++
			row.Score += points
			if e.Timestamp.After(lastStar[e.Member]) {
				lastStar[e.Member] = e.Timestamp
			}
		}
	}
	out := make([]BoardRow, 0, n)
	for _, m := range members {
		out = append(out, *rows[m])
	}
	if scoring == ScoringStars {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.Stars != b.Stars {
				return a.Stars > b.Stars
			}
			// Same star count: whoever got there first leads.
			if !lastStar[a.Member].Equal(lastStar[b.Member]) {
				return lastStar[a.Member].Before(lastStar[b.Member])
			}
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.Member.Number < b.Member.Number
		})
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Stars != b.Stars {
			return a.Stars > b.Stars
		}
		return a.Member.Number < b.Member.Number
	})
	return out
}

// StandingsByGlobalScore lists the members upstream credited with global
// points for a year, best first. The scores live on the snapshot, not
// the entry set, because upstream reassigns them wholesale.
func StandingsByGlobalScore(snap *Snapshot, year int) []MemberScore {
	if snap == nil {
		return nil
	}
	var out []MemberScore
	for k, score := range snap.GlobalScores {
		if k.Year != year || score == 0 {
			continue
		}
		out = append(out, MemberScore{Member: k.Member, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Member.Name != out[j].Member.Name {
			return out[i].Member.Name < out[j].Member.Name
		}
		return out[i].Member.Number < out[j].Member.Number
	})
	return out
}

// StandingsTDF computes a jersey classification for a year. The clock
// decides how many days the yellow jersey may charge in a season still
// running.
func StandingsTDF(lb *Leaderboard, jersey Jersey, year int, now time.Time) []TDFRow {
	switch jersey {
	case JerseyGreen:
		return greenStandings(lb, year)
	case JerseyCombative:
		return combativeStandings(lb, year)
	default:
		return yellowStandings(lb, year, now)
	}
}

// DailyPoints reports a single day's awards for the points jerseys. The
// yellow jersey is time based and has no daily points; per-day times
// come from StandingsTime instead.
func DailyPoints(lb *Leaderboard, jersey Jersey, year, day int) []MemberScore {
	switch jersey {
	case JerseyGreen:
		return greenDayPoints(lb, year, day)
	case JerseyCombative:
		return combativeDayPoints(lb, year, day)
	default:
		return nil
	}
}

// StandingsTime ranks a day's solvers by a chosen duration, fastest
// first. Members missing the needed parts are left out.
func StandingsTime(lb *Leaderboard, ranking Ranking, year, day int) []MemberDuration {
	release := ReleaseTime(year, day)
	next := ReleaseTime(year, day+1)
	var out []MemberDuration
	for m, days := range solvesByMemberDay(lb, year) {
		st := days[day]
		if st == nil {
			continue
		}
		switch ranking {
		case RankingPart1:
			if st.has1 {
				out = append(out, MemberDuration{Member: m, Duration: st.p1.Sub(release)})
			}
		case RankingPart2:
			if st.has2 {
				out = append(out, MemberDuration{Member: m, Duration: st.p2.Sub(release)})
			}
		case RankingLimit:
			if st.has2 {
				if remaining := next.Sub(st.p2); remaining > 0 {
					out = append(out, MemberDuration{Member: m, Duration: remaining})
				}
			}
		default:
			if st.has1 && st.has2 {
				out = append(out, MemberDuration{Member: m, Duration: st.p2.Sub(st.p1)})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Duration != out[j].Duration {
			return out[i].Duration < out[j].Duration
		}
		return out[i].Member.Number < out[j].Member.Number
	})
	return out
}

func yellowStandings(lb *Leaderboard, year int, now time.Time) []TDFRow {
	members := lb.MembersForYear(year)
	if len(members) == 0 {
		return nil
	}
	solves := solvesByMemberDay(lb, year)
	chargeable := ElapsedEventDays(year, now)
	rows := make([]TDFRow, 0, len(members))
	for _, m := range members {
		var total, penalized int64
		for day := 1; day <= chargeable; day++ {
			st := solves[m][day]
			if st == nil || !st.has2 {
				total += int64(PenaltyUnfinishedDay / time.Second)
				penalized++
				continue
			}
			observed := st.p2.Sub(ReleaseTime(year, day))
			if observed < 0 {
				observed = 0
			}
			if observed > PenaltyUnfinishedDay {
				observed = PenaltyUnfinishedDay
			}
			total += int64(observed / time.Second)
		}
		rows = append(rows, TDFRow{Member: m, Total: total, Count: penalized})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total < rows[j].Total
		}
		if rows[i].Count != rows[j].Count {
			return rows[i].Count < rows[j].Count
		}
		return rows[i].Member.Number < rows[j].Member.Number
	})
	return rows
}

func greenStandings(lb *Leaderboard, year int) []TDFRow {
	members := lb.MembersForYear(year)
	if len(members) == 0 {
		return nil
	}
	totals := make(map[MemberID]*TDFRow, len(members))
	for _, m := range members {
		totals[m] = &TDFRow{Member: m}
	}
	for day := 1; day <= LastEventDay; day++ {
		for _, award := range greenDayPoints(lb, year, day) {
			row := totals[award.Member]
			row.Total += int64(award.Score)
			row.Count++
		}
	}
	return sortPointsRows(members, totals)
}

func greenDayPoints(lb *Leaderboard, year, day int) []MemberScore {
	var cands []MemberDuration
	for m, days := range solvesByMemberDay(lb, year) {
		st := days[day]
		if st == nil || !st.has1 || !st.has2 {
			continue
		}
		cands = append(cands, MemberDuration{Member: m, Duration: st.p2.Sub(st.p1)})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Duration != cands[j].Duration {
			return cands[i].Duration < cands[j].Duration
		}
		return cands[i].Member.Number < cands[j].Member.Number
	})
	var out []MemberScore
	for i, c := range cands {
		if i >= len(GreenPointsTable) {
			break
		}
		out = append(out, MemberScore{Member: c.Member, Score: GreenPointsTable[i]})
	}
	return out
}

func combativeStandings(lb *Leaderboard, year int) []TDFRow {
	members := lb.MembersForYear(year)
	if len(members) == 0 {
		return nil
	}
	totals := make(map[MemberID]*TDFRow, len(members))
	for _, m := range members {
		totals[m] = &TDFRow{Member: m}
	}
	for day := 1; day <= LastEventDay; day++ {
		for _, award := range combativeDayPoints(lb, year, day) {
			row := totals[award.Member]
			row.Total += int64(award.Score)
			row.Count++
		}
	}
	return sortPointsRows(members, totals)
}

func combativeDayPoints(lb *Leaderboard, year, day int) []MemberScore {
	next := ReleaseTime(year, day+1)
	var out []MemberScore
	for m, days := range solvesByMemberDay(lb, year) {
		st := days[day]
		if st == nil || !st.has2 {
			continue
		}
		remaining := next.Sub(st.p2)
		if remaining <= 0 {
			continue
		}
		if pts := combativePoints(remaining); pts > 0 {
			out = append(out, MemberScore{Member: m, Score: pts})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Member.Number < out[j].Member.Number
	})
	return out
}

// combativePoints decays the maximum award by the margin left before
// the next unlock, so the narrowest escapes score highest.
func combativePoints(remaining time.Duration) int {
	pts := math.Round(CombativeMaxPoints * math.Pow(1-CombativeDecayPerMinute, remaining.Minutes()))
	if pts < 0 {
		return 0
	}
	return int(pts)
}

func sortPointsRows(members []MemberID, totals map[MemberID]*TDFRow) []TDFRow {
	rows := make([]TDFRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, *totals[m])
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Member.Number < rows[j].Member.Number
	})
	return rows
}

type dayPart struct {
	day  int
	part Part
}

// groupByDayPart collects a year's entries per day and part, each group
// ordered by completion time and reduced to one entry per member. The
// same fact observed with and without a global rank must not count
// twice.
func groupByDayPart(lb *Leaderboard, year int) map[dayPart][]Entry {
	groups := make(map[dayPart][]Entry)
	for e := range lb.entries {
		if e.Year != year {
			continue
		}
		k := dayPart{day: e.Day, part: e.Part}
		groups[k] = append(groups[k], e)
	}
	for k, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			a, b := group[i], group[j]
			if !a.Timestamp.Equal(b.Timestamp) {
				return a.Timestamp.Before(b.Timestamp)
			}
			if a.Member.Number != b.Member.Number {
				return a.Member.Number < b.Member.Number
			}
			return a.Member.Name < b.Member.Name
		})
		groups[k] = dedupeByMember(group)
	}
	return groups
}

func dedupeByMember(sorted []Entry) []Entry {
	seen := make(map[int64]struct{}, len(sorted))
	out := sorted[:0]
	for _, e := range sorted {
		if _, ok := seen[e.Member.Number]; ok {
			continue
		}
		seen[e.Member.Number] = struct{}{}
		out = append(out, e)
	}
	return out
}

// solveTimes holds the earliest completion seen per part of one member's
// day.
type solveTimes struct {
	p1, p2     time.Time
	has1, has2 bool
}

func solvesByMemberDay(lb *Leaderboard, year int) map[MemberID]map[int]*solveTimes {
	if lb == nil {
		return nil
	}
	out := make(map[MemberID]map[int]*solveTimes)
	for e := range lb.entries {
		if e.Year != year {
			continue
		}
		days := out[e.Member]
		if days == nil {
			days = make(map[int]*solveTimes)
			out[e.Member] = days
		}
		st := days[e.Day]
		if st == nil {
			st = &solveTimes{}
			days[e.Day] = st
		}
		switch e.Part {
		case Part1:
			if !st.has1 || e.Timestamp.Before(st.p1) {
				st.p1 = e.Timestamp
				st.has1 = true
			}
		case Part2:
			if !st.has2 || e.Timestamp.Before(st.p2) {
				st.p2 = e.Timestamp
				st.has2 = true
			}
		}
	}
	return out
}
