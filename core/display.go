package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
)

// The fixed width renderers below draw the code block bodies. Columns
// are sized from the worst case a season can produce so a board never
// jumps around between refreshes.

func displayBoard(rows []aoc.BoardRow, scoring aoc.Scoring) string {
	if len(rows) == 0 {
		return ""
	}
	wPos := len(strconv.Itoa(len(rows)))
	wName, maxTotal := 0, 0
	for _, r := range rows {
		if n := utf8.RuneCountInString(r.Member.Name); n > wName {
			wName = n
		}
		if t := boardTotal(r, scoring); t > maxTotal {
			maxTotal = t
		}
	}
	wName++
	wScore := 1 + len(strconv.Itoa(maxTotal))

	lines := make([]string, len(rows))
	for i, r := range rows {
		var cells strings.Builder
		for _, d := range r.Days {
			switch d.Stars {
			case 0:
				cells.WriteString(" -")
			case 1:
				cells.WriteString(" □")
			default:
				cells.WriteString(" ■")
			}
		}
		lines[i] = fmt.Sprintf("%*d) %-*s %*d  [%s]",
			wPos, i+1, wName, r.Member.Name, wScore, boardTotal(r, scoring), cells.String())
	}
	return strings.Join(lines, "\n")
}

func boardTotal(r aoc.BoardRow, scoring aoc.Scoring) int {
	if scoring == aoc.ScoringStars {
		return r.Stars
	}
	return r.Score
}

func displayTDFTime(rows []aoc.TDFRow) string {
	if len(rows) == 0 {
		return ""
	}
	wPos := len(strconv.Itoa(len(rows)))
	wName := 1 + maxRuneLen(memberNames(rows))
	// Worst case is every stage charged at the cutoff penalty.
	wDuration := len(FormatDurationDays(aoc.LastEventDay * aoc.PenaltyUnfinishedDay))
	wDelta := len(FormatDuration(aoc.LastEventDay*aoc.PenaltyUnfinishedDay)) + 3
	wPenalties := len("(25 stages out)") + 1

	fastest := rows[0].Total
	lines := make([]string, len(rows))
	for i, r := range rows {
		delta := ""
		if i > 0 {
			delta = fmt.Sprintf("(+ %s)", FormatDuration(time.Duration(r.Total-fastest)*time.Second))
		}
		var penalties string
		switch {
		case r.Count > 1:
			penalties = fmt.Sprintf("(%d stages out)", r.Count)
		case r.Count == 1:
			penalties = "(1 stage out)"
		default:
			penalties = "(All stages)"
		}
		lines[i] = fmt.Sprintf("%*d) %-*s %*s %*s %*s",
			wPos, i+1, wName, r.Member.Name,
			wDuration, FormatDurationDays(time.Duration(r.Total)*time.Second),
			wDelta, delta, wPenalties, penalties)
	}
	return strings.Join(lines, "\n")
}

func displayTDFPoints(rows []aoc.TDFRow) string {
	if len(rows) == 0 {
		return ""
	}
	wPos := len(strconv.Itoa(len(rows)))
	wName := 1 + maxRuneLen(memberNames(rows))
	maxPoints := int64(0)
	for _, r := range rows {
		if r.Total > maxPoints {
			maxPoints = r.Total
		}
	}
	wPoints := 1 + len(strconv.FormatInt(maxPoints, 10))
	wScored := len("(scored xx days)") + 1

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("%*d) %-*s %*d %*s",
			wPos, i+1, wName, r.Member.Name, wPoints, r.Total,
			wScored, fmt.Sprintf("(scored %02d days)", r.Count))
	}
	return strings.Join(lines, "\n")
}

func displayDailyPoints(rows []aoc.MemberScore) string {
	if len(rows) == 0 {
		return ""
	}
	wPos := len(strconv.Itoa(len(rows)))
	wName := 1
	for _, r := range rows {
		if n := utf8.RuneCountInString(r.Member.Name); n+1 > wName {
			wName = n + 1
		}
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("%*d) %-*s %d", wPos, i+1, wName, r.Member.Name, r.Score)
	}
	return strings.Join(lines, "\n")
}

func displayDailyTimes(rows []aoc.MemberDuration) string {
	if len(rows) == 0 {
		return ""
	}
	wPos := len(strconv.Itoa(len(rows)))
	wName := 1
	for _, r := range rows {
		if n := utf8.RuneCountInString(r.Member.Name); n+1 > wName {
			wName = n + 1
		}
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("%*d) %-*s %s", wPos, i+1, wName, r.Member.Name, FormatDuration(r.Duration))
	}
	return strings.Join(lines, "\n")
}

func memberNames(rows []aoc.TDFRow) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Member.Name
	}
	return names
}

func maxRuneLen(names []string) int {
	max := 0
	for _, n := range names {
		if c := utf8.RuneCountInString(n); c > max {
			max = c
		}
	}
	return max
}
