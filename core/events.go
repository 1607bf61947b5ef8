package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
)

// Event is one announcement on its way to the channel. Text assembly
// happens here so the transport layer stays a dumb pipe.
type Event interface {
	// Render produces the message text. The clock settles wording that
	// depends on whether the subject is still the live puzzle day.
	Render(now time.Time) string
}

// DailyChallengeUp announces a freshly unlocked puzzle.
type DailyChallengeUp struct {
	Year  int
	Day   int
	Title string
}

func (e DailyChallengeUp) Render(time.Time) string {
	return fmt.Sprintf("```%s```\n"+
		"🎉 Today's challenge is up! (<%s|link>)\n"+
		"  *%s*\n"+
		"🔫 Go after it and get some fun, ⏱️ time is ticking !",
		challengeHeader(e.Year, e.Day), PuzzleURL(e.Year, e.Day), e.Title)
}

// PuzzleURL returns the public page of one puzzle.
func PuzzleURL(year, day int) string {
	return fmt.Sprintf("https://adventofcode.com/%d/day/%d", year, day)
}

func challengeHeader(year, day int) string {
	return fmt.Sprintf("Advent of Code %d * Day %02d", year, day)
}

// SolutionsThreadToOpen asks for the spoiler thread of a day to be
// seeded in the channel.
type SolutionsThreadToOpen struct {
	Day int
}

func (e SolutionsThreadToOpen) Render(time.Time) string {
	return fmt.Sprintf("👇 *Daily discussion thread for day %d*\n"+
		"    Refrain yourself to open until you complete part 2!\n"+
		"🚨 *Spoilers Ahead* :rotating_light:", e.Day)
}

// PrivateUpdated is the monitoring heartbeat confirming a successful
// private board refresh.
type PrivateUpdated struct{}

func (PrivateUpdated) Render(time.Time) string {
	return "🔁 Private Leaderboard successfully updated!"
}

// NewEntries carries the fresh completions of a refresh. Rendering
// splits them into the live day's solves and late catch ups.
type NewEntries struct {
	Highlights []aoc.Highlight
}

func (e NewEntries) Render(now time.Time) string {
	year, day := aoc.CurrentYearDay(now)
	var today, late []aoc.Highlight
	for _, h := range e.Highlights {
		if h.Year == year && h.Day == day {
			today = append(today, h)
		} else {
			late = append(late, h)
		}
	}
	var out strings.Builder
	if len(today) > 0 {
		out.WriteString(render(todayEntriesTmpl, entryLines(today)))
	}
	if len(late) > 0 {
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		out.WriteString(render(lateEntriesTmpl, entryLines(late)))
	}
	return out.String()
}

// NewMembers welcomes members seen on the private board for the first
// time.
type NewMembers struct {
	Names []string
}

func (e NewMembers) Render(time.Time) string {
	return render(memberJoinTmpl, e.Names)
}

// GlobalComplete reports the closing statistics of a filled global
// daily board.
type GlobalComplete struct {
	Year  int
	Day   int
	Stats aoc.Statistics
}

func (e GlobalComplete) Render(time.Time) string {
	return fmt.Sprintf("🌍 Global Leaderboard is complete for *day %d*! Here is how it went for the big dogs:\n"+
		"  • Part 1 finish time range: 🔥 *%s* - *%s* ❄️\n"+
		"  • Part 2 finish time range: 🔥 *%s* - *%s* ❄️\n"+
		"  • Delta times range: 🏃‍♀️ %s - %s 🚶‍♀️",
		e.Day,
		FormatDuration(e.Stats.P1Fast), FormatDuration(e.Stats.P1Slow),
		FormatDuration(e.Stats.P2Fast), FormatDuration(e.Stats.P2Slow),
		deltaStat(e.Stats.DeltaFast), deltaStat(e.Stats.DeltaSlow))
}

func deltaStat(d aoc.DeltaStat) string {
	return fmt.Sprintf("*%s* (%s)", FormatDuration(d.Duration), FormatRank(d.Rank))
}

// GlobalHero celebrates a private board member spotted on the global
// daily top hundred.
type GlobalHero struct {
	Name string
	Part aoc.Part
	Rank int
}

func (e GlobalHero) Render(time.Time) string {
	return fmt.Sprintf("🎉 🥳 Our very own *%s* made it to the global leaderboard on part *%s*! (*%s*) 🙌",
		e.Name, e.Part, FormatRank(e.Rank))
}

// HardChallenge teases the channel when the global board is still open
// long after the unlock. Cycle counts the watch polls so far, so the
// taunts escalate over the morning.
type HardChallenge struct {
	Minutes int
	Cycle   int
}

func (e HardChallenge) Render(time.Time) string {
	var taunt string
	switch e.Cycle {
	case 5:
		taunt = "Not sure about you, but it feels like the temperature 🤒 is suddenly rising..."
	case 8:
		taunt = "I guess now is a good time to have some handkerchief ready nearby in case you need to cry 😭."
	case 11:
		taunt = "Don't worry, feeling the urge to phone ☎️  a friend in order to cry for help 🆘 is a normal desire today."
	default:
		taunt = "Oh boy, time to raise the flag for hope 🏴 ... I can only wish you good luck 🤞, you will definitely need it today ..."
	}
	return fmt.Sprintf("😱 *%d minutes* went by already and there are still some spots to grab in the global leaderboard ...\n%s",
		e.Minutes, taunt)
}

// DailySummary recaps the front of the pack for one day of the private
// board.
type DailySummary struct {
	Year  int
	Day   int
	P1    []aoc.MemberDuration
	P2    []aoc.MemberDuration
	Delta []aoc.MemberDuration
}

func (e DailySummary) Render(time.Time) string {
	return render(summaryTmpl, summaryData{
		Day:   FormatRank(e.Day),
		Year:  e.Year,
		P1:    rankedLines(trophies, e.P1, 5),
		P2:    rankedLines(trophies, e.P2, 5),
		Delta: rankedLines(trophies, e.Delta, 5),
	})
}

// CommandReply is an already rendered answer heading back to the
// conversation that asked.
type CommandReply struct {
	Channel  string
	ThreadTS string
	Text     string
}

func (e CommandReply) Render(time.Time) string {
	return e.Text
}
