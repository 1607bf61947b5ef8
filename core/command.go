package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
)

// commands lists the channel triggers the bot answers.
var commands = []string{"!help", "!fast", "!board", "!tdf"}

// The option group sits last so the typed groups win at the same
// position.
var commandPattern = regexp.MustCompile(fmt.Sprintf(
	`(?P<cmd>^%s)|(?P<year>\b\d{4}\b)|(?P<day>\b\d{1,2}\b)|(?P<option>\b\S+\b)`,
	strings.Join(commands, "|^")))

// commandTokens scans a message for the first occurrence of each token
// group.
func commandTokens(input string) map[string]string {
	names := commandPattern.SubexpNames()
	tokens := make(map[string]string)
	for _, match := range commandPattern.FindAllStringSubmatch(input, -1) {
		for i, name := range names {
			if name == "" || match[i] == "" {
				continue
			}
			if _, seen := tokens[name]; !seen {
				tokens[name] = match[i]
			}
		}
	}
	return tokens
}

// IsCommand reports whether a channel message addresses the bot.
func IsCommand(text string) bool {
	_, ok := commandTokens(strings.TrimSpace(text))["cmd"]
	return ok
}

// CommandKind discriminates the parsed channel commands.
type CommandKind uint8

const (
	CommandHelp CommandKind = iota + 1
	CommandNotValid
	CommandRanking
	CommandBoard
	CommandTDF
)

// Command is one parsed channel instruction, ready to be answered
// against a board snapshot.
type Command struct {
	Kind    CommandKind
	Year    int
	Day     int
	HasDay  bool
	Ranking aoc.Ranking
	Scoring aoc.Scoring
	Jersey  aoc.Jersey
	Refusal string
}

// ParseCommand interprets a channel message. The boolean is false when
// the message is not addressed to the bot at all; impossible requests
// parse to a CommandNotValid carrying the refusal to post.
func ParseCommand(text string, now time.Time) (Command, bool) {
	tokens := commandTokens(strings.TrimSpace(text))
	name, ok := tokens["cmd"]
	if !ok {
		return Command{}, false
	}
	curYear, curDay := aoc.CurrentYearDay(now)
	year := curYear
	if s, ok := tokens["year"]; ok {
		year, _ = strconv.Atoi(s)
	}
	day, hasDay := curDay, false
	if s, ok := tokens["day"]; ok {
		day, _ = strconv.Atoi(s)
		hasDay = true
	}

	switch name {
	case "!help":
		return Command{Kind: CommandHelp}, true

	case "!fast":
		ranking := aoc.RankingDelta
		if s, ok := tokens["option"]; ok {
			if r, err := aoc.ParseRanking(s); err == nil {
				ranking = r
			}
		}
		if msg := refuseYearDay(year, day, true, now); msg != "" {
			return Command{Kind: CommandNotValid, Refusal: msg}, true
		}
		return Command{Kind: CommandRanking, Year: year, Day: day, HasDay: true, Ranking: ranking}, true

	case "!board":
		scoring := aoc.ScoringLocal
		if s, ok := tokens["option"]; ok {
			if sc, err := aoc.ParseScoring(s); err == nil {
				scoring = sc
			}
		}
		if msg := refuseYearDay(year, 0, false, now); msg != "" {
			return Command{Kind: CommandNotValid, Refusal: msg}, true
		}
		return Command{Kind: CommandBoard, Year: year, Scoring: scoring}, true

	case "!tdf":
		jersey := aoc.JerseyYellow
		if s, ok := tokens["option"]; ok {
			if j, err := aoc.ParseJersey(s); err == nil {
				jersey = j
			}
		}
		if msg := refuseYearDay(year, day, hasDay, now); msg != "" {
			return Command{Kind: CommandNotValid, Refusal: msg}, true
		}
		cmd := Command{Kind: CommandTDF, Year: year, Jersey: jersey}
		if hasDay {
			cmd.Day, cmd.HasDay = day, true
		}
		return cmd, true
	}
	return Command{}, false
}

// refuseYearDay returns the playful refusal for a year and day the bot
// cannot answer about, or empty when the request is fine.
func refuseYearDay(year, day int, hasDay bool, now time.Time) string {
	if year < aoc.FirstEventYear {
		return fmt.Sprintf("I see that you are like me, loving the thrill of exploring old archives 🗃️!\n"+
			"However, sorry to break it to you, but there is *no gem to be found in %d* "+
			"as the AOC event only started in 2015...", year)
	}
	curYear, curDay := aoc.CurrentYearDay(now)
	if year > curYear {
		delta := year - curYear
		return fmt.Sprintf("I like the enthusiasm, but unfortunately I am no Nostradamus 🧙 and can't see in the future 🔮 ...\n"+
			"*Come back in %d year%s* to discover the standings for *%d*!", delta, plural(delta), year)
	}
	if !hasDay {
		return ""
	}
	if day == 0 {
		return "Mmmhhh, looks like you wrote too much Python 🐍 and are now convinced that everything is zero-indexed, " +
			"but in real-life the first day of the month is one 1️⃣."
	}
	if day > aoc.LastEventDay {
		return fmt.Sprintf("You're definitely free to code after Christmas 🎄, but *AOC puzzles stop after the %dth*.", aoc.LastEventDay)
	}
	if year == curYear && day > curDay {
		release := aoc.ReleaseTime(year, day)
		if now.UTC().Year() == release.Year() && now.UTC().YearDay() == release.YearDay() {
			return "The wait is almost over ⌛, today's first puzzle will be released at 05:00 UTC!"
		}
		delta := day - curDay
		return fmt.Sprintf("I know the suspense is unbearable, but I can't go faster than the music 🎶...\n"+
			"*Come back in %d day%s* to see what's happening on December %s.", delta, plural(delta), FormatRank(day))
	}
	return ""
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

// Respond computes the reply text for a parsed command against a board
// snapshot. The clock only matters for jerseys of a season still
// running, where it bounds the chargeable days.
func (c Command) Respond(snap *aoc.Snapshot, now time.Time) string {
	switch c.Kind {
	case CommandHelp:
		return helpMessage
	case CommandNotValid:
		return "🙅 " + c.Refusal
	}
	if snap == nil {
		snap = aoc.NewSnapshot()
	}
	ts := snap.Timestamp.Local()
	stamp := ts.Format("02/01/2006 15:04:05")

	switch c.Kind {
	case CommandRanking:
		rows := aoc.StandingsTime(snap.Board, c.Ranking, c.Year, c.Day)
		adjective, title := "fastest", "Fastest"
		if c.Ranking == aoc.RankingLimit {
			adjective, title = "closest", "Closest"
		}
		return render(rankingTmpl, rankingData{
			CurrentDay:     c.Year == ts.Year() && c.Day == ts.Day(),
			Adjective:      adjective,
			TitleAdjective: title,
			Method:         c.Ranking.String(),
			Timestamp:      stamp,
			Day:            c.Day,
			Year:           c.Year,
			Rows:           rankedLines(medals, rows, 0),
		})

	case CommandBoard:
		label := "*local score*"
		if c.Scoring == aoc.ScoringStars {
			label = "*number of stars*"
		}
		return render(boardTmpl, boardData{
			CurrentYear: c.Year == ts.Year(),
			Scoring:     label,
			Timestamp:   stamp,
			Year:        c.Year,
			Body:        displayBoard(aoc.StandingsBoard(snap.Board, c.Scoring, c.Year), c.Scoring),
		})

	case CommandTDF:
		var body string
		switch {
		case !c.HasDay:
			rows := aoc.StandingsTDF(snap.Board, c.Jersey, c.Year, now)
			if c.Jersey == aoc.JerseyYellow {
				body = displayTDFTime(rows)
			} else {
				body = displayTDFPoints(rows)
			}
		case c.Jersey == aoc.JerseyYellow:
			body = displayDailyTimes(aoc.StandingsTime(snap.Board, aoc.RankingPart2, c.Year, c.Day))
		default:
			body = displayDailyPoints(aoc.DailyPoints(snap.Board, c.Jersey, c.Year, c.Day))
		}
		return render(tdfTmpl, tdfData{
			CurrentYear: c.Year == ts.Year(),
			HasDay:      c.HasDay,
			Label:       jerseyLabel(c.Jersey),
			Timestamp:   stamp,
			Day:         c.Day,
			Year:        c.Year,
			Standings:   body,
		})
	}
	return ""
}

func jerseyLabel(j aoc.Jersey) string {
	switch j {
	case aoc.JerseyGreen:
		return "🟢 Green 🍏"
	case aoc.JerseyCombative:
		return "⚫Combative 🥋"
	default:
		return "🟡 Yellow 🛵"
	}
}
