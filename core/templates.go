package core

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
)

// Message bodies with loops or branches live here as templates over
// pre-formatted rows, so every piece of channel copy stays in one
// place. One liners are assembled directly by the events.

const summaryDivider = "___________________________________________________________________"

const helpMessage = "🗒️ Nice work, you've found the *CEO commands handbook*.\n" +
	"Note that the command arguments parsing system is a marvel of regex engineering, " +
	"and as such the order of the optional arguments passed to a command does not " +
	"(or at least should not...) matter.\n\n" +
	"👉 🆘 *How to*\n" +
	"```!help```\n" +
	"List and explains the bot commands. You're currently reading this.\n\n" +
	"👉 🏎️ *Fastest of the West!*\n" +
	"```!fast [ranking method] [day] [year]```\n" +
	"Fastest time(s) for the day. By default, the ranking is based on the `delta` time " +
	"for the day, but individual `p1` and `p2` rankings are also available. " +
	"Note that you can also access the ranking of the closest finishes before cutoff " +
	"(i.e.: the least amount of time before the next puzzle release) with the `limit` method " +
	"(those times are used to attribute points for the `!tdf combative` jersey). " +
	"If no day and/or year is set, the current day/or year is automatically defined.\n\n" +
	"👉 📊 *Show me the board!*\n" +
	"```!board [ranking method] [year]```\n" +
	"Current score and stars completion for the year, shown as a neat ascii board. " +
	"Default is ranking by `local` score for the current year, but ranking by number " +
	"of `stars` is also available.\n\n" +
	"👉 🚴 *The long haul!*\n" +
	"```!tdf [jersey color] [day] [year]```\n" +
	"Tour de France alternative standings! Come join the peloton and compete to earn " +
	"`yellow` jersey credentials, or accumulate points for the coveted `green` or " +
	"`combative` jerseys. Default is ranking for the Yellow jersey for the current year.\n" +
	"- `yellow` jersey ranking is based on the accumulated time for the full (part 2) " +
	"solve each day (a penalty of 7 days is applied for every day not fully solved, " +
	"or any day taking longer to solve than the penalty time).\n" +
	"- `green` jersey points are earned each day by going full blast between part 1 " +
	"and part 2 ! The points attributed are based on the official Tour de France " +
	"green jersey points.\n" +
	"- `combative` jersey points are attributed each day to the brave soul showing grit " +
	"by not throwing the towel too early and keeping their focus on finishing a day " +
	"before the next one starts ... The closer to the cutoff, the more points earned !"

// rankedLine is one pre-formatted row of a timed ranking.
type rankedLine struct {
	Prefix string
	Name   string
	Time   string
}

// rankedLines decorates timed rows with position markers and right
// aligned clock readings. A zero limit keeps every row.
func rankedLines(symbols []string, rows []aoc.MemberDuration, limit int) []rankedLine {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	marks := prefixes(symbols, len(rows))
	out := make([]rankedLine, len(rows))
	for i, r := range rows {
		out[i] = rankedLine{
			Prefix: marks[i],
			Name:   r.Member.Name,
			Time:   fmt.Sprintf("%9s", FormatDuration(r.Duration)),
		}
	}
	return out
}

const rankedRow = "\n{{.Prefix}} in ⏱️ {{.Time}} 👉🏻 *{{.Name}}*"

var summaryTmpl = template.Must(template.New("summary").Parse(
	"🗓️ *December, {{.Day}} {{.Year}}*\n" +
		"----- 🥁 *Daily update* 🗞️ -----\n" +
		"Here is how things went down at the front of the pack today:\n" +
		summaryDivider + "\n" +
		"Top 5 to finish *PART 1* 🏁{{range .P1}}" + rankedRow + "{{end}}\n" +
		summaryDivider + "\n" +
		"Top 5 to finish *PART 2* 🏁{{range .P2}}" + rankedRow + "{{end}}\n" +
		summaryDivider + "\n" +
		"Top 5 *DELTA* 🏁{{range .Delta}}" + rankedRow + "{{end}}"))

type summaryData struct {
	Day   string
	Year  int
	P1    []rankedLine
	P2    []rankedLine
	Delta []rankedLine
}

var rankingTmpl = template.Must(template.New("ranking").Parse(
	"{{if .CurrentDay}}Today's {{.Adjective}} *{{.Method}} time* (as of {{.Timestamp}}):" +
		"{{else}}{{.TitleAdjective}} *{{.Method}} time* for day {{.Day}}/12/{{.Year}}:{{end}}" +
		"{{range .Rows}}" + rankedRow + "{{end}}"))

type rankingData struct {
	CurrentDay     bool
	Adjective      string
	TitleAdjective string
	Method         string
	Timestamp      string
	Day            int
	Year           int
	Rows           []rankedLine
}

var boardTmpl = template.Must(template.New("board").Parse(
	"{{if .CurrentYear}}📓 Current Leaderboard by {{.Scoring}} as of {{.Timestamp}}:" +
		"{{else}}📓 Leaderboard by {{.Scoring}} from the {{.Year}} event:{{end}}\n" +
		"```{{.Body}}```"))

type boardData struct {
	CurrentYear bool
	Scoring     string
	Timestamp   string
	Year        int
	Body        string
}

var tdfTmpl = template.Must(template.New("tdf").Parse(
	"{{if and .CurrentYear (not .HasDay)}}🚴 {{.Label}} Jersey current standings as of {{.Timestamp}}:" +
		"{{else if not .HasDay}}🚴 {{.Label}} Jersey standings from the *{{.Year}}* event:" +
		"{{else}}🚴 {{.Label}} Jersey standings for *day {{.Day}}* of the {{.Year}} event:{{end}}\n" +
		"```{{.Standings}}```"))

type tdfData struct {
	CurrentYear bool
	HasDay      bool
	Label       string
	Timestamp   string
	Day         int
	Year        int
	Standings   string
}

// entryLine is one member's fresh haul inside a board update message.
type entryLine struct {
	Name   string
	Stars  int
	Day    int
	Both   bool
	Delta  string
	Points int
}

var todayEntriesTmpl = template.Must(template.New("today").Parse(
	"{{range .}}\n📣 {{.Name}} just earned *{{.Stars}}* more star{{if gt .Stars 1}}s{{end}} " +
		"for day {{.Day}} ({{if .Both}}⭐⭐ *<-> {{.Delta}} *{{else}}⭐{{end}}) +{{.Points}}pts{{end}}\n"))

var lateEntriesTmpl = template.Must(template.New("late").Parse(
	"{{range .}}\n🚂  {{.Name}} just caught up on *{{.Stars}}* more star{{if gt .Stars 1}}s{{end}} " +
		"for day {{.Day}} ({{if .Both}}🤩 both parts completed! *<-> {{.Delta}} *{{else}}✔️{{end}}) +{{.Points}}pts{{end}}"))

var memberJoinTmpl = template.Must(template.New("join").Parse(
	"{{range .}}\n🕺 A new player has joined the christmas arena ! " +
		"Happy to have you on board *{{.}}* !{{end}}"))

// render executes a message template. The inputs are package-built
// structs over vetted templates, so a failure is a programming error.
func render(t *template.Template, data any) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		panic(fmt.Sprintf("render %s: %v", t.Name(), err))
	}
	return b.String()
}

func entryLines(highlights []aoc.Highlight) []entryLine {
	out := make([]entryLine, len(highlights))
	for i, h := range highlights {
		out[i] = entryLine{
			Name:   h.Member.Name,
			Stars:  h.Stars,
			Day:    h.Day,
			Both:   h.HasDelta,
			Delta:  FormatDuration(h.Delta),
			Points: h.NewPoints,
		}
	}
	return out
}
