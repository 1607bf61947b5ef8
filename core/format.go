// Package core turns engine results into the bot's chat surface. It
// parses the commands members type in the channel, renders every
// announcement the scheduler emits, and draws the fixed width boards
// that go inside code blocks.
package core

import (
	"fmt"
	"strings"
	"time"
)

// Position markers for ranked lists. The champion sets get symbols, the
// chasing pack gets aligned numbering.
var (
	medals   = []string{"🥇", "🥈", "🥉"}
	trophies = []string{"🏆", "🥈", "🥉", "🍫", "🍬"}
)

// FormatDuration renders a duration as HH:MM:SS with unbounded hours,
// so week-long penalties stay readable in a single column.
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	neg := ""
	if total < 0 {
		neg, total = "-", -total
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", neg, total/3600, (total%3600)/60, total%60)
}

// FormatDurationDays folds whole days out of long durations, rendering
// "4d 03:02:01". Durations under a day fall back to FormatDuration.
func FormatDurationDays(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 86400 {
		return FormatDuration(d)
	}
	days, rem := total/86400, total%86400
	return fmt.Sprintf("%dd %02d:%02d:%02d", days, rem/3600, (rem%3600)/60, rem%60)
}

// OrdinalSuffix returns the English ordinal suffix for a number,
// honouring the eleventh through thirteenth exceptions.
func OrdinalSuffix(n int) string {
	s := fmt.Sprintf("%d", n)
	switch {
	case strings.HasSuffix(s, "1") && !strings.HasSuffix(s, "11"):
		return "st"
	case strings.HasSuffix(s, "2") && !strings.HasSuffix(s, "12"):
		return "nd"
	case strings.HasSuffix(s, "3") && !strings.HasSuffix(s, "13"):
		return "rd"
	default:
		return "th"
	}
}

// FormatRank renders a position as "1st", "2nd", "38th".
func FormatRank(n int) string {
	return fmt.Sprintf("%d%s", n, OrdinalSuffix(n))
}

// prefixes builds the position markers for n ranked lines: the symbol
// set first, then numbered markers padded to line up with the two
// column symbols.
func prefixes(symbols []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		pos := i + 1
		switch {
		case pos <= len(symbols):
			out[i] = symbols[i] + " "
		case pos <= 9:
			out[i] = fmt.Sprintf("  %d) ", pos)
		default:
			out[i] = fmt.Sprintf("%d) ", pos)
		}
	}
	return out
}
