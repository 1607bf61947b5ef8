package aocclient

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
)

// The global daily page lists the hundred both-stars finishers first,
// then a banner introducing the hundred first-star finishers. Entries
// seen before the banner therefore belong to part two.
const firstStarMarker = "leaderboard-daydesc-first"

func parseGlobalLeaderboard(body []byte, year, day int) (*aoc.Leaderboard, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse global leaderboard: %v: %w", err, aoc.ErrParse)
	}

	board := aoc.NewLeaderboard()
	part := aoc.Part2
	var walk func(*html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode {
			if hasClass(n, firstStarMarker) {
				part = aoc.Part1
			}
			if n.Data == "div" && hasClass(n, "leaderboard-entry") {
				entry, err := parseGlobalEntry(n, year, day, part)
				if err != nil {
					return err
				}
				board.Add(entry)
				return nil
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc); err != nil {
		return nil, err
	}
	return board, nil
}

func parseGlobalEntry(n *html.Node, year, day int, part aoc.Part) (aoc.Entry, error) {
	rawID, ok := attr(n, "data-user-id")
	if !ok {
		return aoc.Entry{}, fmt.Errorf("global entry without user id: %w", aoc.ErrParse)
	}
	number, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return aoc.Entry{}, fmt.Errorf("global entry user id %q: %w", rawID, aoc.ErrParse)
	}

	posNode := findClass(n, "leaderboard-position")
	if posNode == nil {
		return aoc.Entry{}, fmt.Errorf("global entry %d: no position: %w", number, aoc.ErrParse)
	}
	rawRank := strings.TrimSuffix(strings.TrimSpace(nodeText(posNode)), ")")
	rank, err := strconv.Atoi(rawRank)
	if err != nil {
		return aoc.Entry{}, fmt.Errorf("global entry %d: position %q: %w", number, rawRank, aoc.ErrParse)
	}

	timeNode := findClass(n, "leaderboard-time")
	if timeNode == nil {
		return aoc.Entry{}, fmt.Errorf("global entry %d: no finish time: %w", number, aoc.ErrParse)
	}
	since, err := parseSinceUnlock(nodeText(timeNode), year, day)
	if err != nil {
		return aoc.Entry{}, fmt.Errorf("global entry %d: %w", number, err)
	}

	member := aoc.MemberID{Name: entryName(n, number), Number: number}
	return aoc.NewRankedEntry(aoc.ReleaseTime(year, day).Add(since), year, day, part, member, rank)
}

// Finish times render as "Dec 01  00:01:23" in the puzzle's wall clock,
// where midnight is the moment of release. A finish past midnight rolls
// the printed date forward, so elapsed time is measured against the
// puzzle day rather than the printed one.
func parseSinceUnlock(raw string, year, day int) (time.Duration, error) {
	fields := strings.Fields(raw)
	if len(fields) != 3 {
		return 0, fmt.Errorf("finish time %q: %w", raw, aoc.ErrParse)
	}
	finished, err := time.Parse("2006 Jan 2 15:04:05", fmt.Sprintf("%d %s %s %s", year, fields[0], fields[1], fields[2]))
	if err != nil {
		return 0, fmt.Errorf("finish time %q: %v: %w", raw, err, aoc.ErrParse)
	}
	unlock := time.Date(year, time.December, day, 0, 0, 0, 0, time.UTC)
	since := finished.Sub(unlock)
	if since < 0 {
		return 0, fmt.Errorf("finish time %q precedes unlock: %w", raw, aoc.ErrParse)
	}
	return since, nil
}

// entryName pulls the display name out of an entry row. Positions,
// times, photos and supporter or sponsor badges are skipped. Members
// hiding their name carry an anonymous label upstream; it is dropped
// here and synthesised instead, so the global and private forms of the
// same member agree.
func entryName(n *html.Node, number int64) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode {
			switch {
			case hasClass(c, "leaderboard-position"),
				hasClass(c, "leaderboard-time"),
				hasClass(c, "leaderboard-totalscore"),
				hasClass(c, "leaderboard-userphoto"),
				hasClass(c, "leaderboard-anon"),
				hasClass(c, "supporter-badge"),
				hasClass(c, "sponsor-badge"):
				return
			}
		}
		if c.Type == html.TextNode {
			parts = append(parts, c.Data)
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	name := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if name == "" {
		return aoc.AnonymousName(number)
	}
	return name
}

// parseChallengeTitle extracts the puzzle headline, kept verbatim in
// its "--- Day 9: Rope Bridge ---" form.
func parseChallengeTitle(body []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse challenge page: %v: %w", err, aoc.ErrParse)
	}
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "h2" {
			title = strings.Join(strings.Fields(nodeText(n)), " ")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if title == "" {
		return "", fmt.Errorf("challenge page has no title: %w", aoc.ErrParse)
	}
	return title, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, name string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	classes, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(classes) {
		if c == name {
			return true
		}
	}
	return false
}

func findClass(n *html.Node, name string) *html.Node {
	if hasClass(n, name) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findClass(c, name); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	walk(n)
	return b.String()
}
