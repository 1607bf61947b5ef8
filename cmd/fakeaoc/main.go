// fakeaoc serves a canned Advent of Code site for local development:
// the private leaderboard JSON, the global daily pages and the puzzle
// pages, all driven by a YAML manifest. Point elfd's base_url at it and
// the whole pipeline runs without touching adventofcode.com.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
	"github.com/gcalmettes/christmas-elf-officer/observability/logging"
)

type manifest struct {
	Members []manifestMember    `yaml:"members"`
	Global  []manifestGlobalDay `yaml:"global"`
	Titles  map[int]string      `yaml:"titles"`
}

type manifestMember struct {
	ID          int64          `yaml:"id"`
	Name        string         `yaml:"name"`
	GlobalScore int            `yaml:"global_score"`
	Stars       []manifestStar `yaml:"stars"`
}

// manifestStar places one completion a duration after the day's unlock.
type manifestStar struct {
	Day   int    `yaml:"day"`
	Part  int    `yaml:"part"`
	After string `yaml:"after"`
}

type manifestGlobalDay struct {
	Day     int                   `yaml:"day"`
	Entries []manifestGlobalEntry `yaml:"entries"`
}

type manifestGlobalEntry struct {
	ID    int64  `yaml:"id"`
	Name  string `yaml:"name"`
	Rank  int    `yaml:"rank"`
	Part  int    `yaml:"part"`
	After string `yaml:"after"`
}

func main() {
	var listen, manifestPath string
	flag.StringVar(&listen, "listen", ":8989", "listen address")
	flag.StringVar(&manifestPath, "manifest", "fakeaoc.yaml", "fixture manifest")
	flag.Parse()

	logger := logging.Setup("fakeaoc", "dev", logging.Options{})

	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		logger.Error("read manifest", slog.String("error", err.Error()))
		os.Exit(1)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		logger.Error("decode manifest", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Get("/{year}/leaderboard/private/view/{id}.json", m.servePrivate)
	r.Get("/{year}/leaderboard/day/{day}", m.serveGlobal)
	r.Get("/{year}/day/{day}", m.serveChallenge)

	logger.Info("fakeaoc listening", slog.String("addr", listen), slog.String("manifest", manifestPath))
	srv := &http.Server{Addr: listen, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func pathInt(r *http.Request, key string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, key))
}

// servePrivate renders the manifest in the private JSON API's shape.
func (m manifest) servePrivate(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	members := make(map[string]any, len(m.Members))
	for _, member := range m.Members {
		completions := map[string]map[string]any{}
		for _, star := range member.Stars {
			after, err := time.ParseDuration(star.After)
			if err != nil {
				http.Error(w, fmt.Sprintf("star %v: %v", star, err), http.StatusInternalServerError)
				return
			}
			dayKey := strconv.Itoa(star.Day)
			if completions[dayKey] == nil {
				completions[dayKey] = map[string]any{}
			}
			completions[dayKey][strconv.Itoa(star.Part)] = map[string]int64{
				"get_star_ts": aoc.ReleaseTime(year, star.Day).Add(after).Unix(),
			}
		}
		entry := map[string]any{
			"id":                   member.ID,
			"global_score":         member.GlobalScore,
			"completion_day_level": completions,
		}
		if member.Name != "" {
			entry["name"] = member.Name
		} else {
			entry["name"] = nil
		}
		members[strconv.FormatInt(member.ID, 10)] = entry
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"event":   strconv.Itoa(year),
		"members": members,
	})
}

// serveGlobal renders a daily page the way adventofcode.com does: the
// both-stars hundred first, a divider, then the first-star hundred.
func (m manifest) serveGlobal(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	day, err := pathInt(r, "day")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	var entries []manifestGlobalEntry
	for _, d := range m.Global {
		if d.Day == day {
			entries = d.Entries
			break
		}
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, "<main><p>First hundred users to get <span class=\"leaderboard-daydesc-both\">both stars</span> on Day %d:</p>\n", day)
	for _, e := range entries {
		if e.Part == 2 {
			writeGlobalEntry(w, e, year, day)
		}
	}
	fmt.Fprintf(w, "<p>First hundred users to get the <span class=\"leaderboard-daydesc-first\">first star</span> on Day %d:</p>\n", day)
	for _, e := range entries {
		if e.Part == 1 {
			writeGlobalEntry(w, e, year, day)
		}
	}
	fmt.Fprint(w, "</main>\n")
}

func writeGlobalEntry(w http.ResponseWriter, e manifestGlobalEntry, year, day int) {
	after, err := time.ParseDuration(e.After)
	if err != nil {
		after = 0
	}
	// The page clock starts at midnight of the puzzle day.
	wall := time.Date(year, time.December, day, 0, 0, 0, 0, time.UTC).Add(after)
	stamp := wall.Format("Jan 02") + "  " + wall.Format("15:04:05")
	fmt.Fprintf(w,
		"<div class=\"leaderboard-entry\" data-user-id=\"%d\">"+
			"<span class=\"leaderboard-position\">%3d)</span> "+
			"<span class=\"leaderboard-time\">%s</span> "+
			"<span class=\"leaderboard-userphoto\"><img src=\"x\"/></span>%s</div>\n",
		e.ID, e.Rank, stamp, html.EscapeString(e.Name))
}

func (m manifest) serveChallenge(w http.ResponseWriter, r *http.Request) {
	day, err := pathInt(r, "day")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	title := m.Titles[day]
	if title == "" {
		title = "Not Quite Lisp"
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, "<main><article class=\"day-desc\"><h2>--- Day %d: %s ---</h2><p>…</p></article></main>\n",
		day, html.EscapeString(title))
}
