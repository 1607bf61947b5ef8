// Package server exposes a read-only HTTP view over the bot's cached
// standings: liveness, prometheus metrics and the same boards the chat
// commands answer with. Every handler works on an independent copy of
// the cache, so requests never contend with the poll jobs beyond the
// clone itself.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
)

// Boards hands out independent copies of the cached state.
// *storage.Cache satisfies it.
type Boards interface {
	PrivateSnapshot() *aoc.Snapshot
	GlobalBoard() *aoc.Leaderboard
	Sizes() (private, global int)
}

// Config captures the dependencies required to construct the server.
type Config struct {
	Boards Boards
	Logger *slog.Logger
}

// Server is the admin HTTP API.
type Server struct {
	boards Boards
	logger *slog.Logger
	Now    func() time.Time

	router http.Handler
}

// New constructs a configured router over the cache.
func New(cfg Config) *Server {
	srv := &Server{
		boards: cfg.Boards,
		logger: cfg.Logger,
		Now:    time.Now,
	}
	if srv.logger == nil {
		srv.logger = slog.Default()
	}
	srv.router = srv.buildRouter()
	return srv
}

// Handler exposes the configured HTTP router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/v1", func(api chi.Router) {
		api.Get("/board/{year}", s.handleBoard)
		api.Get("/tdf/{year}", s.handleTDF)
		api.Get("/fast/{year}/{day}", s.handleFast)
		api.Get("/stats/{year}/{day}", s.handleStats)
	})
	return r
}

type memberJSON struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

func member(m aoc.MemberID) memberJSON {
	return memberJSON{Name: m.Name, ID: m.Number}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	private, global := s.boards.Sizes()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"entries": private + global,
	})
}

type boardRowJSON struct {
	Member memberJSON `json:"member"`
	Stars  int        `json:"stars"`
	Score  int        `json:"score"`
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}
	scoring, err := aoc.ParseScoring(r.URL.Query().Get("scoring"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	snap := s.boards.PrivateSnapshot()
	rows := aoc.StandingsBoard(snap.Board, scoring, year)
	out := make([]boardRowJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, boardRowJSON{Member: member(row.Member), Stars: row.Stars, Score: row.Score})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":    year,
		"scoring": scoring.String(),
		"rows":    out,
	})
}

type tdfRowJSON struct {
	Member memberJSON `json:"member"`
	Total  int64      `json:"total"`
	Count  int64      `json:"count"`
}

func (s *Server) handleTDF(w http.ResponseWriter, r *http.Request) {
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}
	jersey, err := aoc.ParseJersey(r.URL.Query().Get("jersey"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	snap := s.boards.PrivateSnapshot()
	body := map[string]any{"year": year, "jersey": jersey.String()}
	if raw := r.URL.Query().Get("day"); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || day < 1 || day > 25 {
			writeError(w, http.StatusBadRequest, errors.New("day must be 1..25"))
			return
		}
		body["day"] = day
		if jersey == aoc.JerseyYellow {
			// Time based jersey: the day view is the part-2 solve times.
			rows := aoc.StandingsTime(snap.Board, aoc.RankingPart2, year, day)
			out := make([]durationRowJSON, 0, len(rows))
			for _, row := range rows {
				out = append(out, durationRowJSON{
					Member:   member(row.Member),
					Duration: row.Duration.String(),
					Seconds:  int64(row.Duration.Seconds()),
				})
			}
			body["rows"] = out
			writeJSON(w, http.StatusOK, body)
			return
		}
		rows := aoc.DailyPoints(snap.Board, jersey, year, day)
		out := make([]tdfRowJSON, 0, len(rows))
		for _, row := range rows {
			out = append(out, tdfRowJSON{Member: member(row.Member), Total: int64(row.Score)})
		}
		body["rows"] = out
		writeJSON(w, http.StatusOK, body)
		return
	}
	rows := aoc.StandingsTDF(snap.Board, jersey, year, s.Now())
	out := make([]tdfRowJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, tdfRowJSON{Member: member(row.Member), Total: row.Total, Count: row.Count})
	}
	body["rows"] = out
	writeJSON(w, http.StatusOK, body)
}

type durationRowJSON struct {
	Member   memberJSON `json:"member"`
	Duration string     `json:"duration"`
	Seconds  int64      `json:"seconds"`
}

func (s *Server) handleFast(w http.ResponseWriter, r *http.Request) {
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}
	day, ok := pathInt(w, r, "day")
	if !ok {
		return
	}
	ranking, err := aoc.ParseRanking(r.URL.Query().Get("ranking"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	snap := s.boards.PrivateSnapshot()
	rows := aoc.StandingsTime(snap.Board, ranking, year, day)
	out := make([]durationRowJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, durationRowJSON{
			Member:   member(row.Member),
			Duration: row.Duration.String(),
			Seconds:  int64(row.Duration.Seconds()),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":    year,
		"day":     day,
		"ranking": ranking.String(),
		"rows":    out,
	})
}

type deltaJSON struct {
	Duration string `json:"duration"`
	Rank     int    `json:"rank"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}
	day, ok := pathInt(w, r, "day")
	if !ok {
		return
	}
	stats, err := aoc.DayStatistics(s.boards.GlobalBoard(), year, day)
	if errors.Is(err, aoc.ErrMissingStatistic) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":       year,
		"day":        day,
		"p1_fast":    stats.P1Fast.String(),
		"p1_slow":    stats.P1Slow.String(),
		"p2_fast":    stats.P2Fast.String(),
		"p2_slow":    stats.P2Slow.String(),
		"delta_fast": deltaJSON{Duration: stats.DeltaFast.Duration.String(), Rank: stats.DeltaFast.Rank},
		"delta_slow": deltaJSON{Duration: stats.DeltaSlow.Duration.String(), Rank: stats.DeltaSlow.Rank},
	})
}

func pathInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, key))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New(key+" must be numeric"))
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
