package aocclient

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gcalmettes/christmas-elf-officer/aoc"
)

// Wire shapes of the private leaderboard API. Only the fields the bot
// consumes are declared; the rest of the payload is ignored.
type privateBoard struct {
	Event   string                   `json:"event"`
	Members map[string]privateMember `json:"members"`
}

type privateMember struct {
	// Anonymous members come through with a null name.
	Name        *string                           `json:"name"`
	ID          int64                             `json:"id"`
	GlobalScore int                               `json:"global_score"`
	Completions map[string]map[string]privateStar `json:"completion_day_level"`
}

type privateStar struct {
	GetStarTS int64 `json:"get_star_ts"`
}

func parsePrivateLeaderboard(body []byte) (*aoc.Snapshot, error) {
	var decoded privateBoard
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode private leaderboard: %v: %w", err, aoc.ErrParse)
	}
	year, err := strconv.Atoi(decoded.Event)
	if err != nil {
		return nil, fmt.Errorf("event %q is not a year: %w", decoded.Event, aoc.ErrParse)
	}

	snap := aoc.NewSnapshot()
	for _, member := range decoded.Members {
		name := aoc.AnonymousName(member.ID)
		if member.Name != nil && *member.Name != "" {
			name = *member.Name
		}
		id := aoc.MemberID{Name: name, Number: member.ID}

		if member.GlobalScore > 0 {
			snap.GlobalScores[aoc.YearMember{Year: year, Member: id}] = member.GlobalScore
		}

		for dayKey, parts := range member.Completions {
			day, err := strconv.Atoi(dayKey)
			if err != nil {
				return nil, fmt.Errorf("member %s: day %q: %w", name, dayKey, aoc.ErrParse)
			}
			for partKey, star := range parts {
				part, err := aoc.ParsePart(partKey)
				if err != nil {
					return nil, fmt.Errorf("member %s day %d: %w", name, day, err)
				}
				entry, err := aoc.NewEntry(time.Unix(star.GetStarTS, 0), year, day, part, id)
				if err != nil {
					return nil, fmt.Errorf("member %s day %d part %s: %w", name, day, part, err)
				}
				snap.Board.Add(entry)
			}
		}
	}
	return snap, nil
}
