package scoreboard

import (
	"fmt"
	"sort"

	"github.com/bryanwahyu/esr-tracker/src/domain/match"
	"github.com/bryanwahyu/esr-tracker/src/domain/shared"
	"github.com/bryanwahyu/esr-tracker/src/domain/team"
)

// DefaultRecentLimit is used when a non-positive limit is requested.
const DefaultRecentLimit = 5

// Standing is one row of a ranked table.
type Standing struct {
	Team  shared.TeamName
	Score int
}

// RecentMatches orders matches newest first and keeps the first n.
// Matches on the same date keep their recorded order. Any unparseable
// date fails the whole query.
func RecentMatches(matches []match.Match, n int) ([]match.Match, error) {
	if n <= 0 {
		n = DefaultRecentLimit
	}

	type dated struct {
		m    match.Match
		unix int64
	}
	rows := make([]dated, len(matches))
	for i, m := range matches {
		d, err := m.PlayedOn()
		if err != nil {
			return nil, fmt.Errorf("match %d: %w", i+1, err)
		}
		rows[i] = dated{m: m, unix: d.Unix()}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].unix > rows[j].unix
	})

	if len(rows) > n {
		rows = rows[:n]
	}
	out := make([]match.Match, len(rows))
	for i, r := range rows {
		out[i] = r.m
	}
	return out, nil
}

// OverallStandings ranks teams by cumulative score. Ties keep store order.
func OverallStandings(teams []team.Team) []Standing {
	out := make([]Standing, len(teams))
	for i, t := range teams {
		out[i] = Standing{Team: t.Name, Score: t.Score}
	}
	rank(out)
	return out
}

// GameStandings counts wins per team over the matches of one game.
// Every team that played the game is listed, in order of first
// appearance on ties. A team listed on both sides of a match counts once.
func GameStandings(matches []match.Match, title shared.GameTitle) []Standing {
	index := map[shared.TeamName]int{}
	out := []Standing{}
	for _, m := range matches {
		if m.Game != title {
			continue
		}
		for k, name := range m.Participants() {
			if k == 1 && name == m.Team1 {
				break
			}
			i, ok := index[name]
			if !ok {
				i = len(out)
				index[name] = i
				out = append(out, Standing{Team: name})
			}
			if name == m.Winner {
				out[i].Score++
			}
		}
	}
	rank(out)
	return out
}

// PlayedGames lists the distinct games with at least one match, sorted by title.
func PlayedGames(matches []match.Match) []shared.GameTitle {
	seen := map[shared.GameTitle]struct{}{}
	out := []shared.GameTitle{}
	for _, m := range matches {
		if _, ok := seen[m.Game]; ok {
			continue
		}
		seen[m.Game] = struct{}{}
		out = append(out, m.Game)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func rank(standings []Standing) {
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})
}
