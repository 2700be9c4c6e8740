package match

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bryanwahyu/esr-tracker/src/domain/shared"
)

// DateLayout is the format new match dates are written in.
const DateLayout = time.DateOnly

// Match is a recorded result. Date is kept as entered so that a
// malformed value survives a save/load round trip untouched.
type Match struct {
	Date   string
	Game   shared.GameTitle
	Team1  shared.TeamName
	Team2  shared.TeamName
	Winner shared.TeamName
}

// NewMatch builds a match after checking that no field is blank.
func NewMatch(date string, game shared.GameTitle, team1, team2, winner shared.TeamName) (Match, error) {
	m := Match{Date: date, Game: game, Team1: team1, Team2: team2, Winner: winner}
	if err := m.Validate(); err != nil {
		return Match{}, err
	}
	return m, nil
}

// Validate reports ErrIncompleteMatch when any field is blank and
// rejects fields spanning more than one line.
func (m Match) Validate() error {
	for _, field := range []string{m.Date, string(m.Game), string(m.Team1), string(m.Team2), string(m.Winner)} {
		if strings.TrimSpace(field) == "" {
			return ErrIncompleteMatch
		}
		if strings.ContainsAny(field, "\r\n") {
			return fmt.Errorf("%w: match field %q contains a line break", shared.ErrInvalid, field)
		}
	}
	return nil
}

// PlayedOn parses Date as year-month-day. The year has four digits;
// month and day may omit their leading zero, so "2024-1-5" is accepted.
func (m Match) PlayedOn() (time.Time, error) {
	d, ok := parseDate(m.Date)
	if !ok {
		return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, m.Date)
	}
	return d, nil
}

func parseDate(s string) (time.Time, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return time.Time{}, false
	}
	year, ok := number(parts[0])
	if !ok {
		return time.Time{}, false
	}
	month, ok := number(parts[1])
	if !ok || len(parts[1]) > 2 || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, ok := number(parts[2])
	if !ok || len(parts[2]) > 2 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises overflow such as February 30.
	if d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// number accepts ASCII digits only, unlike strconv.Atoi which allows a sign.
func number(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// WinningTeam returns the winner when it is one of the two participants.
func (m Match) WinningTeam() (shared.TeamName, bool) {
	if m.Winner == m.Team1 || m.Winner == m.Team2 {
		return m.Winner, true
	}
	return "", false
}

// Participants returns team1 then team2.
func (m Match) Participants() [2]shared.TeamName {
	return [2]shared.TeamName{m.Team1, m.Team2}
}
