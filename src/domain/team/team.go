package team

import "github.com/bryanwahyu/esr-tracker/src/domain/shared"

// Team is a competitor with a cumulative win count.
type Team struct {
	Name  shared.TeamName
	Score int
}

// NewTeam creates a team with the given starting score.
func NewTeam(name shared.TeamName, score int) (Team, error) {
	if err := name.Validate(); err != nil {
		return Team{}, err
	}
	if score < 0 {
		return Team{}, ErrNegativeScore
	}
	return Team{Name: name, Score: score}, nil
}

// RecordWin adds one point to the cumulative score.
func (t *Team) RecordWin() {
	t.Score++
}

// Validate ensures the team is well-formed.
func (t Team) Validate() error {
	if err := t.Name.Validate(); err != nil {
		return err
	}
	if t.Score < 0 {
		return ErrNegativeScore
	}
	return nil
}

// IndexOf returns the position of name in teams, or -1.
func IndexOf(teams []Team, name shared.TeamName) int {
	for i, t := range teams {
		if t.Name == name {
			return i
		}
	}
	return -1
}
