package game

import "github.com/bryanwahyu/esr-tracker/src/domain/shared"

// Game is a title that matches can be played in.
type Game struct {
	Title shared.GameTitle
}

func NewGame(title shared.GameTitle) (Game, error) {
	if err := title.Validate(); err != nil {
		return Game{}, err
	}
	return Game{Title: title}, nil
}

// IndexOf returns the position of title in games, or -1.
func IndexOf(games []Game, title shared.GameTitle) int {
	for i, g := range games {
		if g.Title == title {
			return i
		}
	}
	return -1
}
