package tracker

import (
	"fmt"

	"github.com/bryanwahyu/esr-tracker/src/domain/game"
	"github.com/bryanwahyu/esr-tracker/src/domain/shared"
	"github.com/bryanwahyu/esr-tracker/src/domain/team"
)

func duplicateTeamError(name shared.TeamName) error {
	return fmt.Errorf("%w: %q", team.ErrDuplicateTeam, name)
}

func teamNotFoundError(name shared.TeamName) error {
	return fmt.Errorf("%w: %q", team.ErrTeamNotFound, name)
}

func duplicateGameError(title shared.GameTitle) error {
	return fmt.Errorf("%w: %q", game.ErrDuplicateGame, title)
}

func gameNotFoundError(title shared.GameTitle) error {
	return fmt.Errorf("%w: %q", game.ErrGameNotFound, title)
}
