package team

import (
	"fmt"

	"github.com/bryanwahyu/esr-tracker/src/domain/shared"
)

var (
	ErrDuplicateTeam = fmt.Errorf("team already exists: %w", shared.ErrDuplicate)
	ErrTeamNotFound  = fmt.Errorf("team not found: %w", shared.ErrNotFound)
	ErrNegativeScore = fmt.Errorf("team score must be non-negative: %w", shared.ErrInvalid)
	ErrUnknownTeam   = fmt.Errorf("match references unknown team: %w", shared.ErrInvalid)
)
