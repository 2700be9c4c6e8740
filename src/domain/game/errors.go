package game

import (
	"fmt"

	"github.com/bryanwahyu/esr-tracker/src/domain/shared"
)

var (
	ErrDuplicateGame = fmt.Errorf("game already exists: %w", shared.ErrDuplicate)
	ErrGameNotFound  = fmt.Errorf("game not found: %w", shared.ErrNotFound)
	ErrUnknownGame   = fmt.Errorf("match references unknown game: %w", shared.ErrInvalid)
)
