package match

import (
	"errors"
	"fmt"

	"github.com/bryanwahyu/esr-tracker/src/domain/shared"
)

var (
	ErrIncompleteMatch = fmt.Errorf("match requires date, game, both teams and a winner: %w", shared.ErrInvalid)
	ErrInvalidDate     = errors.New("invalid match date")
)
