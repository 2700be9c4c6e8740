package shared

import (
	"fmt"
	"strings"
)

// ID types keep domain entities distinct while remaining simple strings at runtime.
type (
	TeamName  string
	GameTitle string
)

// Validate ensures IDs are not blank and fit on one line of a data file.
func (n TeamName) Validate() error {
	return validateIdentifier("team name", string(n))
}

func (t GameTitle) Validate() error {
	return validateIdentifier("game title", string(t))
}

func validateIdentifier(kind, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, kind)
	}
	if strings.ContainsAny(v, "\r\n") {
		return fmt.Errorf("%w: %s must not contain line breaks", ErrInvalid, kind)
	}
	return nil
}
