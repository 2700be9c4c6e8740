package tracker

import (
	"github.com/bryanwahyu/esr-tracker/src/domain/game"
	"github.com/bryanwahyu/esr-tracker/src/domain/match"
	"github.com/bryanwahyu/esr-tracker/src/domain/team"
)

// Snapshot is the full tracker state in insertion order.
type Snapshot struct {
	Teams   []team.Team
	Games   []game.Game
	Matches []match.Match
}

// Clone returns a deep copy so callers cannot alias store state.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Teams:   append([]team.Team(nil), s.Teams...),
		Games:   append([]game.Game(nil), s.Games...),
		Matches: append([]match.Match(nil), s.Matches...),
	}
}
