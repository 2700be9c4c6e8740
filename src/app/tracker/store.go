package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/bryanwahyu/esr-tracker/src/domain/game"
	"github.com/bryanwahyu/esr-tracker/src/domain/match"
	"github.com/bryanwahyu/esr-tracker/src/domain/shared"
	"github.com/bryanwahyu/esr-tracker/src/domain/team"
	domain "github.com/bryanwahyu/esr-tracker/src/domain/tracker"
)

// Quarantiner is implemented by repositories that can move corrupt data
// aside after a failed Load.
type Quarantiner interface {
	QuarantineCorrupt(loadErr error) ([]string, error)
}

// Options tune Store behaviour.
type Options struct {
	// StrictReferences rejects matches naming unknown games or teams,
	// or carrying an unparseable date.
	StrictReferences bool
	// RecoverCorrupt quarantines malformed resources at Open and starts
	// those collections empty instead of failing.
	RecoverCorrupt bool
	Logger         *zap.Logger
	Registerer     prometheus.Registerer
}

// Store owns the teams, games and matches for the life of the process.
// Every successful mutation is flushed to the repository before it
// becomes visible.
type Store struct {
	repo      domain.Repository
	opts      Options
	logger    *zap.Logger
	mutations *prometheus.CounterVec

	mu       sync.RWMutex
	state    domain.Snapshot
	revision *atomic.Int64
}

// Open loads the repository and returns a ready Store.
func Open(ctx context.Context, repo domain.Repository, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		if !opts.RecoverCorrupt || !errors.Is(err, shared.ErrCorrupt) {
			return nil, fmt.Errorf("load tracker data: %w", err)
		}
		q, ok := repo.(Quarantiner)
		if !ok {
			return nil, fmt.Errorf("load tracker data: %w", err)
		}
		moved, qerr := q.QuarantineCorrupt(err)
		if qerr != nil {
			return nil, fmt.Errorf("load tracker data: %w", errors.Join(err, qerr))
		}
		logger.Warn("corrupt tracker data quarantined", zap.Strings("files", moved), zap.Error(err))
	}

	s := &Store{
		repo:     repo,
		opts:     opts,
		logger:   logger,
		state:    snap.Clone(),
		revision: atomic.NewInt64(0),
	}
	s.mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "esr",
		Subsystem: "store",
		Name:      "mutations_total",
		Help:      "Store mutations by operation and outcome",
	}, []string{"op", "result"})
	if opts.Registerer != nil {
		if err := opts.Registerer.Register(s.mutations); err != nil {
			return nil, fmt.Errorf("register store metrics: %w", err)
		}
	}

	logger.Info("tracker data loaded",
		zap.Int("teams", len(snap.Teams)),
		zap.Int("games", len(snap.Games)),
		zap.Int("matches", len(snap.Matches)),
	)
	return s, nil
}

// mutate applies fn to a copy of the state, persists the copy and only
// then swaps it in, so a rejected or unsaved change leaves state untouched.
func (s *Store) mutate(ctx context.Context, op string, fn func(next *domain.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(&next); err != nil {
		s.mutations.WithLabelValues(op, "rejected").Inc()
		return err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		s.mutations.WithLabelValues(op, "failed").Inc()
		s.logger.Error("persist failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: persist: %w", op, err)
	}
	s.state = next
	s.revision.Inc()
	s.mutations.WithLabelValues(op, "ok").Inc()
	return nil
}

// AddTeamCommand contains parameters for adding a team.
type AddTeamCommand struct {
	Name         shared.TeamName
	InitialScore int
}

// AddTeam inserts a new team at the end of the iteration order.
func (s *Store) AddTeam(ctx context.Context, cmd AddTeamCommand) (team.Team, error) {
	t, err := team.NewTeam(cmd.Name, cmd.InitialScore)
	if err != nil {
		return team.Team{}, err
	}
	err = s.mutate(ctx, "add_team", func(next *domain.Snapshot) error {
		if team.IndexOf(next.Teams, t.Name) >= 0 {
			return duplicateTeamError(t.Name)
		}
		next.Teams = append(next.Teams, t)
		return nil
	})
	if err != nil {
		return team.Team{}, err
	}
	s.logger.Info("team added", zap.String("team", string(t.Name)), zap.Int("score", t.Score))
	return t, nil
}

// RemoveTeamCommand contains parameters for removing a team.
type RemoveTeamCommand struct {
	Name shared.TeamName
}

// RemoveTeam deletes a team. Matches naming it are kept.
func (s *Store) RemoveTeam(ctx context.Context, cmd RemoveTeamCommand) error {
	err := s.mutate(ctx, "remove_team", func(next *domain.Snapshot) error {
		i := team.IndexOf(next.Teams, cmd.Name)
		if i < 0 {
			return teamNotFoundError(cmd.Name)
		}
		next.Teams = append(next.Teams[:i], next.Teams[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("team removed", zap.String("team", string(cmd.Name)))
	return nil
}

// AddGameCommand contains parameters for adding a game.
type AddGameCommand struct {
	Title shared.GameTitle
}

func (s *Store) AddGame(ctx context.Context, cmd AddGameCommand) (game.Game, error) {
	g, err := game.NewGame(cmd.Title)
	if err != nil {
		return game.Game{}, err
	}
	err = s.mutate(ctx, "add_game", func(next *domain.Snapshot) error {
		if game.IndexOf(next.Games, g.Title) >= 0 {
			return duplicateGameError(g.Title)
		}
		next.Games = append(next.Games, g)
		return nil
	})
	if err != nil {
		return game.Game{}, err
	}
	s.logger.Info("game added", zap.String("game", string(g.Title)))
	return g, nil
}

// RemoveGameCommand contains parameters for removing a game.
type RemoveGameCommand struct {
	Title shared.GameTitle
}

// RemoveGame deletes a game. Matches played in it are kept.
func (s *Store) RemoveGame(ctx context.Context, cmd RemoveGameCommand) error {
	err := s.mutate(ctx, "remove_game", func(next *domain.Snapshot) error {
		i := game.IndexOf(next.Games, cmd.Title)
		if i < 0 {
			return gameNotFoundError(cmd.Title)
		}
		next.Games = append(next.Games[:i], next.Games[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("game removed", zap.String("game", string(cmd.Title)))
	return nil
}

// RecordMatchCommand contains the result to record.
type RecordMatchCommand struct {
	Date   string
	Game   shared.GameTitle
	Team1  shared.TeamName
	Team2  shared.TeamName
	Winner shared.TeamName
}

// RecordMatchResult reports the stored match and the team credited with
// the win, which is empty when the winner played in neither slot.
type RecordMatchResult struct {
	Match    match.Match
	Credited shared.TeamName
}

// RecordMatch appends a match and credits the winner's score.
func (s *Store) RecordMatch(ctx context.Context, cmd RecordMatchCommand) (RecordMatchResult, error) {
	m, err := match.NewMatch(cmd.Date, cmd.Game, cmd.Team1, cmd.Team2, cmd.Winner)
	if err != nil {
		return RecordMatchResult{}, err
	}
	if s.opts.StrictReferences {
		if _, err := m.PlayedOn(); err != nil {
			return RecordMatchResult{}, fmt.Errorf("%w: %w", shared.ErrInvalid, err)
		}
	}

	var res RecordMatchResult
	err = s.mutate(ctx, "record_match", func(next *domain.Snapshot) error {
		if s.opts.StrictReferences {
			if err := checkReferences(*next, m); err != nil {
				return err
			}
		}
		next.Matches = append(next.Matches, m)
		res = RecordMatchResult{Match: m}
		if winner, ok := m.WinningTeam(); ok {
			// A winner missing from the roster has no score to credit.
			if i := team.IndexOf(next.Teams, winner); i >= 0 {
				next.Teams[i].RecordWin()
				res.Credited = winner
			}
		}
		return nil
	})
	if err != nil {
		return RecordMatchResult{}, err
	}
	s.logger.Info("match recorded",
		zap.String("date", m.Date),
		zap.String("game", string(m.Game)),
		zap.String("team1", string(m.Team1)),
		zap.String("team2", string(m.Team2)),
		zap.String("winner", string(m.Winner)),
		zap.String("credited", string(res.Credited)),
	)
	return res, nil
}

func checkReferences(snap domain.Snapshot, m match.Match) error {
	if game.IndexOf(snap.Games, m.Game) < 0 {
		return fmt.Errorf("%w %q", game.ErrUnknownGame, m.Game)
	}
	for _, name := range m.Participants() {
		if team.IndexOf(snap.Teams, name) < 0 {
			return fmt.Errorf("%w %q", team.ErrUnknownTeam, name)
		}
	}
	return nil
}

// Snapshot returns a copy of the full state.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Clone()
}

// Teams returns the teams in insertion order.
func (s *Store) Teams() []team.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]team.Team(nil), s.state.Teams...)
}

// Games returns the games in insertion order.
func (s *Store) Games() []game.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]game.Game(nil), s.state.Games...)
}

// Matches returns the matches in the order they were recorded.
func (s *Store) Matches() []match.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]match.Match(nil), s.state.Matches...)
}

// Team looks up a single team by exact name.
func (s *Store) Team(name shared.TeamName) (team.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := team.IndexOf(s.state.Teams, name)
	if i < 0 {
		return team.Team{}, teamNotFoundError(name)
	}
	return s.state.Teams[i], nil
}

// Revision increases by one after every persisted mutation.
func (s *Store) Revision() int64 {
	return s.revision.Load()
}
