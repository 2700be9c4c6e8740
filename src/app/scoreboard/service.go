package scoreboard

import (
	"context"
	"time"

	"github.com/bryanwahyu/esr-tracker/src/domain/match"
	domain "github.com/bryanwahyu/esr-tracker/src/domain/scoreboard"
	"github.com/bryanwahyu/esr-tracker/src/domain/shared"
	"github.com/bryanwahyu/esr-tracker/src/domain/tracker"
)

// SnapshotSource is satisfied by the tracker Store.
type SnapshotSource interface {
	Snapshot() tracker.Snapshot
}

// Service answers read-only scoreboard queries.
type Service struct {
	Source      SnapshotSource
	RecentLimit int
	Clock       func() time.Time
}

func NewService(source SnapshotSource, recentLimit int) *Service {
	return &Service{
		Source:      source,
		RecentLimit: recentLimit,
		Clock:       func() time.Time { return time.Now().UTC() },
	}
}

type RecentQuery struct {
	// Limit falls back to the service default, then to DefaultRecentLimit.
	Limit int
}

func (s *Service) RecentMatches(ctx context.Context, q RecentQuery) ([]match.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = s.RecentLimit
	}
	return domain.RecentMatches(s.Source.Snapshot().Matches, limit)
}

func (s *Service) OverallStandings(ctx context.Context) ([]domain.Standing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return domain.OverallStandings(s.Source.Snapshot().Teams), nil
}

type GameQuery struct {
	Title shared.GameTitle
}

// GameStandings returns an empty table for a game nobody has played.
func (s *Service) GameStandings(ctx context.Context, q GameQuery) ([]domain.Standing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Title.Validate(); err != nil {
		return nil, err
	}
	return domain.GameStandings(s.Source.Snapshot().Matches, q.Title), nil
}

func (s *Service) PlayedGames(ctx context.Context) ([]shared.GameTitle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return domain.PlayedGames(s.Source.Snapshot().Matches), nil
}

// GameTable is the standings of one played game.
type GameTable struct {
	Title     shared.GameTitle
	Standings []domain.Standing
}

// Report gathers every scoreboard view from a single snapshot.
type Report struct {
	GeneratedAt time.Time
	Overall     []domain.Standing
	Recent      []match.Match
	Games       []GameTable
}

func (s *Service) BuildReport(ctx context.Context) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	snap := s.Source.Snapshot()
	recent, err := domain.RecentMatches(snap.Matches, s.RecentLimit)
	if err != nil {
		return Report{}, err
	}
	report := Report{
		GeneratedAt: s.Clock(),
		Overall:     domain.OverallStandings(snap.Teams),
		Recent:      recent,
	}
	for _, title := range domain.PlayedGames(snap.Matches) {
		report.Games = append(report.Games, GameTable{
			Title:     title,
			Standings: domain.GameStandings(snap.Matches, title),
		})
	}
	return report, nil
}
