package csvstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bryanwahyu/esr-tracker/src/domain/game"
	"github.com/bryanwahyu/esr-tracker/src/domain/match"
	"github.com/bryanwahyu/esr-tracker/src/domain/shared"
	"github.com/bryanwahyu/esr-tracker/src/domain/team"
	"github.com/bryanwahyu/esr-tracker/src/domain/tracker"
)

// FSStore implements tracker.Repository over three CSV files in one directory.
// It holds no state besides its location.
type FSStore struct {
	dir   string
	Clock func() time.Time
}

// NewFSStore constructs a store rooted at dir.
func NewFSStore(dir string) *FSStore {
	return &FSStore{
		dir:   dir,
		Clock: func() time.Time { return time.Now().UTC() },
	}
}

// Load reads all three resources. A missing file is an empty collection.
// When a resource is malformed its collection is left empty, the others
// are still returned, and the error lists every bad resource.
func (s *FSStore) Load(ctx context.Context) (tracker.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return tracker.Snapshot{}, err
	}

	var (
		snap tracker.Snapshot
		errs []error
	)

	teams, err := s.loadTeams()
	if err != nil {
		errs = append(errs, err)
	} else {
		snap.Teams = teams
	}

	games, err := s.loadGames()
	if err != nil {
		errs = append(errs, err)
	} else {
		snap.Games = games
	}

	matches, err := s.loadMatches()
	if err != nil {
		errs = append(errs, err)
	} else {
		snap.Matches = matches
	}

	return snap, errors.Join(errs...)
}

func (s *FSStore) loadTeams() ([]team.Team, error) {
	teams := []team.Team{}
	err := s.readRecords(ResourceTeams, 2, func(line int, rec []string) error {
		name := shared.TeamName(rec[0])
		if team.IndexOf(teams, name) >= 0 {
			return malformed(ResourceTeams, line, fmt.Sprintf("duplicate team %q", rec[0]))
		}
		score, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return malformed(ResourceTeams, line, fmt.Sprintf("score %q is not an integer", rec[1]))
		}
		t, err := team.NewTeam(name, score)
		if err != nil {
			return malformed(ResourceTeams, line, err.Error())
		}
		teams = append(teams, t)
		return nil
	})
	return teams, err
}

func (s *FSStore) loadGames() ([]game.Game, error) {
	games := []game.Game{}
	err := s.readRecords(ResourceGames, 1, func(line int, rec []string) error {
		title := shared.GameTitle(rec[0])
		if game.IndexOf(games, title) >= 0 {
			return malformed(ResourceGames, line, fmt.Sprintf("duplicate game %q", rec[0]))
		}
		g, err := game.NewGame(title)
		if err != nil {
			return malformed(ResourceGames, line, err.Error())
		}
		games = append(games, g)
		return nil
	})
	return games, err
}

func (s *FSStore) loadMatches() ([]match.Match, error) {
	matches := []match.Match{}
	err := s.readRecords(ResourceMatches, 5, func(line int, rec []string) error {
		m, err := match.NewMatch(rec[0], shared.GameTitle(rec[1]), shared.TeamName(rec[2]), shared.TeamName(rec[3]), shared.TeamName(rec[4]))
		if err != nil {
			return malformed(ResourceMatches, line, err.Error())
		}
		matches = append(matches, m)
		return nil
	})
	return matches, err
}

// readRecords streams the rows of r, enforcing the field count.
func (s *FSStore) readRecords(r Resource, fields int, fn func(line int, rec []string) error) error {
	f, err := os.Open(resourcePath(s.dir, r))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", r.FileName(), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return malformed(r, perr.Line, perr.Err.Error())
			}
			return fmt.Errorf("read %s: %w", r.FileName(), err)
		}
		line, _ := reader.FieldPos(0)
		if len(rec) != fields {
			return malformed(r, line, fmt.Sprintf("expected %d fields, got %d", fields, len(rec)))
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}

func malformed(r Resource, line int, reason string) error {
	return &MalformedRecordError{Resource: r, Line: line, Reason: reason}
}

// Save rewrites every resource in full. Each file is staged next to its
// target and renamed into place only after all three staged writes succeed.
func (s *FSStore) Save(ctx context.Context, snap tracker.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	payloads := map[Resource][][]string{
		ResourceTeams:   encodeTeams(snap.Teams),
		ResourceGames:   encodeGames(snap.Games),
		ResourceMatches: encodeMatches(snap.Matches),
	}

	staged := make([]Resource, 0, len(Resources))
	cleanup := func() {
		for _, r := range staged {
			_ = os.Remove(resourcePath(s.dir, r) + ".tmp")
		}
	}

	for _, r := range Resources {
		data, err := encodeCSV(payloads[r])
		if err != nil {
			cleanup()
			return fmt.Errorf("encode %s: %w", r.FileName(), err)
		}
		target := resourcePath(s.dir, r)
		if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
			continue
		}
		if err := os.WriteFile(target+".tmp", data, 0o644); err != nil {
			cleanup()
			return fmt.Errorf("write %s: %w", r.FileName(), err)
		}
		staged = append(staged, r)
	}

	for i, r := range staged {
		target := resourcePath(s.dir, r)
		if err := os.Rename(target+".tmp", target); err != nil {
			staged = staged[i:]
			cleanup()
			return fmt.Errorf("replace %s: %w", r.FileName(), err)
		}
	}
	return nil
}

// Quarantine moves a resource aside so the next Save starts it fresh.
// It returns the new path, or "" when the resource does not exist.
func (s *FSStore) Quarantine(r Resource) (string, error) {
	src := resourcePath(s.dir, r)
	dst := fmt.Sprintf("%s.corrupt-%d", src, s.Clock().Unix())
	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return dst, nil
}

func encodeTeams(teams []team.Team) [][]string {
	rows := make([][]string, len(teams))
	for i, t := range teams {
		rows[i] = []string{string(t.Name), strconv.Itoa(t.Score)}
	}
	return rows
}

func encodeGames(games []game.Game) [][]string {
	rows := make([][]string, len(games))
	for i, g := range games {
		rows[i] = []string{string(g.Title)}
	}
	return rows
}

func encodeMatches(matches []match.Match) [][]string {
	rows := make([][]string, len(matches))
	for i, m := range matches {
		rows[i] = []string{m.Date, string(m.Game), string(m.Team1), string(m.Team2), string(m.Winner)}
	}
	return rows
}

func encodeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
