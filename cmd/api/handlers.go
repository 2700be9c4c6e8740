package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	scoreboardsvc "github.com/bryanwahyu/esr-tracker/src/app/scoreboard"
	"github.com/bryanwahyu/esr-tracker/src/app/tracker"
	"github.com/bryanwahyu/esr-tracker/src/domain/match"
	"github.com/bryanwahyu/esr-tracker/src/domain/scoreboard"
	"github.com/bryanwahyu/esr-tracker/src/domain/shared"
	"github.com/bryanwahyu/esr-tracker/src/domain/team"
	"github.com/bryanwahyu/esr-tracker/src/infra/xlsxexport"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// statusFor maps domain error categories to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", correlationIDFromContext(r.Context())),
			zap.Error(err),
		)
	}
	s.writeError(w, status, err)
}

func pathVar(r *http.Request, key string) (string, error) {
	v, err := url.PathUnescape(mux.Vars(r)[key])
	if err != nil {
		return "", fmt.Errorf("%w: bad %s in path: %v", shared.ErrInvalid, key, err)
	}
	return v, nil
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", shared.ErrInvalid, err)
	}
	return nil
}

type TeamResponse struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func toTeamResponse(t team.Team) TeamResponse {
	return TeamResponse{Name: string(t.Name), Score: t.Score}
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams := s.cfg.Store.Teams()
	out := make([]TeamResponse, len(teams))
	for i, t := range teams {
		out[i] = toTeamResponse(t)
	}
	s.writeJSON(w, http.StatusOK, out)
}

type AddTeamRequest struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func (s *Server) handleAddTeam(w http.ResponseWriter, r *http.Request) {
	var req AddTeamRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.cfg.Store.AddTeam(r.Context(), tracker.AddTeamCommand{
		Name:         shared.TeamName(strings.TrimSpace(req.Name)),
		InitialScore: req.Score,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toTeamResponse(t))
}

func (s *Server) handleRemoveTeam(w http.ResponseWriter, r *http.Request) {
	name, err := pathVar(r, "name")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.cfg.Store.RemoveTeam(r.Context(), tracker.RemoveTeamCommand{Name: shared.TeamName(name)}); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type GameResponse struct {
	Title string `json:"title"`
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games := s.cfg.Store.Games()
	out := make([]GameResponse, len(games))
	for i, g := range games {
		out[i] = GameResponse{Title: string(g.Title)}
	}
	s.writeJSON(w, http.StatusOK, out)
}

type AddGameRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleAddGame(w http.ResponseWriter, r *http.Request) {
	var req AddGameRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := s.cfg.Store.AddGame(r.Context(), tracker.AddGameCommand{
		Title: shared.GameTitle(strings.TrimSpace(req.Title)),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, GameResponse{Title: string(g.Title)})
}

func (s *Server) handleRemoveGame(w http.ResponseWriter, r *http.Request) {
	title, err := pathVar(r, "title")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.cfg.Store.RemoveGame(r.Context(), tracker.RemoveGameCommand{Title: shared.GameTitle(title)}); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type MatchResponse struct {
	Date   string `json:"date"`
	Game   string `json:"game"`
	Team1  string `json:"team1"`
	Team2  string `json:"team2"`
	Winner string `json:"winner"`
}

func toMatchResponses(matches []match.Match) []MatchResponse {
	out := make([]MatchResponse, len(matches))
	for i, m := range matches {
		out[i] = MatchResponse{
			Date:   m.Date,
			Game:   string(m.Game),
			Team1:  string(m.Team1),
			Team2:  string(m.Team2),
			Winner: string(m.Winner),
		}
	}
	return out
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, toMatchResponses(s.cfg.Store.Matches()))
}

type RecordMatchRequest struct {
	Date   string `json:"date"`
	Game   string `json:"game"`
	Team1  string `json:"team1"`
	Team2  string `json:"team2"`
	Winner string `json:"winner"`
}

type RecordMatchResponse struct {
	Match    MatchResponse `json:"match"`
	Credited string        `json:"credited,omitempty"`
}

func (s *Server) handleRecordMatch(w http.ResponseWriter, r *http.Request) {
	var req RecordMatchRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.cfg.Store.RecordMatch(r.Context(), tracker.RecordMatchCommand{
		Date:   strings.TrimSpace(req.Date),
		Game:   shared.GameTitle(strings.TrimSpace(req.Game)),
		Team1:  shared.TeamName(strings.TrimSpace(req.Team1)),
		Team2:  shared.TeamName(strings.TrimSpace(req.Team2)),
		Winner: shared.TeamName(strings.TrimSpace(req.Winner)),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, RecordMatchResponse{
		Match:    toMatchResponses([]match.Match{res.Match})[0],
		Credited: string(res.Credited),
	})
}

type StandingResponse struct {
	Rank  int    `json:"rank"`
	Team  string `json:"team"`
	Score int    `json:"score"`
}

func toStandingResponses(standings []scoreboard.Standing) []StandingResponse {
	out := make([]StandingResponse, len(standings))
	for i, st := range standings {
		out[i] = StandingResponse{Rank: i + 1, Team: string(st.Team), Score: st.Score}
	}
	return out
}

func (s *Server) handleRecentMatches(w http.ResponseWriter, r *http.Request) {
	var limit int
	if v := r.URL.Query().Get("n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.fail(w, r, fmt.Errorf("%w: n must be an integer", shared.ErrInvalid))
			return
		}
		limit = n
	}
	matches, err := s.cfg.Scoreboard.RecentMatches(r.Context(), scoreboardsvc.RecentQuery{Limit: limit})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMatchResponses(matches))
}

func (s *Server) handleOverallStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := s.cfg.Scoreboard.OverallStandings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toStandingResponses(standings))
}

func (s *Server) handlePlayedGames(w http.ResponseWriter, r *http.Request) {
	titles, err := s.cfg.Scoreboard.PlayedGames(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]GameResponse, len(titles))
	for i, t := range titles {
		out[i] = GameResponse{Title: string(t)}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGameStandings(w http.ResponseWriter, r *http.Request) {
	title, err := pathVar(r, "title")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	standings, err := s.cfg.Scoreboard.GameStandings(r.Context(), scoreboardsvc.GameQuery{Title: shared.GameTitle(title)})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toStandingResponses(standings))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	report, err := s.cfg.Scoreboard.BuildReport(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := xlsxexport.Export(&buf, report); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="scoreboard.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
