package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bryanwahyu/esr-tracker/src/app/scoreboard"
	"github.com/bryanwahyu/esr-tracker/src/app/tracker"
	"github.com/bryanwahyu/esr-tracker/src/domain/game"
	"github.com/bryanwahyu/esr-tracker/src/domain/match"
	"github.com/bryanwahyu/esr-tracker/src/domain/team"
	domain "github.com/bryanwahyu/esr-tracker/src/domain/tracker"
	"github.com/bryanwahyu/esr-tracker/src/infra/memory"
)

func seedSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Teams: []team.Team{{Name: "Alpha", Score: 1}, {Name: "Beta", Score: 2}},
		Games: []game.Game{{Title: "Chess"}},
		Matches: []match.Match{
			{Date: "2024-01-01", Game: "Chess", Team1: "Alpha", Team2: "Beta", Winner: "Alpha"},
			{Date: "2024-01-02", Game: "Chess", Team1: "Alpha", Team2: "Beta", Winner: "Beta"},
			{Date: "2024-01-03", Game: "Go", Team1: "Beta", Team2: "Gamma", Winner: "Beta"},
		},
	}
}

type testServer struct {
	handler  http.Handler
	store    *tracker.Store
	registry *prometheus.Registry
}

func newTestServer(t *testing.T, admin bool, seed domain.Snapshot) *testServer {
	t.Helper()
	return newTestServerOn(t, admin, memory.NewRepository(seed))
}

func newTestServerOn(t *testing.T, admin bool, repo domain.Repository) *testServer {
	t.Helper()
	store, err := tracker.Open(context.Background(), repo, tracker.Options{})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	srv, err := NewServer(ServerConfig{
		Store:        store,
		Scoreboard:   scoreboard.NewService(store, 5),
		AdminEnabled: admin,
		Registerer:   reg,
		Gatherer:     reg,
	})
	require.NoError(t, err)
	return &testServer{handler: srv.Handler(), store: store, registry: reg}
}

func (ts *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestServer_ListTeams(t *testing.T) {
	ts := newTestServer(t, false, seedSnapshot())

	rec := ts.do(t, http.MethodGet, "/v1/teams", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []TeamResponse{{Name: "Alpha", Score: 1}, {Name: "Beta", Score: 2}}, decodeBody[[]TeamResponse](t, rec))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestServer_AdminRoutesHiddenByDefault(t *testing.T) {
	ts := newTestServer(t, false, seedSnapshot())

	rec := ts.do(t, http.MethodPost, "/v1/admin/teams", AddTeamRequest{Name: "Gamma"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, ts.store.Teams(), 2)
}

func TestServer_AddTeam(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{name: "created", body: AddTeamRequest{Name: "  Gamma "}, wantStatus: http.StatusCreated},
		{name: "duplicate", body: AddTeamRequest{Name: "Alpha"}, wantStatus: http.StatusConflict},
		{name: "blank", body: AddTeamRequest{Name: "   "}, wantStatus: http.StatusBadRequest},
		{name: "negative score", body: AddTeamRequest{Name: "Delta", Score: -2}, wantStatus: http.StatusBadRequest},
		{name: "line break", body: AddTeamRequest{Name: "Red\r\nBlue"}, wantStatus: http.StatusBadRequest},
		{name: "bad body", body: "not an object", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, true, seedSnapshot())

			rec := ts.do(t, http.MethodPost, "/v1/admin/teams", tt.body)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, TeamResponse{Name: "Gamma"}, decodeBody[TeamResponse](t, rec))
				assert.Len(t, ts.store.Teams(), 3)
				return
			}
			assert.NotEmpty(t, decodeBody[errorResponse](t, rec).Error)
			assert.Len(t, ts.store.Teams(), 2)
		})
	}
}

func TestServer_RemoveTeam(t *testing.T) {
	seed := seedSnapshot()
	seed.Teams = append(seed.Teams, team.Team{Name: "Red/Blue"})
	ts := newTestServer(t, true, seed)

	rec := ts.do(t, http.MethodDelete, "/v1/admin/teams/Nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/v1/admin/teams/Red%2FBlue", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/v1/admin/teams/Alpha", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, []team.Team{{Name: "Beta", Score: 2}}, ts.store.Teams())
	assert.Len(t, ts.store.Matches(), 3)
}

func TestServer_Games(t *testing.T) {
	ts := newTestServer(t, true, seedSnapshot())

	rec := ts.do(t, http.MethodPost, "/v1/admin/games", AddGameRequest{Title: "Go"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/v1/admin/games", AddGameRequest{Title: "Chess"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/v1/admin/games/Poker", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/v1/admin/games/Chess", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/v1/games", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []GameResponse{{Title: "Go"}}, decodeBody[[]GameResponse](t, rec))
}

func TestServer_RecordMatch(t *testing.T) {
	ts := newTestServer(t, true, seedSnapshot())

	rec := ts.do(t, http.MethodPost, "/v1/admin/matches", RecordMatchRequest{
		Date: "2024-02-01", Game: "Chess", Team1: "Alpha", Team2: "Beta", Winner: "Alpha",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decodeBody[RecordMatchResponse](t, rec)
	assert.Equal(t, "Alpha", got.Credited)
	assert.Equal(t, "2024-02-01", got.Match.Date)

	alpha, err := ts.store.Team("Alpha")
	require.NoError(t, err)
	assert.Equal(t, 2, alpha.Score)

	rec = ts.do(t, http.MethodPost, "/v1/admin/matches", RecordMatchRequest{
		Date: "2024-02-01", Game: "Chess", Team1: "Alpha", Team2: "Beta",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/v1/matches", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]MatchResponse](t, rec), 4)
}

func TestServer_RecentMatches(t *testing.T) {
	ts := newTestServer(t, false, seedSnapshot())

	rec := ts.do(t, http.MethodGet, "/v1/scoreboard/recent?n=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[[]MatchResponse](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-03", got[0].Date)
	assert.Equal(t, "2024-01-02", got[1].Date)

	rec = ts.do(t, http.MethodGet, "/v1/scoreboard/recent?n=many", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_RecentMatchesInvalidStoredDate(t *testing.T) {
	seed := seedSnapshot()
	seed.Matches = append(seed.Matches, match.Match{Date: "03/01/2024", Game: "Go", Team1: "A", Team2: "B", Winner: "A"})
	ts := newTestServer(t, false, seed)

	rec := ts.do(t, http.MethodGet, "/v1/scoreboard/recent", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = ts.do(t, http.MethodGet, "/v1/scoreboard/export.xlsx", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_Standings(t *testing.T) {
	ts := newTestServer(t, false, seedSnapshot())

	rec := ts.do(t, http.MethodGet, "/v1/scoreboard/overall", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []StandingResponse{
		{Rank: 1, Team: "Beta", Score: 2},
		{Rank: 2, Team: "Alpha", Score: 1},
	}, decodeBody[[]StandingResponse](t, rec))

	rec = ts.do(t, http.MethodGet, "/v1/scoreboard/games", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []GameResponse{{Title: "Chess"}, {Title: "Go"}}, decodeBody[[]GameResponse](t, rec))

	rec = ts.do(t, http.MethodGet, "/v1/scoreboard/games/Chess", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []StandingResponse{
		{Rank: 1, Team: "Alpha", Score: 1},
		{Rank: 2, Team: "Beta", Score: 1},
	}, decodeBody[[]StandingResponse](t, rec))

	rec = ts.do(t, http.MethodGet, "/v1/scoreboard/games/Poker", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]StandingResponse](t, rec))
}

func TestServer_Export(t *testing.T) {
	ts := newTestServer(t, false, seedSnapshot())

	rec := ts.do(t, http.MethodGet, "/v1/scoreboard/export.xlsx", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Overall", "Recent", "Chess", "Go"}, f.GetSheetList())
}

func TestServer_ETag(t *testing.T) {
	ts := newTestServer(t, true, seedSnapshot())

	rec := ts.do(t, http.MethodGet, "/v1/teams", nil)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/v1/teams", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	ts.handler.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)

	rec = ts.do(t, http.MethodPost, "/v1/admin/games", AddGameRequest{Title: "Go"})
	require.Equal(t, http.StatusCreated, rec.Code)

	fresh := httptest.NewRecorder()
	ts.handler.ServeHTTP(fresh, req)
	assert.Equal(t, http.StatusOK, fresh.Code)
	assert.NotEqual(t, etag, fresh.Header().Get("ETag"))
}

func TestServer_ETagChangesAcrossRestart(t *testing.T) {
	repo := memory.NewRepository(domain.Snapshot{})

	first := newTestServerOn(t, true, repo)
	rec := first.do(t, http.MethodPost, "/v1/admin/teams", AddTeamRequest{Name: "Alpha"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = first.do(t, http.MethodGet, "/v1/teams", nil)
	staleTag := rec.Header().Get("ETag")
	require.NotEmpty(t, staleTag)

	second := newTestServerOn(t, true, repo)
	rec = second.do(t, http.MethodPost, "/v1/admin/teams", AddTeamRequest{Name: "Beta", Score: 9})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, first.store.Revision(), second.store.Revision())

	req := httptest.NewRequest(http.MethodGet, "/v1/teams", nil)
	req.Header.Set("If-None-Match", staleTag)
	fresh := httptest.NewRecorder()
	second.handler.ServeHTTP(fresh, req)

	require.Equal(t, http.StatusOK, fresh.Code)
	assert.NotEqual(t, staleTag, fresh.Header().Get("ETag"))
	assert.Len(t, decodeBody[[]TeamResponse](t, fresh), 2)
}

func TestServer_RequestIDPropagates(t *testing.T) {
	ts := newTestServer(t, false, seedSnapshot())

	req := httptest.NewRequest(http.MethodGet, "/v1/games", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t, false, seedSnapshot())
	ts.do(t, http.MethodGet, "/v1/teams", nil)

	rec := ts.do(t, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `esr_http_requests_total{code="200",method="GET",route="/v1/teams"} 1`), rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: team.ErrDuplicateTeam, want: http.StatusConflict},
		{err: game.ErrGameNotFound, want: http.StatusNotFound},
		{err: match.ErrIncompleteMatch, want: http.StatusBadRequest},
		{err: team.ErrUnknownTeam, want: http.StatusBadRequest},
		{err: match.ErrInvalidDate, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
