package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/slidyranks/ranks-api/internal/logic"
	"github.com/slidyranks/ranks-api/internal/models"
)

func newTestRouter(svc *MockLeaderboardService, cfg Config) http.Handler {
	cfg.Leaderboard = svc
	cfg.Logger = zap.NewNop()
	return New(cfg).Router([]string{"*"})
}

func serve(t *testing.T, h http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	h := newTestRouter(&MockLeaderboardService{}, Config{})

	rr := serve(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]ReadyCheck
		wantStatus int
	}{
		{
			name: "all healthy",
			checks: map[string]ReadyCheck{
				"redis":    func(context.Context) error { return nil },
				"postgres": func(context.Context) error { return nil },
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "redis down",
			checks: map[string]ReadyCheck{
				"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
				"postgres": func(context.Context) error { return nil },
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&MockLeaderboardService{}, Config{
				ReadyChecks: tt.checks,
				Archive:     &MockArchiveQueue{Depth: 7},
			})

			rr := serve(t, h, http.MethodGet, "/ready", nil)
			assert.Equal(t, tt.wantStatus, rr.Code)

			var body struct {
				Ready      bool            `json:"ready"`
				Checks     map[string]bool `json:"checks"`
				QueueDepth int             `json:"queueDepth"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus == http.StatusOK, body.Ready)
			assert.Len(t, body.Checks, 2)
			assert.Equal(t, 7, body.QueueDepth)
		})
	}
}

func TestGetStandings(t *testing.T) {
	svc := &MockLeaderboardService{
		StandingsFunc: func(ctx context.Context) (*models.Standings, error) {
			return &models.Standings{
				Date:       "2024-03-09",
				Categories: []string{"3x3 single"},
				Rows:       []models.RankedRow{{User: "alice", Position: 1, Power: 3, Times: []int{-1}}},
			}, nil
		},
	}
	h := newTestRouter(svc, Config{})

	rr := serve(t, h, http.MethodGet, "/api/v1/standings", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.Standings
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "alice", got.Rows[0].User)
	assert.Equal(t, []int{-1}, got.Rows[0].Times)
}

func TestGetSnapshots(t *testing.T) {
	svc := &MockLeaderboardService{
		SnapshotsFunc: func(ctx context.Context) (*models.SnapshotList, error) {
			return &models.SnapshotList{Dates: []string{"2024-03-09", "2024-03-08"}}, nil
		},
	}
	h := newTestRouter(svc, Config{})

	rr := serve(t, h, http.MethodGet, "/api/v1/snapshots", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.SnapshotList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, []string{"2024-03-09", "2024-03-08"}, got.Dates)

	svc.SnapshotsFunc = func(ctx context.Context) (*models.SnapshotList, error) {
		return nil, errors.New("redis: connection refused")
	}
	rr = serve(t, h, http.MethodGet, "/api/v1/snapshots", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestServiceErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no snapshot", logic.ErrNotFound, http.StatusNotFound},
		{"unknown user", logic.ErrUserNotFound, http.StatusNotFound},
		{"no data", logic.ErrNoData, http.StatusNotFound},
		{"backend failure", errors.New("redis: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockLeaderboardService{
				RankFunc: func(ctx context.Context, handle string) (*models.UserStanding, error) {
					return nil, tt.err
				},
			}
			h := newTestRouter(svc, Config{})

			rr := serve(t, h, http.MethodGet, "/api/v1/rank/alice", nil)
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, rr.Body.String(), "connection refused")
			}
		})
	}
}

func TestGetPersonalBests(t *testing.T) {
	var gotW, gotH int
	var gotUser string
	svc := &MockLeaderboardService{
		PersonalBestsFunc: func(ctx context.Context, width, height int, handle string) (*models.PBReport, error) {
			gotW, gotH, gotUser = width, height, handle
			return &models.PBReport{User: handle, Width: width, Height: height, Tiered: true}, nil
		},
	}
	h := newTestRouter(svc, Config{})

	rr := serve(t, h, http.MethodGet, "/api/v1/pb/5x4/alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, gotW)
	assert.Equal(t, 4, gotH)
	assert.Equal(t, "alice", gotUser)

	rr = serve(t, h, http.MethodGet, "/api/v1/pb/4/alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 4, gotW)
	assert.Equal(t, 4, gotH)
}

func TestGetPersonalBestsBadRequest(t *testing.T) {
	called := false
	svc := &MockLeaderboardService{
		PersonalBestsFunc: func(ctx context.Context, width, height int, handle string) (*models.PBReport, error) {
			called = true
			return nil, nil
		},
	}
	h := newTestRouter(svc, Config{})

	for _, path := range []string{
		"/api/v1/pb/axb/alice",
		"/api/v1/pb/1x1/alice",
		"/api/v1/pb/3x999/alice",
		"/api/v1/movepb/x/alice",
	} {
		rr := serve(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
	}
	assert.False(t, called)
}

func TestGetRequirements(t *testing.T) {
	svc := &MockLeaderboardService{
		RequirementsFunc: func(width, height int, tierName string) (*models.RequirementReport, error) {
			if tierName != "gold" {
				return nil, logic.ErrNotFound
			}
			return &models.RequirementReport{
				Tier: "Gold", Width: width, Height: height,
				Requirements: []models.Requirement{{Category: "3x3 single", Time: 2500}},
			}, nil
		},
	}
	h := newTestRouter(svc, Config{})

	rr := serve(t, h, http.MethodGet, "/api/v1/req/3x3/gold", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"Gold"`)

	rr = serve(t, h, http.MethodGet, "/api/v1/req/3x3/tin", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPostUpdateAuth(t *testing.T) {
	updates := 0
	svc := &MockLeaderboardService{
		UpdateFunc: func(ctx context.Context) (*models.UpdateSummary, error) {
			updates++
			return &models.UpdateSummary{Date: "2024-03-09", Users: 3}, nil
		},
	}

	tests := []struct {
		name       string
		adminToken string
		header     map[string]string
		wantStatus int
	}{
		{"no token configured", "", map[string]string{"X-Admin-Token": "secret"}, http.StatusUnauthorized},
		{"missing header", "secret", nil, http.StatusUnauthorized},
		{"wrong token", "secret", map[string]string{"X-Admin-Token": "guess"}, http.StatusUnauthorized},
		{"admin header", "secret", map[string]string{"X-Admin-Token": "secret"}, http.StatusOK},
		{"bearer", "secret", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(svc, Config{AdminToken: tt.adminToken})
			rr := serve(t, h, http.MethodPost, "/api/v1/update", tt.header)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
	assert.Equal(t, 2, updates)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    sizeParams
		wantErr bool
	}{
		{"4x4", sizeParams{4, 4}, false},
		{"5X3", sizeParams{5, 3}, false},
		{"6", sizeParams{6, 6}, false},
		{"x4", sizeParams{}, true},
		{"4x", sizeParams{}, true},
		{"", sizeParams{}, true},
	}

	for _, tt := range tests {
		got, err := parseSize(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
