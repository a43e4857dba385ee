package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"content-scoring-service/internal/app/service"
	"content-scoring-service/internal/domain"
	"content-scoring-service/internal/infra/memstore"
	"content-scoring-service/internal/transport/httpserver/dto"
	"content-scoring-service/internal/transport/httpserver/middleware"
	"content-scoring-service/internal/validator"
)

type testServer struct {
	*Server
	store *memstore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	store := memstore.New()
	earnings := service.NewEarningsService(store, nil, 0, logger)

	srv := NewServer(
		ServerConfig{BodyLimit: 1 << 20, AdminUserIDs: []string{"admin"}},
		Services{
			Scoring:  service.NewScoringService(store, nil, earnings, logger),
			Earnings: earnings,
			Audit:    service.NewAuditService(store, earnings, logger),
		},
		validator.New(),
		logger,
	)

	return &testServer{Server: srv, store: store}
}

func (s *testServer) do(t *testing.T, method, path, userID, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}

	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func (s *testServer) upload(t *testing.T, owner string) dto.ItemResponse {
	t.Helper()

	status, body := s.do(t, http.MethodPost, "/api/v1/items", owner,
		`{"kind":"note","title":"Matrix notes","tags":["algebra"]}`)
	require.Equal(t, http.StatusCreated, status, string(body))

	return decode[dto.ItemResponse](t, body)
}

func TestServer_UploadRequiresUser(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodPost, "/api/v1/items", "", `{"kind":"note","title":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", decode[dto.ErrorResponse](t, body).Code)
}

func TestServer_Upload(t *testing.T) {
	srv := newTestServer(t)

	item := srv.upload(t, "owner-1")
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "owner-1", item.OwnerID)
	assert.Equal(t, domain.NoteBasePoints, item.Points)
	assert.Equal(t, []string{"algebra"}, item.Tags)

	status, body := srv.do(t, http.MethodGet, "/api/v1/users/owner-1", "", "")
	require.Equal(t, http.StatusOK, status)
	user := decode[dto.UserResponse](t, body)
	assert.Equal(t, int64(domain.NoteBasePoints), user.PointBalance)
	assert.Equal(t, "bronze", user.Badge)
}

func TestServer_UploadValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{name: "malformed json", body: `{"kind":`, wantCode: "INVALID_BODY"},
		{name: "unknown kind", body: `{"kind":"video","title":"x"}`, wantCode: "VALIDATION_ERROR"},
		{name: "missing title", body: `{"kind":"note"}`, wantCode: "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := srv.do(t, http.MethodPost, "/api/v1/items", "owner-1", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.wantCode, decode[dto.ErrorResponse](t, body).Code)
		})
	}
}

func TestServer_ScoreEvents(t *testing.T) {
	srv := newTestServer(t)
	item := srv.upload(t, "owner-1")
	base := "/api/v1/items/" + item.ID

	status, body := srv.do(t, http.MethodPost, base+"/ratings", "rater-1", `{"rating":5}`)
	require.Equal(t, http.StatusOK, status, string(body))
	rated := decode[dto.ScoreUpdateResponse](t, body)
	assert.Equal(t, 5.0, rated.RatingMean)
	assert.Equal(t, domain.ComputeScore(domain.ContentKindNote, 5, 0, 0), rated.Item.Points)

	status, body = srv.do(t, http.MethodPost, base+"/ratings", "rater-1", `{"rating":6}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", decode[dto.ErrorResponse](t, body).Code)

	status, body = srv.do(t, http.MethodPost, base+"/downloads", "reader-1", "")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[dto.ScoreUpdateResponse](t, body).Counted)

	status, body = srv.do(t, http.MethodPost, base+"/downloads", "reader-1", "")
	require.Equal(t, http.StatusOK, status)
	repeat := decode[dto.ScoreUpdateResponse](t, body)
	assert.False(t, repeat.Counted)
	assert.Equal(t, 1, repeat.Item.Downloads)

	status, body = srv.do(t, http.MethodPost, base+"/likes", "reader-1", "")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[dto.LikeResponse](t, body).Liked)

	status, body = srv.do(t, http.MethodPost, base+"/likes", "reader-1", "")
	require.Equal(t, http.StatusOK, status)
	unliked := decode[dto.LikeResponse](t, body)
	assert.False(t, unliked.Liked)
	assert.Equal(t, 0, unliked.Item.Likes)

	wantPoints := domain.ComputeScore(domain.ContentKindNote, 5, 1, 0)

	status, body = srv.do(t, http.MethodGet, base+"/points", "", "")
	require.Equal(t, http.StatusOK, status)
	points := decode[dto.ItemPointsResponse](t, body)
	assert.Equal(t, wantPoints, points.Breakdown.TotalPoints)

	status, body = srv.do(t, http.MethodGet, "/api/v1/users/owner-1/earnings", "", "")
	require.Equal(t, http.StatusOK, status)
	earnings := decode[dto.EarningsResponse](t, body)
	assert.Equal(t, int64(wantPoints), earnings.TotalPoints)
	assert.Equal(t, domain.ToEarnings(int64(wantPoints)).StringFixed(2), earnings.TotalEarnings)

	status, body = srv.do(t, http.MethodGet, "/api/v1/users/owner-1/items", "", "")
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.ItemListResponse](t, body)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, item.ID, list.Items[0].Item.ID)
}

func TestServer_ErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	srv.upload(t, "owner-1")

	tests := []struct {
		name       string
		method     string
		path       string
		userID     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown item",
			method:     http.MethodGet,
			path:       "/api/v1/items/missing/points",
			wantStatus: http.StatusNotFound,
			wantCode:   "ITEM_NOT_FOUND",
		},
		{
			name:       "rating unknown item",
			method:     http.MethodPost,
			path:       "/api/v1/items/missing/ratings",
			userID:     "rater-1",
			body:       `{"rating":3}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "ITEM_NOT_FOUND",
		},
		{
			name:       "unknown user",
			method:     http.MethodGet,
			path:       "/api/v1/users/nobody",
			wantStatus: http.StatusNotFound,
			wantCode:   "USER_NOT_FOUND",
		},
		{
			name:       "monthly earnings",
			method:     http.MethodGet,
			path:       "/api/v1/users/owner-1/earnings/monthly",
			wantStatus: http.StatusNotImplemented,
			wantCode:   "NOT_IMPLEMENTED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := srv.do(t, tt.method, tt.path, tt.userID, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, decode[dto.ErrorResponse](t, body).Code)
		})
	}
}

func TestServer_StoreUnavailable(t *testing.T) {
	srv := newTestServer(t)
	item := srv.upload(t, "owner-1")

	srv.store.SetFault(func(string) error { return errors.New("connection reset") })

	status, body := srv.do(t, http.MethodPost, "/api/v1/items/"+item.ID+"/ratings", "rater-1", `{"rating":4}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	resp := decode[dto.ErrorResponse](t, body)
	assert.Equal(t, "STORE_UNAVAILABLE", resp.Code)
	assert.NotContains(t, resp.Error, "connection reset")
}

func TestServer_Audit(t *testing.T) {
	srv := newTestServer(t)
	srv.upload(t, "owner-1")
	srv.upload(t, "owner-2")

	status, _ := srv.do(t, http.MethodPost, "/api/v1/admin/audit", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := srv.do(t, http.MethodPost, "/api/v1/admin/audit?repair=true", "owner-1", "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, body).Code)

	status, body = srv.do(t, http.MethodPost, "/api/v1/admin/audit?repair=true", "admin", "")
	require.Equal(t, http.StatusOK, status, string(body))
	report := decode[dto.AuditResponse](t, body)
	assert.Equal(t, 2, report.UsersChecked)
	assert.Empty(t, report.Drifts)
	assert.Zero(t, report.Repaired)
}

func TestServer_Dashboard(t *testing.T) {
	srv := newTestServer(t)
	srv.upload(t, "owner-1")

	status, body := srv.do(t, http.MethodGet, "/dashboard/owner-1", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "Matrix notes")
	assert.Contains(t, string(body), "owner-1")

	status, body = srv.do(t, http.MethodGet, "/dashboard/nobody", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), domain.ErrUserNotFound.Error())
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	status, _ := srv.do(t, http.MethodGet, "/livez", "", "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = srv.do(t, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, status)
}
