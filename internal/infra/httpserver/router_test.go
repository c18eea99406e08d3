package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/realscan/realscan/internal/application/auth"
	appcodes "github.com/realscan/realscan/internal/application/codes"
	appscans "github.com/realscan/realscan/internal/application/scans"
	appstats "github.com/realscan/realscan/internal/application/stats"
	codesdomain "github.com/realscan/realscan/internal/domain/codes"
	"github.com/realscan/realscan/internal/infra/db/memory"
	"github.com/realscan/realscan/internal/infra/httpserver"
	"github.com/realscan/realscan/internal/infra/realtime"
	"github.com/realscan/realscan/internal/middleware"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond) // keep createdAt strictly ordered
	return c.now
}

type nopActivity struct{}

func (nopActivity) Append(string) error { return nil }

type env struct {
	server *httptest.Server
	token  string
	codes  *memory.CodeRepository
	scans  *memory.ScanRepository
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	clock := &testClock{now: time.Now().UTC()}
	secret := []byte("test-secret")

	codeRepo := memory.NewCodeRepository()
	scanRepo := memory.NewScanRepository()

	codesSvc := &appcodes.Service{Repo: codeRepo, Clock: clock}
	scansSvc := &appscans.Service{
		Repo:     scanRepo,
		Activity: nopActivity{},
		Clock:    clock,
		Logger:   logger,
	}
	hub := realtime.NewHub(scansSvc, logger)
	scansSvc.Notifier = hub

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	router := httpserver.NewRouter(httpserver.Dependencies{
		Codes:   codesSvc,
		Scans:   scansSvc,
		Stats:   &appstats.Service{Codes: codeRepo, Scans: scanRepo},
		Auth:    &appauth.Service{Users: memory.NewUserStore(), Secret: secret, BcryptCost: 4, Clock: clock},
		Hub:     hub,
		Logger:  logger,
		Health:  map[string]middleware.HealthChecker{},
		Secret:  secret,
		RateCap: 10000,
		RatePS:  10000,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	e := &env{server: srv, codes: codeRepo, scans: scanRepo}
	e.token = e.register(t, "admin", "secret123")
	return e
}

func (e *env) register(t *testing.T, username, password string) string {
	t.Helper()
	status, body := e.do(t, "POST", "/auth/register", "",
		map[string]any{"username": username, "password": password, "role": "admin"})
	require.Equal(t, http.StatusCreated, status, string(body))

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func (e *env) do(t *testing.T, method, path, token string, payload any) (int, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestAccessCodes_RequireAuth(t *testing.T) {
	e := newEnv(t)
	status, _ := e.do(t, "GET", "/api/access-codes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.do(t, "GET", "/api/access-codes", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAccessCodes_CreateAndList(t *testing.T) {
	e := newEnv(t)

	status, body := e.do(t, "POST", "/api/access-codes", e.token,
		map[string]any{"note": "first", "duration": 30, "subjectId": "M001"})
	require.Equal(t, http.StatusOK, status, string(body))

	var created codesdomain.AccessCode
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Len(t, created.Code, 12)
	assert.True(t, created.Active)
	assert.Equal(t, 30*time.Minute, created.ExpiresAt.Sub(created.CreatedAt))

	status, body = e.do(t, "POST", "/api/access-codes", e.token,
		map[string]any{"note": "second", "duration": 60, "subjectId": "M002"})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = e.do(t, "GET", "/api/access-codes", e.token, nil)
	require.Equal(t, http.StatusOK, status)

	var list []codesdomain.AccessCode
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "M002", list[0].SubjectID, "newest first")
	assert.Equal(t, "M001", list[1].SubjectID)
}

func TestAccessCodes_ValidationFailures(t *testing.T) {
	e := newEnv(t)

	// Missing subjectId: client error, nothing persisted.
	status, body := e.do(t, "POST", "/api/access-codes", e.token,
		map[string]any{"note": "x", "duration": 30})
	assert.Equal(t, http.StatusBadRequest, status, string(body))

	for _, duration := range []int{4, 1441} {
		status, _ := e.do(t, "POST", "/api/access-codes", e.token,
			map[string]any{"duration": duration, "subjectId": "M001"})
		assert.Equal(t, http.StatusBadRequest, status, "duration %d", duration)
	}

	status, body = e.do(t, "GET", "/api/access-codes", e.token, nil)
	require.Equal(t, http.StatusOK, status)
	var list []codesdomain.AccessCode
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Empty(t, list)
}

func TestAccessCodes_Revoke(t *testing.T) {
	e := newEnv(t)

	status, body := e.do(t, "POST", "/api/access-codes", e.token,
		map[string]any{"duration": 30, "subjectId": "M001"})
	require.Equal(t, http.StatusOK, status)
	var created codesdomain.AccessCode
	require.NoError(t, json.Unmarshal(body, &created))

	status, _ = e.do(t, "DELETE", "/api/access-codes/"+string(created.ID), e.token, nil)
	assert.Equal(t, http.StatusOK, status)

	// Idempotent: revoking again still succeeds.
	status, _ = e.do(t, "DELETE", "/api/access-codes/"+string(created.ID), e.token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, "DELETE", "/api/access-codes/missing-id", e.token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = e.do(t, "GET", "/api/access-codes", e.token, nil)
	require.Equal(t, http.StatusOK, status)
	var list []codesdomain.AccessCode
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.False(t, list[0].Active)
}

func TestScanResults_Paginated(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	scansSvc := &appscans.Service{
		Repo:     e.scans,
		Notifier: noopNotifier{},
		Activity: nopActivity{},
		Clock:    &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	for i := 0; i < 12; i++ {
		subject := fmt.Sprintf("M%03d", i%2)
		_, err := scansSvc.Completed(ctx, appscans.CompletedCommand{SubjectID: subject})
		require.NoError(t, err)
	}

	status, body := e.do(t, "GET", "/api/scan-results?limit=5&page=2", e.token, nil)
	require.Equal(t, http.StatusOK, status)

	var page struct {
		Results     []json.RawMessage `json:"results"`
		CurrentPage int               `json:"currentPage"`
		Total       int64             `json:"total"`
		TotalPages  int               `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Results, 5)

	status, body = e.do(t, "GET", "/api/scan-results?subjectId=M001&limit=10&page=1", e.token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, int64(6), page.Total)
}

func TestStats(t *testing.T) {
	e := newEnv(t)

	for i := 0; i < 3; i++ {
		status, _ := e.do(t, "POST", "/api/access-codes", e.token,
			map[string]any{"duration": 30, "subjectId": fmt.Sprintf("M%03d", i)})
		require.Equal(t, http.StatusOK, status)
	}

	status, body := e.do(t, "GET", "/api/stats", e.token, nil)
	require.Equal(t, http.StatusOK, status)

	var stats struct {
		TotalCodes  int64 `json:"totalCodes"`
		ActiveCodes int64 `json:"activeCodes"`
		TotalScans  int64 `json:"totalScans"`
	}
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, int64(3), stats.TotalCodes)
	assert.GreaterOrEqual(t, stats.TotalCodes, stats.ActiveCodes)
	assert.Zero(t, stats.TotalScans)
}

func TestStatus_Open(t *testing.T) {
	e := newEnv(t)
	status, body := e.do(t, "GET", "/api/status", "", nil)
	require.Equal(t, http.StatusOK, status)

	var res struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "online", res.Status)
	assert.NotEmpty(t, res.Version)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)

	status, _ := e.do(t, "POST", "/auth/login", "",
		map[string]any{"username": "admin", "password": "secret123"})
	assert.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, "POST", "/auth/login", "",
		map[string]any{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.do(t, "POST", "/auth/register", "",
		map[string]any{"username": "admin", "password": "other"})
	assert.Equal(t, http.StatusBadRequest, status, "duplicate username")
}

type noopNotifier struct{}

func (noopNotifier) Activity(string, string) {}
