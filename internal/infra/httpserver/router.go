package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appauth "github.com/realscan/realscan/internal/application/auth"
	appcodes "github.com/realscan/realscan/internal/application/codes"
	appscans "github.com/realscan/realscan/internal/application/scans"
	appstats "github.com/realscan/realscan/internal/application/stats"
	codesdomain "github.com/realscan/realscan/internal/domain/codes"
	"github.com/realscan/realscan/internal/infra/realtime"
	"github.com/realscan/realscan/internal/middleware"
)

const Version = "2.0.0"

type Dependencies struct {
	Codes   *appcodes.Service
	Scans   *appscans.Service
	Stats   *appstats.Service
	Auth    *appauth.Service
	Hub     *realtime.Hub
	Logger  *log.Logger
	Health  map[string]middleware.HealthChecker
	Secret  []byte
	RateCap int
	RatePS  int
}

type Router struct {
	codes     *appcodes.Service
	scans     *appscans.Service
	stats     *appstats.Service
	auth      *appauth.Service
	hub       *realtime.Hub
	logger    *log.Logger
	startedAt time.Time
}

func NewRouter(d Dependencies) http.Handler {
	r := &Router{
		codes:     d.Codes,
		scans:     d.Scans,
		stats:     d.Stats,
		auth:      d.Auth,
		hub:       d.Hub,
		logger:    d.Logger,
		startedAt: time.Now(),
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	mux.Use(middleware.Logging(d.Logger))
	mux.Use(middleware.CountRequests)
	mux.Use(middleware.RateLimit(d.RateCap, d.RatePS))

	mux.Get("/health", middleware.HealthHandler(d.Health))
	mux.Get("/metrics", middleware.MetricsHandler(d.Hub.SessionCount))
	mux.Get("/ws", d.Hub.ServeWS)

	mux.Route("/auth", func(rt chi.Router) {
		rt.Post("/login", r.wrap(r.handleLogin))
		rt.Post("/register", r.wrap(r.handleRegister))
	})

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/status", r.handleStatus)

		rt.Group(func(priv chi.Router) {
			priv.Use(middleware.JWTAuth(d.Secret))
			priv.Get("/access-codes", r.wrap(r.handleListCodes))
			priv.Post("/access-codes", r.wrap(r.handleCreateCode))
			priv.Delete("/access-codes/{id}", r.wrap(r.handleRevokeCode))
			priv.Get("/scan-results", r.wrap(r.handleScanResults))
			priv.Get("/stats", r.wrap(r.handleStats))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps domain errors onto status codes: validation → 400,
// missing → 404, bad credentials → 401, anything else → 500 logged.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var ve *codesdomain.ValidationError
		switch {
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, ve.Error())
		case errors.Is(err, codesdomain.ErrNotFound), errors.Is(err, sql.ErrNoRows):
			writeError(w, http.StatusNotFound, "access code not found")
		case errors.Is(err, appauth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, appauth.ErrUsernameTaken), errors.Is(err, appauth.ErrMissingField):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			r.logger.Printf("handler error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// GET /api/access-codes
func (r *Router) handleListCodes(w http.ResponseWriter, req *http.Request) error {
	codes, err := r.codes.List(req.Context())
	if err != nil {
		return err
	}
	if codes == nil {
		codes = []*codesdomain.AccessCode{}
	}
	return writeJSON(w, http.StatusOK, codes)
}

// POST /api/access-codes
func (r *Router) handleCreateCode(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Note      string `json:"note"`
		Duration  int    `json:"duration"`
		SubjectID string `json:"subjectId"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &codesdomain.ValidationError{Field: "body", Reason: "invalid JSON"}
	}

	code, err := r.codes.Issue(req.Context(), appcodes.IssueCommand{
		SubjectID: body.SubjectID,
		Duration:  body.Duration,
		Note:      body.Note,
	})
	if err != nil {
		return err
	}

	middleware.IncrementCodesIssued()
	// Lifecycle broadcast is the caller's job, not Issue's.
	r.hub.AdminActivity(
		fmt.Sprintf("New access code issued for subject ID: %s", code.SubjectID), "info")

	return writeJSON(w, http.StatusOK, code)
}

// DELETE /api/access-codes/{id}
func (r *Router) handleRevokeCode(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := r.codes.Revoke(req.Context(), codesdomain.CodeID(id)); err != nil {
		return err
	}

	r.hub.AdminActivity("Access code deactivated", "warning")
	return writeJSON(w, http.StatusOK, map[string]string{"message": "Access code deactivated"})
}

// GET /api/scan-results?subjectId=&limit=&page=
func (r *Router) handleScanResults(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	subjectID := q.Get("subjectId")
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, _ := strconv.Atoi(q.Get("page"))

	result, err := r.scans.ListPage(req.Context(), subjectID, page, limit)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, result)
}

// GET /api/stats
func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) error {
	stats, err := r.stats.Compute(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, stats)
}

// GET /api/status
func (r *Router) handleStatus(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "online",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    int64(time.Since(r.startedAt).Seconds()),
	})
}

// POST /auth/login
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return appauth.ErrMissingField
	}
	res, err := r.auth.Login(req.Context(), body.Username, body.Password)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// POST /auth/register
func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return appauth.ErrMissingField
	}
	res, err := r.auth.Register(req.Context(), body.Username, body.Password, body.Role)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, res)
}
