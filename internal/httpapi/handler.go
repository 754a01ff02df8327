package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"inspectpozo/core-go/internal/auth"
	"inspectpozo/core-go/internal/db"
	"inspectpozo/core-go/internal/mapdata"
	"inspectpozo/core-go/internal/metrics"
	"inspectpozo/core-go/internal/naming"
	"inspectpozo/core-go/internal/sqlcgen"
)

type userQueries interface {
	CreateUser(ctx context.Context, arg sqlcgen.CreateUserParams) (sqlcgen.User, error)
	GetUser(ctx context.Context, id int64) (sqlcgen.User, error)
	GetUserByUsername(ctx context.Context, usuario string) (sqlcgen.User, error)
	ListUsers(ctx context.Context) ([]sqlcgen.User, error)
}

type projectQueries interface {
	CreateProject(ctx context.Context, arg sqlcgen.CreateProjectParams) (sqlcgen.Project, error)
	ListProjectsByUser(ctx context.Context, userID int64) ([]sqlcgen.Project, error)
	UpdateProject(ctx context.Context, arg sqlcgen.UpdateProjectParams) (sqlcgen.Project, error)
	DeleteProject(ctx context.Context, id int64) error
}

type structureQueries interface {
	CreateStructure(ctx context.Context, arg sqlcgen.Structure) (sqlcgen.Structure, error)
	GetStructure(ctx context.Context, id string) (sqlcgen.Structure, error)
	ListStructuresByProject(ctx context.Context, projectID int64) ([]sqlcgen.Structure, error)
	UpdateStructure(ctx context.Context, arg sqlcgen.UpdateStructureParams) (sqlcgen.Structure, error)
	DeleteStructure(ctx context.Context, id string) error
	GetStructureEndpoint(ctx context.Context, id string) (sqlcgen.StructureEndpoint, error)
	ListStructureIDsWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

type pipeQueries interface {
	CreatePipe(ctx context.Context, arg sqlcgen.Pipe) (sqlcgen.Pipe, error)
	GetPipe(ctx context.Context, id string) (sqlcgen.Pipe, error)
	ListPipesByStructure(ctx context.Context, structureID string) ([]sqlcgen.Pipe, error)
	UpdatePipe(ctx context.Context, arg sqlcgen.UpdatePipeParams) (sqlcgen.Pipe, error)
	DeletePipe(ctx context.Context, id string) error
	ListPipeIDsWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

// Store is everything the handlers need from persistence. *sqlcgen.Queries
// satisfies it.
type Store interface {
	userQueries
	projectQueries
	structureQueries
	pipeQueries
	auth.OwnerLookup
	mapdata.Source
}

type Options struct {
	Sessions           auth.SessionStore
	Metrics            *metrics.Metrics
	LoginRatePerMinute int
	LoginBurst         int
	CORSAllowedOrigins []string
}

type Handler struct {
	log      zerolog.Logger
	pool     *db.Pool
	metrics  *metrics.Metrics
	sessions auth.SessionStore
	login    *ipLimiter
	origins  map[string]struct{}

	store        Store
	guard        *auth.Guard
	structureIDs *naming.Allocator
	pipeIDs      *naming.Allocator
	maps         *mapdata.Assembler
}

func NewHandler(log zerolog.Logger, pool *db.Pool, opts Options) *Handler {
	if opts.Sessions == nil {
		opts.Sessions = auth.NewMemoryStore(log, 12*time.Hour, opts.Metrics)
	}
	if opts.LoginRatePerMinute <= 0 {
		opts.LoginRatePerMinute = 20
	}
	if opts.LoginBurst <= 0 {
		opts.LoginBurst = 5
	}

	h := &Handler{
		log:      log,
		pool:     pool,
		metrics:  opts.Metrics,
		sessions: opts.Sessions,
		login:    newIPLimiter(opts.LoginRatePerMinute, opts.LoginBurst),
		origins:  make(map[string]struct{}, len(opts.CORSAllowedOrigins)),
	}
	for _, o := range opts.CORSAllowedOrigins {
		h.origins[o] = struct{}{}
	}
	if q := pool.Queries(); q != nil {
		h.useStore(q)
	}
	return h
}

// useStore wires the store and every component that reads through it.
func (h *Handler) useStore(s Store) {
	h.store = s
	h.guard = auth.NewGuard(s)
	h.structureIDs = naming.NewAllocator(h.log, naming.IDListerFunc(s.ListStructureIDsWithPrefix), h.metrics)
	h.pipeIDs = naming.NewAllocator(h.log, naming.IDListerFunc(s.ListPipeIDsWithPrefix), h.metrics)
	h.maps = mapdata.NewAssembler(h.log, s, h.metrics)
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(h.cors)
	r.Use(h.accessLog)

	// Health
	r.Get("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleReadyZ)

	// API
	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", h.handleRegister)
				r.With(h.limitLogin).Post("/login", h.handleLogin)
				r.Group(func(r chi.Router) {
					r.Use(h.requireSession)
					r.Post("/logout", h.handleLogout)
					r.Get("/me", h.handleMe)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(h.requireSession)

				r.Get("/users", h.handleListUsers)

				r.Route("/projects", func(r chi.Router) {
					r.Get("/", h.handleListProjects)
					r.Post("/", h.handleCreateProject)
					r.Route("/{projectID}", func(r chi.Router) {
						r.Put("/", h.handleUpdateProject)
						r.Delete("/", h.handleDeleteProject)
						r.Get("/map-data", h.handleProjectMapData)
					})
				})

				r.Route("/structures", func(r chi.Router) {
					r.Get("/next-id", h.handleNextStructureID)
					r.Get("/", h.handleListStructures)
					r.Post("/", h.handleCreateStructure)
					r.Route("/{structureID}", func(r chi.Router) {
						r.Get("/", h.handleGetStructure)
						r.Put("/", h.handleUpdateStructure)
						r.Delete("/", h.handleDeleteStructure)
						r.Get("/pipes", h.handleListStructurePipes)
					})
				})

				r.Route("/pipes", func(r chi.Router) {
					r.Get("/next-id", h.handleNextPipeID)
					r.Post("/", h.handleCreatePipe)
					r.Route("/{pipeID}", func(r chi.Router) {
						r.Get("/", h.handleGetPipe)
						r.Put("/", h.handleUpdatePipe)
						r.Delete("/", h.handleDeletePipe)
					})
				})
			})
		})
	})

	return r
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		h.metrics.ObserveHTTPRequest(r.Method, route, ww.Status(), elapsed)

		h.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Int64("duration_ms", elapsed.Milliseconds()).
			Msg("http_request")
	})
}

// cors echoes the Origin back only when it is on the allow-list.
func (h *Handler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		_, allowed := h.origins[origin]
		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if allowed && r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := h.sessions.Lookup(auth.BearerToken(r))
		if !ok {
			h.writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid session token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	})
}

func (h *Handler) limitLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.login.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			h.writeError(w, http.StatusTooManyRequests, "rate_limited", "too many login attempts", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	resp := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": msg,
		},
	}
	if details != nil {
		resp["error"].(map[string]any)["details"] = details
	}
	h.writeJSON(w, status, resp)
}

func decodeJSONStrict(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("unexpected extra data after JSON body")
		}
		return err
	}
	return nil
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleReadyZ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.pool == nil {
		h.writeError(w, http.StatusServiceUnavailable, "db_unavailable", "database not configured", nil)
		return
	}

	if err := h.pool.Ping(ctx); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "db_unavailable", "database not ready", map[string]any{"error": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"ready": true})
}

func (h *Handler) ensureStore(w http.ResponseWriter) bool {
	if h.store == nil {
		h.writeError(w, http.StatusServiceUnavailable, "db_unavailable", "database not configured", nil)
		return false
	}
	return true
}

// currentUser is only called behind requireSession.
func currentUser(r *http.Request) int64 {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == "23505"
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == "23503"
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// authorize runs the ownership guard for direct access to a resource. Both a
// missing resource and one owned by someone else answer 404.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, res auth.Resource, id string) bool {
	decision, err := h.guard.Decide(r.Context(), res, id, currentUser(r))
	if err != nil {
		h.log.Error().Err(err).Str("resource", res.String()).Str("id", id).Msg("ownership check failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to check ownership", nil)
		return false
	}
	if decision != auth.Allow {
		h.writeError(w, http.StatusNotFound, "not_found", res.String()+" not found", map[string]any{"id": id})
		return false
	}
	return true
}

// writeDBError maps a persistence failure for the named resource.
func (h *Handler) writeDBError(w http.ResponseWriter, err error, res auth.Resource, op, id string) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		h.writeError(w, http.StatusNotFound, "not_found", res.String()+" not found", map[string]any{"id": id})
	case isUniqueViolation(err):
		h.writeError(w, http.StatusConflict, "conflict", res.String()+" already exists", map[string]any{"id": id})
	case isForeignKeyViolation(err):
		h.writeError(w, http.StatusConflict, "conflict", "referenced record no longer exists", map[string]any{"id": id})
	case errors.Is(err, naming.ErrAllocationExhausted):
		h.writeError(w, http.StatusConflict, "conflict", "could not allocate a free identifier; retry", nil)
	default:
		h.log.Error().Err(err).Str("resource", res.String()).Str("id", id).Msg(op + " failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to "+op, nil)
	}
}

func parseProjectID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
