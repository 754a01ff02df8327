package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"inspectpozo/core-go/internal/auth"
	"inspectpozo/core-go/internal/sqlcgen"
)

type user struct {
	ID      int64  `json:"id"`
	Usuario string `json:"usuario"`
	Nombre  string `json:"nombre"`
}

type userCreate struct {
	Usuario     string `json:"usuario"`
	Nombre      string `json:"nombre"`
	Contrasenia string `json:"contrasenia"`
}

type loginRequest struct {
	Usuario     string `json:"usuario"`
	Contrasenia string `json:"contrasenia"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func toUser(u sqlcgen.User) user {
	return user{ID: u.ID, Usuario: u.Usuario, Nombre: u.Nombre}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req userCreate
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid json body", map[string]any{"error": err.Error()})
		return
	}
	req.Usuario = strings.TrimSpace(req.Usuario)
	req.Nombre = strings.TrimSpace(req.Nombre)
	if req.Usuario == "" || req.Nombre == "" || req.Contrasenia == "" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "usuario, nombre and contrasenia are required", nil)
		return
	}

	if !h.ensureStore(w) {
		return
	}

	hash, err := auth.HashPassword(req.Contrasenia)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			h.writeError(w, http.StatusBadRequest, "validation_failed", "contrasenia must be at most 72 bytes", nil)
			return
		}
		h.log.Error().Err(err).Msg("hash password failed")
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to register user", nil)
		return
	}

	row, err := h.store.CreateUser(r.Context(), sqlcgen.CreateUserParams{
		Usuario:     req.Usuario,
		Contrasenia: hash,
		Nombre:      req.Nombre,
	})
	if err != nil {
		if isUniqueViolation(err) {
			h.writeError(w, http.StatusConflict, "conflict", "username already taken", map[string]any{"usuario": req.Usuario})
			return
		}
		h.log.Error().Err(err).Msg("create user failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to register user", nil)
		return
	}

	h.writeJSON(w, http.StatusCreated, toUser(row))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid json body", map[string]any{"error": err.Error()})
		return
	}

	if !h.ensureStore(w) {
		return
	}

	row, err := h.store.GetUserByUsername(r.Context(), strings.TrimSpace(req.Usuario))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		h.log.Error().Err(err).Msg("get user by username failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to log in", nil)
		return
	}
	if err != nil || !auth.CheckPassword(row.Contrasenia, req.Contrasenia) {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "invalid username or password", nil)
		return
	}

	sess, err := h.sessions.Create(row.ID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", row.ID).Msg("create session failed")
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to create session", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: sess.Token,
		TokenType:   "bearer",
		ExpiresAt:   sess.ExpiresAt,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Revoke(auth.BearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStore(w) {
		return
	}

	row, err := h.store.GetUser(r.Context(), currentUser(r))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.writeError(w, http.StatusUnauthorized, "unauthorized", "session user no longer exists", nil)
			return
		}
		h.log.Error().Err(err).Msg("get current user failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to fetch user", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, toUser(row))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStore(w) {
		return
	}

	rows, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list users failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to list users", nil)
		return
	}

	resp := make([]user, 0, len(rows))
	for _, u := range rows {
		resp = append(resp, toUser(u))
	}
	h.writeJSON(w, http.StatusOK, resp)
}
