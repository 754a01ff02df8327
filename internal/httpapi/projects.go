package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"inspectpozo/core-go/internal/auth"
	"inspectpozo/core-go/internal/sqlcgen"
)

type project struct {
	ID          int64   `json:"id"`
	Nombre      string  `json:"nombre"`
	Contrato    *string `json:"contrato,omitempty"`
	Contratante *string `json:"contratante,omitempty"`
	Contratista *string `json:"contratista,omitempty"`
	Encargado   *string `json:"encargado,omitempty"`
}

type projectCreate struct {
	Nombre      string  `json:"nombre"`
	Contrato    *string `json:"contrato,omitempty"`
	Contratante *string `json:"contratante,omitempty"`
	Contratista *string `json:"contratista,omitempty"`
	Encargado   *string `json:"encargado,omitempty"`
}

type projectUpdate struct {
	Nombre      *string `json:"nombre,omitempty"`
	Contrato    *string `json:"contrato,omitempty"`
	Contratante *string `json:"contratante,omitempty"`
	Contratista *string `json:"contratista,omitempty"`
	Encargado   *string `json:"encargado,omitempty"`
}

func toProject(p sqlcgen.Project) project {
	return project{
		ID:          p.ID,
		Nombre:      p.Nombre,
		Contrato:    p.Contrato,
		Contratante: p.Contratante,
		Contratista: p.Contratista,
		Encargado:   p.Encargado,
	}
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStore(w) {
		return
	}

	rows, err := h.store.ListProjectsByUser(r.Context(), currentUser(r))
	if err != nil {
		h.log.Error().Err(err).Msg("list projects failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to list projects", nil)
		return
	}

	resp := make([]project, 0, len(rows))
	for _, p := range rows {
		resp = append(resp, toProject(p))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectCreate
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid json body", map[string]any{"error": err.Error()})
		return
	}
	req.Nombre = strings.TrimSpace(req.Nombre)
	if req.Nombre == "" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "nombre is required", nil)
		return
	}

	if !h.ensureStore(w) {
		return
	}

	row, err := h.store.CreateProject(r.Context(), sqlcgen.CreateProjectParams{
		Nombre:      req.Nombre,
		Contrato:    req.Contrato,
		Contratante: req.Contratante,
		Contratista: req.Contratista,
		Encargado:   req.Encargado,
		IDUsuario:   currentUser(r),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("create project failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to create project", nil)
		return
	}

	h.writeJSON(w, http.StatusCreated, toProject(row))
}

// projectFromURL parses and authorizes the {projectID} path parameter.
func (h *Handler) projectFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "projectID")
	id, ok := parseProjectID(raw)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "project id must be a positive integer", map[string]any{"id": raw})
		return 0, false
	}
	if !h.ensureStore(w) {
		return 0, false
	}
	if !h.authorize(w, r, auth.ResourceProject, raw) {
		return 0, false
	}
	return id, true
}

func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectUpdate
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid json body", map[string]any{"error": err.Error()})
		return
	}
	if req.Nombre != nil && strings.TrimSpace(*req.Nombre) == "" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "nombre must not be empty", nil)
		return
	}

	id, ok := h.projectFromURL(w, r)
	if !ok {
		return
	}

	row, err := h.store.UpdateProject(r.Context(), sqlcgen.UpdateProjectParams{
		ID:          id,
		Nombre:      req.Nombre,
		Contrato:    req.Contrato,
		Contratante: req.Contratante,
		Contratista: req.Contratista,
		Encargado:   req.Encargado,
	})
	if err != nil {
		h.writeDBError(w, err, auth.ResourceProject, "update project", chi.URLParam(r, "projectID"))
		return
	}

	h.writeJSON(w, http.StatusOK, toProject(row))
}

func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectFromURL(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteProject(r.Context(), id); err != nil {
		h.writeDBError(w, err, auth.ResourceProject, "delete project", chi.URLParam(r, "projectID"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
