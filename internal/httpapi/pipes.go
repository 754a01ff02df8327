package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"inspectpozo/core-go/internal/auth"
	"inspectpozo/core-go/internal/geometry"
	"inspectpozo/core-go/internal/naming"
	"inspectpozo/core-go/internal/pipes"
	"inspectpozo/core-go/internal/sqlcgen"
)

// pipeAttrs are the descriptive fields a client may set and later edit.
type pipeAttrs struct {
	Diametro  *float64 `json:"diametro,omitempty"`
	Material  *string  `json:"material,omitempty"`
	Flujo     *bool    `json:"flujo,omitempty"`
	Estado    *string  `json:"estado,omitempty"`
	Sedimento *bool    `json:"sedimento,omitempty"`

	CotaClaveInicio        *float64 `json:"cota_clave_inicio,omitempty"`
	CotaBateaInicio        *float64 `json:"cota_batea_inicio,omitempty"`
	ProfundidadClaveInicio *float64 `json:"profundidad_clave_inicio,omitempty"`
	ProfundidadBateaInicio *float64 `json:"profundidad_batea_inicio,omitempty"`

	CotaClaveDestino        *float64 `json:"cota_clave_destino,omitempty"`
	CotaBateaDestino        *float64 `json:"cota_batea_destino,omitempty"`
	ProfundidadClaveDestino *float64 `json:"profundidad_clave_destino,omitempty"`
	ProfundidadBateaDestino *float64 `json:"profundidad_batea_destino,omitempty"`

	Grados        *float64 `json:"grados,omitempty"`
	Observaciones *string  `json:"observaciones,omitempty"`
}

type pipe struct {
	ID        string `json:"id"`
	Geometria string `json:"geometria"`
	pipeAttrs
	IDEstructuraInicio  string  `json:"id_estructura_inicio"`
	IDEstructuraDestino string  `json:"id_estructura_destino"`
	LengthMeters        float64 `json:"length_m"`
}

// pipeCreate never carries geometry. An id may be sent by older clients; it
// is ignored and a fresh one allocated.
type pipeCreate struct {
	ID *string `json:"id,omitempty"`
	pipeAttrs
	IDEstructuraInicio  string `json:"id_estructura_inicio"`
	IDEstructuraDestino string `json:"id_estructura_destino"`
}

type pipeUpdate struct {
	pipeAttrs
}

func toPipe(p sqlcgen.Pipe) pipe {
	return pipe{
		ID:        p.ID,
		Geometria: p.Geometria,
		pipeAttrs: pipeAttrs{
			Diametro:                p.Diametro,
			Material:                p.Material,
			Flujo:                   p.Flujo,
			Estado:                  p.Estado,
			Sedimento:               p.Sedimento,
			CotaClaveInicio:         p.CotaClaveInicio,
			CotaBateaInicio:         p.CotaBateaInicio,
			ProfundidadClaveInicio:  p.ProfundidadClaveInicio,
			ProfundidadBateaInicio:  p.ProfundidadBateaInicio,
			CotaClaveDestino:        p.CotaClaveDestino,
			CotaBateaDestino:        p.CotaBateaDestino,
			ProfundidadClaveDestino: p.ProfundidadClaveDestino,
			ProfundidadBateaDestino: p.ProfundidadBateaDestino,
			Grados:                  p.Grados,
			Observaciones:           p.Observaciones,
		},
		IDEstructuraInicio:  p.IDEstructuraInicio,
		IDEstructuraDestino: p.IDEstructuraDestino,
		LengthMeters:        geometry.ParseLineString(p.Geometria).LengthMeters(),
	}
}

func (h *Handler) handleNextPipeID(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStore(w) {
		return
	}

	id, err := h.pipeIDs.Peek(r.Context(), naming.PrefixPipe)
	if err != nil {
		h.log.Error().Err(err).Msg("peek pipe id failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to compute next id", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

// endpointFor checks the caller owns the structure and loads what the deriver
// needs from it. It writes the response itself when it returns false.
func (h *Handler) endpointFor(w http.ResponseWriter, r *http.Request, side, id string) (pipes.Endpoint, bool) {
	decision, err := h.guard.Decide(r.Context(), auth.ResourceStructure, id, currentUser(r))
	if err != nil {
		h.log.Error().Err(err).Str("structure_id", id).Msg("ownership check failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to check ownership", nil)
		return pipes.Endpoint{}, false
	}
	switch decision {
	case auth.NotFound:
		h.writeError(w, http.StatusNotFound, "not_found", side+" structure not found", map[string]any{"id": id})
		return pipes.Endpoint{}, false
	case auth.Forbidden:
		h.writeError(w, http.StatusForbidden, "forbidden", side+" structure belongs to another user's project", map[string]any{"id": id})
		return pipes.Endpoint{}, false
	}

	row, err := h.store.GetStructureEndpoint(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "not_found", side+" structure not found", map[string]any{"id": id})
			return pipes.Endpoint{}, false
		}
		h.log.Error().Err(err).Str("structure_id", id).Msg("get structure endpoint failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to load structure", nil)
		return pipes.Endpoint{}, false
	}

	ep, err := pipes.ResolveEndpoint(row.ID, row.Geometria, row.CotaEstructura)
	if err != nil {
		h.log.Debug().Err(err).Str("structure_id", id).Msg("structure geometry unusable")
	}
	return ep, true
}

func (h *Handler) handleCreatePipe(w http.ResponseWriter, r *http.Request) {
	var req pipeCreate
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid json body", map[string]any{"error": err.Error()})
		return
	}
	req.IDEstructuraInicio = strings.TrimSpace(req.IDEstructuraInicio)
	req.IDEstructuraDestino = strings.TrimSpace(req.IDEstructuraDestino)
	if req.IDEstructuraInicio == "" || req.IDEstructuraDestino == "" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "id_estructura_inicio and id_estructura_destino are required", nil)
		return
	}

	if !h.ensureStore(w) {
		return
	}

	start, ok := h.endpointFor(w, r, "start", req.IDEstructuraInicio)
	if !ok {
		return
	}
	end, ok := h.endpointFor(w, r, "end", req.IDEstructuraDestino)
	if !ok {
		return
	}

	derived, err := pipes.Derive(start, end, pipes.Elevations{
		DepthStart: req.ProfundidadClaveInicio,
		DepthEnd:   req.ProfundidadClaveDestino,
		ClaveStart: req.CotaClaveInicio,
		ClaveEnd:   req.CotaClaveDestino,
	})
	if err != nil {
		if errors.Is(err, pipes.ErrEndpointGeometryMissing) {
			h.writeError(w, http.StatusBadRequest, "endpoint_geometry_missing",
				"could not build the pipe geometry; both structures need a valid POINT geometry",
				map[string]any{"error": err.Error()})
			return
		}
		h.log.Error().Err(err).Msg("derive pipe failed")
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to derive pipe", nil)
		return
	}

	attrs := req.pipeAttrs
	attrs.CotaClaveInicio = derived.ClaveStart
	attrs.CotaClaveDestino = derived.ClaveEnd
	params := attrs.toModel()
	params.Geometria = derived.WKT()
	params.IDEstructuraInicio = req.IDEstructuraInicio
	params.IDEstructuraDestino = req.IDEstructuraDestino

	var row sqlcgen.Pipe
	id, err := h.pipeIDs.Allocate(r.Context(), naming.PrefixPipe, func(ctx context.Context, id string) error {
		p := params
		p.ID = id
		var ierr error
		row, ierr = h.store.CreatePipe(ctx, p)
		return ierr
	})
	if err != nil {
		h.writeDBError(w, err, auth.ResourcePipe, "create pipe", id)
		return
	}

	h.writeJSON(w, http.StatusCreated, toPipe(row))
}

func (a pipeAttrs) toModel() sqlcgen.Pipe {
	return sqlcgen.Pipe{
		Diametro:                a.Diametro,
		Material:                a.Material,
		Flujo:                   a.Flujo,
		Estado:                  a.Estado,
		Sedimento:               a.Sedimento,
		CotaClaveInicio:         a.CotaClaveInicio,
		CotaBateaInicio:         a.CotaBateaInicio,
		ProfundidadClaveInicio:  a.ProfundidadClaveInicio,
		ProfundidadBateaInicio:  a.ProfundidadBateaInicio,
		CotaClaveDestino:        a.CotaClaveDestino,
		CotaBateaDestino:        a.CotaBateaDestino,
		ProfundidadClaveDestino: a.ProfundidadClaveDestino,
		ProfundidadBateaDestino: a.ProfundidadBateaDestino,
		Grados:                  a.Grados,
		Observaciones:           a.Observaciones,
	}
}

func (h *Handler) handleGetPipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pipeID")
	if !h.ensureStore(w) {
		return
	}
	if !h.authorize(w, r, auth.ResourcePipe, id) {
		return
	}

	row, err := h.store.GetPipe(r.Context(), id)
	if err != nil {
		h.writeDBError(w, err, auth.ResourcePipe, "get pipe", id)
		return
	}
	h.writeJSON(w, http.StatusOK, toPipe(row))
}

func (h *Handler) handleUpdatePipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pipeID")
	var req pipeUpdate
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid json body", map[string]any{"error": err.Error()})
		return
	}

	if !h.ensureStore(w) {
		return
	}
	if !h.authorize(w, r, auth.ResourcePipe, id) {
		return
	}

	row, err := h.store.UpdatePipe(r.Context(), sqlcgen.UpdatePipeParams{
		ID:                      id,
		Diametro:                req.Diametro,
		Material:                req.Material,
		Flujo:                   req.Flujo,
		Estado:                  req.Estado,
		Sedimento:               req.Sedimento,
		CotaClaveInicio:         req.CotaClaveInicio,
		CotaBateaInicio:         req.CotaBateaInicio,
		ProfundidadClaveInicio:  req.ProfundidadClaveInicio,
		ProfundidadBateaInicio:  req.ProfundidadBateaInicio,
		CotaClaveDestino:        req.CotaClaveDestino,
		CotaBateaDestino:        req.CotaBateaDestino,
		ProfundidadClaveDestino: req.ProfundidadClaveDestino,
		ProfundidadBateaDestino: req.ProfundidadBateaDestino,
		Grados:                  req.Grados,
		Observaciones:           req.Observaciones,
	})
	if err != nil {
		h.writeDBError(w, err, auth.ResourcePipe, "update pipe", id)
		return
	}

	h.writeJSON(w, http.StatusOK, toPipe(row))
}

func (h *Handler) handleDeletePipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pipeID")
	if !h.ensureStore(w) {
		return
	}
	if !h.authorize(w, r, auth.ResourcePipe, id) {
		return
	}

	if err := h.store.DeletePipe(r.Context(), id); err != nil {
		h.writeDBError(w, err, auth.ResourcePipe, "delete pipe", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
