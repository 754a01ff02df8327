package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"inspectpozo/core-go/internal/auth"
	"inspectpozo/core-go/internal/geometry"
	"inspectpozo/core-go/internal/naming"
	"inspectpozo/core-go/internal/sqlcgen"
	"inspectpozo/core-go/internal/tagging"
)

// structureAttrs are the inspection fields shared by every structure payload.
type structureAttrs struct {
	FechaInspeccion *string `json:"fecha_inspeccion,omitempty"`
	HoraInspeccion  *string `json:"hora_inspeccion,omitempty"`
	ClimaInspeccion *string `json:"clima_inspeccion,omitempty"`
	TipoVia         *string `json:"tipo_via,omitempty"`
	TipoSistema     *string `json:"tipo_sistema,omitempty"`
	Material        *string `json:"material,omitempty"`

	ConoReduccion   *bool    `json:"cono_reduccion,omitempty"`
	AlturaCono      *float64 `json:"altura_cono,omitempty"`
	ProfundidadPozo *float64 `json:"profundidad_pozo,omitempty"`
	DiametroCamara  *float64 `json:"diametro_camara,omitempty"`

	Sedimentacion          *bool    `json:"sedimentacion,omitempty"`
	CoberturaTuberiaSalida *bool    `json:"cobertura_tuberia_salida,omitempty"`
	DepositoPredomina      *string  `json:"deposito_predomina,omitempty"`
	FlujoRepresado         *bool    `json:"flujo_represado,omitempty"`
	NivelCubreCotasalida   *bool    `json:"nivel_cubre_cotasalida,omitempty"`
	CotaEstructura         *float64 `json:"cota_estructura,omitempty"`
	CondicionesInvestiga   *string  `json:"condiciones_investiga,omitempty"`
	Observaciones          *string  `json:"observaciones,omitempty"`

	TipoSumidero     *string  `json:"tipo_sumidero,omitempty"`
	AnchoSumidero    *float64 `json:"ancho_sumidero,omitempty"`
	LargoSumidero    *float64 `json:"largo_sumidero,omitempty"`
	AlturaSumidero   *float64 `json:"altura_sumidero,omitempty"`
	AnchoRejilla     *float64 `json:"ancho_rejilla,omitempty"`
	LargoRejilla     *float64 `json:"largo_rejilla,omitempty"`
	AlturaRejilla    *float64 `json:"altura_rejilla,omitempty"`
	MaterialRejilla  *string  `json:"material_rejilla,omitempty"`
	MaterialSumidero *string  `json:"material_sumidero,omitempty"`
}

type structure struct {
	ID        string   `json:"id"`
	Tipo      string   `json:"tipo"`
	Geometria *string  `json:"geometria,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	structureAttrs
	IDProyecto int64 `json:"id_proyecto"`
}

// structureCreate accepts either geometria or a lon/lat pair. id is optional;
// when absent one is allocated from the kind's prefix.
type structureCreate struct {
	ID        *string  `json:"id,omitempty"`
	Tipo      string   `json:"tipo"`
	Geometria *string  `json:"geometria,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	structureAttrs
	IDProyecto int64 `json:"id_proyecto"`
}

type structureUpdate struct {
	Tipo      *string  `json:"tipo,omitempty"`
	Geometria *string  `json:"geometria,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	structureAttrs
	IDProyecto *int64 `json:"id_proyecto,omitempty"`
}

var errValidation = errors.New("validation failed")

func toStructure(s sqlcgen.Structure) structure {
	out := structure{
		ID:         s.ID,
		Tipo:       s.Tipo,
		Geometria:  s.Geometria,
		IDProyecto: s.IDProyecto,
		structureAttrs: structureAttrs{
			FechaInspeccion:        s.FechaInspeccion,
			HoraInspeccion:         s.HoraInspeccion,
			ClimaInspeccion:        s.ClimaInspeccion,
			TipoVia:                s.TipoVia,
			TipoSistema:            s.TipoSistema,
			Material:               s.Material,
			ConoReduccion:          s.ConoReduccion,
			AlturaCono:             s.AlturaCono,
			ProfundidadPozo:        s.ProfundidadPozo,
			DiametroCamara:         s.DiametroCamara,
			Sedimentacion:          s.Sedimentacion,
			CoberturaTuberiaSalida: s.CoberturaTuberiaSalida,
			DepositoPredomina:      s.DepositoPredomina,
			FlujoRepresado:         s.FlujoRepresado,
			NivelCubreCotasalida:   s.NivelCubreCotasalida,
			CotaEstructura:         s.CotaEstructura,
			CondicionesInvestiga:   s.CondicionesInvestiga,
			Observaciones:          s.Observaciones,
			TipoSumidero:           s.TipoSumidero,
			AnchoSumidero:          s.AnchoSumidero,
			LargoSumidero:          s.LargoSumidero,
			AlturaSumidero:         s.AlturaSumidero,
			AnchoRejilla:           s.AnchoRejilla,
			LargoRejilla:           s.LargoRejilla,
			AlturaRejilla:          s.AlturaRejilla,
			MaterialRejilla:        s.MaterialRejilla,
			MaterialSumidero:       s.MaterialSumidero,
		},
	}
	if s.Geometria != nil {
		if p, err := geometry.ParsePoint(*s.Geometria); err == nil {
			lon, lat := p.Lon(), p.Lat()
			out.Lon, out.Lat = &lon, &lat
		}
	}
	return out
}

func (a structureAttrs) toModel() sqlcgen.StructureAttrs {
	return sqlcgen.StructureAttrs{
		FechaInspeccion:        a.FechaInspeccion,
		HoraInspeccion:         a.HoraInspeccion,
		ClimaInspeccion:        a.ClimaInspeccion,
		TipoVia:                a.TipoVia,
		TipoSistema:            a.TipoSistema,
		Material:               a.Material,
		ConoReduccion:          a.ConoReduccion,
		AlturaCono:             a.AlturaCono,
		ProfundidadPozo:        a.ProfundidadPozo,
		DiametroCamara:         a.DiametroCamara,
		Sedimentacion:          a.Sedimentacion,
		CoberturaTuberiaSalida: a.CoberturaTuberiaSalida,
		DepositoPredomina:      a.DepositoPredomina,
		FlujoRepresado:         a.FlujoRepresado,
		NivelCubreCotasalida:   a.NivelCubreCotasalida,
		CotaEstructura:         a.CotaEstructura,
		CondicionesInvestiga:   a.CondicionesInvestiga,
		Observaciones:          a.Observaciones,
		TipoSumidero:           a.TipoSumidero,
		AnchoSumidero:          a.AnchoSumidero,
		LargoSumidero:          a.LargoSumidero,
		AlturaSumidero:         a.AlturaSumidero,
		AnchoRejilla:           a.AnchoRejilla,
		LargoRejilla:           a.LargoRejilla,
		AlturaRejilla:          a.AlturaRejilla,
		MaterialRejilla:        a.MaterialRejilla,
		MaterialSumidero:       a.MaterialSumidero,
	}
}

// validate checks the date and time formats Postgres will be asked to cast.
func (a structureAttrs) validate() error {
	if a.FechaInspeccion != nil {
		if _, err := time.Parse(time.DateOnly, *a.FechaInspeccion); err != nil {
			return fmt.Errorf("%w: fecha_inspeccion must be YYYY-MM-DD", errValidation)
		}
	}
	if a.HoraInspeccion != nil {
		if _, err := time.Parse(time.TimeOnly, *a.HoraInspeccion); err != nil {
			if _, err := time.Parse("15:04", *a.HoraInspeccion); err != nil {
				return fmt.Errorf("%w: hora_inspeccion must be HH:MM or HH:MM:SS", errValidation)
			}
		}
	}
	return nil
}

// resolveGeometry returns the canonical POINT text for a request that carries
// either WKT or a lon/lat pair, or nil when it carries neither.
func resolveGeometry(wkt *string, lon, lat *float64) (*string, error) {
	if wkt != nil && (lon != nil || lat != nil) {
		return nil, fmt.Errorf("%w: send geometria or lon/lat, not both", errValidation)
	}
	if wkt != nil {
		p, err := geometry.ParsePoint(*wkt)
		if err != nil {
			return nil, err
		}
		out := geometry.FormatPoint(p)
		return &out, nil
	}
	if lon == nil && lat == nil {
		return nil, nil
	}
	if lon == nil || lat == nil {
		return nil, fmt.Errorf("%w: lon and lat must be sent together", geometry.ErrMalformedGeometry)
	}
	if err := geometry.ValidateLonLat(*lon, *lat); err != nil {
		return nil, err
	}
	out := geometry.FormatPoint(geometry.Point{X: *lon, Y: *lat})
	return &out, nil
}

func (h *Handler) writeInputError(w http.ResponseWriter, err error) {
	if errors.Is(err, geometry.ErrMalformedGeometry) {
		h.writeError(w, http.StatusBadRequest, "malformed_geometry", "geometry must be POINT(lon lat)", map[string]any{"error": err.Error()})
		return
	}
	h.writeError(w, http.StatusBadRequest, "validation_failed", err.Error(), nil)
}

func (h *Handler) handleNextStructureID(w http.ResponseWriter, r *http.Request) {
	tipo := strings.TrimSpace(r.URL.Query().Get("tipo"))
	if tipo == "" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "tipo is required", nil)
		return
	}
	if !h.ensureStore(w) {
		return
	}

	prefix := naming.PrefixForKind(tagging.NormalizeKind(tipo))
	id, err := h.structureIDs.Peek(r.Context(), prefix)
	if err != nil {
		h.log.Error().Err(err).Str("prefix", prefix).Msg("peek structure id failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to compute next id", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *Handler) handleListStructures(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id_proyecto")
	projectID, ok := parseProjectID(raw)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "id_proyecto query parameter is required", map[string]any{"id_proyecto": raw})
		return
	}
	if !h.ensureStore(w) {
		return
	}
	if !h.authorize(w, r, auth.ResourceProject, raw) {
		return
	}

	rows, err := h.store.ListStructuresByProject(r.Context(), projectID)
	if err != nil {
		h.log.Error().Err(err).Int64("project_id", projectID).Msg("list structures failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to list structures", nil)
		return
	}

	resp := make([]structure, 0, len(rows))
	for _, s := range rows {
		resp = append(resp, toStructure(s))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateStructure(w http.ResponseWriter, r *http.Request) {
	var req structureCreate
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid json body", map[string]any{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Tipo) == "" || req.IDProyecto <= 0 {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "tipo and id_proyecto are required", nil)
		return
	}
	if err := req.structureAttrs.validate(); err != nil {
		h.writeInputError(w, err)
		return
	}
	geom, err := resolveGeometry(req.Geometria, req.Lon, req.Lat)
	if err != nil {
		h.writeInputError(w, err)
		return
	}

	kind := tagging.NormalizeKind(req.Tipo)
	prefix := naming.PrefixForKind(kind)

	var callerID string
	if req.ID != nil {
		raw := strings.TrimSpace(*req.ID)
		var ok bool
		if callerID, ok = naming.Canonical(raw, prefix); !ok {
			h.writeError(w, http.StatusBadRequest, "validation_failed",
				"id must be the "+prefix+" prefix followed by a number no larger than "+strconv.Itoa(naming.MaxSuffix),
				map[string]any{"id": raw, "tipo": string(kind)})
			return
		}
	}

	if !h.ensureStore(w) {
		return
	}
	projectRaw := strconv.FormatInt(req.IDProyecto, 10)
	if !h.authorize(w, r, auth.ResourceProject, projectRaw) {
		return
	}

	params := sqlcgen.Structure{
		Tipo:           string(kind),
		Geometria:      geom,
		StructureAttrs: req.structureAttrs.toModel(),
		IDProyecto:     req.IDProyecto,
	}

	var row sqlcgen.Structure
	if callerID != "" {
		params.ID = callerID
		row, err = h.store.CreateStructure(r.Context(), params)
	} else {
		params.ID, err = h.structureIDs.Allocate(r.Context(), prefix, func(ctx context.Context, id string) error {
			p := params
			p.ID = id
			var ierr error
			row, ierr = h.store.CreateStructure(ctx, p)
			return ierr
		})
	}
	if err != nil {
		h.writeDBError(w, err, auth.ResourceStructure, "create structure", params.ID)
		return
	}

	h.writeJSON(w, http.StatusCreated, toStructure(row))
}

func (h *Handler) handleGetStructure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "structureID")
	if !h.ensureStore(w) {
		return
	}
	if !h.authorize(w, r, auth.ResourceStructure, id) {
		return
	}

	row, err := h.store.GetStructure(r.Context(), id)
	if err != nil {
		h.writeDBError(w, err, auth.ResourceStructure, "get structure", id)
		return
	}
	h.writeJSON(w, http.StatusOK, toStructure(row))
}

func (h *Handler) handleUpdateStructure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "structureID")
	var req structureUpdate
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid json body", map[string]any{"error": err.Error()})
		return
	}
	if err := req.structureAttrs.validate(); err != nil {
		h.writeInputError(w, err)
		return
	}
	geom, err := resolveGeometry(req.Geometria, req.Lon, req.Lat)
	if err != nil {
		h.writeInputError(w, err)
		return
	}
	if req.IDProyecto != nil && *req.IDProyecto <= 0 {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "id_proyecto must be a positive integer", nil)
		return
	}

	if !h.ensureStore(w) {
		return
	}
	if !h.authorize(w, r, auth.ResourceStructure, id) {
		return
	}
	if req.IDProyecto != nil && !h.authorize(w, r, auth.ResourceProject, strconv.FormatInt(*req.IDProyecto, 10)) {
		return
	}

	var tipo *string
	if req.Tipo != nil {
		kind := tagging.NormalizeKind(*req.Tipo)
		// The id prefix is fixed at creation; tipo may only move within it.
		if prefix := naming.PrefixForKind(kind); !strings.HasPrefix(strings.ToLower(id), prefix) {
			h.writeError(w, http.StatusBadRequest, "validation_failed", "tipo cannot change the kind of an existing structure",
				map[string]any{"id": id, "tipo": string(kind)})
			return
		}
		k := string(kind)
		tipo = &k
	}

	row, err := h.store.UpdateStructure(r.Context(), sqlcgen.UpdateStructureParams{
		ID:             id,
		Tipo:           tipo,
		Geometria:      geom,
		StructureAttrs: req.structureAttrs.toModel(),
		IDProyecto:     req.IDProyecto,
	})
	if err != nil {
		h.writeDBError(w, err, auth.ResourceStructure, "update structure", id)
		return
	}

	h.writeJSON(w, http.StatusOK, toStructure(row))
}

func (h *Handler) handleDeleteStructure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "structureID")
	if !h.ensureStore(w) {
		return
	}
	if !h.authorize(w, r, auth.ResourceStructure, id) {
		return
	}

	if err := h.store.DeleteStructure(r.Context(), id); err != nil {
		h.writeDBError(w, err, auth.ResourceStructure, "delete structure", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListStructurePipes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "structureID")
	if !h.ensureStore(w) {
		return
	}
	if !h.authorize(w, r, auth.ResourceStructure, id) {
		return
	}

	rows, err := h.store.ListPipesByStructure(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("structure_id", id).Msg("list pipes failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to list pipes", nil)
		return
	}

	resp := make([]pipe, 0, len(rows))
	for _, p := range rows {
		resp = append(resp, toPipe(p))
	}
	h.writeJSON(w, http.StatusOK, resp)
}
