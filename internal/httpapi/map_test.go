package httpapi

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"inspectpozo/core-go/internal/sqlcgen"
)

func TestProjectMapData_ReturnsRenderableFeatures(t *testing.T) {
	router, store, tok, pid := pipeFixture(t)

	// No geometry: left off the map but still a valid pipe endpoint owner.
	store.seedStructure(sqlcgen.Structure{ID: "sm0001", Tipo: "drain", IDProyecto: pid})
	store.seedStructure(sqlcgen.Structure{ID: "es0001", Tipo: "other", Geometria: ptr("garbage"), IDProyecto: pid})

	rr := doJSON(t, router, http.MethodPost, "/api/v1/pipes", tok, map[string]any{
		"id_estructura_inicio": "pz0001", "id_estructura_destino": "pz0002",
	})
	expectStatus(t, rr, http.StatusCreated)

	store.mu.Lock()
	store.pipes["tub0009"] = sqlcgen.Pipe{ID: "tub0009", Geometria: "LINESTRING()", IDEstructuraInicio: "pz0001", IDEstructuraDestino: "sm0001"}
	store.mu.Unlock()

	rr = doJSON(t, router, http.MethodGet, "/api/v1/projects/"+itoa(pid)+"/map-data", tok, nil)
	expectStatus(t, rr, http.StatusOK)
	body := decodeBody(t, rr)

	structures, ok := body["structures"].([]any)
	if !ok || len(structures) != 2 {
		t.Fatalf("expected 2 renderable structures, got %T %v", body["structures"], body["structures"])
	}
	first := structures[0].(map[string]any)
	if first["id"] != "pz0001" || first["tipo"] != "well" || first["lon"] != -75.0 || first["lat"] != 6.2 {
		t.Fatalf("unexpected structure entry: %v", first)
	}

	pipes, ok := body["pipes"].([]any)
	if !ok || len(pipes) != 1 {
		t.Fatalf("expected 1 renderable pipe, got %T %v", body["pipes"], body["pipes"])
	}
	p := pipes[0].(map[string]any)
	if p["id"] != "tub0001" || p["id_estructura_inicio"] != "pz0001" || p["id_estructura_destino"] != "pz0002" {
		t.Fatalf("unexpected pipe entry: %v", p)
	}
	coords, ok := p["coords"].([]any)
	if !ok || len(coords) != 2 {
		t.Fatalf("expected 2 vertices, got %v", p["coords"])
	}
	start := coords[0].([]any)
	if start[0] != -75.0 || start[1] != 6.2 {
		t.Fatalf("expected [lon, lat] order for first vertex, got %v", start)
	}
	if _, ok := p["length_m"].(float64); !ok {
		t.Fatalf("expected length_m number, got %T", p["length_m"])
	}
}

func TestProjectMapData_EmptyProject_EmptyArrays(t *testing.T) {
	h, _ := newTestHandler(t, Options{})
	router := h.Router()
	tok := registerAndLogin(t, router, "ana")
	pid := createProject(t, router, tok, "Vacío")

	rr := doJSON(t, router, http.MethodGet, "/api/v1/projects/"+itoa(pid)+"/map-data", tok, nil)
	expectStatus(t, rr, http.StatusOK)
	body := decodeBody(t, rr)
	for _, key := range []string{"structures", "pipes"} {
		if arr, ok := body[key].([]any); !ok || len(arr) != 0 {
			t.Fatalf("expected empty %s array, got %T %v", key, body[key], body[key])
		}
	}
}

func TestProjectMapData_ForeignOrMissingProject_404(t *testing.T) {
	router, _, _, pid := pipeFixture(t)
	bruno := registerAndLogin(t, router, "bruno")

	rr := doJSON(t, router, http.MethodGet, "/api/v1/projects/"+itoa(pid)+"/map-data", bruno, nil)
	expectStatus(t, rr, http.StatusNotFound)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/projects/9999/map-data", bruno, nil)
	expectStatus(t, rr, http.StatusNotFound)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/projects/zero/map-data", bruno, nil)
	expectStatus(t, rr, http.StatusBadRequest)
	if code := errorCode(t, rr); code != "invalid_id" {
		t.Fatalf("expected invalid_id, got %q", code)
	}
}

// failingMapStore breaks only the map reads.
type failingMapStore struct {
	*memStore
}

func (failingMapStore) ListPipeGeometries(ctx context.Context, projectID int64) ([]sqlcgen.PipeGeometry, error) {
	return nil, errors.New("connection reset")
}

func TestProjectMapData_SourceError_500(t *testing.T) {
	store := newMemStore()
	h := NewHandler(NewLogger("debug"), nil, Options{})
	h.useStore(failingMapStore{store})
	router := h.Router()
	tok := registerAndLogin(t, router, "ana")
	pid := createProject(t, router, tok, "P1")

	rr := doJSON(t, router, http.MethodGet, "/api/v1/projects/"+itoa(pid)+"/map-data", tok, nil)
	expectStatus(t, rr, http.StatusInternalServerError)
	if code := errorCode(t, rr); code != "db_error" {
		t.Fatalf("expected db_error, got %q", code)
	}
}
