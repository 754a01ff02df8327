package httpapi

import (
	"net/http"
)

func (h *Handler) handleProjectMapData(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectFromURL(w, r)
	if !ok {
		return
	}

	payload, err := h.maps.Build(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Int64("project_id", id).Msg("build map payload failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to build map data", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, payload)
}
