package http

import "net/http"

func (h *Handler) GetMigrations(w http.ResponseWriter, r *http.Request) {
	migrations, err := h.migrationService.GetApplied(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, migrations)
}
