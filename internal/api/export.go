package api

import (
	"net/http"

	"github.com/querydeck/querydeck/internal/auth"
)

func handleExportRun(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Exporter == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "EXPORT_NOT_CONFIGURED", "dataset export is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleAdmin); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	summary, err := deps.Exporter.Run(r.Context())
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "EXPORT_FAILED", "dataset export failed", true, map[string]any{"details": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"objects":     summary.Objects,
		"total_bytes": summary.TotalBytes,
		"duration_ms": summary.Duration.Milliseconds(),
	})
}
