package web

import (
	"net/http"

	"financesaas/internal/auth"
)

func (h *Handler) listAuditLogs(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	entries, err := h.svc.Audit.List(r.Context(), claims.TenantID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, entries)
}
