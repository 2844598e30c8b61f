package web

import (
	"net/http"

	"financesaas/internal/auth"
	"financesaas/internal/core"
)

func (h *Handler) listRecurring(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	rules, err := h.svc.Recurring.List(r.Context(), claims.TenantID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, rules)
}

func (h *Handler) createRecurring(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	var req core.RecurringInput
	if !decodeJSON(w, r, &req) {
		return
	}

	rule, err := h.svc.Recurring.Create(r.Context(), claims.TenantID, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "create", "recurring", &rule.ID, rule.Description)
	writeCreated(w, rule)
}

func (h *Handler) deleteRecurring(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Recurring.Delete(r.Context(), claims.TenantID, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "delete", "recurring", &id, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) processRecurring(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	processed, err := h.svc.Recurring.ProcessDue(r.Context(), claims.TenantID, claims.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if processed > 0 {
		h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "process", "recurring", nil, "")
	}
	writeJSON(w, map[string]int{"processed": processed})
}
