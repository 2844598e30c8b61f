package web

import (
	"net/http"

	"financesaas/internal/auth"
	"financesaas/internal/core"
)

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	settings, err := h.svc.Tenants.GetSettings(r.Context(), claims.TenantID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, settings)
}

func (h *Handler) updateTenant(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	var req core.TenantUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.svc.Tenants.UpdateTenant(r.Context(), claims.TenantID, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "update", "tenant", &t.ID, t.Name)
	writeJSON(w, t)
}

func (h *Handler) createTenantUser(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	var req core.CreateUserInput
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.svc.Tenants.CreateUser(r.Context(), claims.TenantID, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "create", "user", &u.ID, u.Email)
	writeCreated(w, u)
}

func (h *Handler) deleteTenantUser(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Tenants.DeleteUser(r.Context(), claims.TenantID, claims.UserID, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "delete", "user", &id, "")
	w.WriteHeader(http.StatusNoContent)
}
