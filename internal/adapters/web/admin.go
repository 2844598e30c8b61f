package web

import (
	"fmt"
	"net/http"

	"financesaas/internal/auth"
	"financesaas/internal/core"
)

func (h *Handler) adminListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.svc.Admin.ListTenants(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, tenants)
}

func (h *Handler) adminCreateTenant(w http.ResponseWriter, r *http.Request) {
	var req core.AdminCreateTenantInput
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.svc.Admin.CreateTenant(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, t)
}

func (h *Handler) adminDeleteTenant(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Admin.DeleteTenant(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminUpdateTenantPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req struct {
		PlanID int `json:"plan_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.svc.Admin.UpdateTenantPlan(r.Context(), id, req.PlanID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, t)
}

func (h *Handler) adminSetTenantActive(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.svc.Admin.SetTenantActive(r.Context(), id, req.Active)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, t)
}

// adminImpersonate mints a token scoped to the tenant's first admin so the
// console can enter the tenant's workspace.
func (h *Handler) adminImpersonate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	user, err := h.svc.Admin.Impersonate(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// The impersonation token carries the target user's identity, not the
	// super-admin flag, so it is confined to that tenant.
	token, err := auth.Sign(h.cfg.JWTSecret, user.ID, user.TenantID, user.Role, false, h.cfg.TokenTTL)
	if err != nil {
		h.writeServiceError(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	actor := auth.FromContext(r.Context())
	h.svc.Audit.Log(r.Context(), user.TenantID, &actor.UserID, "impersonate", "tenant", &id, user.Email)
	writeJSON(w, sessionResponse{Token: token, User: user})
}

func (h *Handler) adminListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.svc.Admin.ListPlans(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, plans)
}

func (h *Handler) adminCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req core.PlanInput
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.Admin.CreatePlan(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, p)
}

func (h *Handler) adminUpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req core.PlanInput
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.Admin.UpdatePlan(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) adminDeletePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Admin.DeletePlan(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminListSuperAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.svc.Admin.ListSuperAdmins(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, admins)
}

func (h *Handler) adminCreateSuperAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.svc.Admin.CreateSuperAdmin(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, u)
}

func (h *Handler) adminDeleteSuperAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	actor := auth.FromContext(r.Context())
	if err := h.svc.Admin.DeleteSuperAdmin(r.Context(), actor.UserID, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminGlobalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Admin.GlobalStats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stats)
}
