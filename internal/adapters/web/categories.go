package web

import (
	"net/http"

	"financesaas/internal/auth"
	"financesaas/internal/core"
)

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	cats, err := h.svc.Categories.List(r.Context(), claims.TenantID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, cats)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	var req struct {
		Name string               `json:"name"`
		Type core.TransactionType `json:"type"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.svc.Categories.Create(r.Context(), claims.TenantID, req.Name, req.Type)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "create", "category", &c.ID, c.Name)
	writeCreated(w, c)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Categories.Delete(r.Context(), claims.TenantID, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "delete", "category", &id, "")
	w.WriteHeader(http.StatusNoContent)
}
