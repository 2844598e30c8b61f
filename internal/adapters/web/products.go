package web

import (
	"net/http"

	"financesaas/internal/auth"
	"financesaas/internal/core"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	q := r.URL.Query()

	products, err := h.svc.Products.List(r.Context(), claims.TenantID, q.Get("search"), q.Get("low_stock") == "true")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	var req core.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.Products.Create(r.Context(), claims.TenantID, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "create", "product", &p.ID, p.Name)
	writeCreated(w, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req core.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.Products.Update(r.Context(), claims.TenantID, id, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "update", "product", &id, p.Name)
	writeJSON(w, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Products.Delete(r.Context(), claims.TenantID, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "delete", "product", &id, "")
	w.WriteHeader(http.StatusNoContent)
}
