package web

import (
	"net/http"

	"financesaas/internal/auth"
	"financesaas/internal/core"
)

func (h *Handler) listServiceOrders(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	q := r.URL.Query()

	orders, err := h.svc.Orders.List(r.Context(), claims.TenantID, q.Get("status"), q.Get("search"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, orders)
}

func (h *Handler) createServiceOrder(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	var req core.ServiceOrderInput
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.svc.Orders.Create(r.Context(), claims.TenantID, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "create", "service_order", &o.ID, o.ClientName)
	writeCreated(w, o)
}

func (h *Handler) updateServiceOrderStatus(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Status core.OrderStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.svc.Orders.UpdateStatus(r.Context(), claims.TenantID, id, req.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "update_status", "service_order", &id, string(req.Status))
	writeJSON(w, o)
}

func (h *Handler) finishServiceOrder(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	o, err := h.svc.Orders.FinishAndBill(r.Context(), claims.TenantID, claims.UserID, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "finish", "service_order", &id, o.ClientName)
	writeJSON(w, o)
}

func (h *Handler) deleteServiceOrder(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Orders.Delete(r.Context(), claims.TenantID, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "delete", "service_order", &id, "")
	w.WriteHeader(http.StatusNoContent)
}
