package web

import (
	"net/http"

	"financesaas/internal/auth"
	"financesaas/internal/core"
)

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	q := r.URL.Query()

	clients, err := h.svc.Clients.List(r.Context(), claims.TenantID, q.Get("type"), q.Get("search"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, clients)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	var req core.ClientInput
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.svc.Clients.Create(r.Context(), claims.TenantID, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "create", "client", &c.ID, c.Name)
	writeCreated(w, c)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req core.ClientInput
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.svc.Clients.Update(r.Context(), claims.TenantID, id, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "update", "client", &id, c.Name)
	writeJSON(w, c)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Clients.Delete(r.Context(), claims.TenantID, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "delete", "client", &id, "")
	w.WriteHeader(http.StatusNoContent)
}
