package web

import (
	"net/http"

	"financesaas/internal/auth"
)

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	notifications, err := h.svc.Notifications.ListWithAlerts(r.Context(), claims.TenantID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, notifications)
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Notifications.MarkRead(r.Context(), claims.TenantID, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	if err := h.svc.Notifications.MarkAllRead(r.Context(), claims.TenantID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
