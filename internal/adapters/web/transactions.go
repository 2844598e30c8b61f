package web

import (
	"net/http"
	"strconv"

	"financesaas/internal/auth"
	"financesaas/internal/core"
)

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	filter := core.TransactionFilter{
		Type:      core.TransactionType(q.Get("type")),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Page:      page,
		Limit:     limit,
	}

	result, err := h.svc.Transactions.List(r.Context(), claims.TenantID, filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	var req core.CreateTransactionInput
	if !decodeJSON(w, r, &req) {
		return
	}

	// AI categorization is metered against the tenant's plan.
	if req.UseAICategory {
		if err := h.svc.Tenants.ConsumeAICredit(r.Context(), claims.TenantID); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
	}

	t, err := h.svc.Transactions.Create(r.Context(), claims.TenantID, claims.UserID, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "create", "transaction", &t.ID, t.Description)
	writeCreated(w, t)
}

func (h *Handler) recentTransactions(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	txs, err := h.svc.Transactions.Recent(r.Context(), claims.TenantID, limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, txs)
}

func (h *Handler) updateTransactionStatus(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Status core.TransactionStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.svc.Transactions.UpdateStatus(r.Context(), claims.TenantID, id, req.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "update_status", "transaction", &id, string(req.Status))
	writeJSON(w, t)
}

func (h *Handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Transactions.Delete(r.Context(), claims.TenantID, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.svc.Audit.Log(r.Context(), claims.TenantID, &claims.UserID, "delete", "transaction", &id, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) dashboardSummary(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	summary, err := h.svc.Transactions.GetDashboardSummary(r.Context(), claims.TenantID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

func (h *Handler) dashboardChart(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	points, err := h.svc.Transactions.GetChartData(r.Context(), claims.TenantID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, points)
}

func (h *Handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	stats, err := h.svc.Reports.GeneralStats(r.Context(), claims.TenantID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stats)
}
