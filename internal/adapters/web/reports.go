package web

import (
	"net/http"
	"strconv"
	"time"

	"financesaas/internal/auth"
	"financesaas/internal/core"
)

func (h *Handler) incomeStatement(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		year = time.Now().Year()
	}

	stmt, err := h.svc.Reports.IncomeStatement(r.Context(), claims.TenantID, year)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stmt)
}

func (h *Handler) categoryBreakdown(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	q := r.URL.Query()

	txType := core.TransactionType(q.Get("type"))
	if txType == "" {
		txType = core.Expense
	}

	totals, err := h.svc.Reports.CategoryBreakdown(r.Context(), claims.TenantID, txType, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, totals)
}

func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	q := r.URL.Query()

	rows, err := h.svc.Reports.Extract(r.Context(), claims.TenantID, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, rows)
}

// insightTransactionLimit caps how many recent transactions are sent to the
// model for the health assessment.
const insightTransactionLimit = 50

// insights returns the AI health assessment for the recent period. Each call
// consumes one of the tenant's plan credits; a tenant with no movement yet is
// answered without spending one.
func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	txs, err := h.svc.Transactions.Recent(r.Context(), claims.TenantID, insightTransactionLimit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if len(txs) == 0 {
		writeJSON(w, map[string]string{"summary": "Sem dados suficientes para análise."})
		return
	}

	if err := h.svc.Tenants.ConsumeAICredit(r.Context(), claims.TenantID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	period := time.Now().Format("01/2006")
	insight := h.svc.Agent.GenerateInsight(r.Context(), txs, period)
	writeJSON(w, insight)
}
