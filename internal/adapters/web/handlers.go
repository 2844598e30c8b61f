package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"financesaas/internal/ai"
	"financesaas/internal/config"
	"financesaas/internal/core"
	"financesaas/internal/mail"
	"financesaas/internal/storage"
)

// Services bundles everything the HTTP layer depends on.
type Services struct {
	Auth          core.AuthService
	Tenants       core.TenantService
	Transactions  core.TransactionService
	Categories    core.CategoryService
	Clients       core.ClientService
	Products      core.ProductService
	Orders        core.ServiceOrderService
	Recurring     core.RecurringService
	Reports       core.ReportService
	Notifications core.NotificationService
	Audit         core.AuditService
	Admin         core.AdminService
	Agent         *ai.Agent
	Mailer        mail.Mailer
	Storage       *storage.LocalStorage
}

type Handler struct {
	svc Services
	cfg *config.Config
	log *zap.SugaredLogger
}

// NewHandler wires the chi router with the full API surface.
func NewHandler(svc Services, cfg *config.Config, log *zap.SugaredLogger) http.Handler {
	h := &Handler{svc: svc, cfg: cfg, log: log}

	limiter := NewRateLimiter(cfg.RedisAddr, cfg.AuthRateLimit, cfg.AuthRateWindow, log)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(cfg.AllowedOrigins))

	r.Get("/api/health", h.health)

	// Credential endpoints, rate limited per IP when Redis is configured.
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Use(RequestBodyLimit(64 << 10))

		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/forgot-password", h.forgotPassword)
		r.Post("/api/auth/reset-password", h.resetPassword)
	})

	// Uploaded attachments are public by key; keys are unguessable.
	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
	r.Get("/uploads/*", uploads.ServeHTTP)

	// Tenant-scoped API.
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Multipart upload manages its own size limit.
		r.Post("/api/upload", h.upload)

		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20))

			r.Get("/api/auth/profile", h.me)
			r.Put("/api/auth/profile", h.updateProfile)

			r.Get("/api/transactions", h.listTransactions)
			r.Post("/api/transactions", h.createTransaction)
			r.Get("/api/transactions/recent", h.recentTransactions)
			r.Patch("/api/transactions/{id}/status", h.updateTransactionStatus)
			r.Delete("/api/transactions/{id}", h.deleteTransaction)

			r.Get("/api/dashboard/summary", h.dashboardSummary)
			r.Get("/api/dashboard/chart", h.dashboardChart)
			r.Get("/api/dashboard/stats", h.dashboardStats)

			r.Get("/api/categories", h.listCategories)
			r.Post("/api/categories", h.createCategory)
			r.Delete("/api/categories/{id}", h.deleteCategory)

			r.Get("/api/clients", h.listClients)
			r.Post("/api/clients", h.createClient)
			r.Put("/api/clients/{id}", h.updateClient)
			r.Delete("/api/clients/{id}", h.deleteClient)

			r.Get("/api/products", h.listProducts)
			r.Post("/api/products", h.createProduct)
			r.Put("/api/products/{id}", h.updateProduct)
			r.Delete("/api/products/{id}", h.deleteProduct)

			r.Get("/api/service-orders", h.listServiceOrders)
			r.Post("/api/service-orders", h.createServiceOrder)
			r.Patch("/api/service-orders/{id}/status", h.updateServiceOrderStatus)
			r.Post("/api/service-orders/{id}/bill", h.finishServiceOrder)
			r.Delete("/api/service-orders/{id}", h.deleteServiceOrder)

			r.Get("/api/recurring", h.listRecurring)
			r.Post("/api/recurring", h.createRecurring)
			r.Delete("/api/recurring/{id}", h.deleteRecurring)
			r.Post("/api/recurring/process", h.processRecurring)

			r.Get("/api/reports/financials", h.incomeStatement)
			r.Get("/api/reports/categories", h.categoryBreakdown)
			r.Get("/api/reports/extract", h.extract)
			r.Get("/api/insights", h.insights)

			r.Get("/api/notifications", h.listNotifications)
			r.Patch("/api/notifications/{id}/read", h.markNotificationRead)
			r.Post("/api/notifications/read-all", h.markAllNotificationsRead)

			r.Get("/api/audit", h.listAuditLogs)

			r.Get("/api/settings", h.getSettings)
			r.Put("/api/settings/tenant", h.updateTenant)
			r.Post("/api/settings/users", h.createTenantUser)
			r.Delete("/api/settings/users/{id}", h.deleteTenantUser)
		})
	})

	// Super-admin console, cross-tenant.
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(h.RequireSuperAdmin)
		r.Use(RequestBodyLimit(1 << 20))

		r.Get("/api/admin/tenants", h.adminListTenants)
		r.Post("/api/admin/tenants", h.adminCreateTenant)
		r.Delete("/api/admin/tenants/{id}", h.adminDeleteTenant)
		r.Put("/api/admin/tenants/{id}/plan", h.adminUpdateTenantPlan)
		r.Patch("/api/admin/tenants/{id}/active", h.adminSetTenantActive)
		r.Post("/api/admin/tenants/{id}/impersonate", h.adminImpersonate)

		r.Get("/api/admin/plans", h.adminListPlans)
		r.Post("/api/admin/plans", h.adminCreatePlan)
		r.Put("/api/admin/plans/{id}", h.adminUpdatePlan)
		r.Delete("/api/admin/plans/{id}", h.adminDeletePlan)

		r.Get("/api/admin/admins", h.adminListSuperAdmins)
		r.Post("/api/admin/admins", h.adminCreateSuperAdmin)
		r.Delete("/api/admin/admins/{id}", h.adminDeleteSuperAdmin)

		r.Get("/api/admin/stats", h.adminGlobalStats)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// idParam extracts the {id} URL parameter as an int.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		writeError(w, r, "id inválido", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
