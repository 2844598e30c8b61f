package main

import (
	"context"
	"log"
	"net/http"

	webAdapter "financesaas/internal/adapters/web"
	"financesaas/internal/ai"
	"financesaas/internal/config"
	"financesaas/internal/core"
	"financesaas/internal/db"
	"financesaas/internal/logger"
	"financesaas/internal/mail"
	"financesaas/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog := logger.New()
	defer zlog.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatalw("database connection failed", "error", err)
	}
	defer pool.Close()

	if cfg.OpenAIAPIKey == "" {
		zlog.Warnw("OPENAI_API_KEY is not set, AI features will degrade to defaults")
	}
	agent := ai.NewAgent(cfg.OpenAIAPIKey, zlog)

	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	} else {
		mailer = mail.NewLogMailer(zlog)
	}

	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		zlog.Fatalw("upload storage init failed", "error", err)
	}

	txService := core.NewTransactionService(pool, agent)
	svc := webAdapter.Services{
		Auth:          core.NewAuthService(pool),
		Tenants:       core.NewTenantService(pool),
		Transactions:  txService,
		Categories:    core.NewCategoryService(pool),
		Clients:       core.NewClientService(pool),
		Products:      core.NewProductService(pool),
		Orders:        core.NewServiceOrderService(pool),
		Recurring:     core.NewRecurringService(pool, zlog),
		Notifications: core.NewNotificationService(pool),
		Audit:         core.NewAuditService(pool, zlog),
		Admin:         core.NewAdminService(pool),
		Agent:         agent,
		Mailer:        mailer,
		Storage:       store,
	}
	svc.Reports = core.NewReportService(pool, txService, svc.Orders, svc.Products)

	handler := webAdapter.NewHandler(svc, cfg, zlog)

	zlog.Infow("server starting", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		zlog.Fatalw("server stopped", "error", err)
	}
}
