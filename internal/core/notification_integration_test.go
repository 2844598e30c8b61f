package core_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"financesaas/internal/core"

	"github.com/shopspring/decimal"
)

func TestNotifications_AlertsOncePerDay(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	products := core.NewProductService(pool)
	txs := core.NewTransactionService(pool, nil)
	notifications := core.NewNotificationService(pool)
	ctx := context.Background()
	userID := seedUser(t, pool, 1, "notif@example.com")

	// One product at minimum stock and one overdue pending expense.
	if _, err := products.Create(ctx, 1, core.ProductInput{
		Name: "Cabo HDMI", Stock: 2, MinStock: 5,
	}); err != nil {
		t.Fatalf("product create failed: %v", err)
	}
	if _, err := txs.Create(ctx, 1, userID, core.CreateTransactionInput{
		Description: "Conta de luz",
		Amount:      decimal.NewFromInt(250),
		Type:        core.Expense,
		Status:      core.StatusPending,
		Date:        time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
	}); err != nil {
		t.Fatalf("transaction create failed: %v", err)
	}

	list, err := notifications.ListWithAlerts(ctx, 1)
	if err != nil {
		t.Fatalf("ListWithAlerts failed: %v", err)
	}

	var stock, bills int
	for _, n := range list {
		switch {
		case strings.HasPrefix(n.Title, "Alerta de Estoque"):
			stock++
			if n.Type != "warning" {
				t.Errorf("stock alert type = %q, want warning", n.Type)
			}
		case strings.HasPrefix(n.Title, "Contas Vencendo"):
			bills++
			if n.Type != "error" {
				t.Errorf("bills alert type = %q, want error", n.Type)
			}
		}
	}
	if stock != 1 || bills != 1 {
		t.Fatalf("got %d stock / %d bills alerts, want 1/1", stock, bills)
	}

	// Listing again on the same day must not duplicate the alerts.
	if _, err := notifications.ListWithAlerts(ctx, 1); err != nil {
		t.Fatalf("second ListWithAlerts failed: %v", err)
	}
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE tenant_id = 1").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("got %d notifications after second list, want 2", count)
	}

	// Alerts belong to the tenant with the condition, not to everyone.
	other, err := notifications.ListWithAlerts(ctx, 2)
	if err != nil {
		t.Fatalf("tenant 2 ListWithAlerts failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("tenant 2 got %d notifications, want 0", len(other))
	}
}

func TestNotifications_MarkRead(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	notifications := core.NewNotificationService(pool)
	ctx := context.Background()

	if _, err := pool.Exec(ctx, `
		INSERT INTO notifications (tenant_id, title, message, type) VALUES
		(1, 'Aviso', 'mensagem', 'info'),
		(1, 'Outro', 'mensagem', 'info')`,
	); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := notifications.MarkAllRead(ctx, 1); err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	var unread int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE tenant_id = 1 AND is_read = false").Scan(&unread); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if unread != 0 {
		t.Errorf("%d notifications still unread", unread)
	}
}
