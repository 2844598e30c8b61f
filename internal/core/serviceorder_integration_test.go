package core_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"financesaas/internal/core"

	"github.com/shopspring/decimal"
)

func TestFinishAndBill(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewServiceOrderService(pool)
	ctx := context.Background()
	userID := seedUser(t, pool, 1, "os@example.com")

	order, err := svc.Create(ctx, 1, core.ServiceOrderInput{
		ClientName: "Carlos",
		Equipment:  "Notebook Dell",
		Priority:   "high",
		Price:      decimal.NewFromFloat(350.00),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	finished, err := svc.FinishAndBill(ctx, 1, userID, order.ID)
	if err != nil {
		t.Fatalf("FinishAndBill failed: %v", err)
	}
	if finished.Status != core.OrderCompleted {
		t.Errorf("status = %s, want completed", finished.Status)
	}

	// Exactly one completed income transaction carrying the order reference.
	wantDesc := fmt.Sprintf("Serviço OS #%d - Carlos", order.ID)
	var count int
	err = pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM transactions
		WHERE tenant_id = 1 AND type = 'income' AND status = 'completed' AND description = $1`,
		wantDesc,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d billing transactions, want 1", count)
	}

	// Billing the same order again must refuse and must not double-post.
	if _, err := svc.FinishAndBill(ctx, 1, userID, order.ID); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("second FinishAndBill: got %v, want ErrConflict", err)
	}
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM transactions WHERE tenant_id = 1 AND description = $1", wantDesc,
	).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("double billing posted %d transactions, want 1", count)
	}
}

func TestFinishAndBill_TenantIsolation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewServiceOrderService(pool)
	ctx := context.Background()
	userID := seedUser(t, pool, 2, "beta-os@example.com")

	order, err := svc.Create(ctx, 1, core.ServiceOrderInput{
		ClientName: "Ana",
		Equipment:  "Impressora",
		Price:      decimal.NewFromInt(120),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.FinishAndBill(ctx, 2, userID, order.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-tenant billing: got %v, want ErrNotFound", err)
	}
}

func TestServiceOrder_UpdateStatusValidation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewServiceOrderService(pool)
	ctx := context.Background()

	order, err := svc.Create(ctx, 1, core.ServiceOrderInput{
		ClientName: "Bruno",
		Equipment:  "Celular",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, 1, order.ID, "cancelled"); !core.IsValidation(err) {
		t.Errorf("invalid status: got %v, want validation error", err)
	}

	updated, err := svc.UpdateStatus(ctx, 1, order.ID, core.OrderInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != core.OrderInProgress {
		t.Errorf("status = %s, want in_progress", updated.Status)
	}
}
