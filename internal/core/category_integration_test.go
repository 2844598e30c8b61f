package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"financesaas/internal/core"

	"github.com/shopspring/decimal"
)

func TestCategoryDelete_RefusesWhileReferenced(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	cats := core.NewCategoryService(pool)
	txs := core.NewTransactionService(pool, nil)
	ctx := context.Background()
	userID := seedUser(t, pool, 1, "catdel@example.com")

	cat, err := cats.Create(ctx, 1, "Impostos", core.Expense)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := txs.Create(ctx, 1, userID, core.CreateTransactionInput{
		Description:  "DAS mensal",
		Amount:       decimal.NewFromInt(80),
		Type:         core.Expense,
		Date:         time.Now().Format("2006-01-02"),
		CategoryName: "Impostos",
	}); err != nil {
		t.Fatalf("transaction create failed: %v", err)
	}

	if err := cats.Delete(ctx, 1, cat.ID); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("delete of referenced category: got %v, want ErrConflict", err)
	}

	// Once the reference is gone the delete succeeds.
	if _, err := pool.Exec(ctx, "DELETE FROM transactions WHERE tenant_id = 1"); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if err := cats.Delete(ctx, 1, cat.ID); err != nil {
		t.Fatalf("delete after unlink failed: %v", err)
	}
}

func TestCategoryCreate_DuplicateName(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	cats := core.NewCategoryService(pool)
	ctx := context.Background()

	if _, err := cats.Create(ctx, 1, "Lazer", core.Expense); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := cats.Create(ctx, 1, "Lazer", core.Expense); !errors.Is(err, core.ErrConflict) {
		t.Errorf("duplicate name: got %v, want ErrConflict", err)
	}

	// The same name is free for another tenant.
	if _, err := cats.Create(ctx, 2, "Lazer", core.Expense); err != nil {
		t.Errorf("other tenant blocked by name: %v", err)
	}
}
