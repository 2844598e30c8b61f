package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"financesaas/internal/core"

	"github.com/shopspring/decimal"
)

func TestTransactionTenantIsolation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewTransactionService(pool, nil)
	ctx := context.Background()
	alphaUser := seedUser(t, pool, 1, "alpha@example.com")

	tx, err := svc.Create(ctx, 1, alphaUser, core.CreateTransactionInput{
		Description: "Venda de peças",
		Amount:      decimal.NewFromInt(100),
		Type:        core.Income,
		Date:        time.Now().Format("2006-01-02"),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Tenant 2 guessing tenant 1's id must get not-found, not a hit.
	if _, err := svc.UpdateStatus(ctx, 2, tx.ID, core.StatusPending); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-tenant update: got %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, 2, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-tenant delete: got %v, want ErrNotFound", err)
	}

	page, err := svc.List(ctx, 2, core.TransactionFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Data) != 0 {
		t.Errorf("tenant 2 sees %d of tenant 1's transactions", len(page.Data))
	}
}

func TestCreateTransaction_CategoryByName(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewTransactionService(pool, nil)
	ctx := context.Background()
	userID := seedUser(t, pool, 1, "cat@example.com")

	date := time.Now().Format("2006-01-02")
	first, err := svc.Create(ctx, 1, userID, core.CreateTransactionInput{
		Description:  "Compra de material",
		Amount:       decimal.NewFromInt(50),
		Type:         core.Expense,
		Date:         date,
		CategoryName: "Fornecedores",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := svc.Create(ctx, 1, userID, core.CreateTransactionInput{
		Description:  "Outra compra",
		Amount:       decimal.NewFromInt(30),
		Type:         core.Expense,
		Date:         date,
		CategoryName: "Fornecedores",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Same name resolves to the same category, no duplicate rows.
	if first.CategoryID == nil || second.CategoryID == nil || *first.CategoryID != *second.CategoryID {
		t.Error("repeated category name did not resolve to the same category")
	}
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM categories WHERE tenant_id = 1 AND name = 'Fornecedores'").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d category rows, want 1", count)
	}

	// No category and no categorizer falls back to the default.
	third, err := svc.Create(ctx, 1, userID, core.CreateTransactionInput{
		Description: "Despesa avulsa",
		Amount:      decimal.NewFromInt(10),
		Type:        core.Expense,
		Date:        date,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	var name string
	if err := pool.QueryRow(ctx, "SELECT name FROM categories WHERE id = $1", *third.CategoryID).Scan(&name); err != nil {
		t.Fatalf("category lookup failed: %v", err)
	}
	if name != core.DefaultCategoryName {
		t.Errorf("fallback category = %q, want %q", name, core.DefaultCategoryName)
	}
}

func TestDashboardSummary_MonthScoping(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewTransactionService(pool, nil)
	ctx := context.Background()
	userID := seedUser(t, pool, 1, "dash@example.com")

	now := time.Now()
	thisMonth := now.Format("2006-01-02")
	lastMonth := now.AddDate(0, -1, 0).Format("2006-01-02")

	mustCreate := func(desc string, amount int64, typ core.TransactionType, status core.TransactionStatus, date string) {
		t.Helper()
		_, err := svc.Create(ctx, 1, userID, core.CreateTransactionInput{
			Description: desc,
			Amount:      decimal.NewFromInt(amount),
			Type:        typ,
			Status:      status,
			Date:        date,
		})
		if err != nil {
			t.Fatalf("Create %s failed: %v", desc, err)
		}
	}

	mustCreate("receita do mês", 1000, core.Income, core.StatusCompleted, thisMonth)
	mustCreate("despesa do mês", 400, core.Expense, core.StatusCompleted, thisMonth)
	mustCreate("conta a pagar", 200, core.Expense, core.StatusPending, thisMonth)
	mustCreate("receita antiga", 9999, core.Income, core.StatusCompleted, lastMonth)

	sum, err := svc.GetDashboardSummary(ctx, 1)
	if err != nil {
		t.Fatalf("GetDashboardSummary failed: %v", err)
	}

	if !sum.Income.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Income = %s, want 1000 (last month must be excluded)", sum.Income)
	}
	if !sum.Expense.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Expense = %s, want 400 (pending must be excluded)", sum.Expense)
	}
	if !sum.PendingExpense.Equal(decimal.NewFromInt(200)) {
		t.Errorf("PendingExpense = %s, want 200", sum.PendingExpense)
	}
	if !sum.Balance.Equal(decimal.NewFromInt(600)) {
		t.Errorf("Balance = %s, want 600", sum.Balance)
	}
	if sum.TransactionCount != 3 {
		t.Errorf("TransactionCount = %d, want 3", sum.TransactionCount)
	}
}
