package core_test

import (
	"context"
	"testing"
	"time"

	"financesaas/internal/core"

	"github.com/shopspring/decimal"
)

func TestIncomeStatement_ZeroFilledMonths(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	txs := core.NewTransactionService(pool, nil)
	reports := core.NewReportService(pool, txs, core.NewServiceOrderService(pool), core.NewProductService(pool))
	ctx := context.Background()
	userID := seedUser(t, pool, 1, "dre@example.com")

	year := time.Now().Year()
	mustCreate := func(desc string, amount int64, typ core.TransactionType, date string) {
		t.Helper()
		_, err := txs.Create(ctx, 1, userID, core.CreateTransactionInput{
			Description: desc,
			Amount:      decimal.NewFromInt(amount),
			Type:        typ,
			Status:      core.StatusCompleted,
			Date:        date,
		})
		if err != nil {
			t.Fatalf("Create %s failed: %v", desc, err)
		}
	}

	mustCreate("venda março", 2000, core.Income, time.Date(year, 3, 10, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
	mustCreate("despesa março", 500, core.Expense, time.Date(year, 3, 20, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))

	stmt, err := reports.IncomeStatement(ctx, 1, year)
	if err != nil {
		t.Fatalf("IncomeStatement failed: %v", err)
	}

	if len(stmt.Months) != 12 {
		t.Fatalf("got %d months, want 12", len(stmt.Months))
	}
	march := stmt.Months[2]
	if !march.Income.Equal(decimal.NewFromInt(2000)) || !march.Expense.Equal(decimal.NewFromInt(500)) {
		t.Errorf("march = %s/%s, want 2000/500", march.Income, march.Expense)
	}
	if !march.Result.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("march result = %s, want 1500", march.Result)
	}
	// January has no movement and must still be present, zeroed.
	if !stmt.Months[0].Income.IsZero() || !stmt.Months[0].Expense.IsZero() {
		t.Errorf("empty month not zero filled: %+v", stmt.Months[0])
	}
	if !stmt.NetResult.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("net result = %s, want 1500", stmt.NetResult)
	}
}

func TestCategoryBreakdown_Uncategorized(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	txs := core.NewTransactionService(pool, nil)
	reports := core.NewReportService(pool, txs, core.NewServiceOrderService(pool), core.NewProductService(pool))
	ctx := context.Background()
	userID := seedUser(t, pool, 1, "breakdown@example.com")

	date := time.Now().Format("2006-01-02")
	if _, err := txs.Create(ctx, 1, userID, core.CreateTransactionInput{
		Description:  "Combustível",
		Amount:       decimal.NewFromInt(300),
		Type:         core.Expense,
		Date:         date,
		CategoryName: "Transporte",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A transaction whose category was later removed rolls up as uncategorized.
	if _, err := pool.Exec(ctx, `
		INSERT INTO transactions (tenant_id, description, amount, type, cost_type, status, date)
		VALUES (1, 'Despesa órfã', 100, 'expense', 'variable', 'completed', $1)`,
		date,
	); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	totals, err := reports.CategoryBreakdown(ctx, 1, core.Expense, "", "")
	if err != nil {
		t.Fatalf("CategoryBreakdown failed: %v", err)
	}

	byName := map[string]core.CategoryTotal{}
	for _, ct := range totals {
		byName[ct.Category] = ct
	}
	if !byName["Transporte"].Total.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Transporte = %s, want 300", byName["Transporte"].Total)
	}
	if !byName["Sem Categoria"].Total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Sem Categoria = %s, want 100", byName["Sem Categoria"].Total)
	}
}
