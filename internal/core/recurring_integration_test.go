package core_test

import (
	"context"
	"testing"
	"time"

	"financesaas/internal/core"
	"financesaas/internal/logger"

	"github.com/shopspring/decimal"
)

func TestProcessDue_MaterializesAndAdvances(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewRecurringService(pool, logger.New())
	ctx := context.Background()
	userID := seedUser(t, pool, 1, "rec@example.com")

	// A rule starting 31 days ago is due today.
	start := time.Now().AddDate(0, 0, -31).Format("2006-01-02")
	rule, err := svc.Create(ctx, 1, core.RecurringInput{
		Description: "Aluguel",
		Amount:      decimal.NewFromInt(1500),
		Type:        core.Expense,
		Frequency:   core.Monthly,
		StartDate:   start,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	processed, err := svc.ProcessDue(ctx, 1, userID)
	if err != nil {
		t.Fatalf("ProcessDue failed: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}

	// The materialized transaction is pending, fixed-cost, and suffixed.
	var desc, costType, status string
	err = pool.QueryRow(ctx, `
		SELECT description, cost_type, status FROM transactions
		WHERE tenant_id = 1 ORDER BY id DESC LIMIT 1`,
	).Scan(&desc, &costType, &status)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if desc != "Aluguel (Recorrente)" {
		t.Errorf("description = %q, want %q", desc, "Aluguel (Recorrente)")
	}
	if costType != "fixed" || status != "pending" {
		t.Errorf("cost_type/status = %s/%s, want fixed/pending", costType, status)
	}

	// next_run advanced by one calendar month from the old value.
	rules, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := core.NextOccurrence(rule.NextRun, core.Monthly)
	got := rules[0].NextRun
	if got.Year() != want.Year() || got.Month() != want.Month() || got.Day() != want.Day() {
		t.Errorf("next_run = %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestProcessDue_NoDoublePosting(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewRecurringService(pool, logger.New())
	ctx := context.Background()
	userID := seedUser(t, pool, 1, "rec2@example.com")

	start := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	if _, err := svc.Create(ctx, 1, core.RecurringInput{
		Description: "Assinatura",
		Amount:      decimal.NewFromInt(99),
		Type:        core.Expense,
		Frequency:   core.Monthly,
		StartDate:   start,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.ProcessDue(ctx, 1, userID); err != nil {
		t.Fatalf("first ProcessDue failed: %v", err)
	}

	// The advanced next_run is in the future, so a second run finds nothing.
	processed, err := svc.ProcessDue(ctx, 1, userID)
	if err != nil {
		t.Fatalf("second ProcessDue failed: %v", err)
	}
	if processed != 0 {
		t.Errorf("second run processed %d rules, want 0", processed)
	}

	var count int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM transactions WHERE tenant_id = 1 AND description = 'Assinatura (Recorrente)'",
	).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("rule posted %d transactions, want 1", count)
	}
}
