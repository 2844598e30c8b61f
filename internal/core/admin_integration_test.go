package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"financesaas/internal/core"

	"github.com/shopspring/decimal"
)

func TestAdminDeleteTenant_Cascades(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	admin := core.NewAdminService(pool)
	txs := core.NewTransactionService(pool, nil)
	ctx := context.Background()
	userID := seedUser(t, pool, 1, "cascade@example.com")

	if _, err := txs.Create(ctx, 1, userID, core.CreateTransactionInput{
		Description: "Venda",
		Amount:      decimal.NewFromInt(10),
		Type:        core.Income,
		Date:        time.Now().Format("2006-01-02"),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := admin.DeleteTenant(ctx, 1); err != nil {
		t.Fatalf("DeleteTenant failed: %v", err)
	}

	for _, table := range []string{"users", "transactions", "categories"} {
		var count int
		if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table+" WHERE tenant_id = 1").Scan(&count); err != nil {
			t.Fatalf("count %s failed: %v", table, err)
		}
		if count != 0 {
			t.Errorf("%s still has %d rows for deleted tenant", table, count)
		}
	}

	if err := admin.DeleteTenant(ctx, 1); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestAdminUpdateTenantPlan(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	admin := core.NewAdminService(pool)
	ctx := context.Background()

	plan, err := admin.CreatePlan(ctx, core.PlanInput{
		Name:         "pro",
		MaxUsers:     15,
		AIUsageLimit: 500,
		Price:        decimal.NewFromFloat(99.90),
	})
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}

	tenant, err := admin.UpdateTenantPlan(ctx, 1, plan.ID)
	if err != nil {
		t.Fatalf("UpdateTenantPlan failed: %v", err)
	}
	if tenant.PlanTier != "pro" || tenant.MaxUsers != 15 || tenant.AIUsageLimit != 500 {
		t.Errorf("plan not applied: tier=%s max_users=%d ai_limit=%d", tenant.PlanTier, tenant.MaxUsers, tenant.AIUsageLimit)
	}

	if _, err := admin.UpdateTenantPlan(ctx, 1, 9999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown plan: got %v, want ErrNotFound", err)
	}
}

func TestAdminImpersonate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	admin := core.NewAdminService(pool)
	ctx := context.Background()

	// Two admins: impersonation picks the oldest.
	first := seedUser(t, pool, 1, "first-admin@example.com")
	seedUser(t, pool, 1, "second-admin@example.com")

	u, err := admin.Impersonate(ctx, 1)
	if err != nil {
		t.Fatalf("Impersonate failed: %v", err)
	}
	if u.ID != first {
		t.Errorf("impersonated user %d, want %d (first admin)", u.ID, first)
	}

	// A tenant without admins cannot be impersonated.
	if _, err := admin.Impersonate(ctx, 2); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("empty tenant: got %v, want ErrNotFound", err)
	}
}

func TestAdminListTenants_Counts(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	admin := core.NewAdminService(pool)
	txs := core.NewTransactionService(pool, nil)
	ctx := context.Background()
	userID := seedUser(t, pool, 1, "counts@example.com")

	if _, err := txs.Create(ctx, 1, userID, core.CreateTransactionInput{
		Description: "Venda",
		Amount:      decimal.NewFromInt(10),
		Type:        core.Income,
		Date:        time.Now().Format("2006-01-02"),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tenants, err := admin.ListTenants(ctx)
	if err != nil {
		t.Fatalf("ListTenants failed: %v", err)
	}
	if len(tenants) != 2 {
		t.Fatalf("got %d tenants, want 2", len(tenants))
	}

	for _, tn := range tenants {
		switch tn.ID {
		case 1:
			if tn.UserCount != 1 || tn.TransactionCount != 1 {
				t.Errorf("tenant 1 counts = %d users / %d txs, want 1/1", tn.UserCount, tn.TransactionCount)
			}
		case 2:
			if tn.UserCount != 0 || tn.TransactionCount != 0 {
				t.Errorf("tenant 2 counts = %d users / %d txs, want 0/0", tn.UserCount, tn.TransactionCount)
			}
		}
	}
}
