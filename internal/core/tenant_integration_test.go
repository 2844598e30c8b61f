package core_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"financesaas/internal/core"
)

func TestCreateUser_SeatLimit(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewTenantService(pool)
	ctx := context.Background()

	// Default max_users is 5; the limit counts existing rows.
	for i := 0; i < 5; i++ {
		_, err := svc.CreateUser(ctx, 1, core.CreateUserInput{
			Name:     fmt.Sprintf("User %d", i),
			Email:    fmt.Sprintf("seat%d@example.com", i),
			Password: "secret123",
		})
		if err != nil {
			t.Fatalf("CreateUser %d failed: %v", i, err)
		}
	}

	_, err := svc.CreateUser(ctx, 1, core.CreateUserInput{
		Name:     "Excedente",
		Email:    "seat6@example.com",
		Password: "secret123",
	})
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("over-limit create: got %v, want ErrForbidden", err)
	}

	// The other tenant's seats are unaffected.
	if _, err := svc.CreateUser(ctx, 2, core.CreateUserInput{
		Name:     "Beta User",
		Email:    "beta-seat@example.com",
		Password: "secret123",
	}); err != nil {
		t.Errorf("tenant 2 create blocked: %v", err)
	}
}

func TestDeleteUser_NoSelfDelete(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewTenantService(pool)
	ctx := context.Background()
	admin := seedUser(t, pool, 1, "admin@example.com")
	other := seedUser(t, pool, 1, "other@example.com")

	if err := svc.DeleteUser(ctx, 1, admin, admin); !core.IsValidation(err) {
		t.Errorf("self delete: got %v, want validation error", err)
	}
	if err := svc.DeleteUser(ctx, 1, admin, other); err != nil {
		t.Errorf("delete of another user failed: %v", err)
	}

	// Cross-tenant deletes miss.
	stranger := seedUser(t, pool, 2, "stranger@example.com")
	if err := svc.DeleteUser(ctx, 1, admin, stranger); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-tenant delete: got %v, want ErrNotFound", err)
	}
}

func TestConsumeAICredit_Limit(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewTenantService(pool)
	ctx := context.Background()

	if _, err := pool.Exec(ctx,
		"UPDATE tenants SET ai_usage_limit = 2, ai_usage_current = 0 WHERE id = 1",
	); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := svc.ConsumeAICredit(ctx, 1); err != nil {
		t.Fatalf("first credit failed: %v", err)
	}
	if err := svc.ConsumeAICredit(ctx, 1); err != nil {
		t.Fatalf("second credit failed: %v", err)
	}
	if err := svc.ConsumeAICredit(ctx, 1); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("over-limit credit: got %v, want ErrForbidden", err)
	}

	var current int
	if err := pool.QueryRow(ctx, "SELECT ai_usage_current FROM tenants WHERE id = 1").Scan(&current); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if current != 2 {
		t.Errorf("ai_usage_current = %d, want 2 (failed consume must not increment)", current)
	}
}

func TestUpdateTenant_ClosingDayBounds(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewTenantService(pool)
	ctx := context.Background()

	bad := 40
	if _, err := svc.UpdateTenant(ctx, 1, core.TenantUpdate{ClosingDay: &bad}); !core.IsValidation(err) {
		t.Errorf("closing_day 40: got %v, want validation error", err)
	}

	good := 15
	updated, err := svc.UpdateTenant(ctx, 1, core.TenantUpdate{ClosingDay: &good})
	if err != nil {
		t.Fatalf("UpdateTenant failed: %v", err)
	}
	if updated.ClosingDay != 15 {
		t.Errorf("closing_day = %d, want 15", updated.ClosingDay)
	}
}
