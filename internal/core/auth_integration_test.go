package core_test

import (
	"context"
	"errors"
	"testing"

	"financesaas/internal/core"
)

func TestRegisterTenant_Atomicity(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewAuthService(pool)
	ctx := context.Background()

	user, tenant, err := svc.RegisterTenant(ctx, core.RegisterInput{
		CompanyName: "Oficina do Zé",
		Slug:        "oficina-ze",
		Name:        "José",
		Email:       "ze@example.com",
		Password:    "secret123",
	})
	if err != nil {
		t.Fatalf("RegisterTenant failed: %v", err)
	}
	if user.TenantID != tenant.ID {
		t.Errorf("admin user belongs to tenant %d, want %d", user.TenantID, tenant.ID)
	}
	if user.Role != "admin" {
		t.Errorf("first user role = %q, want admin", user.Role)
	}
	if user.IsSuperAdmin {
		t.Error("self-registered admin must not be super admin")
	}

	// Duplicate slug must fail and must not leave a second admin user behind.
	_, _, err = svc.RegisterTenant(ctx, core.RegisterInput{
		CompanyName: "Outra Oficina",
		Slug:        "oficina-ze",
		Name:        "Maria",
		Email:       "maria@example.com",
		Password:    "secret123",
	})
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("duplicate slug: got %v, want ErrConflict", err)
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE email = 'maria@example.com'").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("failed registration left %d user rows behind", count)
	}

	// Duplicate email with a fresh slug must also fail atomically.
	_, _, err = svc.RegisterTenant(ctx, core.RegisterInput{
		CompanyName: "Terceira Oficina",
		Slug:        "terceira",
		Name:        "José",
		Email:       "ze@example.com",
		Password:    "secret123",
	})
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("duplicate email: got %v, want ErrConflict", err)
	}
	var tenants int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM tenants WHERE slug = 'terceira'").Scan(&tenants); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if tenants != 0 {
		t.Error("failed registration left an orphan tenant behind")
	}
}

func TestAuthenticate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewAuthService(pool)
	ctx := context.Background()
	seedUser(t, pool, 1, "login@example.com")

	u, err := svc.Authenticate(ctx, "Login@Example.com", "secret123")
	if err != nil {
		t.Fatalf("Authenticate with correct credentials failed: %v", err)
	}
	if u.Email != "login@example.com" {
		t.Errorf("authenticated email = %q", u.Email)
	}

	if _, err := svc.Authenticate(ctx, "login@example.com", "wrong"); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("wrong password: got %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "secret123"); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("unknown email: got %v, want ErrUnauthorized", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewAuthService(pool)
	ctx := context.Background()
	seedUser(t, pool, 1, "reset@example.com")

	// Unknown email: no token, no error, so the caller cannot distinguish.
	token, err := svc.ForgotPassword(ctx, "ghost@example.com")
	if err != nil {
		t.Fatalf("ForgotPassword for unknown email errored: %v", err)
	}
	if token != "" {
		t.Error("unknown email must not produce a token")
	}

	token, err = svc.ForgotPassword(ctx, "reset@example.com")
	if err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a reset token")
	}

	if err := svc.ResetPassword(ctx, token, "newpass456"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	// The token is single-use.
	if err := svc.ResetPassword(ctx, token, "again789"); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("reused token: got %v, want ErrUnauthorized", err)
	}

	if _, err := svc.Authenticate(ctx, "reset@example.com", "newpass456"); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "reset@example.com", "secret123"); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("old password still accepted after reset")
	}
}
