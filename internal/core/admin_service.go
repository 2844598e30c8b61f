package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"financesaas/internal/auth"
)

// TenantOverview is a tenant row on the console listing, enriched with
// per-tenant usage counters.
type TenantOverview struct {
	Tenant
	UserCount        int `json:"user_count"`
	TransactionCount int `json:"transaction_count"`
}

type AdminCreateTenantInput struct {
	CompanyName   string `json:"company_name"`
	Slug          string `json:"slug"`
	AdminName     string `json:"admin_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
	PlanTier      string `json:"plan_tier"`
}

type PlanInput struct {
	Name         string          `json:"name"`
	MaxUsers     int             `json:"max_users"`
	AIUsageLimit int             `json:"ai_usage_limit"`
	Price        decimal.Decimal `json:"price"`
}

// GlobalStats is the platform-wide console dashboard.
type GlobalStats struct {
	TenantCount      int             `json:"tenant_count"`
	ActiveTenants    int             `json:"active_tenants"`
	UserCount        int             `json:"user_count"`
	TransactionCount int             `json:"transaction_count"`
	TotalVolume      decimal.Decimal `json:"total_volume"`
}

// AdminService is the super-admin console: it operates across tenants and is
// only reachable through the is_super_admin token claim.
type AdminService interface {
	ListTenants(ctx context.Context) ([]TenantOverview, error)
	CreateTenant(ctx context.Context, in AdminCreateTenantInput) (*Tenant, error)
	DeleteTenant(ctx context.Context, tenantID int) error
	UpdateTenantPlan(ctx context.Context, tenantID int, planID int) (*Tenant, error)
	SetTenantActive(ctx context.Context, tenantID int, active bool) (*Tenant, error)

	// Impersonate returns the tenant's first admin user so the console can
	// mint a scoped token and enter the tenant's workspace.
	Impersonate(ctx context.Context, tenantID int) (*User, error)

	ListPlans(ctx context.Context) ([]Plan, error)
	CreatePlan(ctx context.Context, in PlanInput) (*Plan, error)
	UpdatePlan(ctx context.Context, planID int, in PlanInput) (*Plan, error)
	DeletePlan(ctx context.Context, planID int) error

	ListSuperAdmins(ctx context.Context) ([]User, error)
	CreateSuperAdmin(ctx context.Context, name, email, password string) (*User, error)
	DeleteSuperAdmin(ctx context.Context, actorID, userID int) error

	GlobalStats(ctx context.Context) (*GlobalStats, error)
}

type adminService struct {
	pool *pgxpool.Pool
}

func NewAdminService(pool *pgxpool.Pool) AdminService {
	return &adminService{pool: pool}
}

func (s *adminService) ListTenants(ctx context.Context) ([]TenantOverview, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.name, t.slug, t.plan_tier, t.active, t.max_users,
		       t.ai_usage_limit, t.ai_usage_current, t.closing_day, t.created_at,
		       (SELECT COUNT(*) FROM users u WHERE u.tenant_id = t.id),
		       (SELECT COUNT(*) FROM transactions tx WHERE tx.tenant_id = t.id)
		FROM tenants t
		ORDER BY t.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	tenants := []TenantOverview{}
	for rows.Next() {
		var o TenantOverview
		err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.PlanTier, &o.Active, &o.MaxUsers,
			&o.AIUsageLimit, &o.AIUsageCurrent, &o.ClosingDay, &o.CreatedAt,
			&o.UserCount, &o.TransactionCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant overview: %w", err)
		}
		tenants = append(tenants, o)
	}
	return tenants, rows.Err()
}

func (s *adminService) CreateTenant(ctx context.Context, in AdminCreateTenantInput) (*Tenant, error) {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Slug = strings.TrimSpace(in.Slug)
	in.AdminEmail = strings.ToLower(strings.TrimSpace(in.AdminEmail))
	if in.CompanyName == "" || in.Slug == "" || in.AdminName == "" || in.AdminEmail == "" || in.AdminPassword == "" {
		return nil, Validationf("todos os campos são obrigatórios")
	}
	if in.PlanTier == "" {
		in.PlanTier = "basic"
	}

	hash, err := auth.HashPassword(in.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	t, err := scanTenant(tx.QueryRow(ctx, `
		INSERT INTO tenants (name, slug, plan_tier)
		VALUES ($1, $2, $3)
		RETURNING `+tenantColumns,
		in.CompanyName, in.Slug, in.PlanTier,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("slug %q já está em uso: %w", in.Slug, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO users (tenant_id, name, email, password_hash, role, is_super_admin)
		VALUES ($1, $2, $3, $4, 'admin', false)`,
		t.ID, in.AdminName, in.AdminEmail, hash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email %q já está em uso: %w", in.AdminEmail, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit tenant creation: %w", err)
	}
	return t, nil
}

// DeleteTenant removes the tenant row; dependent data goes with it through
// the ON DELETE CASCADE foreign keys.
func (s *adminService) DeleteTenant(ctx context.Context, tenantID int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM tenants WHERE id = $1", tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tenant %d: %w", tenantID, ErrNotFound)
	}
	return nil
}

// UpdateTenantPlan applies a plan's limits to the tenant. The plan name is
// copied into plan_tier so the tenant keeps its limits if the plan changes
// later.
func (s *adminService) UpdateTenantPlan(ctx context.Context, tenantID, planID int) (*Tenant, error) {
	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	t, err := scanTenant(s.pool.QueryRow(ctx, `
		UPDATE tenants SET plan_tier = $1, max_users = $2, ai_usage_limit = $3
		WHERE id = $4
		RETURNING `+tenantColumns,
		plan.Name, plan.MaxUsers, plan.AIUsageLimit, tenantID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tenant %d: %w", tenantID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update tenant plan: %w", err)
	}
	return t, nil
}

func (s *adminService) SetTenantActive(ctx context.Context, tenantID int, active bool) (*Tenant, error) {
	t, err := scanTenant(s.pool.QueryRow(ctx, `
		UPDATE tenants SET active = $1
		WHERE id = $2
		RETURNING `+tenantColumns,
		active, tenantID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tenant %d: %w", tenantID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	return t, nil
}

func (s *adminService) Impersonate(ctx context.Context, tenantID int) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE tenant_id = $1 AND role = 'admin'
		ORDER BY created_at ASC
		LIMIT 1`,
		tenantID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tenant %d não possui usuário admin: %w", tenantID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch tenant admin: %w", err)
	}
	return u, nil
}

const planColumns = `id, name, max_users, ai_usage_limit, price, active`

func scanPlan(row pgx.Row) (*Plan, error) {
	p := &Plan{}
	err := row.Scan(&p.ID, &p.Name, &p.MaxUsers, &p.AIUsageLimit, &p.Price, &p.Active)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *adminService) getPlan(ctx context.Context, planID int) (*Plan, error) {
	p, err := scanPlan(s.pool.QueryRow(ctx,
		"SELECT "+planColumns+" FROM plans WHERE id = $1", planID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plano %d: %w", planID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch plan: %w", err)
	}
	return p, nil
}

func (s *adminService) ListPlans(ctx context.Context) ([]Plan, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+planColumns+" FROM plans ORDER BY price ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	plans := []Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (s *adminService) CreatePlan(ctx context.Context, in PlanInput) (*Plan, error) {
	if strings.TrimSpace(in.Name) == "" || in.MaxUsers < 1 {
		return nil, Validationf("nome e limite de usuários são obrigatórios")
	}

	p, err := scanPlan(s.pool.QueryRow(ctx, `
		INSERT INTO plans (name, max_users, ai_usage_limit, price, active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING `+planColumns,
		in.Name, in.MaxUsers, in.AIUsageLimit, in.Price,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("plano %q já existe: %w", in.Name, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return p, nil
}

func (s *adminService) UpdatePlan(ctx context.Context, planID int, in PlanInput) (*Plan, error) {
	if strings.TrimSpace(in.Name) == "" || in.MaxUsers < 1 {
		return nil, Validationf("nome e limite de usuários são obrigatórios")
	}

	p, err := scanPlan(s.pool.QueryRow(ctx, `
		UPDATE plans SET name = $1, max_users = $2, ai_usage_limit = $3, price = $4
		WHERE id = $5
		RETURNING `+planColumns,
		in.Name, in.MaxUsers, in.AIUsageLimit, in.Price, planID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plano %d: %w", planID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return p, nil
}

func (s *adminService) DeletePlan(ctx context.Context, planID int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM plans WHERE id = $1", planID)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plano %d: %w", planID, ErrNotFound)
	}
	return nil
}

func (s *adminService) ListSuperAdmins(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_super_admin = true ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query super admins: %w", err)
	}
	defer rows.Close()

	admins := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan super admin: %w", err)
		}
		admins = append(admins, *u)
	}
	return admins, rows.Err()
}

func (s *adminService) CreateSuperAdmin(ctx context.Context, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, Validationf("nome, email e senha são obrigatórios")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Super admins live on the platform tenant (id 1, created by setup).
	u, err := scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (tenant_id, name, email, password_hash, role, is_super_admin)
		VALUES (1, $1, $2, $3, 'admin', true)
		RETURNING `+userColumns,
		name, email, hash,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email %q já está em uso: %w", email, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create super admin: %w", err)
	}
	return u, nil
}

func (s *adminService) DeleteSuperAdmin(ctx context.Context, actorID, userID int) error {
	if userID == actorID {
		return Validationf("você não pode excluir o próprio usuário")
	}

	tag, err := s.pool.Exec(ctx,
		"DELETE FROM users WHERE id = $1 AND is_super_admin = true", userID)
	if err != nil {
		return fmt.Errorf("failed to delete super admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("usuário %d: %w", userID, ErrNotFound)
	}
	return nil
}

func (s *adminService) GlobalStats(ctx context.Context) (*GlobalStats, error) {
	stats := &GlobalStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM tenants),
			(SELECT COUNT(*) FROM tenants WHERE active = true),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM transactions),
			(SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE status = 'completed')
	`).Scan(&stats.TenantCount, &stats.ActiveTenants, &stats.UserCount,
		&stats.TransactionCount, &stats.TotalVolume)
	if err != nil {
		return nil, fmt.Errorf("failed to query global stats: %w", err)
	}
	return stats, nil
}
