package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"financesaas/internal/auth"
)

// TenantSettings is the settings page payload: the tenant record plus its
// current user roster.
type TenantSettings struct {
	Tenant Tenant `json:"tenant"`
	Users  []User `json:"users"`
}

type TenantUpdate struct {
	Name       *string `json:"name"`
	ClosingDay *int    `json:"closing_day"`
}

type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// TenantService covers the tenant's own administration surface: settings,
// the user roster under the plan's seat limit, and AI credit accounting.
type TenantService interface {
	GetSettings(ctx context.Context, tenantID int) (*TenantSettings, error)
	UpdateTenant(ctx context.Context, tenantID int, upd TenantUpdate) (*Tenant, error)

	// CreateUser adds a seat. Fails with ErrForbidden once the tenant's
	// max_users is reached.
	CreateUser(ctx context.Context, tenantID int, in CreateUserInput) (*User, error)

	// DeleteUser removes a seat. Users cannot delete themselves.
	DeleteUser(ctx context.Context, tenantID, actorID, userID int) error

	// ConsumeAICredit atomically spends one AI usage credit. Returns
	// ErrForbidden when the tenant's limit is exhausted.
	ConsumeAICredit(ctx context.Context, tenantID int) error
}

type tenantService struct {
	pool *pgxpool.Pool
}

func NewTenantService(pool *pgxpool.Pool) TenantService {
	return &tenantService{pool: pool}
}

const tenantColumns = `id, name, slug, plan_tier, active, max_users, ai_usage_limit, ai_usage_current, closing_day, created_at`

func scanTenant(row pgx.Row) (*Tenant, error) {
	t := &Tenant{}
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.PlanTier, &t.Active,
		&t.MaxUsers, &t.AIUsageLimit, &t.AIUsageCurrent, &t.ClosingDay, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tenantService) GetSettings(ctx context.Context, tenantID int) (*TenantSettings, error) {
	t, err := scanTenant(s.pool.QueryRow(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE id = $1", tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tenant %d: %w", tenantID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch tenant: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		"SELECT "+userColumns+" FROM users WHERE tenant_id = $1 ORDER BY created_at ASC", tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	settings := &TenantSettings{Tenant: *t, Users: []User{}}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		settings.Users = append(settings.Users, *u)
	}
	return settings, rows.Err()
}

func (s *tenantService) UpdateTenant(ctx context.Context, tenantID int, upd TenantUpdate) (*Tenant, error) {
	current, err := scanTenant(s.pool.QueryRow(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE id = $1", tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tenant %d: %w", tenantID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch tenant: %w", err)
	}

	name, closingDay := current.Name, current.ClosingDay
	if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
		name = strings.TrimSpace(*upd.Name)
	}
	if upd.ClosingDay != nil {
		if *upd.ClosingDay < 1 || *upd.ClosingDay > 31 {
			return nil, Validationf("dia de fechamento deve estar entre 1 e 31")
		}
		closingDay = *upd.ClosingDay
	}

	t, err := scanTenant(s.pool.QueryRow(ctx, `
		UPDATE tenants SET name = $1, closing_day = $2
		WHERE id = $3
		RETURNING `+tenantColumns,
		name, closingDay, tenantID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	return t, nil
}

func (s *tenantService) CreateUser(ctx context.Context, tenantID int, in CreateUserInput) (*User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, Validationf("nome, email e senha são obrigatórios")
	}
	if in.Role == "" {
		in.Role = "user"
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Seat check and insert share the transaction so concurrent additions
	// cannot both slip under the limit unnoticed.
	var count, maxUsers int
	err = tx.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM users WHERE tenant_id = $1), max_users
		FROM tenants WHERE id = $1`,
		tenantID,
	).Scan(&count, &maxUsers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tenant %d: %w", tenantID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to count seats: %w", err)
	}
	if count >= maxUsers {
		return nil, fmt.Errorf("limite de %d usuários do plano atingido: %w", maxUsers, ErrForbidden)
	}

	u, err := scanUser(tx.QueryRow(ctx, `
		INSERT INTO users (tenant_id, name, email, password_hash, role, is_super_admin)
		VALUES ($1, $2, $3, $4, $5, false)
		RETURNING `+userColumns,
		tenantID, in.Name, in.Email, hash, in.Role,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email %q já está em uso: %w", in.Email, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit user creation: %w", err)
	}
	return u, nil
}

func (s *tenantService) DeleteUser(ctx context.Context, tenantID, actorID, userID int) error {
	if userID == actorID {
		return Validationf("você não pode excluir o próprio usuário")
	}

	tag, err := s.pool.Exec(ctx,
		"DELETE FROM users WHERE id = $1 AND tenant_id = $2", userID, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("usuário %d: %w", userID, ErrNotFound)
	}
	return nil
}

func (s *tenantService) ConsumeAICredit(ctx context.Context, tenantID int) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tenants SET ai_usage_current = ai_usage_current + 1
		WHERE id = $1 AND ai_usage_current < ai_usage_limit`,
		tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to consume AI credit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("limite de uso de IA do plano atingido: %w", ErrForbidden)
	}
	return nil
}
