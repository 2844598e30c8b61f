package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"financesaas/internal/auth"
)

// RegisterInput is the tenant provisioning request: a new company plus its
// first admin user, created atomically.
type RegisterInput struct {
	CompanyName string `json:"companyName"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// ProfileUpdate carries the mutable profile fields. Nil pointers leave the
// current value untouched; a non-empty Password triggers a rehash.
type ProfileUpdate struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	AvatarPath *string `json:"avatar_path"`
	Password   string  `json:"password"`
}

// AuthService owns credential verification, the tenant provisioning
// transaction, profile management, and the password reset flow.
type AuthService interface {
	// RegisterTenant creates a tenant and its admin user in one atomic unit.
	// Either both rows exist afterwards or neither does.
	RegisterTenant(ctx context.Context, in RegisterInput) (*User, *Tenant, error)

	// Authenticate verifies email/password and returns the user on success.
	Authenticate(ctx context.Context, email, password string) (*User, error)

	GetUser(ctx context.Context, userID int) (*User, error)
	UpdateProfile(ctx context.Context, userID int, upd ProfileUpdate) (*User, error)

	// ForgotPassword stores a reset token on the account and returns it for
	// delivery. A nil token with nil error means the email is unknown; callers
	// must not reveal that to the requester.
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type authService struct {
	pool *pgxpool.Pool
}

// NewAuthService constructs an AuthService backed by PostgreSQL.
func NewAuthService(pool *pgxpool.Pool) AuthService {
	return &authService{pool: pool}
}

const userColumns = `id, tenant_id, name, email, password_hash, role, is_super_admin, avatar_path, created_at`

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.TenantID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Role, &u.IsSuperAdmin, &u.AvatarPath, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *authService) RegisterTenant(ctx context.Context, in RegisterInput) (*User, *Tenant, error) {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.CompanyName == "" || in.Slug == "" || in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, nil, Validationf("todos os campos são obrigatórios")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Pre-checks give friendly errors; the unique constraints remain the
	// final arbiter under concurrent registrations.
	var existing int
	err = tx.QueryRow(ctx, "SELECT id FROM tenants WHERE slug = $1", in.Slug).Scan(&existing)
	if err == nil {
		return nil, nil, fmt.Errorf("slug %q já está em uso: %w", in.Slug, ErrConflict)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, fmt.Errorf("failed to check slug: %w", err)
	}

	err = tx.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", in.Email).Scan(&existing)
	if err == nil {
		return nil, nil, fmt.Errorf("email %q já está em uso: %w", in.Email, ErrConflict)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}

	t := &Tenant{}
	err = tx.QueryRow(ctx, `
		INSERT INTO tenants (name, slug, plan_tier)
		VALUES ($1, $2, 'basic')
		RETURNING id, name, slug, plan_tier, active, max_users, ai_usage_limit, ai_usage_current, closing_day, created_at
	`, in.CompanyName, in.Slug).Scan(
		&t.ID, &t.Name, &t.Slug, &t.PlanTier, &t.Active,
		&t.MaxUsers, &t.AIUsageLimit, &t.AIUsageCurrent, &t.ClosingDay, &t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, fmt.Errorf("slug %q já está em uso: %w", in.Slug, ErrConflict)
		}
		return nil, nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	u, err := scanUser(tx.QueryRow(ctx, `
		INSERT INTO users (tenant_id, name, email, password_hash, role, is_super_admin)
		VALUES ($1, $2, $3, $4, 'admin', false)
		RETURNING `+userColumns,
		t.ID, in.Name, in.Email, hash,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, fmt.Errorf("email %q já está em uso: %w", in.Email, ErrConflict)
		}
		return nil, nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit registration: %w", err)
	}
	return u, t, nil
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, Validationf("email e senha são obrigatórios")
	}

	u, err := scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1 LIMIT 1", email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("credenciais inválidas: %w", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if auth.CheckPassword(u.PasswordHash, password) != nil {
		return nil, fmt.Errorf("credenciais inválidas: %w", ErrUnauthorized)
	}
	return u, nil
}

func (s *authService) GetUser(ctx context.Context, userID int) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return u, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int, upd ProfileUpdate) (*User, error) {
	current, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	name, email, avatar := current.Name, current.Email, current.AvatarPath
	if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
		name = strings.TrimSpace(*upd.Name)
	}
	if upd.Email != nil && strings.TrimSpace(*upd.Email) != "" {
		email = strings.ToLower(strings.TrimSpace(*upd.Email))
	}
	if upd.AvatarPath != nil {
		avatar = upd.AvatarPath
	}

	hash := current.PasswordHash
	if upd.Password != "" {
		if hash, err = auth.HashPassword(upd.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	u, err := scanUser(s.pool.QueryRow(ctx, `
		UPDATE users SET name = $1, email = $2, avatar_path = $3, password_hash = $4
		WHERE id = $5
		RETURNING `+userColumns,
		name, email, avatar, hash, userID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email %q já está em uso: %w", email, ErrConflict)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

const resetTokenTTL = time.Hour

func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", Validationf("email é obrigatório")
	}

	token := uuid.NewString()
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET reset_token = $1, reset_token_expires = $2
		WHERE email = $3`,
		token, time.Now().Add(resetTokenTTL), email,
	)
	if err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", nil
	}
	return token, nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return Validationf("token e nova senha são obrigatórios")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, reset_token = NULL, reset_token_expires = NULL
		WHERE reset_token = $2 AND reset_token_expires > NOW()`,
		hash, token,
	)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("token de redefinição inválido ou expirado: %w", ErrUnauthorized)
	}
	return nil
}
