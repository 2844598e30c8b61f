package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultCategoryName is assigned when no category is chosen and the AI
// categorizer is unavailable or fails.
const DefaultCategoryName = "Geral"

type CategoryService interface {
	List(ctx context.Context, tenantID int) ([]Category, error)
	Create(ctx context.Context, tenantID int, name string, typ TransactionType) (*Category, error)

	// Delete refuses with ErrConflict while any transaction references the
	// category; no cascading.
	Delete(ctx context.Context, tenantID, id int) error
}

type categoryService struct {
	pool *pgxpool.Pool
}

func NewCategoryService(pool *pgxpool.Pool) CategoryService {
	return &categoryService{pool: pool}
}

func (s *categoryService) List(ctx context.Context, tenantID int) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, name, type
		FROM categories
		WHERE tenant_id = $1
		ORDER BY name ASC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *categoryService) Create(ctx context.Context, tenantID int, name string, typ TransactionType) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || typ == "" {
		return nil, Validationf("nome e tipo são obrigatórios")
	}

	c := &Category{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO categories (tenant_id, name, type)
		VALUES ($1, $2, $3)
		RETURNING id, tenant_id, name, type
	`, tenantID, name, typ).Scan(&c.ID, &c.TenantID, &c.Name, &c.Type)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("categoria %q já existe: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

func (s *categoryService) Delete(ctx context.Context, tenantID, id int) error {
	var ref int
	err := s.pool.QueryRow(ctx,
		"SELECT id FROM transactions WHERE category_id = $1 AND tenant_id = $2 LIMIT 1",
		id, tenantID,
	).Scan(&ref)
	if err == nil {
		return fmt.Errorf("existem transações vinculadas a esta categoria: %w", ErrConflict)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to check category references: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		"DELETE FROM categories WHERE id = $1 AND tenant_id = $2", id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("categoria %d: %w", id, ErrNotFound)
	}
	return nil
}

// resolveCategoryID finds or creates a tenant category by exact name using an
// upsert, so two concurrent creates of the same new name cannot both insert.
func resolveCategoryID(ctx context.Context, q pgxQuerier, tenantID int, name string, typ TransactionType) (int, error) {
	var id int
	err := q.QueryRow(ctx, `
		INSERT INTO categories (tenant_id, name, type)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, tenantID, name, typ).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve category %q: %w", name, err)
	}
	return id, nil
}
