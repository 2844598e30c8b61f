package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ProductInput struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
}

type ProductService interface {
	// List supports a free-text search over name/description and a low-stock
	// filter (stock <= min_stock).
	List(ctx context.Context, tenantID int, search string, lowStockOnly bool) ([]Product, error)
	Create(ctx context.Context, tenantID int, in ProductInput) (*Product, error)
	Update(ctx context.Context, tenantID, id int, in ProductInput) (*Product, error)
	Delete(ctx context.Context, tenantID, id int) error

	// CountLowStock returns how many products are at or below minimum stock.
	CountLowStock(ctx context.Context, tenantID int) (int, error)
}

type productService struct {
	pool *pgxpool.Pool
}

func NewProductService(pool *pgxpool.Pool) ProductService {
	return &productService{pool: pool}
}

const productColumns = `id, tenant_id, name, description, sale_price, cost_price, stock, min_stock, created_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	p := &Product{}
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description,
		&p.SalePrice, &p.CostPrice, &p.Stock, &p.MinStock, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) List(ctx context.Context, tenantID int, search string, lowStockOnly bool) ([]Product, error) {
	q := "SELECT " + productColumns + " FROM products WHERE tenant_id = $1"
	args := []any{tenantID}

	if search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		q += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", n, n)
	}
	if lowStockOnly {
		q += " AND stock <= min_stock"
	}
	q += " ORDER BY name ASC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *productService) Create(ctx context.Context, tenantID int, in ProductInput) (*Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, Validationf("nome do produto é obrigatório")
	}
	if in.MinStock == 0 {
		in.MinStock = 5
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (tenant_id, name, description, sale_price, cost_price, stock, min_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		tenantID, in.Name, in.Description, in.SalePrice, in.CostPrice, in.Stock, in.MinStock,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *productService) Update(ctx context.Context, tenantID, id int, in ProductInput) (*Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, Validationf("nome do produto é obrigatório")
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $1, description = $2, sale_price = $3, cost_price = $4, stock = $5, min_stock = $6
		WHERE id = $7 AND tenant_id = $8
		RETURNING `+productColumns,
		in.Name, in.Description, in.SalePrice, in.CostPrice, in.Stock, in.MinStock, id, tenantID,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("produto %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

func (s *productService) Delete(ctx context.Context, tenantID, id int) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM products WHERE id = $1 AND tenant_id = $2", id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("produto %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *productService) CountLowStock(ctx context.Context, tenantID int) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM products WHERE tenant_id = $1 AND stock <= min_stock",
		tenantID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count low-stock products: %w", err)
	}
	return n, nil
}
