package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ServiceOrderInput struct {
	ClientName  string          `json:"client_name"`
	Equipment   string          `json:"equipment"`
	Description string          `json:"description"`
	Priority    string          `json:"priority"`
	Price       decimal.Decimal `json:"price"`
}

type ServiceOrderService interface {
	List(ctx context.Context, tenantID int, status, search string) ([]ServiceOrder, error)
	Create(ctx context.Context, tenantID int, in ServiceOrderInput) (*ServiceOrder, error)
	UpdateStatus(ctx context.Context, tenantID, id int, status OrderStatus) (*ServiceOrder, error)
	Delete(ctx context.Context, tenantID, id int) error

	// FinishAndBill atomically transitions the order to completed and posts a
	// matching revenue transaction. A second call on the same order fails with
	// ErrConflict and posts nothing.
	FinishAndBill(ctx context.Context, tenantID, userID, id int) (*ServiceOrder, error)

	// CountOpen returns open/in-progress orders and unfinished high-priority orders.
	CountOpen(ctx context.Context, tenantID int) (open, critical int, err error)
}

type serviceOrderService struct {
	pool *pgxpool.Pool
}

func NewServiceOrderService(pool *pgxpool.Pool) ServiceOrderService {
	return &serviceOrderService{pool: pool}
}

const orderColumns = `id, tenant_id, client_name, equipment, description, priority, price, status, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*ServiceOrder, error) {
	o := &ServiceOrder{}
	err := row.Scan(&o.ID, &o.TenantID, &o.ClientName, &o.Equipment, &o.Description,
		&o.Priority, &o.Price, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *serviceOrderService) List(ctx context.Context, tenantID int, status, search string) ([]ServiceOrder, error) {
	q := "SELECT " + orderColumns + " FROM service_orders WHERE tenant_id = $1"
	args := []any{tenantID}

	if status != "" && status != "all" {
		args = append(args, status)
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		q += fmt.Sprintf(" AND (client_name ILIKE $%d OR equipment ILIKE $%d)", n, n)
	}
	q += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query service orders: %w", err)
	}
	defer rows.Close()

	var orders []ServiceOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *serviceOrderService) Create(ctx context.Context, tenantID int, in ServiceOrderInput) (*ServiceOrder, error) {
	if strings.TrimSpace(in.ClientName) == "" || strings.TrimSpace(in.Equipment) == "" {
		return nil, Validationf("cliente e equipamento são obrigatórios")
	}
	if in.Priority == "" {
		in.Priority = "normal"
	}

	o, err := scanOrder(s.pool.QueryRow(ctx, `
		INSERT INTO service_orders (tenant_id, client_name, equipment, description, priority, price, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'open')
		RETURNING `+orderColumns,
		tenantID, in.ClientName, in.Equipment, in.Description, in.Priority, in.Price,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create service order: %w", err)
	}
	return o, nil
}

func (s *serviceOrderService) UpdateStatus(ctx context.Context, tenantID, id int, status OrderStatus) (*ServiceOrder, error) {
	switch status {
	case OrderOpen, OrderInProgress, OrderWaiting, OrderCompleted:
	default:
		return nil, Validationf("status inválido: %s", status)
	}

	o, err := scanOrder(s.pool.QueryRow(ctx, `
		UPDATE service_orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3
		RETURNING `+orderColumns,
		status, id, tenantID,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("ordem de serviço %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update service order: %w", err)
	}
	return o, nil
}

func (s *serviceOrderService) FinishAndBill(ctx context.Context, tenantID, userID, id int) (*ServiceOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// FOR UPDATE serializes concurrent billing attempts on the same order;
	// the loser sees status=completed and is rejected.
	order, err := scanOrder(tx.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM service_orders WHERE id = $1 AND tenant_id = $2 FOR UPDATE",
		id, tenantID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ordem de serviço %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch service order: %w", err)
	}
	if order.Status == OrderCompleted {
		return nil, fmt.Errorf("esta OS já foi finalizada: %w", ErrConflict)
	}

	order, err = scanOrder(tx.QueryRow(ctx, `
		UPDATE service_orders SET status = 'completed', updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+orderColumns,
		id, tenantID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to complete service order: %w", err)
	}

	description := fmt.Sprintf("Serviço OS #%d - %s", order.ID, order.ClientName)
	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (tenant_id, description, amount, type, cost_type, status, date, created_by)
		VALUES ($1, $2, $3, 'income', 'variable', 'completed', CURRENT_DATE, $4)`,
		tenantID, description, order.Price, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to post billing transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit billing: %w", err)
	}
	return order, nil
}

func (s *serviceOrderService) Delete(ctx context.Context, tenantID, id int) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM service_orders WHERE id = $1 AND tenant_id = $2", id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete service order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ordem de serviço %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *serviceOrderService) CountOpen(ctx context.Context, tenantID int) (int, int, error) {
	var open, critical int
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('open', 'in_progress')),
			COUNT(*) FILTER (WHERE priority = 'high' AND status != 'completed')
		FROM service_orders
		WHERE tenant_id = $1
	`, tenantID).Scan(&open, &critical)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count service orders: %w", err)
	}
	return open, critical, nil
}
