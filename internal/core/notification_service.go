package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Alert title prefixes double as the once-per-day idempotence keys.
const (
	stockAlertPrefix = "Alerta de Estoque"
	billsAlertPrefix = "Contas Vencendo"
)

type NotificationService interface {
	// ListWithAlerts runs the threshold checks (low stock, overdue pending
	// expenses), inserts at most one alert per family per calendar day, and
	// returns the 20 most recent notifications, newest first.
	ListWithAlerts(ctx context.Context, tenantID int) ([]Notification, error)

	MarkRead(ctx context.Context, tenantID, id int) error
	MarkAllRead(ctx context.Context, tenantID int) error
}

type notificationService struct {
	pool *pgxpool.Pool
}

func NewNotificationService(pool *pgxpool.Pool) NotificationService {
	return &notificationService{pool: pool}
}

func (s *notificationService) ListWithAlerts(ctx context.Context, tenantID int) ([]Notification, error) {
	if err := s.generateStockAlert(ctx, tenantID); err != nil {
		return nil, err
	}
	if err := s.generateBillsAlert(ctx, tenantID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, title, message, type, is_read, created_at
		FROM notifications
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT 20
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.TenantID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *notificationService) generateStockAlert(ctx context.Context, tenantID int) error {
	var count int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM products WHERE tenant_id = $1 AND stock <= min_stock", tenantID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count low-stock products: %w", err)
	}
	if count == 0 {
		return nil
	}

	title := fmt.Sprintf("%s (%d)", stockAlertPrefix, count)
	message := fmt.Sprintf("Você tem %d produtos abaixo do mínimo.", count)
	return s.insertOncePerDay(ctx, tenantID, stockAlertPrefix, title, message, "warning")
}

func (s *notificationService) generateBillsAlert(ctx context.Context, tenantID int) error {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM transactions
		WHERE tenant_id = $1 AND type = 'expense' AND status = 'pending' AND date <= CURRENT_DATE`,
		tenantID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count due bills: %w", err)
	}
	if count == 0 {
		return nil
	}

	title := fmt.Sprintf("%s (%d)", billsAlertPrefix, count)
	message := fmt.Sprintf("Existem %d contas para pagar hoje ou atrasadas.", count)
	return s.insertOncePerDay(ctx, tenantID, billsAlertPrefix, title, message, "error")
}

// insertOncePerDay is a query-then-insert check keyed on the title prefix and
// today's calendar date. Racy under concurrent list requests; acceptable for
// a low-frequency alert feature.
func (s *notificationService) insertOncePerDay(ctx context.Context, tenantID int, prefix, title, message, typ string) error {
	var existing int
	err := s.pool.QueryRow(ctx, `
		SELECT id FROM notifications
		WHERE tenant_id = $1 AND title LIKE $2 || '%' AND created_at >= CURRENT_DATE
		LIMIT 1`,
		tenantID, prefix,
	).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to check existing alert: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		"INSERT INTO notifications (tenant_id, title, message, type) VALUES ($1, $2, $3, $4)",
		tenantID, title, message, typ)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

func (s *notificationService) MarkRead(ctx context.Context, tenantID, id int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE notifications SET is_read = true WHERE id = $1 AND tenant_id = $2", id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notificação %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, tenantID int) error {
	_, err := s.pool.Exec(ctx,
		"UPDATE notifications SET is_read = true WHERE tenant_id = $1", tenantID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
