package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/shopspring/decimal"
)

type RecurringInput struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Frequency   Frequency       `json:"frequency"`
	StartDate   string          `json:"start_date"` // YYYY-MM-DD
	CategoryID  *int            `json:"category_id"`
}

type RecurringService interface {
	List(ctx context.Context, tenantID int) ([]RecurringRule, error)
	Create(ctx context.Context, tenantID int, in RecurringInput) (*RecurringRule, error)
	Delete(ctx context.Context, tenantID, id int) error

	// ProcessDue materializes a transaction for every active rule whose
	// next_run is today or earlier and advances the rule. Rules are processed
	// independently; one failure does not stop the rest. Returns the number of
	// rules that produced a transaction.
	ProcessDue(ctx context.Context, tenantID, userID int) (int, error)
}

type recurringService struct {
	pool *pgxpool.Pool
	log  *zap.SugaredLogger
}

func NewRecurringService(pool *pgxpool.Pool, log *zap.SugaredLogger) RecurringService {
	return &recurringService{pool: pool, log: log}
}

const recurringColumns = `id, tenant_id, description, amount, type, frequency, start_date, next_run, category_id, active, created_at`

func scanRule(row interface{ Scan(...any) error }) (*RecurringRule, error) {
	r := &RecurringRule{}
	err := row.Scan(&r.ID, &r.TenantID, &r.Description, &r.Amount, &r.Type,
		&r.Frequency, &r.StartDate, &r.NextRun, &r.CategoryID, &r.Active, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *recurringService) List(ctx context.Context, tenantID int) ([]RecurringRule, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+recurringColumns+" FROM recurring_transactions WHERE tenant_id = $1 ORDER BY next_run ASC",
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring rules: %w", err)
	}
	defer rows.Close()

	var rules []RecurringRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring rule: %w", err)
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}

func (s *recurringService) Create(ctx context.Context, tenantID int, in RecurringInput) (*RecurringRule, error) {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" || in.Amount.IsZero() || in.StartDate == "" {
		return nil, Validationf("campos obrigatórios faltando: descrição, valor e data de início")
	}
	if _, err := time.Parse("2006-01-02", in.StartDate); err != nil {
		return nil, Validationf("data de início inválida: %s", in.StartDate)
	}
	if in.Frequency == "" {
		in.Frequency = Monthly
	}
	switch in.Frequency {
	case Weekly, Monthly, Yearly:
	default:
		return nil, Validationf("frequência inválida: %s", in.Frequency)
	}

	// The first run is the start date itself.
	r, err := scanRule(s.pool.QueryRow(ctx, `
		INSERT INTO recurring_transactions (tenant_id, description, amount, type, frequency, start_date, next_run, category_id, active)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7, true)
		RETURNING `+recurringColumns,
		tenantID, in.Description, in.Amount, in.Type, in.Frequency, in.StartDate, in.CategoryID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create recurring rule: %w", err)
	}
	return r, nil
}

func (s *recurringService) Delete(ctx context.Context, tenantID, id int) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM recurring_transactions WHERE id = $1 AND tenant_id = $2", id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete recurring rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recorrência %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *recurringService) ProcessDue(ctx context.Context, tenantID, userID int) (int, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+recurringColumns+" FROM recurring_transactions WHERE tenant_id = $1 AND active = true AND next_run <= CURRENT_DATE",
		tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to query due rules: %w", err)
	}

	var due []RecurringRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan due rule: %w", err)
		}
		due = append(due, *r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating due rules: %w", err)
	}

	processed := 0
	for _, rule := range due {
		if err := s.processRule(ctx, userID, rule); err != nil {
			s.log.Warnw("recurring rule skipped", "rule_id", rule.ID, "tenant_id", tenantID, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}

// processRule claims the rule by advancing next_run with a conditional update
// before inserting the derived transaction. A concurrent invocation that
// already advanced the date makes the update affect zero rows, so the rule is
// skipped instead of double-posting.
func (s *recurringService) processRule(ctx context.Context, userID int, rule RecurringRule) error {
	next := NextOccurrence(rule.NextRun, rule.Frequency)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE recurring_transactions SET next_run = $1
		WHERE id = $2 AND tenant_id = $3 AND next_run = $4`,
		next, rule.ID, rule.TenantID, rule.NextRun,
	)
	if err != nil {
		return fmt.Errorf("failed to claim rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rule already claimed by a concurrent run: %w", ErrConflict)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (tenant_id, description, amount, type, cost_type, status, date, category_id, created_by)
		VALUES ($1, $2, $3, $4, 'fixed', 'pending', $5, $6, $7)`,
		rule.TenantID, rule.Description+" (Recorrente)", rule.Amount, rule.Type,
		rule.NextRun, rule.CategoryID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to materialize transaction: %w", err)
	}

	return tx.Commit(ctx)
}
