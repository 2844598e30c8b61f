package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Categorizer names a transaction category from its description. It must
// degrade internally: implementations return DefaultCategoryName on any
// failure instead of an error.
type Categorizer interface {
	Categorize(ctx context.Context, description string) string
}

// TransactionFilter narrows List. Zero values mean "no filter"; Page/Limit
// default to 1/20.
type TransactionFilter struct {
	Type      TransactionType
	StartDate string // YYYY-MM-DD, inclusive
	EndDate   string
	Page      int
	Limit     int
}

// TransactionPage is a List result plus the pagination envelope.
type TransactionPage struct {
	Data  []Transaction `json:"data"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type CreateTransactionInput struct {
	Description    string            `json:"description"`
	Amount         decimal.Decimal   `json:"amount"`
	Type           TransactionType   `json:"type"`
	CostType       CostType          `json:"cost_type"`
	Status         TransactionStatus `json:"status"`
	Date           string            `json:"date"` // competence date, YYYY-MM-DD
	ClientID       *int              `json:"client_id"`
	AttachmentPath *string           `json:"attachment_path"`
	CategoryName   string            `json:"category_name"`
	UseAICategory  bool              `json:"use_ai_category"`
}

// DashboardSummary is the current-month KPI block. Income/Expense cover
// completed transactions only; the pending split is reported separately.
type DashboardSummary struct {
	Period           string          `json:"period"`
	Income           decimal.Decimal `json:"income"`
	Expense          decimal.Decimal `json:"expense"`
	PendingIncome    decimal.Decimal `json:"pending_income"`
	PendingExpense   decimal.Decimal `json:"pending_expense"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transaction_count"`
}

// ChartPoint is one day of the last-30-days series, labeled DD/MM.
type ChartPoint struct {
	Name    string          `json:"name"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type TransactionService interface {
	List(ctx context.Context, tenantID int, f TransactionFilter) (*TransactionPage, error)

	// Create injects tenant and creator server-side and resolves the category
	// by name, consulting the AI categorizer when requested.
	Create(ctx context.Context, tenantID, userID int, in CreateTransactionInput) (*Transaction, error)

	UpdateStatus(ctx context.Context, tenantID, id int, status TransactionStatus) (*Transaction, error)
	Delete(ctx context.Context, tenantID, id int) error

	// Recent returns the latest transactions by competence date, newest first.
	Recent(ctx context.Context, tenantID, limit int) ([]Transaction, error)

	GetDashboardSummary(ctx context.Context, tenantID int) (*DashboardSummary, error)
	GetChartData(ctx context.Context, tenantID int) ([]ChartPoint, error)
}

type transactionService struct {
	pool        *pgxpool.Pool
	categorizer Categorizer
}

// NewTransactionService constructs a TransactionService. categorizer may be
// nil, in which case AI categorization requests fall back to the default
// category.
func NewTransactionService(pool *pgxpool.Pool, categorizer Categorizer) TransactionService {
	return &transactionService{pool: pool, categorizer: categorizer}
}

const transactionColumns = `id, tenant_id, category_id, client_id, description, amount, type, cost_type, status, date, attachment_path, created_by, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (*Transaction, error) {
	t := &Transaction{}
	err := row.Scan(&t.ID, &t.TenantID, &t.CategoryID, &t.ClientID, &t.Description,
		&t.Amount, &t.Type, &t.CostType, &t.Status, &t.Date,
		&t.AttachmentPath, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *transactionService) List(ctx context.Context, tenantID int, f TransactionFilter) (*TransactionPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	q := "SELECT " + transactionColumns + " FROM transactions WHERE tenant_id = $1"
	args := []any{tenantID}

	if f.Type != "" {
		args = append(args, f.Type)
		q += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if f.StartDate != "" && f.EndDate != "" {
		args = append(args, f.StartDate, f.EndDate)
		q += fmt.Sprintf(" AND date BETWEEN $%d AND $%d", len(args)-1, len(args))
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	q += fmt.Sprintf(" ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	page := &TransactionPage{Data: []Transaction{}, Page: f.Page, Limit: f.Limit}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		page.Data = append(page.Data, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM transactions WHERE tenant_id = $1", tenantID,
	).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	return page, nil
}

func (s *transactionService) Create(ctx context.Context, tenantID, userID int, in CreateTransactionInput) (*Transaction, error) {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" || in.Amount.IsZero() || in.Type == "" || in.Date == "" {
		return nil, Validationf("campos obrigatórios faltando: descrição, valor, tipo e data")
	}
	if in.Type != Income && in.Type != Expense {
		return nil, Validationf("tipo inválido: %s", in.Type)
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, Validationf("data inválida: %s", in.Date)
	}
	if in.CostType == "" {
		in.CostType = CostVariable
	}
	if in.Status == "" {
		in.Status = StatusCompleted
	}

	categoryName := strings.TrimSpace(in.CategoryName)
	if in.UseAICategory && s.categorizer != nil {
		categoryName = s.categorizer.Categorize(ctx, in.Description)
	}
	if categoryName == "" {
		categoryName = DefaultCategoryName
	}

	categoryID, err := resolveCategoryID(ctx, s.pool, tenantID, categoryName, in.Type)
	if err != nil {
		return nil, err
	}

	t, err := scanTransaction(s.pool.QueryRow(ctx, `
		INSERT INTO transactions (tenant_id, category_id, client_id, description, amount, type, cost_type, status, date, attachment_path, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+transactionColumns,
		tenantID, categoryID, in.ClientID, in.Description, in.Amount,
		in.Type, in.CostType, in.Status, in.Date, in.AttachmentPath, userID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return t, nil
}

func (s *transactionService) UpdateStatus(ctx context.Context, tenantID, id int, status TransactionStatus) (*Transaction, error) {
	if status != StatusPending && status != StatusCompleted {
		return nil, Validationf("status inválido: %s", status)
	}

	t, err := scanTransaction(s.pool.QueryRow(ctx, `
		UPDATE transactions SET status = $1
		WHERE id = $2 AND tenant_id = $3
		RETURNING `+transactionColumns,
		status, id, tenantID,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("transação %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update transaction status: %w", err)
	}
	return t, nil
}

func (s *transactionService) Delete(ctx context.Context, tenantID, id int) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM transactions WHERE id = $1 AND tenant_id = $2", id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transação %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *transactionService) Recent(ctx context.Context, tenantID, limit int) ([]Transaction, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE tenant_id = $1 ORDER BY date DESC, created_at DESC LIMIT $2",
		tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent transactions: %w", err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

func (s *transactionService) GetDashboardSummary(ctx context.Context, tenantID int) (*DashboardSummary, error) {
	sum := &DashboardSummary{Period: "current_month"}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'  AND status = 'completed'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense' AND status = 'completed'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'  AND status = 'pending'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense' AND status = 'pending'), 0),
			COUNT(*)
		FROM transactions
		WHERE tenant_id = $1
		  AND date >= date_trunc('month', CURRENT_DATE)
		  AND date < date_trunc('month', CURRENT_DATE) + INTERVAL '1 month'
	`, tenantID).Scan(&sum.Income, &sum.Expense, &sum.PendingIncome, &sum.PendingExpense, &sum.TransactionCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard summary: %w", err)
	}
	sum.Balance = sum.Income.Sub(sum.Expense)
	return sum, nil
}

func (s *transactionService) GetChartData(ctx context.Context, tenantID int) ([]ChartPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			TO_CHAR(date, 'DD/MM'),
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE tenant_id = $1
		  AND status = 'completed'
		  AND date >= CURRENT_DATE - INTERVAL '30 days'
		GROUP BY date
		ORDER BY date ASC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chart data: %w", err)
	}
	defer rows.Close()

	points := []ChartPoint{}
	for rows.Next() {
		var p ChartPoint
		if err := rows.Scan(&p.Name, &p.Income, &p.Expense); err != nil {
			return nil, fmt.Errorf("failed to scan chart point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
