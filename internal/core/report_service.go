package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// MonthlyRow is one month of the yearly income statement. Months without
// movement appear with zero values so the series always has 12 entries.
type MonthlyRow struct {
	Month   string          `json:"month"` // YYYY-MM
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Result  decimal.Decimal `json:"result"`
}

type IncomeStatement struct {
	Year         int             `json:"year"`
	Months       []MonthlyRow    `json:"months"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetResult    decimal.Decimal `json:"net_result"`
}

// CategoryTotal aggregates completed transactions of one type by category.
// Uncategorized entries roll up under "Sem Categoria".
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// ExtractRow is a ledger line enriched with the joined category and client
// names for statement-style listings.
type ExtractRow struct {
	Transaction
	CategoryName *string `json:"category_name"`
	ClientName   *string `json:"client_name"`
}

// GeneralStats is the cross-module dashboard block: finance KPIs plus
// operational counters from service orders, stock, and the client base.
type GeneralStats struct {
	Finance        DashboardSummary `json:"finance"`
	OpenOrders     int              `json:"open_orders"`
	CriticalOrders int              `json:"critical_orders"`
	LowStockCount  int              `json:"low_stock_count"`
	ClientCount    int              `json:"client_count"`
}

type ReportService interface {
	// IncomeStatement builds the month-by-month result for a calendar year
	// from completed transactions.
	IncomeStatement(ctx context.Context, tenantID, year int) (*IncomeStatement, error)

	// CategoryBreakdown totals completed transactions of the given type by
	// category, largest first.
	CategoryBreakdown(ctx context.Context, tenantID int, txType TransactionType, startDate, endDate string) ([]CategoryTotal, error)

	// Extract lists transactions with category and client names joined in,
	// optionally bounded by an inclusive date range.
	Extract(ctx context.Context, tenantID int, startDate, endDate string) ([]ExtractRow, error)

	GeneralStats(ctx context.Context, tenantID int) (*GeneralStats, error)
}

type reportService struct {
	pool     *pgxpool.Pool
	txs      TransactionService
	orders   ServiceOrderService
	products ProductService
}

func NewReportService(pool *pgxpool.Pool, txs TransactionService, orders ServiceOrderService, products ProductService) ReportService {
	return &reportService{pool: pool, txs: txs, orders: orders, products: products}
}

func (s *reportService) IncomeStatement(ctx context.Context, tenantID, year int) (*IncomeStatement, error) {
	if year < 2000 || year > 2100 {
		return nil, Validationf("ano inválido: %d", year)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT
			EXTRACT(MONTH FROM date)::int,
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE tenant_id = $1
		  AND status = 'completed'
		  AND EXTRACT(YEAR FROM date) = $2
		GROUP BY 1
	`, tenantID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query income statement: %w", err)
	}
	defer rows.Close()

	byMonth := map[int]MonthlyRow{}
	for rows.Next() {
		var m int
		var income, expense decimal.Decimal
		if err := rows.Scan(&m, &income, &expense); err != nil {
			return nil, fmt.Errorf("failed to scan income statement row: %w", err)
		}
		byMonth[m] = MonthlyRow{Income: income, Expense: expense}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating income statement: %w", err)
	}

	stmt := &IncomeStatement{Year: year, Months: make([]MonthlyRow, 0, 12)}
	for m := 1; m <= 12; m++ {
		row := byMonth[m]
		row.Month = fmt.Sprintf("%04d-%02d", year, m)
		row.Result = row.Income.Sub(row.Expense)
		stmt.Months = append(stmt.Months, row)
		stmt.TotalIncome = stmt.TotalIncome.Add(row.Income)
		stmt.TotalExpense = stmt.TotalExpense.Add(row.Expense)
	}
	stmt.NetResult = stmt.TotalIncome.Sub(stmt.TotalExpense)
	return stmt, nil
}

func (s *reportService) CategoryBreakdown(ctx context.Context, tenantID int, txType TransactionType, startDate, endDate string) ([]CategoryTotal, error) {
	if txType != Income && txType != Expense {
		return nil, Validationf("tipo inválido: %s", txType)
	}

	q := `
		SELECT COALESCE(c.name, 'Sem Categoria'), SUM(t.amount), COUNT(*)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.tenant_id = $1 AND t.status = 'completed' AND t.type = $2`
	args := []any{tenantID, txType}

	if startDate != "" && endDate != "" {
		args = append(args, startDate, endDate)
		q += fmt.Sprintf(" AND t.date BETWEEN $%d AND $%d", len(args)-1, len(args))
	}
	q += " GROUP BY 1 ORDER BY 2 DESC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category breakdown: %w", err)
	}
	defer rows.Close()

	totals := []CategoryTotal{}
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

func (s *reportService) Extract(ctx context.Context, tenantID int, startDate, endDate string) ([]ExtractRow, error) {
	q := `
		SELECT t.id, t.tenant_id, t.category_id, t.client_id, t.description, t.amount,
		       t.type, t.cost_type, t.status, t.date, t.attachment_path, t.created_by, t.created_at,
		       c.name, cl.name
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		LEFT JOIN clients cl ON cl.id = t.client_id
		WHERE t.tenant_id = $1`
	args := []any{tenantID}

	if startDate != "" && endDate != "" {
		args = append(args, startDate, endDate)
		q += fmt.Sprintf(" AND t.date BETWEEN $%d AND $%d", len(args)-1, len(args))
	}
	q += " ORDER BY t.date DESC, t.created_at DESC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query extract: %w", err)
	}
	defer rows.Close()

	extract := []ExtractRow{}
	for rows.Next() {
		var r ExtractRow
		err := rows.Scan(&r.ID, &r.TenantID, &r.CategoryID, &r.ClientID, &r.Description,
			&r.Amount, &r.Type, &r.CostType, &r.Status, &r.Date,
			&r.AttachmentPath, &r.CreatedBy, &r.CreatedAt,
			&r.CategoryName, &r.ClientName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan extract row: %w", err)
		}
		extract = append(extract, r)
	}
	return extract, rows.Err()
}

func (s *reportService) GeneralStats(ctx context.Context, tenantID int) (*GeneralStats, error) {
	summary, err := s.txs.GetDashboardSummary(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	open, critical, err := s.orders.CountOpen(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.products.CountLowStock(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var clients int
	err = s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM clients WHERE tenant_id = $1", tenantID,
	).Scan(&clients)
	if err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	return &GeneralStats{
		Finance:        *summary,
		OpenOrders:     open,
		CriticalOrders: critical,
		LowStockCount:  lowStock,
		ClientCount:    clients,
	}, nil
}
