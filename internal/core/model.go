package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
)

type CostType string

const (
	CostFixed    CostType = "fixed"
	CostVariable CostType = "variable"
)

type Frequency string

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type OrderStatus string

const (
	OrderOpen       OrderStatus = "open"
	OrderInProgress OrderStatus = "in_progress"
	OrderWaiting    OrderStatus = "waiting"
	OrderCompleted  OrderStatus = "completed"
)

// Tenant is an isolated customer organization, the unit of data partitioning.
type Tenant struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	PlanTier       string    `json:"plan_tier"`
	Active         bool      `json:"active"`
	MaxUsers       int       `json:"max_users"`
	AIUsageLimit   int       `json:"ai_usage_limit"`
	AIUsageCurrent int       `json:"ai_usage_current"`
	ClosingDay     int       `json:"closing_day"`
	CreatedAt      time.Time `json:"created_at"`
}

type User struct {
	ID           int       `json:"id"`
	TenantID     int       `json:"tenant_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsSuperAdmin bool      `json:"is_super_admin"`
	AvatarPath   *string   `json:"avatar_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Category struct {
	ID       int             `json:"id"`
	TenantID int             `json:"tenant_id"`
	Name     string          `json:"name"`
	Type     TransactionType `json:"type"`
}

// Client covers customers, suppliers, or both (type = client|supplier|both).
type Client struct {
	ID        int       `json:"id"`
	TenantID  int       `json:"tenant_id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Document  *string   `json:"document"`
	Address   *string   `json:"address"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID          int             `json:"id"`
	TenantID    int             `json:"tenant_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LowStock reports whether the product has crossed its minimum stock level.
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

// Transaction is the core ledger entity. Date is the competence date the
// amount is attributed to for reporting, independent of when it was recorded.
type Transaction struct {
	ID             int               `json:"id"`
	TenantID       int               `json:"tenant_id"`
	CategoryID     *int              `json:"category_id"`
	ClientID       *int              `json:"client_id"`
	Description    string            `json:"description"`
	Amount         decimal.Decimal   `json:"amount"`
	Type           TransactionType   `json:"type"`
	CostType       CostType          `json:"cost_type"`
	Status         TransactionStatus `json:"status"`
	Date           time.Time         `json:"date"`
	AttachmentPath *string           `json:"attachment_path,omitempty"`
	CreatedBy      *int              `json:"created_by,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// RecurringRule is a template that periodically materializes into concrete
// ledger transactions.
type RecurringRule struct {
	ID          int             `json:"id"`
	TenantID    int             `json:"tenant_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Frequency   Frequency       `json:"frequency"`
	StartDate   time.Time       `json:"start_date"`
	NextRun     time.Time       `json:"next_run"`
	CategoryID  *int            `json:"category_id"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ServiceOrder struct {
	ID          int             `json:"id"`
	TenantID    int             `json:"tenant_id"`
	ClientName  string          `json:"client_name"`
	Equipment   string          `json:"equipment"`
	Description string          `json:"description"`
	Priority    string          `json:"priority"`
	Price       decimal.Decimal `json:"price"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Notification struct {
	ID        int       `json:"id"`
	TenantID  int       `json:"tenant_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditLogEntry is an append-only record of a mutating action.
type AuditLogEntry struct {
	ID        int       `json:"id"`
	TenantID  int       `json:"tenant_id"`
	UserID    *int      `json:"user_id"`
	UserName  *string   `json:"user_name,omitempty"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  *int      `json:"entity_id"`
	Details   *string   `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// Plan is a template super-admins apply to tenants.
type Plan struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	MaxUsers     int             `json:"max_users"`
	AIUsageLimit int             `json:"ai_usage_limit"`
	Price        decimal.Decimal `json:"price"`
	Active       bool            `json:"active"`
}
