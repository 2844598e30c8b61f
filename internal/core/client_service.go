package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ClientInput carries the client/supplier form fields.
type ClientInput struct {
	Name     string  `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Document *string `json:"document"`
	Address  *string `json:"address"`
	Type     string  `json:"type"` // client | supplier | both
}

type ClientService interface {
	// List filters by type ("client"/"supplier" also match "both") and a
	// free-text search over name, email, and document.
	List(ctx context.Context, tenantID int, typ, search string) ([]Client, error)
	Create(ctx context.Context, tenantID int, in ClientInput) (*Client, error)
	Update(ctx context.Context, tenantID, id int, in ClientInput) (*Client, error)
	Delete(ctx context.Context, tenantID, id int) error
}

type clientService struct {
	pool *pgxpool.Pool
}

func NewClientService(pool *pgxpool.Pool) ClientService {
	return &clientService{pool: pool}
}

const clientColumns = `id, tenant_id, name, email, phone, document, address, type, created_at`

func (s *clientService) List(ctx context.Context, tenantID int, typ, search string) ([]Client, error) {
	q := "SELECT " + clientColumns + " FROM clients WHERE tenant_id = $1"
	args := []any{tenantID}

	if typ != "" && typ != "all" {
		args = append(args, typ)
		q += fmt.Sprintf(" AND (type = $%d OR type = 'both')", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		q += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR document ILIKE $%d)", n, n, n)
	}
	q += " ORDER BY name ASC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone,
			&c.Document, &c.Address, &c.Type, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *clientService) Create(ctx context.Context, tenantID int, in ClientInput) (*Client, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, Validationf("nome é obrigatório")
	}
	if in.Type == "" {
		in.Type = "client"
	}

	c := &Client{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO clients (tenant_id, name, email, phone, document, address, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+clientColumns,
		tenantID, in.Name, in.Email, in.Phone, in.Document, in.Address, in.Type,
	).Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Document, &c.Address, &c.Type, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}

func (s *clientService) Update(ctx context.Context, tenantID, id int, in ClientInput) (*Client, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, Validationf("nome é obrigatório")
	}

	c := &Client{}
	err := s.pool.QueryRow(ctx, `
		UPDATE clients
		SET name = $1, email = $2, phone = $3, document = $4, address = $5, type = $6
		WHERE id = $7 AND tenant_id = $8
		RETURNING `+clientColumns,
		in.Name, in.Email, in.Phone, in.Document, in.Address, in.Type, id, tenantID,
	).Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Document, &c.Address, &c.Type, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("cliente %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return c, nil
}

func (s *clientService) Delete(ctx context.Context, tenantID, id int) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM clients WHERE id = $1 AND tenant_id = $2", id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cliente %d: %w", id, ErrNotFound)
	}
	return nil
}
