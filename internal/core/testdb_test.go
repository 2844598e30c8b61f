package core_test

import (
	"context"
	"os"
	"testing"

	"financesaas/internal/auth"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// setupTestDB connects to the dedicated test database, wipes all tenant data,
// and seeds two tenants so isolation can be asserted between them.
// Set TEST_DATABASE_URL to run the integration tests.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE audit_logs, notifications, service_orders, recurring_transactions,
			transactions, products, clients, categories, users, tenants, plans
			RESTART IDENTITY CASCADE;

		INSERT INTO tenants (name, slug) VALUES
			('Empresa Alpha', 'alpha'),
			('Empresa Beta', 'beta');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

// seedUser inserts a user with the password "secret123" and returns its id.
func seedUser(t *testing.T, pool *pgxpool.Pool, tenantID int, email string) int {
	t.Helper()

	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	var id int
	err = pool.QueryRow(context.Background(), `
		INSERT INTO users (tenant_id, name, email, password_hash, role)
		VALUES ($1, 'Test User', $2, $3, 'admin')
		RETURNING id`,
		tenantID, email, hash,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return id
}
