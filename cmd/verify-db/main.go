// verify-db checks that the database is reachable and that every table the
// server depends on exists, printing row counts per tenant-scoped table.
//
// Usage: go run ./cmd/verify-db
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

var requiredTables = []string{
	"plans", "tenants", "users", "categories", "clients", "products",
	"transactions", "recurring_transactions", "service_orders",
	"notifications", "audit_logs",
}

func main() {
	_ = godotenv.Load()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		log.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool := connectDB(ctx, url)
	defer pool.Close()

	for _, table := range requiredTables {
		verifyTable(ctx, pool, table)
	}

	log.Println("[DONE] schema verified.")
}

func connectDB(ctx context.Context, url string) *pgxpool.Pool {
	connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		log.Fatalf("[CONNECT] failed to create pool: %v", err)
	}

	if err := pool.Ping(connCtx); err != nil {
		log.Fatalf("[CONNECT] failed to ping database: %v", err)
	}

	log.Println("[CONNECT] success")
	return pool
}

func verifyTable(ctx context.Context, pool *pgxpool.Pool, table string) {
	var exists bool
	err := pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)",
		table,
	).Scan(&exists)
	if err != nil {
		log.Fatalf("[ERROR] failed to check table %s: %v", table, err)
	}
	if !exists {
		log.Fatalf("[MISSING] table %s does not exist; run cmd/setup-db", table)
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		log.Fatalf("[ERROR] failed to count %s: %v", table, err)
	}
	log.Printf("[OK] %-22s %d rows", table, count)
}
