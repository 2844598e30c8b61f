// setup-db applies the schema and seeds the platform tenant, the default
// plans, and the initial super-admin account. Safe to run repeatedly.
//
// Usage: go run ./cmd/setup-db
package main

import (
	"context"
	"log"
	"os"

	"financesaas/internal/auth"
	"financesaas/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	schema, err := os.ReadFile("migrations/schema.sql")
	if err != nil {
		log.Fatalf("Failed to read schema: %v", err)
	}

	log.Println("Applying schema...")
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	log.Println("Seeding platform tenant...")
	_, err = pool.Exec(ctx, `
		INSERT INTO tenants (id, name, slug, plan_tier)
		VALUES (1, 'Plataforma', 'plataforma', 'enterprise')
		ON CONFLICT (id) DO NOTHING;
		SELECT setval('tenants_id_seq', GREATEST((SELECT MAX(id) FROM tenants), 1));
	`)
	if err != nil {
		log.Fatalf("Failed to seed platform tenant: %v", err)
	}

	log.Println("Seeding default plans...")
	_, err = pool.Exec(ctx, `
		INSERT INTO plans (name, max_users, ai_usage_limit, price, active)
		VALUES
		  ('basic',      5,  100,  49.90, true),
		  ('pro',        15, 500,  99.90, true),
		  ('enterprise', 50, 2000, 249.90, true)
		ON CONFLICT (name) DO NOTHING;
	`)
	if err != nil {
		log.Fatalf("Failed to seed plans: %v", err)
	}

	email := os.Getenv("SUPER_ADMIN_EMAIL")
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if email != "" && password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Fatalf("Failed to hash super-admin password: %v", err)
		}

		log.Println("Seeding super-admin account...")
		_, err = pool.Exec(ctx, `
			INSERT INTO users (tenant_id, name, email, password_hash, role, is_super_admin)
			VALUES (1, 'Super Admin', $1, $2, 'admin', true)
			ON CONFLICT (email) DO NOTHING;
		`, email, hash)
		if err != nil {
			log.Fatalf("Failed to seed super admin: %v", err)
		}
	} else {
		log.Println("SUPER_ADMIN_EMAIL/SUPER_ADMIN_PASSWORD not set, skipping super-admin seed")
	}

	log.Println("Database ready.")
}
