package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"schoolgle/internal/config"
	"schoolgle/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.SupabaseDBURL == "" {
		log.Fatal("SUPABASE_DB_URL environment variable is required")
	}
	if cfg.Environment == "prod" && os.Getenv("I_KNOW_THIS_IS_PROD") != "yes" {
		log.Fatal("refusing to drop production tables (set I_KNOW_THIS_IS_PROD=yes to override)")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = conn.Close(ctx) }() // Error ignored: script exiting

	tables := postgres.NewTableNames(cfg.DBSchema)
	for _, table := range tables.DropOrder() {
		if _, err := conn.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			log.Fatalf("Failed to drop %s: %v", table, err)
		}
	}

	fmt.Printf("All tables dropped successfully (schema: %s)\n", cfg.DBSchema)
}
