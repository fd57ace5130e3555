package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"schoolgle/internal/auth"
	"schoolgle/internal/config"
	models "schoolgle/internal/domain/models/governance"
	govSvc "schoolgle/internal/domain/services/governance"
	"schoolgle/internal/repository/postgres"
	pgGov "schoolgle/internal/repository/postgres/governance"
	"schoolgle/internal/service/audit"
	serviceAuth "schoolgle/internal/service/auth"
	"schoolgle/internal/service/events"
	"schoolgle/internal/service/governance"
	"schoolgle/internal/templates"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Stable IDs so repeated seeding targets the same tenant
const (
	defaultOrganizationID = "5d1c2b7a-0e4f-4a4b-9c1d-7f3e2a6b8c01"
	defaultUserID         = "9a7e4c12-3b5d-4f6a-8e2c-1d0b9f8a7e02"
	seedRole              = "clerk"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only run migrations, don't seed packs")
	clearData := flag.Bool("clear-data", false, "Clear packs and history for the seed organization (keep schema)")
	orgID := flag.String("org", getEnv("SEED_ORGANIZATION_ID", defaultOrganizationID), "Organization to seed")
	userID := flag.String("user", getEnv("SEED_USER_ID", defaultUserID), "Member user ID")
	userEmail := flag.String("create-user", "", "Find or create a Supabase Auth user with this email and use its ID")
	userPassword := flag.String("password", "governor-pack-dev", "Password for --create-user")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: cannot run destructive operations (--drop-tables or --clear-data) in production")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("Seeding database (environment: %s, schema: %s)", cfg.Environment, cfg.DBSchema)

	ctx := context.Background()
	pool, err := postgres.ConnectWithRetry(ctx, cfg.SupabaseDBURL, 30*time.Second, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.DBSchema)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	log.Println("Running migrations...")
	if err := postgres.RunMigrations(ctx, cfg.SupabaseDBURL, cfg.DBSchema, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		if err := clearOrganizationData(ctx, pool, tables, *orgID); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Printf("Cleared data for organization %s", *orgID)
		return
	}

	if *userEmail != "" {
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			log.Fatalf("--create-user needs SUPABASE_URL and SUPABASE_KEY")
		}
		admin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)
		id, created, err := admin.EnsureUser(ctx, auth.SeedAccount{
			Email:          *userEmail,
			Password:       *userPassword,
			OrganizationID: *orgID,
			Role:           seedRole,
		})
		if err != nil {
			log.Fatalf("Failed to ensure auth user: %v", err)
		}
		*userID = id
		if created {
			log.Printf("Created auth user %s (%s)", *userEmail, id)
		} else {
			log.Printf("Reusing auth user %s (%s), password reset", *userEmail, id)
		}
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	membershipRepo := pgGov.NewMembershipRepository(repoConfig)
	if err := membershipRepo.Upsert(ctx, &models.Member{
		OrganizationID: *orgID,
		UserID:         *userID,
		Role:           seedRole,
		CreatedAt:      time.Now(),
	}); err != nil {
		log.Fatalf("Failed to add membership: %v", err)
	}

	registry, err := templates.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	// Seed through the services so versions and timeline entries look real
	timelineRepo := pgGov.NewTimelineRepository(repoConfig)
	bus := events.NewBus(logger)
	bus.Subscribe("timeline", audit.NewTimelineWriter(timelineRepo, logger).HandleEvent)

	deps := governance.Dependencies{
		Packs:      pgGov.NewPackRepository(repoConfig),
		Versions:   pgGov.NewVersionRepository(repoConfig),
		Approvals:  pgGov.NewApprovalRepository(repoConfig),
		Exports:    pgGov.NewExportRepository(repoConfig),
		Timeline:   timelineRepo,
		TxManager:  postgres.NewTransactionManager(pool, logger),
		Publisher:  bus,
		Authorizer: serviceAuth.NewMembershipAuthorizer(membershipRepo),
		Templates:  registry,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	packs := governance.NewPackService(deps)
	lifecycle := governance.NewLifecycleService(deps, governance.LifecycleOptions{AllowReapproval: cfg.AllowReapproval})

	for _, seed := range seedPacks() {
		pack, err := packs.CreatePack(ctx, &govSvc.CreatePackRequest{
			OrganizationID: *orgID,
			UserID:         *userID,
			TemplateID:     seed.templateID,
			Title:          seed.title,
			Sections:       seed.sections,
		})
		if err != nil {
			log.Printf("Failed to create pack %q: %v", seed.title, err)
			continue
		}

		if seed.submit {
			result, err := lifecycle.Submit(ctx, &govSvc.TransitionRequest{
				PackID:         pack.ID,
				OrganizationID: *orgID,
				UserID:         *userID,
			})
			if err != nil {
				log.Printf("Failed to submit pack %q: %v", seed.title, err)
				continue
			}
			log.Printf("Created pack %q (ID: %s, submitted as v%d)", seed.title, pack.ID, result.Version)
			continue
		}
		log.Printf("Created pack %q (ID: %s, draft)", seed.title, pack.ID)
	}

	log.Println("Seeding complete!")
}

type seedPack struct {
	templateID string
	title      string
	sections   []models.Section
	submit     bool
}

func seedPacks() []seedPack {
	return []seedPack{
		{
			templateID: "governor-termly-report",
			title:      "Autumn Governor Pack",
			submit:     true,
			sections: []models.Section{
				{
					ID:          "executive-summary",
					Title:       "Executive summary",
					Content:     "Attendance is up 1.2% on last autumn. Two new governors joined the board.",
					EvidenceIDs: []string{uuid.NewString()},
				},
				{
					ID:          "quality-of-education",
					Title:       "Quality of education",
					Content:     "Curriculum reviews completed for maths and science.",
					EvidenceIDs: []string{},
				},
			},
		},
		{
			templateID: "safeguarding-annual-review",
			title:      "Safeguarding Annual Review 2025/26",
		},
	}
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	for _, table := range tables.DropOrder() {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  Dropped %s", table)
	}
	return nil
}

// clearOrganizationData removes an organization's packs and their history
func clearOrganizationData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, orgID string) error {
	for _, table := range []string{
		tables.TimelineEntries,
		tables.PackExports,
		tables.PackApprovals,
		tables.PackVersions,
		tables.Packs,
	} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table+" WHERE organization_id = $1", orgID); err != nil {
			return err
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
