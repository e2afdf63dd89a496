package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"redspec/internal/config"
	"redspec/internal/domain"
	prdSvc "redspec/internal/domain/services/prd"
	"redspec/internal/repository/memory"
	"redspec/internal/repository/postgres"
	postgresPRD "redspec/internal/repository/postgres/prd"
	"redspec/internal/service/generation"
	servicePRD "redspec/internal/service/prd"
	"redspec/internal/templates"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed PRDs")
	clearData := flag.Bool("clear-data", false, "Delete all PRDs and conversations (keep schema)")
	exchanges := flag.Int("exchanges", 3, "Conversation exchanges to run per seeded PRD")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	switch {
	case *clearData:
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, postgres.DefaultPoolConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		log.Println("🧹 Clearing existing PRDs and conversations...")
		if err := postgres.ClearData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgresPRD.NewDocumentRepository(repoConfig)
	turnRepo := postgresPRD.NewTurnRepository(repoConfig)

	registry, err := templates.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize template registry: %v", err)
	}

	// Seed conversations always come from the offline generator
	sessions := memory.NewSessionStore()
	locks := servicePRD.NewDocumentLocks()
	docService := servicePRD.NewDocumentService(docRepo, sessions, registry, servicePRD.NewContentAnalyzer(), locks, logger)
	chatService := servicePRD.NewConversationService(servicePRD.ConversationDeps{
		Documents: docRepo,
		Turns:     turnRepo,
		Sessions:  sessions,
		TxManager: postgres.NewTransactionManager(pool, logger),
		Generator: generation.WithTimeout(generation.NewLoremGenerator(0), cfg.GenerationTimeout),
		Registry:  registry,
		Logger:    logger,
		Locks:     locks,
	})

	log.Println("📝 Seeding one PRD per template...")
	for i, tmpl := range registry.List() {
		doc, err := docService.CreateDocument(ctx, &prdSvc.CreateDocumentRequest{Template: tmpl.ID})
		if err != nil {
			log.Printf("❌ Failed to create %s PRD: %v", tmpl.ID, err)
			continue
		}

		for n, msg := range seedMessages(*exchanges) {
			_, err := chatService.SendMessage(ctx, doc.ID, &prdSvc.SendMessageRequest{Message: msg})
			var persistErr *domain.PersistenceError
			if errors.As(err, &persistErr) {
				log.Fatalf("Failed to save exchange %d for %s: %v", n+1, doc.ID, err)
			}
			if err != nil {
				log.Printf("❌ Exchange %d for %s failed: %v", n+1, doc.ID, err)
				break
			}
		}

		seeded, err := docService.GetDocument(ctx, doc.ID)
		if err != nil {
			log.Fatalf("Failed to reload %s: %v", doc.ID, err)
		}
		log.Printf("✅ Created PRD %d: %s (ID: %s, template: %s, sections: %d)",
			i+1, seeded.Title, seeded.ID, seeded.Template, seeded.Sections.Len())
	}

	log.Println("🎉 Seeding complete!")
}

var openingMessages = []string{
	"I want to let shoppers save their cart and finish checkout on another device.",
	"Mostly returning customers on mobile.",
	"Success means fewer abandoned carts within a quarter.",
	"Keep it to the web app for now.",
	"No new payment providers.",
}

func seedMessages(n int) []string {
	msgs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, openingMessages[i%len(openingMessages)])
	}
	return msgs
}
