package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"redspec/internal/config"
	"redspec/internal/domain/repositories"
	prdRepo "redspec/internal/domain/repositories/prd"
	"redspec/internal/handler"
	"redspec/internal/metrics"
	"redspec/internal/middleware"
	"redspec/internal/repository/memory"
	"redspec/internal/repository/postgres"
	postgresPRD "redspec/internal/repository/postgres/prd"
	"redspec/internal/repository/redis"
	"redspec/internal/service/generation"
	servicePRD "redspec/internal/service/prd"
	"redspec/internal/templates"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"generator", cfg.Generator,
	)

	ctx := context.Background()

	// Repositories: Postgres when configured, process memory otherwise
	var (
		docRepo   prdRepo.DocumentRepository
		turnRepo  prdRepo.TurnRepository
		txManager repositories.TransactionManager
		pool      *pgxpool.Pool
	)
	if cfg.DatabaseURL != "" {
		pool, err = postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, postgres.DefaultPoolConfig)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		logger.Info("database connected",
			"max_conns", postgres.DefaultPoolConfig.MaxConns,
			"min_conns", postgres.DefaultPoolConfig.MinConns,
		)

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		}
		docRepo = postgresPRD.NewDocumentRepository(repoConfig)
		turnRepo = postgresPRD.NewTurnRepository(repoConfig)
		txManager = postgres.NewTransactionManager(pool, logger)
	} else {
		logger.Warn("DATABASE_URL not set: PRDs are kept in memory and lost on restart")
		store := memory.NewStore()
		docRepo = store.Documents()
		turnRepo = store.Turns()
		txManager = repositories.NoopTransactionManager{}
	}

	// Session cache: Redis when configured
	var sessions prdRepo.SessionStore
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		sessions = redis.NewSessionStore(client, cfg.TablePrefix, cfg.SessionTTL)
		logger.Info("redis session store connected", "ttl", cfg.SessionTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	registry, err := templates.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize template registry: %v", err)
	}

	generator, err := generation.NewGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up generator: %v", err)
	}
	logger.Info("generator ready", "generator", generator.Name(), "timeout", cfg.GenerationTimeout)

	m := metrics.New()

	locks := servicePRD.NewDocumentLocks()
	docService := servicePRD.NewDocumentService(docRepo, sessions, registry, servicePRD.NewContentAnalyzer(), locks, logger)
	chatService := servicePRD.NewConversationService(servicePRD.ConversationDeps{
		Documents: docRepo,
		Turns:     turnRepo,
		Sessions:  sessions,
		TxManager: txManager,
		Generator: generator,
		Registry:  registry,
		Metrics:   m,
		Logger:    logger,
		Locks:     locks,
	})

	mux := handler.NewRouter(handler.Handlers{
		Documents:     handler.NewDocumentHandler(docService, logger),
		Conversations: handler.NewConversationHandler(chatService, logger),
		Templates:     handler.NewTemplatesHandler(registry, logger),
		Metrics:       m,
	})

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RequestLog → Routes
	var h http.Handler = mux
	h = middleware.RequestLog(logger, m)(h)
	h = middleware.Recovery(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     h,
		ReadTimeout: 15 * time.Second,
		// one exchange may wait for the full generation timeout
		WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GenerationTimeout+5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
