package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	apidoc "github.com/daap14/catalog-api/api"
	"github.com/daap14/catalog-api/internal/api"
	"github.com/daap14/catalog-api/internal/api/response"
	"github.com/daap14/catalog-api/internal/auth"
	"github.com/daap14/catalog-api/internal/config"
	"github.com/daap14/catalog-api/internal/database"
	"github.com/daap14/catalog-api/internal/logger"
	"github.com/daap14/catalog-api/internal/store"
	"github.com/daap14/catalog-api/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	supabaseClients, err := supabase.NewFactory(supabase.Config{
		URL:        cfg.SupabaseURL,
		APIKey:     cfg.SupabaseKey,
		HTTPClient: &http.Client{Timeout: cfg.HTTPClientTimeout},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure supabase client")
	}

	stores, closeStore := initStore(cfg, supabaseClients, log)
	defer closeStore()

	verifier := auth.NewSupabaseVerifier(supabaseClients, cfg.SupabaseJWTSecret)
	authService := auth.NewService(verifier, stores.MemberSource(), log)

	errs := response.NewErrorHandler(response.ErrorHandlerOptions{
		LogErrors:         cfg.ErrorLog,
		IncludeStackTrace: cfg.ErrorStackTrace,
	}, log)

	router := api.NewRouter(api.RouterDeps{
		Stores:      stores,
		Auth:        authService,
		Errors:      errs,
		Version:     cfg.Version,
		OpenAPISpec: apidoc.OpenAPISpec,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Str("version", cfg.Version).Str("store", cfg.StoreBackend).Msg("starting catalog API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server error")
		closeStore()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		closeStore()
		os.Exit(1)
	}

	log.Info().Msg("server stopped gracefully")
}

// initStore selects the storage backend. The returned func releases any
// resources the backend holds.
func initStore(cfg *config.Config, clients supabase.Factory, log zerolog.Logger) (store.Factory, func()) {
	if cfg.StoreBackend != store.BackendPostgres {
		return store.NewPostgRESTFactory(clients), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.MigrateOnStart {
		version, err := database.Migrate(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		log.Info().Int64("version", version).Msg("migrations applied")
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	log.Info().Msg("connected to database")

	return store.NewPostgresFactory(db.Pool()), db.Close
}
