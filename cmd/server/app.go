package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/mnemo-api/internal/config"
	"github.com/phrazzld/mnemo-api/internal/domain/srs"
	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/phrazzld/mnemo-api/internal/platform/database"
	"github.com/phrazzld/mnemo-api/internal/platform/gemini"
	"github.com/phrazzld/mnemo-api/internal/platform/postgres"
	"github.com/phrazzld/mnemo-api/internal/platform/sqlite"
	"github.com/phrazzld/mnemo-api/internal/platform/telemetry"
	"github.com/phrazzld/mnemo-api/internal/service"
	"github.com/phrazzld/mnemo-api/internal/service/auth"
	"github.com/phrazzld/mnemo-api/internal/service/review"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// application holds the shared dependencies of the server.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	db        *sql.DB
	telemetry *telemetry.Provider

	userStore     store.UserStore
	storyStore    store.StoryStore
	playlistStore store.PlaylistStore

	jwtService      auth.JWTService
	userService     service.UserService
	storyService    service.StoryService
	playlistService service.PlaylistService
	reviewService   review.Service

	// generator is nil when no Gemini API key is configured.
	generator generation.Generator
}

// newApplication wires stores and services for the configured database
// driver.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	tel *telemetry.Provider,
) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    logger,
		db:        db,
		telemetry: tel,
	}

	switch cfg.Database.Driver {
	case database.DriverSQLite:
		app.userStore = sqlite.NewSQLiteUserStore(db, logger)
		app.storyStore = sqlite.NewSQLiteStoryStore(db, logger)
		app.playlistStore = sqlite.NewSQLitePlaylistStore(db, logger)
	case database.DriverPostgres:
		app.userStore = postgres.NewPostgresUserStore(db, logger)
		app.storyStore = postgres.NewPostgresStoryStore(db, logger)
		app.playlistStore = postgres.NewPostgresPlaylistStore(db, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	if app.userService, err = service.NewUserService(app.userStore, db, hasher, logger); err != nil {
		return nil, fmt.Errorf("failed to initialize user service: %w", err)
	}
	if app.storyService, err = service.NewStoryService(app.storyStore, db, logger); err != nil {
		return nil, fmt.Errorf("failed to initialize story service: %w", err)
	}
	if app.playlistService, err = service.NewPlaylistService(app.playlistStore, app.storyStore, db, logger); err != nil {
		return nil, fmt.Errorf("failed to initialize playlist service: %w", err)
	}

	app.reviewService, err = review.NewService(app.storyStore, db, srs.NewDefaultService(),
		tel.TracerProvider, tel.MeterProvider, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize review service: %w", err)
	}

	if cfg.LLM.GeminiAPIKey == "" {
		logger.Warn("no Gemini API key configured, generation endpoints disabled")
	} else {
		gen, err := gemini.NewGenerator(ctx, cfg.LLM, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
		}
		app.generator = gen
		logger.Info("LLM generator initialized", slog.String("model", cfg.LLM.ModelName))
	}

	return app, nil
}
