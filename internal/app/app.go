// Package app wires the configured adapters into the URL shortener and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/lzy/docs"
	"github.com/vadimbarashkov/lzy/internal/adapter/limiter"
	"github.com/vadimbarashkov/lzy/internal/adapter/repository/postgres"
	"github.com/vadimbarashkov/lzy/internal/config"
	"github.com/vadimbarashkov/lzy/internal/usecase"
	"github.com/vadimbarashkov/lzy/migrations"
	"github.com/vadimbarashkov/lzy/pkg/hashid"
	"github.com/vadimbarashkov/lzy/pkg/receipt"
	"github.com/vadimbarashkov/lzy/pkg/render"
	"github.com/vadimbarashkov/lzy/web"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/lzy/internal/adapter/delivery/http"
	pgutil "github.com/vadimbarashkov/lzy/pkg/postgres"
)

const shutdownTimeout = 10 * time.Second

type attemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// NewLogger returns the request logger, JSON in prod and concise text elsewhere.
func NewLogger(cfg *config.Config) *httplog.Logger {
	opts := httplog.Options{
		LogLevel:        slog.LevelDebug,
		Concise:         true,
		Tags:            map[string]string{"env": cfg.Env},
		QuietDownRoutes: []string{"/api/v1/ping"},
		QuietDownPeriod: 10 * time.Second,
	}

	if cfg.Env == config.EnvProd {
		opts.LogLevel = slog.LevelInfo
		opts.JSON = true
		opts.Concise = false
	}

	return httplog.NewLogger("lzy", opts)
}

// Migrate applies the embedded migrations.
func Migrate(cfg *config.Config) error {
	const op = "app.Migrate"

	if err := pgutil.RunMigrations(migrations.FS, ".", cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Connect opens the configured PostgreSQL pool.
func Connect(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	const op = "app.Connect"

	db, err := pgutil.New(
		ctx,
		cfg.Postgres.DSN(),
		pgutil.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		pgutil.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		pgutil.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		pgutil.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	return db, nil
}

// Run serves the shortener until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	db, err := Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer db.Close()

	if err := Migrate(cfg); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	encoder, err := hashid.New(
		hashid.WithSalt(cfg.Shortener.Salt),
		hashid.WithMinLength(cfg.Shortener.MinLength),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to create encoder: %w", op, err)
	}

	var attempts attemptLimiter = limiter.NopLimiter{}

	if cfg.Redis.Enabled() {
		client, err := limiter.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		defer client.Close()

		attempts = limiter.NewRedisLimiter(client, cfg.RateLimit.Attempts, cfg.RateLimit.Window)
	} else {
		logger.Warn("redis is not configured, password attempts are not limited")
	}

	pages, err := render.New(web.Templates, web.TemplatesDir)
	if err != nil {
		return fmt.Errorf("%s: failed to parse templates: %w", op, err)
	}

	helpText, err := loadHelpText(cfg.Shortener.HelpTextPath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if helpText == "" {
		logger.Warn("help text is empty", slog.String("path", cfg.Shortener.HelpTextPath))
	}

	urlRepo := postgres.NewURLRepository(db)
	domainRepo := postgres.NewForbiddenDomainRepository(db)

	urlUseCase := usecase.NewURLUseCase(
		urlRepo,
		encoder,
		usecase.NewURLValidator(domainRepo),
		attempts,
		usecase.WithPassword(cfg.Shortener.PasswordAlphabet, cfg.Shortener.PasswordLength),
	)

	router := delivery.NewRouter(
		logger,
		urlUseCase,
		receipt.NewSigner(cfg.Shortener.ReceiptSecret, cfg.Shortener.ReceiptTTL),
		pages,
		delivery.Options{
			BaseURL:     cfg.Shortener.BaseURL,
			HelpText:    helpText,
			SwaggerSpec: docs.Swagger,
			BehindProxy: cfg.HTTPServer.BehindProxy,
		},
	)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

// loadHelpText reads the index page help text. A missing file yields an empty text.
func loadHelpText(path string) (string, error) {
	const op = "app.loadHelpText"

	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("%s: failed to read help text: %w", op, err)
	}

	return string(data), nil
}
