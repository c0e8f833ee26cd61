// Command draftstudio runs the document conversion and AI-assisted
// drafting service.
package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexamplify/draftstudio/api"
	"github.com/lexamplify/draftstudio/auth"
	"github.com/lexamplify/draftstudio/docparse"
	"github.com/lexamplify/draftstudio/flow"
	"github.com/lexamplify/draftstudio/llm"
	"github.com/lexamplify/draftstudio/store"
)

func main() {
	configPath := flag.String("config", "", "path to draftstudio.yaml config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("draftstudio: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *Config) error {
	secretInput := os.Getenv("SESSION_SECRET")
	if secretInput == "" {
		return errors.New("SESSION_SECRET is required")
	}
	// Derive a 32-byte JWT secret via SHA-256 so any passphrase
	// satisfies auth.MinSecretLen.
	secretHash := sha256.Sum256([]byte(secretInput))
	jwtSecret := secretHash[:]

	apiKey := os.Getenv("MODEL_API_KEY")
	if apiKey == "" {
		return errors.New("MODEL_API_KEY is required")
	}

	db, err := store.Open(cfg.DBPath, store.WithMkdirAll())
	if err != nil {
		return err
	}
	defer db.Close()

	st, err := store.New(db)
	if err != nil {
		return err
	}
	if err := st.Seed(ctx); err != nil {
		return err
	}
	if err := seedAdmin(ctx, st); err != nil {
		return err
	}

	client := llm.New(llm.Config{
		APIKey:      apiKey,
		BaseURL:     cfg.Model.BaseURL,
		Model:       cfg.Model.Name,
		HTTPTimeout: cfg.Model.Timeout,
	})

	flows := flow.New(client, flow.Config{
		MaxDocumentChars: cfg.Flows.MaxDocumentChars,
		Logger:           logger,
	})

	srv := api.New(api.Config{
		Flows:     flows,
		Store:     st,
		Parser:    docparse.New(docparse.Config{Logger: logger}),
		JWTSecret: jwtSecret,
		MaxBody:   cfg.MaxBody,
		Logger:    logger,
	})
	srv.StartGC(ctx.Done())

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("draftstudio listening", "port", cfg.Port, "model", cfg.Model.Name)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// seedAdmin creates the initial account from ADMIN_EMAIL and
// ADMIN_PASSWORD when it does not exist yet. Without one the login
// endpoint has nothing to authenticate against on a fresh database.
func seedAdmin(ctx context.Context, st *store.Store) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	_, err := st.UserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := st.CreateUser(ctx, email, "Administrator", hash); err != nil {
		return err
	}
	slog.Info("seeded admin user", "email", email)
	return nil
}
