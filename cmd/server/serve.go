package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"triage-chatbot/internal/config"
	"triage-chatbot/internal/core"
	"triage-chatbot/internal/db"
	httpserver "triage-chatbot/internal/http"
	"triage-chatbot/internal/llm"
	"triage-chatbot/internal/lock"
	"triage-chatbot/internal/logging"
	"triage-chatbot/pkg"

	_ "github.com/lib/pq"
)

// specialistStore is implemented by every db backend so config seeds can
// be applied regardless of which one is selected.
type specialistStore interface {
	core.Store
	UpsertSpecialist(ctx context.Context, s *pkg.Specialist) error
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	store, dbConn, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		closers = append(closers, c)
	}
	if dbConn != nil {
		closers = append(closers, dbConn)
	}
	for _, seed := range cfg.Specialists {
		sp := &pkg.Specialist{ID: seed.ID, Name: seed.Name, Specialty: seed.Specialty, Available: seed.Available}
		if err := store.UpsertSpecialist(ctx, sp); err != nil {
			return fmt.Errorf("seed specialist %s: %w", seed.ID, err)
		}
	}

	chatLLM, err := newLLM(ctx, cfg.LLM, cfg.LLM.Model)
	if err != nil {
		return err
	}
	summaryLLM := chatLLM
	if cfg.LLM.SummaryModel != "" && cfg.LLM.SummaryModel != cfg.LLM.Model {
		if summaryLLM, err = newLLM(ctx, cfg.LLM, cfg.LLM.SummaryModel); err != nil {
			return err
		}
	}

	locker, err := newLocker(ctx, cfg.Lock)
	if err != nil {
		return err
	}
	if c, ok := locker.(io.Closer); ok {
		closers = append(closers, c)
	}

	triage := core.NewTriageService(store)
	triage.Log = log.Named("triage")

	compactor := core.NewCompactor(store, summaryLLM)
	compactor.Threshold = cfg.Compaction.Threshold
	compactor.Keep = cfg.Compaction.Keep
	compactor.Timeout = cfg.Compaction.Timeout
	compactor.Locker = locker
	compactor.Log = log.Named("compactor")

	intent := core.NewIntentClassifier(&core.LLMIntentFallback{LLM: chatLLM}, log.Named("intent"))
	chat := core.NewChatService(store, chatLLM, intent, triage)
	chat.Compactor = compactor
	chat.Locker = locker
	chat.Log = log.Named("chat")
	if cfg.Notify.Channel != "" {
		chat.Notifier = db.NewNotifier(dbConn, cfg.Store.DatabaseURL, cfg.Notify.Channel, log.Named("notify"))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           httpserver.NewServer(chat, triage, log.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("store", cfg.Store.Backend))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	compactor.Wait()
	log.Info("stopped")
	return nil
}

// openStore returns the configured backend.  The *sql.DB is non-nil only
// for postgres, where it is also used for notifications.
func openStore(ctx context.Context, cfg *config.Config) (specialistStore, *sql.DB, error) {
	switch cfg.Store.Backend {
	case "postgres":
		dbConn, err := sql.Open("postgres", cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := dbConn.PingContext(pingCtx); err != nil {
			_ = dbConn.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := db.Migrate(ctx, dbConn); err != nil {
			_ = dbConn.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return db.NewRepository(dbConn), dbConn, nil
	case "firestore":
		fs, err := db.NewFirestoreStore(ctx, cfg.Store.FirestoreProject)
		if err != nil {
			return nil, nil, err
		}
		return fs, nil, nil
	default:
		return db.NewMemoryStore(), nil, nil
	}
}

func newLLM(ctx context.Context, cfg config.LLMConfig, model string) (llm.Client, error) {
	switch cfg.Provider {
	case "gemini":
		return llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:      cfg.APIKey,
			Model:       model,
			Temperature: cfg.Temperature,
		})
	default:
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:      cfg.APIKey,
			Model:       model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}), nil
	}
}

func newLocker(ctx context.Context, cfg config.LockConfig) (core.Locker, error) {
	switch cfg.Backend {
	case "local":
		return lock.NewLocal(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		l := lock.NewRedis(client)
		if cfg.TTL > 0 {
			l.TTL = cfg.TTL
		}
		return l, nil
	default:
		return nil, nil
	}
}
