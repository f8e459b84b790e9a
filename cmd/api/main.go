package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pitchbot/feedback-relay/internal/config"
	"github.com/pitchbot/feedback-relay/internal/handler"
	"github.com/pitchbot/feedback-relay/internal/handler/exchange"
	"github.com/pitchbot/feedback-relay/internal/service/completion"
	"github.com/pitchbot/feedback-relay/internal/service/orchestrator"
	"github.com/pitchbot/feedback-relay/internal/service/reconcile"
	"github.com/pitchbot/feedback-relay/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	systemPrompt, err := cfg.Prompt.SystemPrompt()
	if err != nil {
		log.Fatalf("failed to load system prompt: %v", err)
	}

	var recordStore store.Store
	if cfg.Store.Enabled() {
		recordStore = store.NewAirtable(cfg.Store.APIKey, cfg.Store.BaseID, cfg.Store.TableName)
		log.Println("record store initialized successfully")
	} else {
		recordStore = store.Disabled{}
		log.Println("record store credentials not configured, transcripts will not be persisted")
	}

	gateway := completion.New(completion.Config{
		APIKey:      cfg.Completion.APIKey,
		BaseURL:     cfg.Completion.BaseURL,
		Model:       cfg.Completion.Model,
		Temperature: cfg.Completion.Temperature,
	})

	reconciler := reconcile.New(recordStore)
	svc := orchestrator.New(reconciler, gateway, recordStore, systemPrompt, cfg.Completion.EndSentinel)

	router := handler.NewRouter(exchange.New(svc))

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Feedback bot relay listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
