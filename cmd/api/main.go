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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/krittin/healthchat/backend/internal/agent"
	"github.com/krittin/healthchat/backend/internal/config"
	"github.com/krittin/healthchat/backend/internal/handler"
	"github.com/krittin/healthchat/backend/internal/retrieval"
	"github.com/krittin/healthchat/backend/internal/service/chat"
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

	if !cfg.AI.Enabled() {
		log.Fatal("ark credentials not configured, the assistant cannot run without a model")
	}

	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("failed to create chat model: %v", err)
	}

	intentModel, err := cfg.AI.NewIntentModel(ctx)
	if err != nil {
		log.Fatalf("failed to create intent model: %v", err)
	}

	// Wire the vector-search retriever when the backend is configured;
	// otherwise the assistant degrades to its scoped no-context behavior.
	var retriever retrieval.Retriever = retrieval.Noop{}
	if cfg.Retrieval.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Retrieval.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to knowledge database: %v", err)
		}
		defer pool.Close()

		embedder, err := cfg.Retrieval.NewEmbedder(ctx, cfg.AI)
		if err != nil {
			log.Fatalf("failed to create query embedder: %v", err)
		}

		retriever = retrieval.NewStore(pool, embedder, cfg.Retrieval.Timeout)
		log.Println("knowledge retrieval enabled")
	} else {
		log.Println("DATABASE_URL or ARK_EMBEDDING_MODEL not set, answering without knowledge retrieval")
	}

	classifier, err := agent.NewClassifier(ctx, intentModel, cfg.Agent.IntentLabels)
	if err != nil {
		log.Fatalf("failed to build intent classifier: %v", err)
	}

	generator, err := agent.NewGenerator(ctx, chatModel, retriever, cfg.Retrieval.TopK)
	if err != nil {
		log.Fatalf("failed to build response generator: %v", err)
	}

	// The tool registry ships empty; register future tools here.
	tools, err := agent.NewRegistry(ctx)
	if err != nil {
		log.Fatalf("failed to build tool registry: %v", err)
	}

	routes := agent.NewRouteTable(cfg.Agent.IntentLabels, cfg.Agent.FallbackIntent)
	engine := agent.NewEngine(classifier, generator, tools, routes, cfg.Agent.MaxToolRounds)
	sessions := chat.NewService(cfg.Session.HistoryLimit)

	router := handler.NewRouter(engine, sessions)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("healthchat backend listening on %s", addr)
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
