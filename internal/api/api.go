// Package api provides the HTTP server and main wiring for zulubot.
//
// It exposes the provider webhook and health endpoints and wires the
// catalog, oracle, conversation store and delivery backend together.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zulu-club/zulubot/internal/catalog"
	"github.com/zulu-club/zulubot/internal/flow"
	"github.com/zulu-club/zulubot/internal/genai"
	"github.com/zulu-club/zulubot/internal/messaging"
	"github.com/zulu-club/zulubot/internal/store"
)

// Default configuration constants
const (
	// DefaultAddr is the default listen address for the API server.
	DefaultAddr = ":8080"
	// DefaultShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	DefaultShutdownTimeout = 10 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr          string
	CatalogPath   string
	KnowledgePath string
	GreetOnEmpty  bool
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithCatalogPath sets the catalog CSV path.
func WithCatalogPath(path string) Option {
	return func(o *Opts) { o.CatalogPath = path }
}

// WithKnowledgePath sets the path of the brand knowledge text file.
func WithKnowledgePath(path string) Option {
	return func(o *Opts) { o.KnowledgePath = path }
}

// WithGreetOnEmpty makes empty inbound messages trigger the canned greeting
// instead of a no-op.
func WithGreetOnEmpty() Option {
	return func(o *Opts) { o.GreetOnEmpty = true }
}

// Server handles webhook requests for one configured bot.
type Server struct {
	addr         string
	bot          *flow.Bot
	msgService   messaging.Service
	st           store.Store
	greetOnEmpty bool
}

// NewServer creates a Server around constructed collaborators. Used directly
// by tests; Run performs the production wiring.
func NewServer(bot *flow.Bot, msgService messaging.Service, st store.Store, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		addr:         cfg.Addr,
		bot:          bot,
		msgService:   msgService,
		st:           st,
		greetOnEmpty: cfg.GreetOnEmpty,
	}
}

// Handler returns the server's routing handler with recovery applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", s.pingHandler)
	mux.HandleFunc("/gallabox_webhook", s.webhookHandler)
	mux.HandleFunc("/", s.notFoundHandler)
	return recoveryMiddleware(mux)
}

// Run wires the modules from their option sets and serves until SIGINT or
// SIGTERM. Missing oracle credentials degrade to canned replies; a missing
// catalog degrades to free-text replies. Neither fails startup.
func Run(msgService messaging.Service, storeOpts []store.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range apiOpts {
		opt(&cfg)
	}

	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize conversation store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Server.Run: failed to close store", "error", err)
		}
	}()

	var oracle genai.ClientInterface
	if client, err := genai.NewClient(genaiOpts...); err != nil {
		slog.Warn("Server.Run: GenAI client unavailable, replies degrade to canned responses", "error", err)
	} else {
		oracle = client
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	composerOpts := []flow.ComposerOption{}
	if cfg.KnowledgePath != "" {
		if knowledge, err := os.ReadFile(cfg.KnowledgePath); err != nil {
			slog.Warn("Server.Run: failed to read knowledge file, using built-in description", "error", err, "path", cfg.KnowledgePath)
		} else {
			composerOpts = append(composerOpts, flow.WithKnowledge(string(knowledge)))
		}
	}

	bot := flow.NewBot(cat, flow.NewClassifier(oracle), flow.NewComposer(oracle, composerOpts...), st, msgService)
	server := NewServer(bot, msgService, st, apiOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := msgService.Start(ctx); err != nil {
		return fmt.Errorf("failed to start messaging service: %w", err)
	}
	defer func() {
		if err := msgService.Stop(); err != nil {
			slog.Error("Server.Run: failed to stop messaging service", "error", err)
		}
	}()

	httpServer := &http.Server{Addr: server.addr, Handler: server.Handler()}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server.Run: zulubot API running", "addr", server.addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
		slog.Info("Server.Run: shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	slog.Info("Server.Run: shutdown complete")
	return nil
}

// buildStore selects a conversation store from the options: no DSN means
// in-memory, otherwise the DSN shape picks SQLite or PostgreSQL.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Debug("Server.buildStore: no DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		slog.Debug("Server.buildStore: detected PostgreSQL DSN")
		return store.NewPostgresStore(storeOpts...)
	}
	slog.Debug("Server.buildStore: detected SQLite DSN", "db_path", cfg.DSN)
	return store.NewSQLiteStore(storeOpts...)
}
