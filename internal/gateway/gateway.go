// ABOUTME: Gateway orchestrator wiring store, handlers, router, and HTTP server
// ABOUTME: Manages component lifecycle and graceful shutdown

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/2389/desk-gateway/internal/answers"
	"github.com/2389/desk-gateway/internal/auth"
	"github.com/2389/desk-gateway/internal/bot"
	"github.com/2389/desk-gateway/internal/cache"
	"github.com/2389/desk-gateway/internal/config"
	"github.com/2389/desk-gateway/internal/connect"
	"github.com/2389/desk-gateway/internal/dedupe"
	"github.com/2389/desk-gateway/internal/router"
	"github.com/2389/desk-gateway/internal/store"
)

// dedupeMaxSize bounds the redelivery cache; beyond this the oldest
// entries are evicted regardless of age.
const dedupeMaxSize = 10000

// Gateway orchestrates the desk-gateway server components: the envelope
// ingress, the two conversation handlers, and the admin API.
type Gateway struct {
	cfg        *config.Config
	store      store.Store
	router     *router.Router
	dedupe     *dedupe.Cache
	settings   *cache.Cache
	verifier   auth.TokenVerifier
	httpServer *http.Server
	logger     *slog.Logger
}

// initStore creates a store based on config and environment.
func initStore(cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("DESK_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// New creates a Gateway with all components wired from config.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	settingsCache := cache.New(cfg.Cache.SettingsTTL)
	settings := bot.NewSettings(s, settingsCache)

	connector := connect.NewClient(cfg.Connector.ServiceURL, cfg.Connector.Token, logger)
	resolver := answers.NewClient(cfg.Answers.Endpoint, cfg.Answers.Key, logger)

	handlerCfg := bot.Config{
		TenantID:          cfg.Tenant.ID,
		AppBaseURI:        cfg.Server.AppBaseURI,
		TestKnowledgeBase: cfg.Answers.TestEnvironment,
	}
	userHandler := bot.NewEndUserHandler(handlerCfg, connector, connector, resolver, s, settings, logger)
	smeHandler := bot.NewSMEHandler(handlerCfg, connector, connector, s, logger)

	g := &Gateway{
		cfg:      cfg,
		store:    s,
		router:   router.New(cfg.Apps.UserAppID, cfg.Apps.SMEAppID, userHandler, smeHandler),
		dedupe:   dedupe.New(cfg.Cache.DedupeTTL, dedupeMaxSize),
		settings: settingsCache,
		logger:   logger.With("component", "gateway"),
	}
	if cfg.Auth.JWTSecret != "" {
		g.verifier = auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	}

	g.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           g.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return g, nil
}

// routes builds the HTTP mux. The three ingress endpoints all route from
// envelope content, so either deployment shape (single endpoint or one
// per audience) behaves identically.
func (g *Gateway) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/messages", g.handleInbound)
	mux.HandleFunc("POST /api/messages/user", g.handleInbound)
	mux.HandleFunc("POST /api/messages/sme", g.handleInbound)
	mux.HandleFunc("GET /health", g.handleHealth)

	if g.verifier != nil {
		authed := auth.Middleware(g.verifier)
		mux.Handle("GET /api/tickets", authed(http.HandlerFunc(g.handleListTickets)))
		mux.Handle("GET /api/tickets/{id}", authed(http.HandlerFunc(g.handleGetTicket)))
		mux.Handle("PUT /api/settings/{key}", authed(http.HandlerFunc(g.handlePutSetting)))
	} else {
		g.logger.Warn("auth.jwt_secret not set, admin API disabled")
	}

	return mux
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server fails.
func (g *Gateway) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("http server listening", "addr", g.cfg.Server.HTTPAddr)
		if err := g.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		g.logger.Info("shutdown requested")
		return g.Shutdown()
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

// Shutdown stops the server and releases component resources.
func (g *Gateway) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if err := g.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	g.dedupe.Close()
	g.settings.Close()

	if err := g.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}
	return errors.Join(errs...)
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"status":"ok"}`)
}
