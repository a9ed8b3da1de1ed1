// Package server exposes the ApplyPilot daemon's localhost HTTP/SSE API.
// A desktop UI talks to this surface the way it would talk to an embedded
// backend: start tailoring operations, watch their progress over SSE, cancel
// them by ID, and manage settings, the master resume, and generation history.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwilhelm/applypilot/internal/cli"
	"github.com/mwilhelm/applypilot/internal/config"
	"github.com/mwilhelm/applypilot/internal/db"
	"github.com/mwilhelm/applypilot/internal/ingestion"
	"github.com/mwilhelm/applypilot/internal/llm"
	"github.com/mwilhelm/applypilot/internal/sanitize"
	"github.com/mwilhelm/applypilot/internal/server/middleware"
	"github.com/mwilhelm/applypilot/internal/server/ratelimit"
	"github.com/mwilhelm/applypilot/internal/tailoring"
)

// Config holds server configuration.
type Config struct {
	ListenAddr     string
	DatabaseURL    string
	UnlockHash     string
	Provider       *llm.Config
	MaxRetries     int
	AttemptTimeout time.Duration
	KeepMarkdown   bool
	SettingsPath   string
	UseBrowser     bool
	Verbose        bool
}

// Server is the HTTP daemon.
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	provider    llm.Provider
	detector    *cli.Detector
	orch        *tailoring.Orchestrator
	settings    *config.SettingsStore
	ingestor    *ingestion.Ingestor
	hub         *Hub
	snapshots   *snapshotStore
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	unlockCfg   *config.UnlockConfig
	unlockHash  string
	toolName    string
}

// New creates a server instance: database, provider, orchestrator, and the
// route table. The caller still has to Start it.
func New(ctx context.Context, cfg Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}

	invoker := cli.NewProcessInvoker()
	detector := cli.NewDetector(invoker)

	provider, err := llm.New(ctx, cfg.Provider, invoker, detector)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	settings, err := config.NewSettingsStore(cfg.SettingsPath)
	if err != nil {
		database.Close()
		return nil, err
	}

	s := &Server{
		db:         database,
		provider:   provider,
		detector:   detector,
		settings:   settings,
		hub:        NewHub(),
		snapshots:  newSnapshotStore(),
		unlockHash: cfg.UnlockHash,
	}
	if cfg.Provider != nil {
		s.toolName = cfg.Provider.Tool
	}

	s.orch = tailoring.New(provider, tailoring.Options{
		MaxRetries:     cfg.MaxRetries,
		AttemptTimeout: cfg.AttemptTimeout,
		BaseOptions:    settings.PromptDefaults,
		Sanitize:       sanitize.Options{StripMarkdown: !cfg.KeepMarkdown},
		Sinks:          []tailoring.ProgressSink{s.hub, s.snapshots},
	})

	s.ingestor = ingestion.New(database, ingestion.Options{
		UseBrowser: cfg.UseBrowser,
		Verbose:    cfg.Verbose,
	})

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	unlockCfg, err := config.NewUnlockConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create unlock config: %w", err)
	}
	s.unlockCfg = unlockCfg

	sessionCfg, err := config.NewSessionConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create session config: %w", err)
	}
	s.jwtService = NewJWTService(sessionCfg)

	addr := cfg.ListenAddr
	if addr == "" {
		addr = "127.0.0.1:8489"
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // operations and SSE streams outlive any sane write deadline
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the route table. The /api/ subtree goes through the Bearer
// middleware whenever an unlock passphrase hash is configured; without one
// the daemon runs in local-trust mode and serves the API directly.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/unlock", s.handleUnlock)

	api := http.NewServeMux()
	api.HandleFunc("POST /api/operations/refine", s.handleRefine)
	api.HandleFunc("POST /api/operations/cover-letter", s.handleCoverLetter)
	api.HandleFunc("POST /api/operations/{id}/cancel", s.handleCancelOperation)
	api.HandleFunc("GET /api/operations/{id}", s.handleGetOperation)
	api.HandleFunc("GET /api/events", s.handleEvents)

	api.HandleFunc("GET /api/provider/status", s.handleProviderStatus)
	api.HandleFunc("POST /api/provider/refresh", s.handleProviderRefresh)

	api.HandleFunc("GET /api/settings", s.handleGetSettings)
	api.HandleFunc("PUT /api/settings", s.handlePutSettings)

	api.HandleFunc("GET /api/resume", s.handleGetResume)
	api.HandleFunc("PUT /api/resume", s.handlePutResume)

	api.HandleFunc("GET /api/history", s.handleListHistory)
	api.HandleFunc("GET /api/history/{id}", s.handleGetHistory)

	api.HandleFunc("POST /api/ingest/job", s.handleIngestJob)

	if s.unlockHash != "" {
		mux.Handle("/api/", middleware.Auth(s.jwtService.AsTokenValidator())(api))
	} else {
		mux.Handle("/api/", api)
	}
	return mux
}

// Start begins listening and blocks until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("ApplyPilot daemon listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down daemon...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.hub.Close()
	if err := s.provider.Close(); err != nil {
		log.Printf("Error closing provider: %v", err)
	}
	s.db.Close()
	log.Println("Daemon stopped")
	return nil
}

// withCORS allows the local UI origin. The daemon binds to loopback, so the
// permissive origin is scoped by the bind address, not by this header.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit applies the token-bucket limiter per client IP.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns liveness; it bypasses auth and rate limits.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID identifies a client for rate limiting by IP address.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
