// Package api is the HTTP boundary of the drafting service: document
// conversion and parsing uploads, the AI flows, the template gallery
// and authentication.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lexamplify/draftstudio/auth"
	"github.com/lexamplify/draftstudio/docparse"
	"github.com/lexamplify/draftstudio/flow"
	"github.com/lexamplify/draftstudio/shield"
	"github.com/lexamplify/draftstudio/store"
)

// Config holds the server dependencies and settings.
type Config struct {
	Flows  *flow.Service
	Store  *store.Store
	Parser *docparse.Parser

	// JWTSecret signs session tokens. Must satisfy auth.MinSecretLen.
	JWTSecret []byte

	// TokenExpiry is the session token lifetime. Default: 30 days.
	TokenExpiry time.Duration

	// MaxBody caps request bodies, uploads included. Default: 32 MiB.
	MaxBody int64

	Logger *slog.Logger
}

// Server carries the wired dependencies behind the router.
type Server struct {
	flows   *flow.Service
	store   *store.Store
	parser  *docparse.Parser
	secret  []byte
	expiry  time.Duration
	maxBody int64
	logger  *slog.Logger
	limiter *shield.RateLimiter
}

// New creates a Server. The zero values of optional settings are
// filled with defaults.
func New(cfg Config) *Server {
	if cfg.TokenExpiry <= 0 {
		cfg.TokenExpiry = 30 * 24 * time.Hour
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = 32 << 20
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{
		flows:   cfg.Flows,
		store:   cfg.Store,
		parser:  cfg.Parser,
		secret:  cfg.JWTSecret,
		expiry:  cfg.TokenExpiry,
		maxBody: cfg.MaxBody,
		logger:  cfg.Logger,
		limiter: shield.NewRateLimiter([]shield.RateLimitRule{
			{Prefix: "/api/chat", MaxRequests: 30, WindowSeconds: 60},
			{Prefix: "/api/suggest", MaxRequests: 30, WindowSeconds: 60},
			{Prefix: "/api/analyze", MaxRequests: 10, WindowSeconds: 60},
		}),
	}
}

// StartGC begins reaping expired rate-limit buckets in the background
// until done closes.
func (s *Server) StartGC(done <-chan struct{}) {
	s.limiter.StartGC(done)
}

// Router builds the chi router with the full middleware stack and all
// routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	for _, mw := range shield.DefaultAPIStack(s.maxBody) {
		r.Use(mw)
	}
	r.Use(s.limiter.Middleware)
	r.Use(auth.Middleware(s.secret))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/api/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Post("/api/convert", s.handleConvert)
		r.Post("/api/parse", s.handleParse)

		r.Post("/api/chat", s.handleChat)
		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/analyze", s.handleAnalyze)
		r.Post("/api/suggest", s.handleSuggest)
		r.Post("/api/title", s.handleTitle)

		r.Get("/api/capabilities", s.handleCapabilities)

		r.Get("/api/templates", s.handleSearchTemplates)
		r.Get("/api/templates/{templateID}", s.handleGetTemplate)

		r.Route("/api/documents", func(r chi.Router) {
			r.Get("/", s.handleListDocuments)
			r.Post("/", s.handleCreateDocument)
			r.Get("/{documentID}", s.handleGetDocument)
			r.Put("/{documentID}", s.handleUpdateDocument)
			r.Delete("/{documentID}", s.handleDeleteDocument)
		})
	})

	return r
}

// errorBody is the uniform failure envelope. Details carry safe,
// user-facing context only; internal errors stay in the logs.
type errorBody struct {
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorBody{Error: message})
}
