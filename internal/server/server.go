package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/blog-be/internal/auth"
	"github.com/hongminglow/blog-be/internal/config"
	"github.com/hongminglow/blog-be/internal/http/handlers"
	"github.com/hongminglow/blog-be/internal/middleware"
	"github.com/hongminglow/blog-be/internal/storage"
)

// Stores bundles the persistence interfaces the routes depend on.
type Stores struct {
	Users      storage.UserStore
	Posts      storage.PostStore
	Categories storage.CategoryStore
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, stores Stores) *Server {
	mux := http.NewServeMux()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	guard := func(next http.Handler) http.Handler {
		return middleware.RequireAuth(stores.Users, tokens, next)
	}

	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(stores.Users, tokens).Register(mux, guard)
	handlers.NewPostHandler(stores.Posts).Register(mux, guard)
	handlers.NewCategoryHandler(stores.Categories).Register(mux, guard)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
