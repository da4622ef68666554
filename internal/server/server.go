// Package server wires the application together: database, services,
// handlers, middleware and routes, plus startup and graceful shutdown.
// All dependency injection happens here and nowhere else.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mkamau/blogapi/internal/auth"
	"github.com/mkamau/blogapi/internal/config"
	"github.com/mkamau/blogapi/internal/handler"
	"github.com/mkamau/blogapi/internal/middleware"
	sqliteRepo "github.com/mkamau/blogapi/internal/repository/sqlite"
	"github.com/mkamau/blogapi/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during shutdown, after in-flight requests drain.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: sqlite.DB → services →
// handlers → routes. Each layer receives only the interfaces it needs.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// Route map:
//
//	POST   /register                  → create account + session   (public)
//	POST   /login                     → start session              (public)
//	DELETE /logout                    → revoke session
//	GET    /check-session             → current user
//	GET    /profile                   → current user's profile
//	GET    /posts                     → list posts
//	POST   /posts                     → create post
//	GET    /posts/{id}                → get post
//	PUT    /posts/{id}                → partial update (author only)
//	DELETE /posts/{id}                → delete post (author only)
//	GET    /posts/{id}/comments       → list comments
//	POST   /posts/{id}/comments       → create comment
//	DELETE /comments/{id}             → delete comment
//	GET    /categories                → list categories
//	POST   /categories                → create category
//
// Everything below /register and /login sits behind the session middleware.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.cfg.Auth.TokenSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.cfg.Auth.BcryptCost)

	authService := service.NewAuthService(s.db, s.db, passwords, tokens, s.cfg.Session.TTL, s.logger)
	postService := service.NewPostService(s.db, s.logger)
	commentService := service.NewCommentService(s.db, s.db, s.logger)
	categoryService := service.NewCategoryService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.cfg.Session.CookieName, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, s.logger)

	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Post("/login", authHandler.HandleLogin)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(s.cfg.Session.CookieName, authService))

		r.Delete("/logout", authHandler.HandleLogout)
		r.Get("/check-session", authHandler.HandleCheckSession)
		r.Get("/profile", authHandler.HandleProfile)

		r.Get("/posts", postHandler.HandleList)
		r.Post("/posts", postHandler.HandleCreate)
		r.Get("/posts/{id}", postHandler.HandleGet)
		r.Put("/posts/{id}", postHandler.HandleUpdate)
		r.Delete("/posts/{id}", postHandler.HandleDelete)

		r.Get("/posts/{id}/comments", commentHandler.HandleListByPost)
		r.Post("/posts/{id}/comments", commentHandler.HandleCreate)
		r.Delete("/comments/{id}", commentHandler.HandleDelete)

		r.Get("/categories", categoryHandler.HandleList)
		r.Post("/categories", categoryHandler.HandleCreate)
	})

	return nil
}

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests for up
// to 30 seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Server.Port),
			slog.String("database", s.cfg.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		// Drain timed out; close connections forcibly.
		srv.Close()
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
