package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/scipaper/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/scipaper/internal/api/middlewares"
	"github.com/markdave123-py/scipaper/internal/config"
	"github.com/markdave123-py/scipaper/internal/services"
)

// requestTimeout covers synchronous ingestion of a large paper.
const requestTimeout = 5 * time.Minute

// Services are the dependencies behind the HTTP routes.
type Services struct {
	Users    handlers.Accounts
	Papers   handlers.Papers
	Analyzer handlers.Analyzer
	Chat     handlers.Answerer
}

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, svc Services) *Server {
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{httpServer: httpSrv}
}

// NewRouter returns the chi router with middleware and every API route.
func NewRouter(cfg *config.Config, svc Services) http.Handler {
	authHandler := handlers.NewAuthHandler(svc.Users, cfg.JWTSecret)
	docHandler := handlers.NewDocumentHandler(svc.Papers, svc.Analyzer)
	chatHandler := handlers.NewChatHandler(svc.Chat)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", handlers.Health)

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))
			protected.Post("/papers/upload", docHandler.UploadDocument)
			protected.Get("/papers", docHandler.GetDocuments)
			protected.Get("/papers/{paperID}/summary", docHandler.GetSummary)
			protected.Post("/papers/analyze", docHandler.AnalyzeURLs)
			protected.Post("/query", chatHandler.Query)

			protected.With(appMiddleware.RequireRole(services.RoleAdmin)).Get("/users", authHandler.ListUsers)
		})
	})

	return r
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
