package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/config"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

// Dependencies are the collaborators the HTTP surface dispatches to.
type Dependencies struct {
	Database   database.Database
	Tokens     *auth.TokenService
	Accounts   *services.AccountService
	Posts      *services.PostService
	Categories *services.CategoryService
	Images     *services.ImageService // nil disables image uploads
}

func NewServer(settings config.Settings, deps Dependencies) (Server, error) {
	address := fmt.Sprintf("0.0.0.0:%s", settings.Port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	router := newRouter(deps, withSettings(settings), withStartupTime(startupTime))

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  settings.ReadTimeout,  // Timeout for reading the entire request
		WriteTimeout: settings.WriteTimeout, // Timeout for writing the response
		IdleTimeout:  settings.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	settings    config.Settings
	startupTime time.Time
}

func withSettings(s config.Settings) func(*router) {
	return func(r *router) {
		r.settings = s
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(deps Dependencies, opts ...func(*router)) *chi.Mux {
	router := router{
		settings:    config.Load(nil),
		startupTime: time.Now(),
	}
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(HTTPLoggingMiddleware(router.settings.LogPretty))

	// Apply CORS middleware
	acceptedOrigins := router.settings.AcceptedOrigins
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	if len(acceptedOrigins) > 0 {
		chiRouter.Use(cors.Handler(cors.Options{
			AllowedOrigins:   acceptedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Initialize all handlers
	handlers := initializeHandlers(deps, router.settings, router.startupTime)

	// Initialize auth middleware
	authMiddleware := newAuthMiddleware(deps.Tokens, deps.Database.UserRepo())

	setupRoutes(chiRouter, router.settings.APIPrefix, handlers, authMiddleware)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Dur("uptime", time.Since(s.startupTime)).Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
