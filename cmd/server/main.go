package main

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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tendant/simple-catalog/pkg/catalog/api"
	"github.com/tendant/simple-catalog/pkg/catalog/config"
)

func main() {
	// Load configuration from .env and the environment
	serverConfig, err := config.Load(config.WithDotEnv(), config.WithEnv())
	if err != nil {
		slog.Error("Failed to load server configuration", "error", err)
		os.Exit(1)
	}

	logger := serverConfig.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	comps, err := serverConfig.BuildService(context.Background(), logger)
	if err != nil {
		logger.Error("Failed to build service", "error", err)
		os.Exit(1)
	}
	defer comps.Close()

	server := NewHTTPServer(comps, serverConfig)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverConfig.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Catalog server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"database", serverConfig.DatabaseType,
			"storage", serverConfig.Storage.Type,
			"cache", serverConfig.RedisURL != "")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exiting")
}

// HTTPServer wires the catalog service into the HTTP surface
type HTTPServer struct {
	comps  *config.Components
	config *config.ServerConfig
}

// NewHTTPServer creates a new HTTP server wrapper
func NewHTTPServer(comps *config.Components, serverConfig *config.ServerConfig) *HTTPServer {
	return &HTTPServer{
		comps:  comps,
		config: serverConfig,
	}
}

// Routes sets up the HTTP routes
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.config.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: s.config.FrontendURL != "*",
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	if s.comps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.comps.Registry, promhttp.HandlerOpts{}))
	}

	if s.comps.Images != nil {
		r.Handle("/images/*", http.StripPrefix("/images/", s.comps.Images))
	}

	limits := s.config.RateLimit
	var general, modify *api.RateLimiter
	if limits.Requests > 0 {
		general = api.NewRateLimiter(limits.Requests, limits.Window, "")
	}
	if limits.Modifications > 0 {
		modify = api.NewRateLimiter(limits.Modifications, limits.Window, "Too many modification requests, please try again later.")
	}

	products := api.NewProductsHandler(s.comps.Service, api.HandlerConfig{ModifyLimiter: modify})

	r.Route("/api/products", func(r chi.Router) {
		r.Use(general.Middleware)
		if limits.MaxRequestBody > 0 {
			r.Use(api.RequestSizeLimitMiddleware(limits.MaxRequestBody))
		}
		r.Mount("/", products.Routes())
	})

	return r
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status":  "OK",
		"message": "Server is running",
	})
}
