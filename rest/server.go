package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rediwo/refdata/logger"
	"github.com/rediwo/refdata/service"
)

// Server represents a REST API server
type Server struct {
	Router *Router // Exported for testing
	port   int
	logger logger.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Service         *service.Service
	Port            int
	DefaultPageSize int
	Logger          logger.Logger
	// GraphQL is mounted at /graphql when set
	GraphQL http.Handler
}

// NewServer creates a new REST API server
func NewServer(config ServerConfig) (*Server, error) {
	if config.Service == nil {
		return nil, errors.New("rest server needs a service")
	}
	l := logger.OrGlobal(config.Logger)

	// Set default port if not provided
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.DefaultPageSize == 0 {
		config.DefaultPageSize = 50
	}

	router := NewRouter(config.Service, config.DefaultPageSize, l)
	if config.GraphQL != nil {
		router.Mount("/graphql", config.GraphQL)
	}

	return &Server{
		Router: router,
		port:   config.Port,
		logger: l,
	}, nil
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting REST API server on http://localhost%s", addr)
	s.logger.Info("Available endpoints:")
	s.logger.Info("  - POST   /assets/")
	s.logger.Info("  - GET    /assets/")
	s.logger.Info("  - GET    /assets/{assetId}")
	s.logger.Info("  - DELETE /assets/{assetId}")
	s.logger.Info("  - POST   /assets/pairs/")
	s.logger.Info("  - GET    /assets/pairs/")
	s.logger.Info("  - GET    /assets/pairs/{assetPairId}")
	s.logger.Info("  - DELETE /assets/pairs/{assetPairId}")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down REST API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
