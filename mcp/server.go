package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rediwo/refdata/logger"
	"github.com/rediwo/refdata/service"
)

// ServerConfig holds the configuration for the MCP server
type ServerConfig struct {
	Service   *service.Service
	Transport string // "stdio" or "http"
	Port      int
	Version   string
	Logger    logger.Logger
	// DefaultPageSize applies to list tools called without a size
	DefaultPageSize int
	// APIKey protects the HTTP transport when set
	APIKey string
}

// SDKServer exposes the read-only asset operations as MCP tools
type SDKServer struct {
	mcpServer *mcp.Server
	config    ServerConfig
	service   *service.Service
	logger    logger.Logger
}

// NewSDKServer creates a new MCP server using the official SDK
func NewSDKServer(config ServerConfig) (*SDKServer, error) {
	if config.Service == nil {
		return nil, errors.New("mcp server needs a service")
	}
	if config.Transport == "" {
		config.Transport = "stdio"
	}
	if config.Port == 0 {
		config.Port = 3000
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if config.DefaultPageSize < 1 {
		config.DefaultPageSize = defaultPageSize
	}
	l := logger.OrGlobal(config.Logger)

	server := &SDKServer{
		config:  config,
		service: config.Service,
		logger:  l,
	}

	server.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    "refdata-mcp",
		Version: config.Version,
	}, &mcp.ServerOptions{
		Instructions: "Read-only access to assets and asset pairs",
		PageSize:     100,
		InitializedHandler: func(ctx context.Context, session *mcp.ServerSession, params *mcp.InitializedParams) {
			if id := session.ID(); id != "" {
				l.Info("Client initialized session: %s", id)
			} else {
				l.Info("Client initialized")
			}
		},
	})

	server.registerTools()

	server.mcpServer.AddReceivingMiddleware(func(next mcp.MethodHandler[*mcp.ServerSession]) mcp.MethodHandler[*mcp.ServerSession] {
		return func(ctx context.Context, session *mcp.ServerSession, method string, params mcp.Params) (mcp.Result, error) {
			l.Debug("Received method '%s'", method)
			result, err := next(ctx, session, method, params)
			if err != nil {
				l.Error("Method '%s' failed: %v", method, err)
			}
			return result, err
		}
	})

	return server, nil
}

// GetLogger returns the server's logger
func (s *SDKServer) GetLogger() logger.Logger {
	return s.logger
}

// Server returns the underlying SDK server
func (s *SDKServer) Server() *mcp.Server {
	return s.mcpServer
}

// Start runs the configured transport until ctx is cancelled
func (s *SDKServer) Start(ctx context.Context) error {
	s.logger.Info("Starting MCP server with transport: %s", s.config.Transport)

	switch s.config.Transport {
	case "stdio":
		return s.startStdioServer(ctx)
	case "http":
		return s.startHTTPServer(ctx)
	default:
		return fmt.Errorf("unsupported transport: %s", s.config.Transport)
	}
}

func (s *SDKServer) startStdioServer(ctx context.Context) error {
	var transport mcp.Transport = mcp.NewStdioTransport()
	if s.logger.GetLevel() >= logger.LogLevelDebug {
		transport = mcp.NewLoggingTransport(transport, NewLoggerWriter(s.logger, "MCP"))
	}

	err := s.mcpServer.Run(ctx, transport)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("MCP stdio server stopped with error: %v", err)
		return err
	}
	s.logger.Info("MCP stdio server stopped")
	return nil
}

// HTTPHandler serves the streamable HTTP transport
func (s *SDKServer) HTTPHandler() http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		s.logger.Debug("New streamable connection from %s", r.RemoteAddr)
		return s.mcpServer
	}, nil)

	var handler http.Handler = streamable
	if s.config.APIKey != "" {
		handler = apiKeyMiddleware(s.config.APIKey, handler)
	}
	return corsMiddleware(handler)
}

func (s *SDKServer) startHTTPServer(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting MCP HTTP server on http://localhost%s/", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Mcp-Session-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
