package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hotpotspot/franchise-ledger/internal/api/middleware"
	"github.com/hotpotspot/franchise-ledger/internal/api/rest"
	"github.com/hotpotspot/franchise-ledger/internal/logger"
)

// Server wraps the HTTP server hosting the REST API.
type Server struct {
	srv *http.Server
}

// New builds the gin engine, mounts the API and returns the server.
func New(port int, debug bool, handler *rest.Handler, authCfg middleware.AuthConfig) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Logger())
	engine.Use(middleware.Recovery())
	engine.Use(middleware.SetupCORS())

	handler.RegisterRoutes(engine, authCfg)

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start blocks serving requests until the server is shut down.
func (s *Server) Start() error {
	logger.Info("http server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
