package controlplane

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Config struct {
	Addr  string
	Token string
}

// Server exposes the mirror state over a local HTTP API.
type Server struct {
	config *Config
	server *http.Server
}

func NewServer(config *Config, mirror Mirror) *Server {
	return &Server{
		config: config,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           SetupRoutes(mirror, &RouteConfig{Token: config.Token}),
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	slog.Info("control plane start", "addr", fmt.Sprintf("http://%s", s.config.Addr), "auth", s.config.Token != "")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("control plane: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	slog.Info("control plane stop")
	return s.server.Shutdown(ctx)
}
