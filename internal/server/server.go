// Package server assembles the HTTP surface: the JSON document API,
// the response negotiation middleware wrapping it, basic-auth identity
// resolution, the health endpoint, and the live-reload websocket hub.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/conneroisu/veneer/internal/cache"
	"github.com/conneroisu/veneer/internal/config"
	"github.com/conneroisu/veneer/internal/engine"
	"github.com/conneroisu/veneer/internal/logging"
	"github.com/conneroisu/veneer/internal/pipeline"
	"github.com/conneroisu/veneer/internal/renderctx"
	"github.com/conneroisu/veneer/internal/store"
	"github.com/conneroisu/veneer/internal/version"
)

const shutdownTimeout = 10 * time.Second

// Server serves the document API with HTML negotiation layered on top.
type Server struct {
	config  *config.Config
	logger  logging.Logger
	engine  *engine.Engine
	handler http.Handler

	httpServer *http.Server
	listener   net.Listener
}

// New assembles a server from its collaborators. The engine's watch
// loop is the caller's responsibility; the server only consumes reload
// events.
func New(cfg *config.Config, eng *engine.Engine, client store.Client, logger logging.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}

	s := &Server{
		config: cfg,
		logger: logger.WithComponent("server"),
		engine: eng,
	}

	info := version.GetBuildInfo()
	global := renderctx.NewGlobal(map[string]any{
		"version":   info.Version,
		"buildTime": info.BuildTime,
		"loginURL":  cfg.Site.LoginURL,
	})

	docBuilder := renderctx.NewDocStoreBuilder(client, renderctx.Tenancy{
		Enabled:   cfg.Tenancy.Enabled,
		Protected: cfg.Tenancy.Protected,
	}, cfg.Store.PageSize)

	pipe := pipeline.New(pipeline.Options{
		Engine:        eng,
		Registry:      renderctx.NewRegistry(global, docBuilder),
		Negotiator:    cache.Negotiator{Enabled: cfg.Cache.Enabled, MaxAge: cfg.Cache.MaxAge},
		ErrorTemplate: cfg.Templates.ErrorTemplate,
		Logger:        logger,
	})

	api := newAPIHandler(client, cfg.Store, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleReload)
	mux.Handle("/", pipe.Middleware(api))

	s.handler = s.withIdentity(mux)
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler exposes the fully assembled handler chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the bound listen address once Start is running, or the
// configured address before that.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Start binds the listener and serves until the context is canceled or
// Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(context.Background(), err, "server shutdown")
		}
	}()

	s.logger.Info(ctx, "listening", "addr", listener.Addr().String())

	if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
