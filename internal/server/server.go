// File: internal/server/server.go

// Package server owns the plugin server lifecycle: bind the listener,
// expose the plugin service together with health checking and reflection,
// announce readiness, and drain gracefully on termination.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/wisdark/tsunami-security-scanner/internal/config"
	"github.com/wisdark/tsunami-security-scanner/internal/plugin"
	"github.com/wisdark/tsunami-security-scanner/internal/service"
)

// Server hosts the plugin service on a loopback listener and manages its
// lifecycle: INITIALIZING until Serve is called, LISTENING while the
// listener accepts calls, DRAINING once the context is cancelled, STOPPED
// when Serve returns.
type Server struct {
	cfg     config.ServerConfig
	plugins *plugin.Set
	logger  *zap.Logger

	grpcServer   *grpc.Server
	healthServer *health.Server

	mu    sync.Mutex
	addr  net.Addr
	ready chan struct{}
}

// New assembles a plugin server from a validated configuration and a built
// plugin set.
func New(cfg config.ServerConfig, plugins *plugin.Set, logger *zap.Logger) (*Server, error) {
	if plugins == nil {
		return nil, fmt.Errorf("plugin set cannot be nil")
	}
	if cfg.Threads <= 0 {
		return nil, fmt.Errorf("server threads must be a positive integer")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	svc, err := service.NewPluginService(plugins, cfg.Threads, logger)
	if err != nil {
		return nil, fmt.Errorf("building plugin service: %w", err)
	}

	// Threads bounds both the shared pool of stream workers across all
	// connections and the stream concurrency of any single connection.
	grpcServer := grpc.NewServer(
		grpc.NumStreamWorkers(uint32(cfg.Threads)),
		grpc.MaxConcurrentStreams(uint32(cfg.Threads)),
	)
	service.RegisterPluginServiceServer(grpcServer, svc)

	// The health servicer starts with every service NOT_SERVING; statuses
	// flip to SERVING only after the listener is up (bind-then-announce).
	// Health responses are served directly by the health servicer and never
	// pass through the scan dispatch path, so health polling cannot be
	// starved by scan work.
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	for name := range grpcServer.GetServiceInfo() {
		healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	return &Server{
		cfg:          cfg,
		plugins:      plugins,
		logger:       logger.Named("server"),
		grpcServer:   grpcServer,
		healthServer: healthServer,
		ready:        make(chan struct{}),
	}, nil
}

// Serve binds the listener and blocks until ctx is cancelled and the server
// has drained. Cancelling ctx (typically via signal.NotifyContext in main)
// stops the listener from accepting new calls immediately; in-flight calls
// get up to the configured shutdown grace before the listener closes on
// them. Repeated cancellation is harmless; drain runs exactly once.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", config.Host, s.cfg.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding listener on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.addr = lis.Addr()
	s.mu.Unlock()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(lis)
	}()

	// The listener is bound and the accept loop is running: announce.
	// Ordering matters; a client polling health must never observe SERVING
	// before the listener can take its call.
	s.announceServing()
	s.logger.Info("Server started", zap.String("address", s.addr.String()))
	close(s.ready)

	select {
	case err := <-serveErr:
		// Serve only returns early on a fatal listener error.
		return fmt.Errorf("serving RPCs: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Stopped accepting RPCs, waiting for in-flight calls to complete",
		zap.Duration("grace", s.cfg.ShutdownGrace))
	s.drain()
	<-serveErr
	s.logger.Info("Done stopping server")
	return nil
}

// drain runs GracefulStop bounded by the configured grace period, after
// which in-flight calls are abandoned by a hard stop.
func (s *Server) drain() {
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	timer := time.NewTimer(s.cfg.ShutdownGrace)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		s.logger.Warn("Shutdown grace period elapsed, abandoning in-flight calls")
		s.grpcServer.Stop()
		<-done
	}
}

// announceServing flips every advertised service, including health and
// reflection themselves, to SERVING.
func (s *Server) announceServing() {
	for name := range s.grpcServer.GetServiceInfo() {
		s.healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
		s.logger.Info("Service is now SERVING", zap.String("service", name))
	}
}

// Ready is closed once the listener is bound and all services are announced
// SERVING. Used by tests and by callers that want to block on startup.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listener address, or the empty string before
// Serve has bound it. Useful with a configured port of 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr == nil {
		return ""
	}
	return s.addr.String()
}
