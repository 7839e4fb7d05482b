// Package health exposes the standard gRPC health service for the web
// front-end so orchestrators can check it without an HTTP route.
package health

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "jobboard.web"

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger *slog.Logger
}

func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(gs, hs)
	s := &Server{grpc: gs, health: hs, logger: logger}
	s.SetServing(true)
	return s
}

// SetServing flips both the overall and the named service status.
func (s *Server) SetServing(ok bool) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if !ok {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve blocks serving lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("health.grpc.listening", "addr", lis.Addr().String())
	return s.grpc.Serve(lis)
}

// ListenAndServe listens on addr and serves in a goroutine.
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		s.logger.Error("failed to listen on address", "addr", addr, "error", err)
		return err
	}
	go func() {
		if err := s.Serve(lis); err != nil {
			s.logger.Error("health.grpc.serve_error", "error", err)
		}
	}()
	return nil
}

// Watch runs check every interval until ctx is done and mirrors the result
// into the serving status.
func (s *Server) Watch(ctx context.Context, interval time.Duration, check CheckFunc) {
	if check == nil || interval <= 0 {
		return
	}
	update := func() {
		err := check(ctx)
		if err != nil {
			s.logger.Warn("health.check_failed", "error", err)
		}
		s.SetServing(err == nil)
	}
	update()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}

// Stop marks the server as shutting down and drains in-flight RPCs.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
