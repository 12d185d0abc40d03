package health

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCServer exposes the standard grpc.health.v1 service so orchestrators
// that probe over gRPC get the same readiness signal as the HTTP endpoints.
type GRPCServer struct {
	port   int
	server *grpc.Server
	status *grpchealth.Server
}

// NewGRPC creates a gRPC health server on the given port.
func NewGRPC(port int) *GRPCServer {
	return &GRPCServer{port: port, status: grpchealth.NewServer()}
}

// SetReady flips the serving status reported to probes.
func (s *GRPCServer) SetReady(ready bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.status.SetServingStatus("", status)
}

// ListenAndServe starts the gRPC health server.
// It blocks until the context is cancelled.
func (s *GRPCServer) ListenAndServe(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("grpc health listen: %w", err)
	}

	s.server = grpc.NewServer()
	healthpb.RegisterHealthServer(s.server, s.status)

	slog.Info("grpc health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		slog.Info("grpc health server shutting down")
		s.server.GracefulStop()
	}()

	return s.server.Serve(lis)
}
