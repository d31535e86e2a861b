// Package grpc serves the gRPC health and reflection services used by orchestrator probes.
package grpc

import (
	"net"

	"github.com/CesarOsorioP/StateView-sub000/internal/middleware"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server is the probe server: health checking plus reflection for grpcurl.
type Server struct {
	*grpc.Server
	health      *health.Server
	serviceName string
	logger      *logger.Logger
}

// NewServer creates the gRPC server with tracing and logging on every call.
func NewServer(serviceName string, appLogger *logger.Logger) *Server {
	log := appLogger.Named("GRPCServer")
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(middleware.LoggingInterceptor(log)),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	reflection.Register(srv)

	s := &Server{Server: srv, health: healthServer, serviceName: serviceName, logger: log}
	s.SetServing(true)
	return s
}

// Serve blocks on lis until the server stops.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("Starting gRPC probe server", zap.String("address", lis.Addr().String()))
	return s.Server.Serve(lis)
}

// SetServing flips the health status for the overall server and the named service.
func (s *Server) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(s.serviceName, status)
}

// Stop marks the server as not serving and drains in-flight calls.
func (s *Server) Stop() {
	s.SetServing(false)
	s.Server.GracefulStop()
}
