package grpc

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name reported to health checks for the booking engine as a whole
const ServiceName = "hostelflow"

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// AdminServer is the admin gRPC endpoint: the standard health service plus reflection,
// behind a token interceptor that leaves health checks open.
type AdminServer struct {
	server *grpc.Server
	health *health.Server
	checks map[string]HealthCheck
	logger *zap.Logger
}

// NewAdminServer creates the admin gRPC server; it serves nothing until Serve is called
func NewAdminServer(apiToken string, checks map[string]HealthCheck, logger *zap.Logger) *AdminServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("grpc")

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(logger),
			AuthInterceptor(apiToken),
		),
		grpc.StreamInterceptor(StreamAuthInterceptor(apiToken)),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	s := &AdminServer{
		server: server,
		health: healthServer,
		checks: checks,
		logger: logger,
	}
	s.setServing(true)
	return s
}

// Serve accepts connections on lis until Stop is called
func (s *AdminServer) Serve(lis net.Listener) error {
	s.logger.Info("gRPC admin server listening", zap.String("addr", lis.Addr().String()))
	return s.server.Serve(lis)
}

// Stop marks every service as not serving and drains in-flight calls
func (s *AdminServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
	s.logger.Info("gRPC admin server stopped")
}

// CheckHealth runs every dependency check once and publishes the result
func (s *AdminServer) CheckHealth(ctx context.Context) bool {
	healthy := true
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
			healthy = false
		}
	}
	s.setServing(healthy)
	return healthy
}

// MonitorHealth re-runs the dependency checks every interval until ctx is done
func (s *AdminServer) MonitorHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			s.CheckHealth(checkCtx)
			cancel()
		}
	}
}

func (s *AdminServer) setServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}
