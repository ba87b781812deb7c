package grpc

import (
	"context"
	"time"

	"camera-rental-backend/internal/api/grpc/interceptor"
	"camera-rental-backend/internal/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health entry that tracks database reachability. The empty
// name reports overall process health.
const ServiceName = "camera_rental.Backend"

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewServer builds the gRPC server carrying the standard health service and reflection.
func NewServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		interceptor.Recovery(),
		interceptor.Logging(),
	))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return srv, hs
}

// WatchDatabase pings db every interval and mirrors the result into the health
// status of ServiceName until ctx is done.
func WatchDatabase(ctx context.Context, hs *health.Server, db Pinger, interval time.Duration) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			logger.Warn("Database health check failed", "error", err)
			hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
			return
		}
		hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			check()
		}
	}
}
