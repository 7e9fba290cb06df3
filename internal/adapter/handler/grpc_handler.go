package handler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const CatalogServiceName = "rocketshoes.Catalog"

// HealthReporter mirrors database reachability into the gRPC health service.
type HealthReporter struct {
	server *health.Server
	pinger Pinger
	logger logrus.FieldLogger
}

func NewHealthReporter(pinger Pinger, logger logrus.FieldLogger) *HealthReporter {
	return &HealthReporter{
		server: health.NewServer(),
		pinger: pinger,
		logger: logger,
	}
}

func (h *HealthReporter) Server() *health.Server {
	return h.server
}

// Check pings the database once and publishes the result.
func (h *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.WithError(err).Warn("catalog database unreachable")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(CatalogServiceName, status)
	return status
}

// Run checks every interval until ctx is done, then marks everything as
// not serving.
func (h *HealthReporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
