package server

import (
	"log/slog"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name probes use to ask about the proctoring engine specifically.
// The empty name reports on the server as a whole.
const ServiceName = "edusmarthub.Proctoring"

// HealthServer publishes the engine state through the standard gRPC health protocol.
type HealthServer struct {
	log     *slog.Logger
	health  *health.Server
	serving atomic.Bool
}

func NewHealthServer(log *slog.Logger) *HealthServer {
	s := &HealthServer{log: log, health: health.NewServer()}
	s.SetServing(false)
	return s
}

func (s *HealthServer) Register(registrar grpc.ServiceRegistrar) {
	healthpb.RegisterHealthServer(registrar, s.health)
}

func (s *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.serving.Store(serving)
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	s.log.Info("Health status changed", "status", status.String())
}

func (s *HealthServer) Serving() bool { return s.serving.Load() }

// Shutdown reports NOT_SERVING for good; later SetServing calls are ignored by the health service.
func (s *HealthServer) Shutdown() {
	s.serving.Store(false)
	s.health.Shutdown()
}
