package server

import (
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// refreshHealth publishes SERVING while the LLM provider is usable
func (s *Server) refreshHealth() {
	status := healthpb.HealthCheckResponse_SERVING
	if s.llmStatus == nil || !s.llmStatus.IsHealthy() {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus(ServiceName, status)
	// the empty name is the overall server status
	s.health.SetServingStatus("", status)
}

func (s *Server) watchHealth() {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.refreshHealth()
		}
	}
}
