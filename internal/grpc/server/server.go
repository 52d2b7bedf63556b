package server

import (
	"context"
	"net"
	"sync"
	"time"

	"resume-parser/internal/config"
	"resume-parser/internal/grpc/interceptors"
	"resume-parser/internal/logging"
	"resume-parser/internal/logging/types"
	"resume-parser/internal/resume"
	"resume-parser/pkg/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// healthInterval is how often the serving status is re-evaluated
const healthInterval = 30 * time.Second

// ResumeService is the parsing pipeline behind the gRPC methods
type ResumeService interface {
	ConvertDocument(ctx context.Context, content []byte, filename string) (string, error)
	ParseResumeToJSON(ctx context.Context, markdown string) (*models.ResumeData, error)
	ParseResume(ctx context.Context, content []byte, filename string) (*resume.Result, error)
}

// ProviderStatus reports whether the completion backend can take requests
type ProviderStatus interface {
	IsHealthy() bool
}

type Server struct {
	cfg        *config.Config
	svc        ResumeService
	llmStatus  ProviderStatus
	logger     types.Logger
	grpcServer *grpc.Server
	health     *health.Server
	metrics    *interceptors.MetricsCollector

	stopOnce sync.Once
	done     chan struct{}
}

func NewServer(cfg *config.Config, svc ResumeService, llmStatus ProviderStatus) *Server {
	maxMsg := cfg.GRPC.MaxMessageSize
	if maxMsg <= 0 {
		maxMsg = 32 << 20
	}

	s := &Server{
		cfg:       cfg,
		svc:       svc,
		llmStatus: llmStatus,
		logger:    logging.GetGlobalLogger().WithField("component", "grpc_server"),
		health:    health.NewServer(),
		metrics:   interceptors.NewMetricsCollector(),
		done:      make(chan struct{}),
	}

	s.grpcServer = grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 5 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.MaxRecvMsgSize(maxMsg),
		grpc.MaxSendMsgSize(maxMsg),
		grpc.ChainUnaryInterceptor(
			interceptors.RecoveryInterceptor(),
			interceptors.LoggingInterceptor(),
			interceptors.MetricsInterceptor(s.metrics),
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamRecoveryInterceptor(),
			interceptors.StreamLoggingInterceptor(),
			interceptors.StreamMetricsInterceptor(s.metrics),
		),
	)

	RegisterResumeParserServer(s.grpcServer, s)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)

	if cfg.GRPC.Reflection {
		reflection.Register(s.grpcServer)
	}

	s.refreshHealth()
	return s
}

// Start serves on lis until Stop is called
func (s *Server) Start(lis net.Listener) error {
	go s.watchHealth()

	s.logger.Info("Starting gRPC server", map[string]interface{}{
		"address": lis.Addr().String(),
	})

	return s.grpcServer.Serve(lis)
}

// Stop drains in-flight calls and stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Shutting down gRPC server...")
		close(s.done)
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
	})
}

// Metrics exposes per-method call statistics
func (s *Server) Metrics() *interceptors.MetricsCollector {
	return s.metrics
}
