package mux

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"resume-parser/internal/config"
	"resume-parser/internal/converter"
	"resume-parser/internal/grpc/server"
	"resume-parser/internal/llm"
	"resume-parser/internal/resume"
)

type noCompleter struct{}

func (noCompleter) CompleteJSON(ctx context.Context, req llm.CompletionRequest) (map[string]interface{}, error) {
	return nil, llm.ErrProviderUnavailable
}

type healthy struct{}

func (healthy) IsHealthy() bool { return true }

func TestMultiplexerServesHTTPAndGRPC(t *testing.T) {
	cfg := config.Default()
	svc := resume.NewService(cfg, converter.NewService(cfg), noCompleter{})
	grpcServer := server.NewServer(cfg, svc, healthy{})

	httpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "http ok")
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	m := NewMultiplexer(cfg, grpcServer, httpHandler)
	require.NoError(t, m.Serve(listener))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Stop(ctx)
	}()
	assert.True(t, m.IsHealthy())

	resp, err := http.Get("http://" + m.GetAddress() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "http ok", string(body))

	conn, err := grpc.NewClient(m.GetAddress(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	check, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: server.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check.GetStatus())
}
