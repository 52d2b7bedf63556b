package mux

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/soheilhy/cmux"

	"resume-parser/internal/config"
	"resume-parser/internal/grpc/server"
	"resume-parser/internal/logging"
	"resume-parser/internal/logging/types"
)

// Multiplexer serves gRPC and HTTP/1.1 on one listener, routing by protocol
type Multiplexer struct {
	cfg    *config.Config
	logger types.Logger

	// Servers
	grpcServer *server.Server
	httpServer *http.Server

	// Multiplexer
	mux      cmux.CMux
	listener net.Listener

	// Control
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMultiplexer creates a new protocol multiplexer
func NewMultiplexer(cfg *config.Config, grpcServer *server.Server, httpHandler http.Handler) *Multiplexer {
	ctx, cancel := context.WithCancel(context.Background())

	// responses to parse requests may take the whole parse budget
	writeTimeout := cfg.Server.WriteTimeout
	if cfg.Server.ParseTimeout+5*time.Second > writeTimeout {
		writeTimeout = cfg.Server.ParseTimeout + 5*time.Second
	}

	return &Multiplexer{
		cfg:        cfg,
		logger:     logging.GetGlobalLogger().WithField("component", "multiplexer"),
		grpcServer: grpcServer,
		ctx:        ctx,
		cancel:     cancel,
		httpServer: &http.Server{
			Handler:           httpHandler,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      writeTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       cfg.Server.IdleTimeout,
		},
	}
}

// Start listens on address and serves both protocols
func (m *Multiplexer) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return m.Serve(listener)
}

// Serve multiplexes an existing listener; it returns once all servers are running
func (m *Multiplexer) Serve(listener net.Listener) error {
	m.listener = listener
	address := listener.Addr().String()

	m.mux = cmux.New(listener)

	// Create matchers for different protocols
	grpcListener := m.mux.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpListener := m.mux.Match(cmux.Any())

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.grpcServer.Start(grpcListener); err != nil && !errors.Is(err, cmux.ErrListenerClosed) {
			m.logger.WithError(err).Error("gRPC server failed")
		}
	}()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.logger.Info("Starting HTTP server", map[string]interface{}{"address": address})
		if err := m.httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, cmux.ErrListenerClosed) {
			m.logger.WithError(err).Error("HTTP server failed")
		}
	}()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.mux.Serve(); err != nil && !errors.Is(err, net.ErrClosed) && m.ctx.Err() == nil {
			m.logger.WithError(err).Error("Multiplexer failed")
		}
	}()

	m.logger.Info("Multiplexer started successfully", map[string]interface{}{"address": address})
	return nil
}

// Stop gracefully shuts down the multiplexer and both servers
func (m *Multiplexer) Stop(ctx context.Context) error {
	m.logger.Info("Stopping multiplexer...")

	m.cancel()

	if err := m.httpServer.Shutdown(ctx); err != nil {
		m.logger.WithError(err).Error("HTTP server shutdown failed")
	}

	if m.grpcServer != nil {
		m.grpcServer.Stop()
	}

	if m.listener != nil {
		if err := m.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			m.logger.WithError(err).Warn("Failed to close listener")
		}
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("Multiplexer stopped gracefully")
	case <-ctx.Done():
		m.logger.Warn("Multiplexer shutdown timed out")
		return ctx.Err()
	}

	return nil
}

// IsHealthy reports whether the multiplexer is serving
func (m *Multiplexer) IsHealthy() bool {
	return m.ctx.Err() == nil && m.listener != nil
}

// GetAddress returns the address the multiplexer is listening on
func (m *Multiplexer) GetAddress() string {
	if m.listener != nil {
		return m.listener.Addr().String()
	}
	return ""
}
