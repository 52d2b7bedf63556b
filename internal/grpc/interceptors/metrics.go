package interceptors

import (
	"context"
	"sync"
	"time"

	"google.golang.org/grpc"

	"resume-parser/internal/logging"
)

// MetricsData holds metrics information for gRPC calls
type MetricsData struct {
	RequestCount    int64         `json:"request_count"`
	SuccessCount    int64         `json:"success_count"`
	ErrorCount      int64         `json:"error_count"`
	TotalDuration   time.Duration `json:"total_duration"`
	AverageDuration time.Duration `json:"average_duration"`
	LastUpdated     time.Time     `json:"last_updated"`
}

// MetricsCollector collects per-method call counts and durations
type MetricsCollector struct {
	methods map[string]*MetricsData
	mu      sync.Mutex
}

// NewMetricsCollector creates an empty collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		methods: make(map[string]*MetricsData),
	}
}

// RecordMetrics records metrics for a gRPC method call
func (c *MetricsCollector) RecordMetrics(method string, duration time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, exists := c.methods[method]
	if !exists {
		m = &MetricsData{}
		c.methods[method] = m
	}

	m.RequestCount++
	m.TotalDuration += duration
	m.AverageDuration = m.TotalDuration / time.Duration(m.RequestCount)
	m.LastUpdated = time.Now()

	if err != nil {
		m.ErrorCount++
	} else {
		m.SuccessCount++
	}
}

// Snapshot returns a copy of all collected metrics keyed by full method name
func (c *MetricsCollector) Snapshot() map[string]MetricsData {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]MetricsData, len(c.methods))
	for method, m := range c.methods {
		result[method] = *m
	}
	return result
}

// Reset clears all metrics
func (c *MetricsCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.methods = make(map[string]*MetricsData)
}

// MetricsInterceptor returns a gRPC unary interceptor that feeds the collector
func MetricsInterceptor(collector *MetricsCollector) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		startTime := time.Now()
		resp, err := handler(ctx, req)
		collector.RecordMetrics(info.FullMethod, time.Since(startTime), err)
		return resp, err
	}
}

// StreamMetricsInterceptor returns a gRPC streaming interceptor that feeds the collector
func StreamMetricsInterceptor(collector *MetricsCollector) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		startTime := time.Now()
		err := handler(srv, ss)
		collector.RecordMetrics(info.FullMethod, time.Since(startTime), err)
		return err
	}
}

// LogMetricsSummary logs one entry per method
func (c *MetricsCollector) LogMetricsSummary() {
	logger := logging.GetGlobalLogger()

	for method, m := range c.Snapshot() {
		successRate := float64(0)
		if m.RequestCount > 0 {
			successRate = float64(m.SuccessCount) / float64(m.RequestCount) * 100
		}

		logger.Info("gRPC method metrics summary", map[string]interface{}{
			"method":           method,
			"request_count":    m.RequestCount,
			"success_count":    m.SuccessCount,
			"error_count":      m.ErrorCount,
			"success_rate":     successRate,
			"average_duration": m.AverageDuration.String(),
			"type":             "grpc_metrics_summary",
		})
	}
}

// StartMetricsReporting periodically logs the summary until ctx is done
func (c *MetricsCollector) StartMetricsReporting(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.LogMetricsSummary()
			case <-ctx.Done():
				return
			}
		}
	}()
}
