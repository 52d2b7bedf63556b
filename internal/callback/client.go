package callback

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/structpb"

	"resume-parser/internal/background"
	"resume-parser/internal/config"
	"resume-parser/internal/logging/types"
)

const (
	// ServiceName is the gRPC service a callback receiver implements
	ServiceName = "resumeparser.v1.ParseCallback"
	// MethodParseResumeCallback receives one finished parse task
	MethodParseResumeCallback = "/" + ServiceName + "/ParseResumeCallback"

	operationParse = "parse_resume"
)

// Client delivers async parse outcomes to a remote gRPC endpoint
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
	logger  types.Logger
}

// ClientConfig holds configuration for the callback client
type ClientConfig struct {
	ServerAddress string        `yaml:"server_address"`
	Timeout       time.Duration `yaml:"timeout"`
}

// ConfigFromApp extracts the callback settings from the application config
func ConfigFromApp(cfg *config.Config) *ClientConfig {
	return &ClientConfig{
		ServerAddress: cfg.Callback.ServerAddress,
		Timeout:       cfg.Callback.Timeout,
	}
}

// NewClient creates a new callback gRPC client
func NewClient(cfg *ClientConfig, logger types.Logger) (*Client, error) {
	if cfg.ServerAddress == "" {
		return nil, fmt.Errorf("callback server address is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	serverAddr, creds := determineConnectionParams(cfg.ServerAddress, logger)

	conn, err := grpc.NewClient(
		serverAddr,
		grpc.WithTransportCredentials(creds),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                30 * time.Second,
			Timeout:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.WithContextDialer(func(ctx context.Context, addr string) (net.Conn, error) {
			return (&net.Dialer{Timeout: timeout}).DialContext(ctx, "tcp", addr)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to %s: %w", serverAddr, err)
	}

	return NewClientWithConn(conn, timeout, logger), nil
}

// NewClientWithConn wraps an existing connection
func NewClientWithConn(conn *grpc.ClientConn, timeout time.Duration, logger types.Logger) *Client {
	return &Client{
		conn:    conn,
		timeout: timeout,
		logger:  logger.WithField("component", "callback_client"),
	}
}

// Close closes the gRPC connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// NotifyCompletion sends a finished parse task to the callback endpoint
func (c *Client) NotifyCompletion(ctx context.Context, result *background.TaskResult) error {
	req, err := buildCallbackRequest(result)
	if err != nil {
		return fmt.Errorf("failed to build callback request: %w", err)
	}

	c.logger.Info("Sending parse callback", map[string]interface{}{
		"process_id": result.ProcessID,
		"status":     result.Status,
		"target":     c.conn.Target(),
	})

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(callCtx, MethodParseResumeCallback, req, resp); err != nil {
		c.logger.Error("Failed to send parse callback", map[string]interface{}{
			"process_id": result.ProcessID,
			"error":      err.Error(),
		})
		return fmt.Errorf("failed to send callback: %w", err)
	}

	logFields := map[string]interface{}{
		"process_id": result.ProcessID,
	}
	if msg, ok := resp.GetFields()["msg"]; ok {
		logFields["response_msg"] = msg.GetStringValue()
	}
	c.logger.Info("Parse callback sent successfully", logFields)

	return nil
}

// buildCallbackRequest flattens a task result into a Struct. Failed tasks carry a null data field.
func buildCallbackRequest(result *background.TaskResult) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"process_id": result.ProcessID,
		"status":     string(result.Status),
		"operation":  operationParse,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		"data":       nil,
	}

	if result.CompletedAt != nil {
		fields["timestamp"] = result.CompletedAt.UTC().Format(time.RFC3339Nano)
	}
	if result.ProcessingTime != nil {
		fields["processing_time"] = result.ProcessingTime.String()
	}
	if result.Error != "" {
		fields["error"] = result.Error
	}

	if result.Status == background.TaskStatusSuccess {
		if data, ok := result.Data.(*background.ParseTaskData); ok && data != nil {
			converted, err := toMap(data)
			if err != nil {
				return nil, err
			}
			fields["data"] = converted
		}
	}

	if filename, ok := result.Metadata["filename"].(string); ok {
		fields["metadata"] = map[string]interface{}{"filename": filename}
	}

	return structpb.NewStruct(fields)
}

// toMap converts a value to the generic form structpb accepts
func toMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// determineConnectionParams picks plaintext for localhost and TLS for everything else
func determineConnectionParams(serverAddress string, logger types.Logger) (string, credentials.TransportCredentials) {
	if isLocalhost(serverAddress) {
		addr := ensurePort(serverAddress, "9090")
		logger.Info("Using insecure connection for localhost", map[string]interface{}{
			"address": addr,
		})
		return addr, insecure.NewCredentials()
	}

	addr := ensurePort(serverAddress, "443")
	logger.Info("Using TLS connection", map[string]interface{}{
		"address": addr,
	})
	return addr, credentials.NewTLS(nil)
}

func isLocalhost(addr string) bool {
	host := strings.Split(addr, ":")[0]
	return host == "localhost" || host == "127.0.0.1"
}

// ensurePort adds a default port to the address if no port is specified
func ensurePort(addr, defaultPort string) string {
	if strings.Contains(addr, ":") {
		return addr
	}
	return net.JoinHostPort(addr, defaultPort)
}
