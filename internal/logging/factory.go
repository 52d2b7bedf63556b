package logging

import (
	"fmt"
	"io"
	"os"

	"resume-parser/internal/logging/adapters"
	"resume-parser/internal/logging/types"
)

// AdapterFactory creates logging adapters based on configuration
type AdapterFactory struct{}

func NewAdapterFactory() *AdapterFactory {
	return &AdapterFactory{}
}

// CreateAdapter creates a logging adapter based on the provided configuration
func (f *AdapterFactory) CreateAdapter(adapterConfig types.AdapterConfig) (types.LogAdapter, error) {
	switch adapterConfig.Type {
	case "stdout":
		return adapters.NewStdoutAdapter(adapterConfig.Name, adapters.StdoutConfig{
			Format:    getStringOption(adapterConfig.Options, "format", "json"),
			Colorized: getBoolOption(adapterConfig.Options, "colorized", false),
			Output:    outputStream(getStringOption(adapterConfig.Options, "stream", "stdout")),
		}), nil
	case "file":
		return adapters.NewFileAdapter(adapterConfig.Name, adapters.FileConfig{
			FilePath:    getStringOption(adapterConfig.Options, "file_path", ""),
			Format:      getStringOption(adapterConfig.Options, "format", "json"),
			MaxSize:     getInt64Option(adapterConfig.Options, "max_size", 0),
			MaxBackups:  getIntOption(adapterConfig.Options, "max_backups", 10),
			CreateDirs:  getBoolOption(adapterConfig.Options, "create_dirs", true),
			SyncOnWrite: getBoolOption(adapterConfig.Options, "sync_on_write", false),
		})
	default:
		return nil, fmt.Errorf("unsupported adapter type: %s", adapterConfig.Type)
	}
}

// outputStream maps "stderr" to os.Stderr; anything else is stdout
func outputStream(name string) io.Writer {
	if name == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}

// Option helpers. YAML decodes numbers as int, JSON as float64; both are accepted.

func getStringOption(options map[string]interface{}, key string, defaultValue string) string {
	if str, ok := options[key].(string); ok {
		return str
	}
	return defaultValue
}

func getIntOption(options map[string]interface{}, key string, defaultValue int) int {
	switch v := options[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return defaultValue
}

func getInt64Option(options map[string]interface{}, key string, defaultValue int64) int64 {
	switch v := options[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return defaultValue
}

func getBoolOption(options map[string]interface{}, key string, defaultValue bool) bool {
	if b, ok := options[key].(bool); ok {
		return b
	}
	return defaultValue
}
