package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
		ParseTimeout time.Duration `yaml:"parse_timeout" default:"2m"`
	} `yaml:"server"`

	Workers struct {
		PoolSize  int `yaml:"pool_size" default:"4"`
		QueueSize int `yaml:"queue_size" default:"100"`
	} `yaml:"workers"`

	BackgroundTasks struct {
		TaskTimeout     time.Duration `yaml:"task_timeout" default:"300s"`
		CleanupInterval time.Duration `yaml:"cleanup_interval" default:"1h"`
		MaxTaskAge      time.Duration `yaml:"max_task_age" default:"24h"`
	} `yaml:"background_tasks"`

	LLM struct {
		Provider    string        `yaml:"provider" default:"claude"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model" default:"claude-3-7-sonnet-latest"`
		BaseURL     string        `yaml:"base_url"`
		MaxTokens   int           `yaml:"max_tokens" default:"8192"`
		Temperature float32       `yaml:"temperature" default:"0.1"`
		Timeout     time.Duration `yaml:"timeout" default:"120s"`
		RateLimit   int           `yaml:"rate_limit" default:"60"` // requests per minute, 0 disables
		// SkipHealthCheck avoids a billable probe request on startup
		SkipHealthCheck bool `yaml:"skip_health_check"`
	} `yaml:"llm"`

	Parser struct {
		SettingsPath      string   `yaml:"settings_path" default:"data/config.json"`
		TempDir           string   `yaml:"temp_dir"`
		MaxUploadBytes    int64    `yaml:"max_upload_bytes" default:"10485760"`
		// AllowedExtensions restricts uploads; empty means every registered converter
		AllowedExtensions []string `yaml:"allowed_extensions"`
	} `yaml:"parser"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []LogAdapterConfig `yaml:"adapters"`
	} `yaml:"logging"`

	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"redis"`

	GRPC struct {
		Enabled        bool `yaml:"enabled" default:"true"`
		MaxMessageSize int  `yaml:"max_message_size" default:"33554432"`
		Reflection     bool `yaml:"reflection" default:"true"`
	} `yaml:"grpc"`

	// Callback pushes async parse results to a gRPC endpoint when enabled
	Callback struct {
		Enabled       bool          `yaml:"enabled"`
		ServerAddress string        `yaml:"server_address"`
		Timeout       time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"callback"`
}

// LogAdapterConfig configures one logging adapter
type LogAdapterConfig struct {
	Name    string                 `yaml:"name"`
	Type    string                 `yaml:"type"`
	Enabled bool                   `yaml:"enabled"`
	Options map[string]interface{} `yaml:"options"`
}

var (
	bracedEnvPattern = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareEnvPattern   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	s = bracedEnvPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if env var not found
	})

	s = bareEnvPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// Default returns a configuration populated with built-in defaults only
func Default() *Config {
	config := &Config{}

	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second
	config.Server.ParseTimeout = 2 * time.Minute

	config.Workers.PoolSize = 4
	config.Workers.QueueSize = 100

	config.BackgroundTasks.TaskTimeout = 300 * time.Second
	config.BackgroundTasks.CleanupInterval = 1 * time.Hour
	config.BackgroundTasks.MaxTaskAge = 24 * time.Hour

	config.LLM.Provider = "claude"
	config.LLM.Model = "claude-3-7-sonnet-latest"
	config.LLM.MaxTokens = 8192
	config.LLM.Temperature = 0.1
	config.LLM.Timeout = 120 * time.Second
	config.LLM.RateLimit = 60

	config.Parser.SettingsPath = "data/config.json"
	config.Parser.MaxUploadBytes = 10 << 20

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second

	config.GRPC.Enabled = true
	config.GRPC.MaxMessageSize = 32 << 20
	config.GRPC.Reflection = true

	config.Callback.Timeout = 30 * time.Second

	return config
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		c.LLM.BaseURL = baseURL
	}

	if maxTokens := os.Getenv("LLM_MAX_TOKENS"); maxTokens != "" {
		if n, err := strconv.Atoi(maxTokens); err == nil {
			c.LLM.MaxTokens = n
		}
	}

	if rateLimit := os.Getenv("LLM_RATE_LIMIT"); rateLimit != "" {
		if n, err := strconv.Atoi(rateLimit); err == nil {
			c.LLM.RateLimit = n
		}
	}

	if timeout := os.Getenv("LLM_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.LLM.Timeout = d
		}
	}

	if skip := os.Getenv("LLM_SKIP_HEALTH_CHECK"); skip != "" {
		c.LLM.SkipHealthCheck = parseBool(skip)
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if logOutput := os.Getenv("LOG_OUTPUT"); logOutput != "" {
		c.Logging.Output = logOutput
	}

	// Parser configuration
	if settingsPath := os.Getenv("SETTINGS_PATH"); settingsPath != "" {
		c.Parser.SettingsPath = settingsPath
	}

	if tempDir := os.Getenv("PARSER_TEMP_DIR"); tempDir != "" {
		c.Parser.TempDir = tempDir
	}

	if maxUpload := os.Getenv("PARSER_MAX_UPLOAD_BYTES"); maxUpload != "" {
		if n, err := strconv.ParseInt(maxUpload, 10, 64); err == nil {
			c.Parser.MaxUploadBytes = n
		}
	}

	if allowed := os.Getenv("PARSER_ALLOWED_EXTENSIONS"); allowed != "" {
		var exts []string
		for _, ext := range strings.Split(allowed, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				exts = append(exts, ext)
			}
		}
		c.Parser.AllowedExtensions = exts
	}

	// Redis configuration
	if redisEnabled := os.Getenv("REDIS_ENABLED"); redisEnabled != "" {
		c.Redis.Enabled = parseBool(redisEnabled)
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if redisTimeout := os.Getenv("REDIS_TIMEOUT"); redisTimeout != "" {
		if timeout, err := time.ParseDuration(redisTimeout); err == nil {
			c.Redis.Timeout = timeout
		}
	}

	if grpcEnabled := os.Getenv("GRPC_ENABLED"); grpcEnabled != "" {
		c.GRPC.Enabled = parseBool(grpcEnabled)
	}

	if callbackAddr := os.Getenv("CALLBACK_SERVER_ADDRESS"); callbackAddr != "" {
		c.Callback.ServerAddress = callbackAddr
		c.Callback.Enabled = true
	}

	if callbackEnabled := os.Getenv("CALLBACK_ENABLED"); callbackEnabled != "" {
		c.Callback.Enabled = parseBool(callbackEnabled)
	}

	c.loadLoggingAdapterEnvVars()
}

// loadLoggingAdapterEnvVars loads environment variables for logging adapters
func (c *Config) loadLoggingAdapterEnvVars() {
	for i := range c.Logging.Adapters {
		adapter := &c.Logging.Adapters[i]

		switch adapter.Type {
		case "file":
			if path := os.Getenv("LOG_FILE_PATH"); path != "" {
				if adapter.Options == nil {
					adapter.Options = make(map[string]interface{})
				}
				adapter.Options["file_path"] = path
			}
		case "stdout":
			if colorized := os.Getenv("LOG_COLORIZED"); colorized != "" {
				if adapter.Options == nil {
					adapter.Options = make(map[string]interface{})
				}
				adapter.Options["colorized"] = parseBool(colorized)
			}
		}
	}
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}
