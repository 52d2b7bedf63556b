package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, 8192, cfg.LLM.MaxTokens)
	assert.Equal(t, "data/config.json", cfg.Parser.SettingsPath)
	assert.Equal(t, int64(10<<20), cfg.Parser.MaxUploadBytes)
	assert.Empty(t, cfg.Parser.AllowedExtensions)
	assert.True(t, cfg.GRPC.Enabled)
}

func TestLoadConfig_YAMLWithEnvExpansion(t *testing.T) {
	t.Setenv("TEST_RESUME_MODEL", "claude-sonnet-4-0")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
server:
  port: 9090
  parse_timeout: 45s
llm:
  model: ${TEST_RESUME_MODEL}
  temperature: 0
parser:
  settings_path: /etc/resume/settings.json
  allowed_extensions: [".pdf", ".docx"]
logging:
  level: debug
  adapters:
    - name: console
      type: stdout
      enabled: true
      options:
        format: text
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Server.ParseTimeout)
	assert.Equal(t, "claude-sonnet-4-0", cfg.LLM.Model)
	assert.Equal(t, "/etc/resume/settings.json", cfg.Parser.SettingsPath)
	assert.Equal(t, []string{".pdf", ".docx"}, cfg.Parser.AllowedExtensions)
	require.Len(t, cfg.Logging.Adapters, 1)
	assert.Equal(t, "text", cfg.Logging.Adapters[0].Options["format"])
	// untouched sections keep their defaults
	assert.Equal(t, 4, cfg.Workers.PoolSize)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))

	t.Setenv("PORT", "7070")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("PARSER_ALLOWED_EXTENSIONS", ".pdf, .docx ,")
	t.Setenv("REDIS_ENABLED", "1")
	t.Setenv("GRPC_ENABLED", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, []string{".pdf", ".docx"}, cfg.Parser.AllowedExtensions)
	assert.True(t, cfg.Redis.Enabled)
	assert.False(t, cfg.GRPC.Enabled)
}

func TestLoadConfig_CallbackAddressEnablesCallback(t *testing.T) {
	t.Setenv("CALLBACK_SERVER_ADDRESS", "localhost:9091")
	t.Setenv("LOG_OUTPUT", "stderr")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.True(t, cfg.Callback.Enabled)
	assert.Equal(t, "localhost:9091", cfg.Callback.ServerAddress)
	assert.Equal(t, 30*time.Second, cfg.Callback.Timeout)
	assert.Equal(t, "stderr", cfg.Logging.Output)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().LLM.Model, cfg.LLM.Model)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_EXPAND_HOST", "example.internal")

	assert.Equal(t, "example.internal:80", expandEnvVars("${TEST_EXPAND_HOST}:80"))
	assert.Equal(t, "example.internal", expandEnvVars("$TEST_EXPAND_HOST"))
	assert.Equal(t, "${TEST_EXPAND_UNSET}", expandEnvVars("${TEST_EXPAND_UNSET}"))
}

func TestLoggingAdapterEnvVars(t *testing.T) {
	cfg := Default()
	cfg.Logging.Adapters = []LogAdapterConfig{
		{Name: "file", Type: "file", Enabled: true},
		{Name: "console", Type: "stdout", Enabled: true},
	}

	t.Setenv("LOG_FILE_PATH", "/var/log/resume-parser.log")
	t.Setenv("LOG_COLORIZED", "true")
	cfg.loadLoggingAdapterEnvVars()

	assert.Equal(t, "/var/log/resume-parser.log", cfg.Logging.Adapters[0].Options["file_path"])
	assert.Equal(t, true, cfg.Logging.Adapters[1].Options["colorized"])
}
