package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser/internal/config"
	"resume-parser/internal/logging/adapters"
)

type recordingAdapter struct {
	name    string
	entries []*LogEntry
	closed  bool
	failing error
}

func (r *recordingAdapter) Write(entry *LogEntry) error {
	r.entries = append(r.entries, entry)
	return r.failing
}
func (r *recordingAdapter) Close() error  { r.closed = true; return nil }
func (r *recordingAdapter) Health() error { return nil }
func (r *recordingAdapter) Name() string  { return r.name }

func TestMultiLogger_LevelFiltering(t *testing.T) {
	logger := NewMultiLogger()
	rec := &recordingAdapter{name: "rec"}
	require.NoError(t, logger.AddAdapter(rec))

	logger.SetLevel(WarnLevel)
	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept too")

	require.Len(t, rec.entries, 2)
	assert.Equal(t, "kept", rec.entries[0].Message)
	assert.Equal(t, ErrorLevel, rec.entries[1].Level)
}

func TestMultiLogger_FieldsAreMergedNotShared(t *testing.T) {
	logger := NewMultiLogger()
	rec := &recordingAdapter{name: "rec"}
	require.NoError(t, logger.AddAdapter(rec))

	child := logger.WithField("request_id", "abc")
	child.Info("parsing", map[string]interface{}{"filename": "cv.pdf"})
	logger.Info("plain")

	require.Len(t, rec.entries, 2)
	assert.Equal(t, "abc", rec.entries[0].Fields["request_id"])
	assert.Equal(t, "cv.pdf", rec.entries[0].Fields["filename"])
	assert.NotContains(t, rec.entries[1].Fields, "request_id")
}

func TestMultiLogger_WithError(t *testing.T) {
	logger := NewMultiLogger()
	rec := &recordingAdapter{name: "rec"}
	require.NoError(t, logger.AddAdapter(rec))

	logger.WithError(errors.New("boom")).Error("failed")

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "boom", rec.entries[0].Fields["error"])
}

func TestMultiLogger_SetLevelVisibleToChildren(t *testing.T) {
	logger := NewMultiLogger()
	rec := &recordingAdapter{name: "rec"}
	require.NoError(t, logger.AddAdapter(rec))

	child := logger.WithField("component", "converter")
	logger.SetLevel(ErrorLevel)
	child.Info("dropped")

	assert.Empty(t, rec.entries)
	assert.Equal(t, ErrorLevel, child.GetLevel())
}

func TestMultiLogger_AdapterRegistry(t *testing.T) {
	logger := NewMultiLogger()
	a := &recordingAdapter{name: "a"}
	b := &recordingAdapter{name: "b"}

	require.NoError(t, logger.AddAdapter(b))
	require.NoError(t, logger.AddAdapter(a))
	assert.Error(t, logger.AddAdapter(&recordingAdapter{name: "a"}))
	assert.Equal(t, []string{"a", "b"}, logger.AdapterNames())

	require.NoError(t, logger.RemoveAdapter("a"))
	assert.True(t, a.closed)
	assert.Error(t, logger.RemoveAdapter("a"))

	require.NoError(t, logger.Close())
	assert.True(t, b.closed)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLogLevel("warning"))
	assert.Equal(t, FatalLevel, ParseLogLevel("fatal"))
	assert.Equal(t, InfoLevel, ParseLogLevel("nonsense"))
}

func TestStdoutAdapter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewMultiLogger()
	require.NoError(t, logger.AddAdapter(adapters.NewStdoutAdapter("stdout", adapters.StdoutConfig{
		Format: "json",
		Output: &buf,
	})))

	logger.Info("document converted", map[string]interface{}{"extension": ".pdf"})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "document converted", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, ".pdf", line["extension"])
}

func TestStdoutAdapter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	adapter := adapters.NewStdoutAdapter("stdout", adapters.StdoutConfig{Format: "text", Output: &buf})
	logger := NewMultiLogger()
	require.NoError(t, logger.AddAdapter(adapter))

	logger.Warn("settings unreadable", map[string]interface{}{"path": "data/config.json"})

	out := buf.String()
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "settings unreadable")
	assert.Contains(t, out, "path=data/config.json")
}

func TestFileAdapter_WritesAndRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "app.log")

	adapter, err := adapters.NewFileAdapter("file", adapters.FileConfig{
		FilePath:   path,
		Format:     "json",
		MaxSize:    64,
		MaxBackups: 1,
		CreateDirs: true,
	})
	require.NoError(t, err)

	logger := NewMultiLogger()
	require.NoError(t, logger.AddAdapter(adapter))
	for i := 0; i < 5; i++ {
		logger.Info(strings.Repeat("x", 80))
	}
	require.NoError(t, adapter.Health())
	require.NoError(t, logger.Close())

	backups, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	assert.Len(t, backups, 1)
	assert.FileExists(t, path)
	assert.Error(t, adapter.Health())
}

func TestFileAdapter_RequiresPath(t *testing.T) {
	_, err := adapters.NewFileAdapter("file", adapters.FileConfig{})
	assert.Error(t, err)
}

func TestAdapterFactory(t *testing.T) {
	factory := NewAdapterFactory()

	adapter, err := factory.CreateAdapter(AdapterConfig{Name: "console", Type: "stdout"})
	require.NoError(t, err)
	assert.Equal(t, "console", adapter.Name())

	fileAdapter, err := factory.CreateAdapter(AdapterConfig{
		Name:    "file",
		Type:    "file",
		Options: map[string]interface{}{"file_path": filepath.Join(t.TempDir(), "x.log"), "max_backups": 3},
	})
	require.NoError(t, err)
	require.NoError(t, fileAdapter.Close())

	_, err = factory.CreateAdapter(AdapterConfig{Name: "remote", Type: "betterstack"})
	assert.Error(t, err)
}

func TestOutputStream(t *testing.T) {
	assert.Equal(t, os.Stderr, outputStream("stderr"))
	assert.Equal(t, os.Stdout, outputStream("stdout"))
	assert.Equal(t, os.Stdout, outputStream(""))
}

func TestManager_FallsBackToStdout(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "debug"

	manager := NewManager()
	require.NoError(t, manager.Initialize(cfg))
	defer manager.Close()

	assert.Equal(t, DebugLevel, manager.GetLogger().GetLevel())
	assert.Equal(t, []string{"stdout"}, manager.logger.AdapterNames())
}

func TestManager_SkipsDisabledAdapters(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Adapters = append(cfg.Logging.Adapters, config.LogAdapterConfig{Name: "file", Type: "file", Enabled: false})

	manager := NewManager()
	require.NoError(t, manager.Initialize(cfg))
	defer manager.Close()

	assert.Equal(t, []string{"stdout"}, manager.logger.AdapterNames())
}

func TestGetGlobalLogger_NeverNil(t *testing.T) {
	assert.NotNil(t, GetGlobalLogger())
	assert.NotNil(t, LogWithRequestID("req-1"))
}
