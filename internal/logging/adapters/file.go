package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"resume-parser/internal/logging/types"
)

// FileAdapter implements the LogAdapter interface for file output with size based rotation
type FileAdapter struct {
	name   string
	config FileConfig
	file   *rotatingFile
	sink   *logrus.Logger
	mu     sync.Mutex
}

// FileConfig represents configuration for the file adapter
type FileConfig struct {
	FilePath    string      `yaml:"file_path"`     // path to log file
	Format      string      `yaml:"format"`        // json or text
	MaxSize     int64       `yaml:"max_size"`      // rotate once the file reaches this many bytes (0 = never)
	MaxBackups  int         `yaml:"max_backups"`   // rotated files to keep
	CreateDirs  bool        `yaml:"create_dirs"`   // create parent directories if they don't exist
	FileMode    os.FileMode `yaml:"file_mode"`     // file permissions
	SyncOnWrite bool        `yaml:"sync_on_write"` // fsync after each entry
}

// NewFileAdapter creates a new file adapter
func NewFileAdapter(name string, config FileConfig) (*FileAdapter, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("file_path is required for file adapter")
	}
	if config.FileMode == 0 {
		config.FileMode = 0644
	}
	if config.MaxBackups == 0 {
		config.MaxBackups = 10
	}

	if config.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directories: %w", err)
		}
	}

	rf := &rotatingFile{config: config}
	if err := rf.open(); err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &FileAdapter{
		name:   name,
		config: config,
		file:   rf,
		sink:   newSink(rf, newFormatter(config.Format, false)),
	}, nil
}

// Write writes a log entry to the file
func (a *FileAdapter) Write(entry *types.LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file.current == nil {
		return fmt.Errorf("log file %s is closed", a.config.FilePath)
	}

	emit(a.sink, entry)

	if err := a.file.lastErr; err != nil {
		a.file.lastErr = nil
		return fmt.Errorf("failed to write to log file: %w", err)
	}

	if a.config.SyncOnWrite {
		if err := a.file.current.Sync(); err != nil {
			return fmt.Errorf("failed to sync log file: %w", err)
		}
	}

	return nil
}

// Close closes the file adapter
func (a *FileAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.file.close()
}

// Health returns the health status of the adapter
func (a *FileAdapter) Health() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file.current == nil {
		return fmt.Errorf("log file is not open")
	}

	if _, err := a.file.current.Stat(); err != nil {
		return fmt.Errorf("log file is not accessible: %w", err)
	}

	return nil
}

func (a *FileAdapter) Name() string {
	return a.name
}

// rotatingFile is the io.Writer handed to logrus. Callers hold FileAdapter.mu.
type rotatingFile struct {
	config  FileConfig
	current *os.File
	size    int64
	lastErr error
}

func (f *rotatingFile) Write(p []byte) (int, error) {
	if f.config.MaxSize > 0 && f.size >= f.config.MaxSize {
		if err := f.rotate(); err != nil {
			f.lastErr = err
			return 0, err
		}
	}

	n, err := f.current.Write(p)
	f.size += int64(n)
	if err != nil {
		f.lastErr = err
	}
	return n, err
}

func (f *rotatingFile) open() error {
	file, err := os.OpenFile(f.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, f.config.FileMode)
	if err != nil {
		return err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}

	f.current = file
	f.size = stat.Size()
	return nil
}

func (f *rotatingFile) close() error {
	if f.current == nil {
		return nil
	}
	err := f.current.Close()
	f.current = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

func (f *rotatingFile) rotate() error {
	if err := f.close(); err != nil {
		return err
	}

	backupPath := fmt.Sprintf("%s.%s", f.config.FilePath, time.Now().Format("20060102-150405.000000"))
	if err := os.Rename(f.config.FilePath, backupPath); err != nil {
		return fmt.Errorf("failed to rename log file: %w", err)
	}

	if err := f.pruneBackups(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to clean up old log backups: %v\n", err)
	}

	return f.open()
}

// pruneBackups keeps the newest MaxBackups rotated files
func (f *rotatingFile) pruneBackups() error {
	dir := filepath.Dir(f.config.FilePath)
	baseName := filepath.Base(f.config.FilePath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var backups []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, baseName+".") {
			backups = append(backups, filepath.Join(dir, name))
		}
	}

	// timestamp suffixes sort lexically; newest first
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))

	if len(backups) > f.config.MaxBackups {
		for _, backup := range backups[f.config.MaxBackups:] {
			if err := os.Remove(backup); err != nil {
				fmt.Fprintf(os.Stderr, "failed to remove old backup %s: %v\n", backup, err)
			}
		}
	}

	return nil
}
