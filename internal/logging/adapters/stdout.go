package adapters

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"resume-parser/internal/logging/types"
)

// StdoutAdapter implements the LogAdapter interface for stdout output
type StdoutAdapter struct {
	name string
	sink *logrus.Logger
	mu   sync.Mutex
}

// StdoutConfig represents configuration for the stdout adapter
type StdoutConfig struct {
	Format    string    `yaml:"format"`    // json or text
	Colorized bool      `yaml:"colorized"` // only honoured by the text format
	Output    io.Writer `yaml:"-"`         // defaults to os.Stdout
}

// NewStdoutAdapter creates a new stdout adapter
func NewStdoutAdapter(name string, config StdoutConfig) *StdoutAdapter {
	out := config.Output
	if out == nil {
		out = os.Stdout
	}

	return &StdoutAdapter{
		name: name,
		sink: newSink(out, newFormatter(config.Format, config.Colorized)),
	}
}

// Write writes a log entry to stdout
func (a *StdoutAdapter) Write(entry *types.LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	emit(a.sink, entry)
	return nil
}

// Close is a no-op for stdout
func (a *StdoutAdapter) Close() error {
	return nil
}

func (a *StdoutAdapter) Health() error {
	return nil
}

func (a *StdoutAdapter) Name() string {
	return a.name
}
