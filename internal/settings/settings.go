// Package settings reads user-facing parser preferences from the JSON settings file.
package settings

import (
	"errors"
	"io/fs"
	"os"

	"github.com/tidwall/gjson"

	"resume-parser/internal/logging"
	"resume-parser/internal/logging/types"
)

// PreserveMonthsKey is the settings key that keeps month precision in extracted dates
const PreserveMonthsKey = "preserve_months"

// Reader looks up flags in a settings file. The file is read on every call so edits
// take effect without a restart.
type Reader struct {
	path   string
	logger types.Logger
}

// NewReader creates a Reader for the settings file at path
func NewReader(path string) *Reader {
	return &Reader{
		path:   path,
		logger: logging.GetGlobalLogger(),
	}
}

// Path returns the settings file location
func (r *Reader) Path() string {
	return r.path
}

// PreserveMonths reports whether the settings file enables preserve_months. A missing
// file, unreadable file, malformed JSON, non-object document or absent key all yield
// false. Only the JSON literal true enables the flag.
func (r *Reader) PreserveMonths() bool {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false
		}
		r.logger.Warn("Failed to read settings file", map[string]interface{}{
			"path":  r.path,
			"key":   PreserveMonthsKey,
			"error": err.Error(),
		})
		return false
	}

	if !gjson.ValidBytes(data) {
		r.logger.Warn("Settings file is not valid JSON", map[string]interface{}{
			"path": r.path,
			"key":  PreserveMonthsKey,
		})
		return false
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		r.logger.Warn("Settings file is not a JSON object", map[string]interface{}{
			"path": r.path,
			"type": doc.Type.String(),
		})
		return false
	}

	value := doc.Get(PreserveMonthsKey)
	if value.Exists() && !value.IsBool() {
		r.logger.Debug("Ignoring non-boolean settings value", map[string]interface{}{
			"key":   PreserveMonthsKey,
			"value": value.Raw,
		})
	}

	return value.Type == gjson.True
}

// PreserveMonths reads the preserve_months flag from the settings file at path
func PreserveMonths(path string) bool {
	return NewReader(path).PreserveMonths()
}
