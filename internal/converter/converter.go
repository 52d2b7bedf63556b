// Package converter turns uploaded documents into Markdown text. Converter libraries
// work on filesystem paths, so the upload is staged in a temporary file that is always
// removed before ConvertDocument returns.
package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"resume-parser/internal/config"
	"resume-parser/internal/logging"
	"resume-parser/internal/logging/types"
)

var (
	// ErrUnsupportedFormat is returned for extensions with no registered converter
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrEmptyDocument is returned when conversion yields no text
	ErrEmptyDocument = errors.New("document contains no extractable text")
	// ErrConversion wraps failures reported by a converter library
	ErrConversion = errors.New("document conversion failed")
)

// Converter converts the document stored at path into Markdown
type Converter interface {
	Extensions() []string
	Convert(ctx context.Context, path string) (string, error)
}

// Service stages uploads on disk and dispatches them to a Converter by extension
type Service struct {
	converters map[string]Converter
	tempDir    string
	logger     types.Logger
}

// NewService creates a converter service with the built-in converters. When
// cfg.Parser.AllowedExtensions is set only those extensions are accepted.
func NewService(cfg *config.Config) *Service {
	s := &Service{
		converters: make(map[string]Converter),
		tempDir:    cfg.Parser.TempDir,
		logger:     logging.GetGlobalLogger(),
	}

	for _, c := range []Converter{NewPDFConverter(), NewDOCXConverter(), NewHTMLConverter(), NewTextConverter()} {
		s.Register(c)
	}

	if len(cfg.Parser.AllowedExtensions) > 0 {
		allowed := make(map[string]Converter)
		for _, ext := range cfg.Parser.AllowedExtensions {
			ext = normalizeExtension(ext)
			if c, ok := s.converters[ext]; ok {
				allowed[ext] = c
			} else {
				s.logger.Warn("Ignoring allowed extension without a converter", map[string]interface{}{
					"extension": ext,
				})
			}
		}
		s.converters = allowed
	}

	return s
}

// Register adds c for every extension it handles, replacing earlier registrations
func (s *Service) Register(c Converter) {
	for _, ext := range c.Extensions() {
		s.converters[normalizeExtension(ext)] = c
	}
}

// SupportedExtensions lists accepted extensions in sorted order
func (s *Service) SupportedExtensions() []string {
	exts := make([]string, 0, len(s.converters))
	for ext := range s.converters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether filename has an accepted extension
func (s *Service) Supports(filename string) bool {
	_, ok := s.converters[Extension(filename)]
	return ok
}

// ConvertDocument writes content to a temporary file named after filename's extension,
// converts it and returns the Markdown text.
func (s *Service) ConvertDocument(ctx context.Context, content []byte, filename string) (markdown string, err error) {
	ext := Extension(filename)
	conv, ok := s.converters[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmpPath, err := s.stage(content, ext)
	if err != nil {
		return "", err
	}
	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("Failed to remove temporary document", map[string]interface{}{
				"path":  tmpPath,
				"error": rmErr.Error(),
			})
		}
	}()

	// Converter libraries panic on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			markdown = ""
			err = fmt.Errorf("%w: %s: %v", ErrConversion, ext, r)
		}
	}()

	start := time.Now()
	markdown, err = conv.Convert(ctx, tmpPath)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %v", ErrConversion, ext, err)
	}

	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyDocument, filename)
	}

	s.logger.Debug("Document converted", map[string]interface{}{
		"extension":      ext,
		"input_bytes":    len(content),
		"markdown_chars": len(markdown),
		"duration":       time.Since(start).String(),
	})

	return markdown, nil
}

// stage writes content into a new temporary file carrying ext and returns its path
func (s *Service) stage(content []byte, ext string) (string, error) {
	tmp, err := os.CreateTemp(s.tempDir, "resume-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temporary file: %w", err)
	}

	return tmp.Name(), nil
}

// Extension returns the lower-cased suffix of filename including the dot
func Extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// ConvertDocument converts content with the built-in converters and default settings
func ConvertDocument(ctx context.Context, content []byte, filename string) (string, error) {
	return NewService(config.Default()).ConvertDocument(ctx, content, filename)
}
