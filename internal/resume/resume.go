// Package resume extracts structured resume data from documents: the document is
// converted to Markdown, then an LLM maps the Markdown onto the ResumeData schema.
package resume

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-parser/internal/config"
	"resume-parser/internal/llm"
	"resume-parser/internal/logging"
	"resume-parser/internal/logging/types"
	"resume-parser/internal/prompts"
	"resume-parser/internal/settings"
	"resume-parser/pkg/models"
)

// MaxTokens is the completion budget for one extraction
const MaxTokens = 8192

var (
	// ErrSchemaValidation is returned when the completion does not fit ResumeData
	ErrSchemaValidation = errors.New("resume schema validation failed")
	// ErrInvalidJSON is returned when the completion is not a JSON object
	ErrInvalidJSON = llm.ErrInvalidJSON
	// ErrEmptyInput is returned for blank Markdown
	ErrEmptyInput = errors.New("resume text is empty")
)

// Completer produces a JSON object for a prompt
type Completer interface {
	CompleteJSON(ctx context.Context, req llm.CompletionRequest) (map[string]interface{}, error)
}

// DocumentConverter turns document bytes into Markdown
type DocumentConverter interface {
	ConvertDocument(ctx context.Context, content []byte, filename string) (string, error)
}

// SettingsReader provides the user's date formatting preference
type SettingsReader interface {
	PreserveMonths() bool
}

// Result is the outcome of parsing a document
type Result struct {
	Markdown string
	Resume   *models.ResumeData
}

// Service runs the convert-then-extract pipeline
type Service struct {
	converter DocumentConverter
	completer Completer
	settings  SettingsReader
	logger    types.Logger
}

// NewService wires a Service; the settings file location comes from cfg
func NewService(cfg *config.Config, converter DocumentConverter, completer Completer) *Service {
	return NewServiceWithSettings(converter, completer, settings.NewReader(cfg.Parser.SettingsPath))
}

// NewServiceWithSettings wires a Service with an explicit settings source
func NewServiceWithSettings(converter DocumentConverter, completer Completer, reader SettingsReader) *Service {
	return &Service{
		converter: converter,
		completer: completer,
		settings:  reader,
		logger:    logging.GetGlobalLogger().WithField("component", "resume_parser"),
	}
}

// ConvertDocument converts document bytes to Markdown
func (s *Service) ConvertDocument(ctx context.Context, content []byte, filename string) (string, error) {
	return s.converter.ConvertDocument(ctx, content, filename)
}

// ParseResumeToJSON extracts ResumeData from resume Markdown. The date rules follow
// the preserve_months setting, read on every call.
func (s *Service) ParseResumeToJSON(ctx context.Context, markdown string) (*models.ResumeData, error) {
	if strings.TrimSpace(markdown) == "" {
		return nil, ErrEmptyInput
	}

	preserveMonths := s.settings.PreserveMonths()
	prompt := prompts.RenderParsePrompt(prompts.ResumeSchemaExample, prompts.DateRules(preserveMonths), markdown)

	start := time.Now()
	raw, err := s.completer.CompleteJSON(ctx, llm.CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: prompts.SystemPrompt,
		MaxTokens:    MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("resume extraction failed: %w", err)
	}

	resume, err := Decode(raw)
	if err != nil {
		s.logger.Warn("LLM output failed schema validation", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Resume extracted", map[string]interface{}{
		"preserve_months":   preserveMonths,
		"markdown_chars":    len(markdown),
		"work_experience":   len(resume.WorkExperience),
		"education":         len(resume.Education),
		"personal_projects": len(resume.PersonalProjects),
		"custom_sections":   len(resume.CustomSections),
		"duration":          time.Since(start).String(),
	})

	return resume, nil
}

// ParseResume converts the document and extracts ResumeData from it
func (s *Service) ParseResume(ctx context.Context, content []byte, filename string) (*Result, error) {
	markdown, err := s.converter.ConvertDocument(ctx, content, filename)
	if err != nil {
		return nil, err
	}

	resume, err := s.ParseResumeToJSON(ctx, markdown)
	if err != nil {
		return nil, err
	}

	return &Result{Markdown: markdown, Resume: resume}, nil
}
