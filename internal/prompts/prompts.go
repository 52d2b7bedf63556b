// Package prompts holds the LLM prompt templates used for resume extraction.
package prompts

import (
	"github.com/valyala/fasttemplate"
)

var parseResumeTemplate = fasttemplate.New(ParseResumeTemplate, "{{", "}}")

// DateRules returns the date formatting instructions. With preserveMonths the model
// keeps month precision, otherwise dates are reduced to years.
func DateRules(preserveMonths bool) string {
	if preserveMonths {
		return dateRulesPreserveMonths
	}
	return dateRulesYearsOnly
}

// RenderParsePrompt fills the parse template. Substituted values are not re-scanned
// for placeholders, so resume text containing "{{" is passed through verbatim.
func RenderParsePrompt(schema, dateRules, resumeText string) string {
	return parseResumeTemplate.ExecuteString(map[string]interface{}{
		"schema":      schema,
		"date_rules":  dateRules,
		"resume_text": resumeText,
	})
}

// BuildParsePrompt renders the parse prompt with the bundled schema example
func BuildParsePrompt(resumeText string, preserveMonths bool) string {
	return RenderParsePrompt(ResumeSchemaExample, DateRules(preserveMonths), resumeText)
}
