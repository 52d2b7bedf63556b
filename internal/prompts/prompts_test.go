package prompts

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRules(t *testing.T) {
	assert.Contains(t, DateRules(false), `"2019 - 2023"`)
	assert.NotContains(t, DateRules(false), "Jan")
	assert.Contains(t, DateRules(true), `"Jan 2019 - Mar 2023"`)
}

func TestRenderParsePrompt(t *testing.T) {
	prompt := RenderParsePrompt(`{"a":{"b":1}}`, "- RULE", "# Jane Doe")

	assert.Contains(t, prompt, "Schema:\n{\"a\":{\"b\":1}}\n")
	assert.Contains(t, prompt, "- RULE\n")
	assert.True(t, strings.HasSuffix(prompt, "Resume:\n# Jane Doe\n\nOutput only the JSON object."))
	assert.NotContains(t, prompt, "{{")
}

func TestRenderParsePrompt_ResumeWithPlaceholderSyntax(t *testing.T) {
	prompt := RenderParsePrompt("{}", "", "templating: {{schema}} and {{date_rules}}")
	assert.Contains(t, prompt, "templating: {{schema}} and {{date_rules}}")
}

func TestBuildParsePrompt(t *testing.T) {
	years := BuildParsePrompt("resume body", false)
	months := BuildParsePrompt("resume body", true)

	assert.Contains(t, years, DateRules(false))
	assert.Contains(t, months, DateRules(true))
	assert.Contains(t, years, `"personalInfo"`)
}

func TestResumeSchemaExampleIsValidJSON(t *testing.T) {
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(ResumeSchemaExample), &doc))

	for _, key := range []string{"personalInfo", "summary", "workExperience", "education", "personalProjects", "additional", "sectionMeta", "customSections"} {
		assert.Contains(t, doc, key)
	}
}
