package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordXMLToMarkdown(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "runs are concatenated",
			body: `<w:p><w:r><w:t xml:space="preserve">Jane </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>Doe</w:t></w:r></w:p>`,
			want: "Jane Doe",
		},
		{
			name: "heading levels",
			body: `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Summary</w:t></w:r></w:p>` +
				`<w:p><w:pPr><w:pStyle w:val="Heading9"/></w:pPr><w:r><w:t>Deep</w:t></w:r></w:p>`,
			want: "# Summary\n\n###### Deep",
		},
		{
			name: "list paragraph style",
			body: `<w:p><w:pPr><w:pStyle w:val="ListParagraph"/></w:pPr><w:r><w:t>Kubernetes</w:t></w:r></w:p>`,
			want: "- Kubernetes",
		},
		{
			name: "tab stops are not text",
			body: `<w:p><w:pPr><w:tabs><w:tab w:val="right" w:pos="9000"/></w:tabs></w:pPr>` +
				`<w:r><w:t>Acme</w:t></w:r><w:r><w:tab/><w:t>2019 - 2023</w:t></w:r></w:p>`,
			want: "Acme 2019 - 2023",
		},
		{
			name: "line breaks",
			body: `<w:p><w:r><w:t>Berlin</w:t><w:br/><w:t>Germany</w:t></w:r></w:p>`,
			want: "Berlin\nGermany",
		},
		{
			name: "empty paragraphs dropped",
			body: `<w:p/><w:p><w:r><w:t>One</w:t></w:r></w:p><w:p></w:p><w:p><w:r><w:t>Two</w:t></w:r></w:p>`,
			want: "One\n\nTwo",
		},
		{
			name: "table",
			body: `<w:tbl>` +
				`<w:tr><w:tc><w:p><w:r><w:t>Skill</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Level</w:t></w:r></w:p></w:tc></w:tr>` +
				`<w:tr><w:tc><w:p><w:r><w:t>Go</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Expert</w:t></w:r></w:p></w:tc></w:tr>` +
				`</w:tbl><w:p><w:r><w:t>After</w:t></w:r></w:p>`,
			want: "| Skill | Level |\n| --- | --- |\n| Go | Expert |\n\nAfter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := wordXMLToMarkdown(wordDocument(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWordXMLToMarkdown_Malformed(t *testing.T) {
	_, err := wordXMLToMarkdown(`<w:document><w:body><w:p>`)
	assert.Error(t, err)
}

func TestHeadingLevel(t *testing.T) {
	assert.Equal(t, 1, headingLevel("Title"))
	assert.Equal(t, 2, headingLevel("Subtitle"))
	assert.Equal(t, 3, headingLevel("heading3"))
	assert.Equal(t, 0, headingLevel("Normal"))
	assert.Equal(t, 0, headingLevel("HeadingChar"))
}
