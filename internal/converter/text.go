package converter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextConverter passes plain text and Markdown files through unchanged
type TextConverter struct{}

func NewTextConverter() *TextConverter {
	return &TextConverter{}
}

func (c *TextConverter) Extensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

func (c *TextConverter) Convert(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("text file is not valid UTF-8")
	}

	return string(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))), nil
}
