package converter

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DOCXConverter renders the main WordprocessingML part of a .docx file as Markdown.
// Heading and title styles become ATX headings, numbered or bulleted paragraphs become
// list items and tables become pipe tables.
type DOCXConverter struct{}

func NewDOCXConverter() *DOCXConverter {
	return &DOCXConverter{}
}

func (c *DOCXConverter) Extensions() []string {
	return []string{".docx"}
}

func (c *DOCXConverter) Convert(ctx context.Context, path string) (string, error) {
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	return wordXMLToMarkdown(doc.Editable().GetContent())
}

// wordXMLToMarkdown walks word/document.xml. Elements are matched by local name so
// both the w: and the strict OOXML namespaces work.
func wordXMLToMarkdown(content string) (string, error) {
	w := &wordWalker{}
	dec := xml.NewDecoder(strings.NewReader(content))

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			w.start(t)
		case xml.EndElement:
			w.end(t)
		case xml.CharData:
			if w.inText {
				w.para.Write(t)
			}
		}
	}

	return tidyLines(w.out.String()), nil
}

type wordWalker struct {
	out strings.Builder

	para    strings.Builder
	style   string
	list    bool
	inText  bool
	inProps bool

	tableDepth int
	rowIndex   int
	cells      []string
	cell       []string
}

func (w *wordWalker) start(el xml.StartElement) {
	switch el.Name.Local {
	case "p":
		w.para.Reset()
		w.style = ""
		w.list = false
	case "pStyle":
		w.style = attrValue(el, "val")
		if strings.HasPrefix(strings.ToLower(w.style), "listparagraph") {
			w.list = true
		}
	case "numPr":
		w.list = true
	case "t":
		w.inText = true
	case "pPr":
		w.inProps = true
	case "tab":
		// w:pPr/w:tabs/w:tab is a tab stop, not a character
		if !w.inProps {
			w.para.WriteByte('\t')
		}
	case "br", "cr":
		w.para.WriteByte('\n')
	case "tbl":
		w.tableDepth++
		if w.tableDepth == 1 {
			w.rowIndex = 0
			w.out.WriteString("\n")
		}
	case "tr":
		if w.tableDepth == 1 {
			w.cells = w.cells[:0]
		}
	case "tc":
		if w.tableDepth == 1 {
			w.cell = w.cell[:0]
		}
	}
}

func (w *wordWalker) end(el xml.EndElement) {
	switch el.Name.Local {
	case "t":
		w.inText = false
	case "pPr":
		w.inProps = false
	case "p":
		line := w.paragraph()
		if w.tableDepth > 0 {
			if line != "" {
				w.cell = append(w.cell, line)
			}
			return
		}
		if line != "" {
			w.out.WriteString(line)
			w.out.WriteString("\n\n")
		}
	case "tc":
		if w.tableDepth == 1 {
			w.cells = append(w.cells, strings.ReplaceAll(strings.Join(w.cell, " "), "|", `\|`))
		}
	case "tr":
		if w.tableDepth == 1 && len(w.cells) > 0 {
			w.out.WriteString("| " + strings.Join(w.cells, " | ") + " |\n")
			if w.rowIndex == 0 {
				w.out.WriteString(strings.Repeat("| --- ", len(w.cells)) + "|\n")
			}
			w.rowIndex++
		}
	case "tbl":
		w.tableDepth--
		if w.tableDepth == 0 {
			w.out.WriteString("\n")
		}
	}
}

func (w *wordWalker) paragraph() string {
	text := strings.TrimSpace(w.para.String())
	if text == "" {
		return ""
	}
	if w.tableDepth > 0 {
		return strings.Join(strings.Fields(text), " ")
	}

	if level := headingLevel(w.style); level > 0 {
		return strings.Repeat("#", level) + " " + strings.Join(strings.Fields(text), " ")
	}
	if w.list {
		return "- " + text
	}
	return text
}

// headingLevel maps paragraph style ids to Markdown heading depth, 0 for body text
func headingLevel(style string) int {
	s := strings.ToLower(style)
	switch {
	case s == "title":
		return 1
	case s == "subtitle":
		return 2
	case strings.HasPrefix(s, "heading"):
		n, err := strconv.Atoi(strings.TrimPrefix(s, "heading"))
		if err != nil || n < 1 {
			return 0
		}
		if n > 6 {
			n = 6
		}
		return n
	}
	return 0
}

func attrValue(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
