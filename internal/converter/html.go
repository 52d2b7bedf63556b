package converter

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLConverter renders saved web pages (e.g. resumes exported from online builders)
// as Markdown
type HTMLConverter struct {
	removeTags []string
}

func NewHTMLConverter() *HTMLConverter {
	return &HTMLConverter{
		removeTags: []string{
			"script", "style", "noscript", "iframe", "object", "embed",
			"form", "input", "button", "select", "textarea",
			"svg", "meta", "link", "head", "template",
		},
	}
}

func (c *HTMLConverter) Extensions() []string {
	return []string{".html", ".htm"}
}

func (c *HTMLConverter) Convert(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	return c.ToMarkdown(doc), nil
}

// ToMarkdown renders the document body
func (c *HTMLConverter) ToMarkdown(doc *goquery.Document) string {
	for _, tag := range c.removeTags {
		doc.Find(tag).Remove()
	}

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	renderBlock(&b, root)
	return tidyLines(b.String())
}

// renderBlock writes the children of s, putting block elements on their own lines
func renderBlock(b *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, n *goquery.Selection) {
		switch name := goquery.NodeName(n); name {
		case "#text":
			b.WriteString(collapse(n.Text()))
		case "#comment":
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(name[1] - '0')
			b.WriteString("\n\n" + strings.Repeat("#", level) + " " + inline(n) + "\n\n")
		case "p", "div", "section", "article", "header", "footer", "main", "aside", "nav":
			b.WriteString("\n\n")
			renderBlock(b, n)
			b.WriteString("\n\n")
		case "ul", "ol":
			b.WriteString("\n\n")
			n.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
				marker := "- "
				if name == "ol" {
					marker = fmt.Sprintf("%d. ", i+1)
				}
				b.WriteString(marker + inline(li) + "\n")
			})
			b.WriteString("\n")
		case "table":
			renderTable(b, n)
		case "br":
			b.WriteString("\n")
		case "hr":
			b.WriteString("\n\n---\n\n")
		case "pre":
			b.WriteString("\n\n```\n" + strings.Trim(n.Text(), "\n") + "\n```\n\n")
		default:
			b.WriteString(inlineNode(n))
		}
	})
}

// inline renders the children of s as a single line
func inline(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, n *goquery.Selection) {
		b.WriteString(inlineNode(n))
	})
	return strings.TrimSpace(b.String())
}

// inlineNode renders one node with emphasis and links
func inlineNode(n *goquery.Selection) string {
	switch goquery.NodeName(n) {
	case "#text":
		return collapse(n.Text())
	case "#comment":
		return ""
	case "br":
		return " "
	case "strong", "b":
		if text := inline(n); text != "" {
			return "**" + text + "**"
		}
		return ""
	case "em", "i":
		if text := inline(n); text != "" {
			return "_" + text + "_"
		}
		return ""
	case "code":
		return "`" + n.Text() + "`"
	case "a":
		text := inline(n)
		href, _ := n.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") || text == href {
			return text
		}
		return "[" + text + "](" + href + ")"
	case "ul", "ol":
		var items []string
		n.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			items = append(items, inline(li))
		})
		return strings.Join(items, "; ")
	default:
		return inline(n)
	}
}

func renderTable(b *strings.Builder, table *goquery.Selection) {
	b.WriteString("\n\n")
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		var cells []string
		tr.Children().Filter("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.ReplaceAll(inline(cell), "|", `\|`))
		})
		if len(cells) == 0 {
			return
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		if i == 0 {
			b.WriteString(strings.Repeat("| --- ", len(cells)) + "|\n")
		}
	})
	b.WriteString("\n")
}

// collapse folds whitespace runs to single spaces, keeping a leading or trailing space
func collapse(text string) string {
	if strings.TrimSpace(text) == "" {
		if text == "" {
			return ""
		}
		return " "
	}
	fields := strings.Join(strings.Fields(text), " ")
	if startsWithSpace(text) {
		fields = " " + fields
	}
	if endsWithSpace(text) {
		fields += " "
	}
	return fields
}

func startsWithSpace(s string) bool {
	return strings.TrimLeft(s, " \t\r\n") != s
}

func endsWithSpace(s string) bool {
	return strings.TrimRight(s, " \t\r\n") != s
}
