package converter

import (
	"regexp"
	"strings"
)

var (
	inlineSpace = regexp.MustCompile(`[ \t\x{00A0}]+`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
)

// tidyLines collapses runs of inline whitespace, trims every line and keeps at most one
// blank line between blocks
func tidyLines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}
