package mdcode

import "strings"

// StdinName is the document name used for piped input.
const StdinName = "stdin"

// Document is a named Markdown text. Name is usually a file path.
type Document struct {
	Name    string
	Content string
}

// splitLines breaks text into lines without their terminators. A final
// terminator does not start another line and a trailing carriage return is
// dropped from every line.
func splitLines(text string) []string {
	if len(text) == 0 {
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}
