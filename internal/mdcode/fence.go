package mdcode

import (
	"strings"
	"unicode"
)

const minFenceSize = 3

// fence is the state of an open fenced code block.
type fence struct {
	glyph byte
	size  int
	lang  string
	start int
	body  strings.Builder
}

// openFence returns the fence opened by line, or nil if line is not a fence
// opener. lineNo is the line number of the opener.
func openFence(line string, lineNo int) *fence {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	if len(trimmed) == 0 || (trimmed[0] != '`' && trimmed[0] != '~') {
		return nil
	}

	size := runLength(trimmed, trimmed[0])
	if size < minFenceSize {
		return nil
	}

	return &fence{
		glyph: trimmed[0],
		size:  size,
		lang:  strings.TrimSpace(trimmed[size:]),
		start: lineNo + 1,
	}
}

// closes reports whether line terminates the fence: a run of the opening glyph
// at least as long as the opener. Anything after the run is ignored.
func (f *fence) closes(line string) bool {
	size := runLength(strings.TrimLeftFunc(line, unicode.IsSpace), f.glyph)

	return size >= minFenceSize && size >= f.size
}

func (f *fence) write(line string) {
	f.body.WriteString(line)
	f.body.WriteByte('\n')
}

// block completes the fence. end is the last body line, or the last line of
// the document when the fence was never closed.
func (f *fence) block(source string, end int) Block {
	return Block{
		Source:    source,
		Kind:      Fenced,
		Lang:      f.lang,
		StartLine: f.start,
		EndLine:   end,
		Code:      strings.TrimSuffix(f.body.String(), "\n"),
	}
}

func runLength(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}

	return n
}
