package mdcode

import (
	"fmt"
	"strings"
)

// Engine selects the parser used to find code blocks.
type Engine int

const (
	// EngineScan is the line scanner. It accepts unterminated fences and
	// indented fences and never fails.
	EngineScan Engine = iota
	// EngineCommonMark parses the document as CommonMark with goldmark.
	EngineCommonMark
)

func (e Engine) String() string {
	if e == EngineCommonMark {
		return "commonmark"
	}

	return "scan"
}

// ParseEngine returns the engine with the given name.
func ParseEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "scan":
		return EngineScan, nil
	case "commonmark", "goldmark":
		return EngineCommonMark, nil
	}

	return EngineScan, fmt.Errorf("unknown engine %q", name)
}

// Options control extraction.
type Options struct {
	// Inline enables inline code span extraction.
	Inline bool
	Engine Engine
}

// Extract parses every document in order and numbers the resulting blocks
// 0..N-1, documents first, then order of discovery within a document.
func Extract(docs []Document, opts Options) Blocks {
	var blocks Blocks

	for _, doc := range docs {
		blocks = append(blocks, opts.Engine.parse(doc, opts.Inline)...)
	}

	for i := range blocks {
		blocks[i].Index = i
	}

	return blocks
}

func (e Engine) parse(doc Document, inline bool) Blocks {
	if e == EngineCommonMark {
		return parseCommonMark(doc, inline)
	}

	return parseDocument(doc, inline)
}
