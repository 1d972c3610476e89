package mdcode

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func parseCommonMark(doc Document, inline bool) Blocks {
	source := []byte(doc.Content)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var blocks Blocks

	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) { //nolint:errcheck
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.FencedCodeBlock:
			blocks = append(blocks, fencedCodeBlock(n, doc.Name, source))

			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			if inline {
				if block, ok := codeSpan(n, doc.Name, source); ok {
					blocks = append(blocks, block)
				}
			}

			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})

	return blocks
}

func fencedCodeBlock(fcb *ast.FencedCodeBlock, source string, src []byte) Block {
	block := Block{Source: source, Kind: Fenced}

	if fcb.Info != nil {
		block.Lang = strings.TrimSpace(string(fcb.Info.Segment.Value(src)))
	}

	var buff bytes.Buffer

	lines := fcb.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buff.Write(line.Value(src))
	}

	block.Code = strings.TrimSuffix(buff.String(), "\n")

	switch {
	case lines.Len() > 0:
		first, last := lines.At(0), lines.At(lines.Len()-1)
		block.StartLine = lineAt(src, first.Start)
		block.EndLine = lineAt(src, last.Stop-1)
	case fcb.Info != nil:
		opener := lineAt(src, fcb.Info.Segment.Start)
		block.StartLine, block.EndLine = opener+1, opener
	}

	return block
}

func codeSpan(span *ast.CodeSpan, source string, src []byte) (Block, bool) {
	var (
		buff        bytes.Buffer
		first, last = -1, -1
	)

	for child := span.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			buff.Write(c.Segment.Value(src))

			if first < 0 {
				first = c.Segment.Start
			}

			last = c.Segment.Stop - 1
		case *ast.String:
			buff.Write(c.Value)
		}
	}

	if buff.Len() == 0 {
		return Block{}, false
	}

	block := Block{Source: source, Kind: Inline, Code: buff.String()}

	if first >= 0 {
		block.StartLine = lineAt(src, first)
		block.EndLine = lineAt(src, max(first, last))
	}

	return block, true
}

// lineAt returns the 1-based line number of the byte at offset.
func lineAt(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}

	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}
