package mdcode

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	errNotFenced = errors.New("only fenced blocks can be rewritten")
	errOverlap   = errors.New("edits overlap")
)

// Edit replaces the body of a fenced block with Code.
type Edit struct {
	Block Block
	Code  string
}

// Rewrite returns content with the body lines of every edited block replaced.
// Blocks are addressed by their line range, so they must come from extracting
// content itself. An empty body (EndLine == StartLine-1) receives the new code
// as inserted lines.
func Rewrite(content string, edits []Edit) (string, error) {
	lines := splitAfter(content)

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Block.StartLine > sorted[j].Block.StartLine
	})

	for i, edit := range sorted {
		block := edit.Block

		if err := checkRange(block, len(lines)); err != nil {
			return "", err
		}

		if i > 0 && block.EndLine >= sorted[i-1].Block.StartLine {
			return "", fmt.Errorf("blocks %d and %d: %w", block.Index, sorted[i-1].Block.Index, errOverlap)
		}

		var body []string

		if len(edit.Code) != 0 {
			body = strings.SplitAfter(strings.TrimSuffix(edit.Code, "\n")+"\n", "\n")
			body = body[:len(body)-1]
		}

		tail := append(body, lines[block.EndLine:]...)
		lines = append(lines[:block.StartLine-1], tail...)
	}

	return strings.Join(lines, ""), nil
}

// Body returns the body lines of a fenced block as they appear in content.
func Body(content string, block Block) (string, error) {
	lines := splitAfter(content)

	if err := checkRange(block, len(lines)); err != nil {
		return "", err
	}

	body := strings.Join(lines[block.StartLine-1:block.EndLine], "")

	return strings.TrimSuffix(body, "\n"), nil
}

func checkRange(block Block, count int) error {
	if block.Kind != Fenced {
		return fmt.Errorf("block %d: %w", block.Index, errNotFenced)
	}

	if block.StartLine < 1 || block.EndLine < block.StartLine-1 || block.EndLine > count {
		return fmt.Errorf("block %d: lines %d-%d out of range", block.Index, block.StartLine, block.EndLine)
	}

	return nil
}

func splitAfter(content string) []string {
	lines := strings.SplitAfter(content, "\n")
	if n := len(lines); n != 0 && len(lines[n-1]) == 0 {
		lines = lines[:n-1]
	}

	return lines
}
