// Package render writes extracted blocks in the output formats of mdcode.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rodaine/table"
	"gopkg.in/yaml.v3"

	"github.com/ezerfernandes/mdcode/internal/mdcode"
)

// Options controls raw output.
type Options struct {
	// Separator is written between blocks.
	Separator string
	// Fenced wraps every block in a backtick fence carrying its language.
	Fenced bool
	// LineNumbers prefixes lines with their source line number.
	LineNumbers bool
}

type record struct {
	Index     int         `json:"index" yaml:"index"`
	Source    string      `json:"source" yaml:"source"`
	Kind      mdcode.Kind `json:"kind" yaml:"kind"`
	Lang      *string     `json:"lang" yaml:"lang"`
	StartLine *int        `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	EndLine   *int        `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	Code      string      `json:"code" yaml:"code"`
}

func records(blocks mdcode.Blocks, lineNumbers bool) []record {
	recs := make([]record, 0, len(blocks))

	for _, block := range blocks {
		rec := record{
			Index:  block.Index,
			Source: block.Source,
			Kind:   block.Kind,
			Code:   block.Code,
		}

		if block.HasLang() {
			lang := block.Lang
			rec.Lang = &lang
		}

		if lineNumbers && block.StartLine > 0 {
			start, end := block.StartLine, block.EndLine
			rec.StartLine, rec.EndLine = &start, &end
		}

		recs = append(recs, rec)
	}

	return recs
}

// JSON writes blocks as an indented JSON array followed by a newline. Line
// numbers are included only when lineNumbers is set.
func JSON(w io.Writer, blocks mdcode.Blocks, lineNumbers bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(records(blocks, lineNumbers))
}

// YAML writes blocks as a YAML sequence with the same fields as [JSON].
func YAML(w io.Writer, blocks mdcode.Blocks, lineNumbers bool) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2) //nolint:gomnd

	if err := enc.Encode(records(blocks, lineNumbers)); err != nil {
		return err
	}

	return enc.Close()
}

func location(block mdcode.Block, lineNumbers bool) string {
	if !lineNumbers || block.StartLine == 0 {
		return block.Source
	}

	if block.StartLine != block.EndLine {
		return fmt.Sprintf("%s:%d-%d", block.Source, block.StartLine, block.EndLine)
	}

	return fmt.Sprintf("%s:%d", block.Source, block.StartLine)
}

func langLabel(block mdcode.Block) string {
	if block.HasLang() {
		return block.Lang
	}

	return "plain"
}

// List writes one line per block: "<index>: <lang> (<n> lines) [<location>]".
func List(w io.Writer, blocks mdcode.Blocks, lineNumbers bool) error {
	for _, block := range blocks {
		_, err := fmt.Fprintf(w, "%d: %s (%d lines) [%s]\n",
			block.Index, langLabel(block), block.LineCount(), location(block, lineNumbers))
		if err != nil {
			return err
		}
	}

	return nil
}

// Table writes blocks as aligned columns.
func Table(w io.Writer, blocks mdcode.Blocks, lineNumbers bool) {
	tbl := table.New("INDEX", "KIND", "LANG", "LINES", "LOCATION").WithWriter(w)

	for _, block := range blocks {
		tbl.AddRow(block.Index, block.Kind, langLabel(block), block.LineCount(), location(block, lineNumbers))
	}

	tbl.Print()
}

// Languages writes the distinct languages of blocks, one per line.
func Languages(w io.Writer, blocks mdcode.Blocks) error {
	for _, lang := range mdcode.Languages(blocks) {
		if _, err := fmt.Fprintln(w, lang); err != nil {
			return err
		}
	}

	return nil
}

// Raw writes the code of blocks joined by opts.Separator. A newline follows
// the output unless the separator already ends with one.
func Raw(w io.Writer, blocks mdcode.Blocks, opts Options) error {
	if len(blocks) == 0 {
		return nil
	}

	rendered := make([]string, len(blocks))
	for i, block := range blocks {
		rendered[i] = Block(block, opts)
	}

	out := strings.Join(rendered, opts.Separator)
	if !strings.HasSuffix(opts.Separator, "\n") {
		out += "\n"
	}

	_, err := io.WriteString(w, out)

	return err
}

// Block renders the code of a single block.
func Block(block mdcode.Block, opts Options) string {
	content := block.Code

	if opts.LineNumbers {
		start := block.StartLine
		if start == 0 {
			start = 1
		}

		content = numberLines(content, start)
	}

	if opts.Fenced {
		fence := fenceFor(block.Code)
		content = fence + block.Lang + "\n" + content + "\n" + fence
	}

	return content
}

func numberLines(content string, start int) string {
	if len(content) == 0 {
		return content
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for i, line := range lines {
		lines[i] = fmt.Sprintf("%6d: %s", start+i, strings.TrimSuffix(line, "\r"))
	}

	return strings.Join(lines, "\n")
}

// fenceFor returns a backtick fence longer than any backtick run in code.
func fenceFor(code string) string {
	longest, run := 0, 0

	for i := 0; i < len(code); i++ {
		if code[i] != '`' {
			run = 0

			continue
		}

		run++
		longest = max(longest, run)
	}

	return strings.Repeat("`", max(3, longest+1)) //nolint:gomnd
}
