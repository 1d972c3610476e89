package cmd

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/ezerfernandes/mdcode/internal/mdcode"
)

// osFS opens paths as given, relative or absolute, unlike os.DirFS.
type osFS struct{}

func (osFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// piped reports whether r is something other than an interactive terminal.
func piped(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return true
	}

	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

// readInputs returns stdin followed by files. Stdin is read when no files are
// given or when it is piped; piped stdin that turns out empty is skipped if
// files are present.
func readInputs(opts *options, files []string) ([]mdcode.Document, error) {
	var docs []mdcode.Document

	if opts.stdin != nil && (len(files) == 0 || piped(opts.stdin)) {
		data, err := io.ReadAll(opts.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}

		if len(data) != 0 || len(files) == 0 {
			docs = append(docs, mdcode.Document{Name: mdcode.StdinName, Content: string(data)})
		}
	}

	for _, file := range files {
		data, err := fs.ReadFile(opts.fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}

		docs = append(docs, mdcode.Document{Name: file, Content: string(data)})
	}

	if len(docs) == 0 {
		return nil, ErrNoInput
	}

	return docs, nil
}
