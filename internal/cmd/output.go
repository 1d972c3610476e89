package cmd

import (
	"io"

	"github.com/ezerfernandes/mdcode/internal/mdcode"
	"github.com/ezerfernandes/mdcode/internal/render"
)

func output(w io.Writer, blocks mdcode.Blocks, opts *options) error {
	switch {
	case opts.selector.Listing():
		return render.Languages(w, blocks)
	case opts.json:
		return render.JSON(w, blocks, opts.lineNumbers)
	case opts.yaml:
		return render.YAML(w, blocks, opts.lineNumbers)
	case opts.list:
		return render.List(w, blocks, opts.lineNumbers)
	case opts.table:
		render.Table(w, blocks, opts.lineNumbers)

		return nil
	}

	return render.Raw(w, blocks, render.Options{
		Separator:   opts.separator,
		Fenced:      opts.fenced,
		LineNumbers: opts.lineNumbers,
	})
}
