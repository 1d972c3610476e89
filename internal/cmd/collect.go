package cmd

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/ezerfernandes/mdcode/internal/langdetect"
	"github.com/ezerfernandes/mdcode/internal/logging"
	"github.com/ezerfernandes/mdcode/internal/mdcode"
	"github.com/ezerfernandes/mdcode/internal/region"
)

// collect reads the inputs, extracts their blocks and applies every filter.
func collect(ctx context.Context, opts *options, files []string) (mdcode.Blocks, error) {
	docs, err := readInputs(opts, files)
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	blocks := mdcode.Extract(docs, opts.extract)

	if logger.GetLevel() <= log.DebugLevel {
		counts := make(map[string]int, len(docs))
		for _, block := range blocks {
			counts[block.Source]++
		}

		for _, doc := range docs {
			logger.Debug("extracted",
				logging.FieldSource, doc.Name,
				logging.FieldBlocks, counts[doc.Name],
				logging.FieldEngine, opts.extract.Engine,
				logging.FieldInline, opts.extract.Inline)
		}
	}

	if opts.detect {
		blocks = langdetect.Annotate(blocks)
	}

	logger.Debug("filtering", logging.FieldLang, opts.selector, logging.FieldIndex, opts.number)

	blocks, err = mdcode.Select(blocks, opts.selector, opts.index)
	if err != nil {
		return nil, err
	}

	if len(opts.region) == 0 {
		return blocks, nil
	}

	if blocks, err = region.Narrow(blocks, opts.region); err != nil {
		return nil, err
	}

	if len(blocks) == 0 {
		logger.Debug("no block holds region", logging.FieldRegion, opts.region)

		return nil, mdcode.ErrNoMatch
	}

	return blocks, nil
}
