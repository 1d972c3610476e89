package mdcode

// parseDocument scans doc line by line. While a fence is open every line
// belongs to it; only lines outside any fence are searched for inline spans.
func parseDocument(doc Document, inline bool) Blocks {
	var (
		blocks Blocks
		open   *fence
		last   int
	)

	for i, line := range splitLines(doc.Content) {
		lineNo := i + 1
		last = lineNo

		if open != nil {
			if open.closes(line) {
				blocks = append(blocks, open.block(doc.Name, lineNo-1))
				open = nil
			} else {
				open.write(line)
			}

			continue
		}

		if open = openFence(line, lineNo); open != nil {
			continue
		}

		if inline {
			blocks = append(blocks, parseInline(line, lineNo, doc.Name)...)
		}
	}

	// An unterminated fence runs to the end of the document.
	if open != nil {
		blocks = append(blocks, open.block(doc.Name, last))
	}

	return blocks
}
