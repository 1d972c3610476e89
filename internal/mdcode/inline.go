package mdcode

// parseInline returns the inline code spans of a single line. A span opens at
// a backtick run and closes at the next run of exactly the same length; runs of
// other lengths in between belong to the span's content. Empty spans and spans
// left open at the end of the line are dropped.
func parseInline(line string, lineNo int, source string) Blocks {
	var (
		blocks Blocks
		ticks  int
		start  int
	)

	for i := 0; i < len(line); {
		if line[i] != '`' {
			i++

			continue
		}

		n := runLength(line[i:], '`')

		switch {
		case ticks == 0:
			ticks, start = n, i+n
		case n == ticks:
			if code := line[start:i]; len(code) != 0 {
				blocks = append(blocks, Block{
					Source:    source,
					Kind:      Inline,
					StartLine: lineNo,
					EndLine:   lineNo,
					Code:      code,
				})
			}

			ticks = 0
		}

		i += n
	}

	return blocks
}
