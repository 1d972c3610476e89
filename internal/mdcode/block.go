package mdcode

// Kind tells fenced blocks apart from inline code spans.
type Kind int

const (
	Fenced Kind = iota
	Inline
)

func (k Kind) String() string {
	if k == Inline {
		return "inline"
	}

	return "fenced"
}

// MarshalText renders the kind as "fenced" or "inline".
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Block is a single extracted piece of code. Blocks are values: filters and
// renderers copy them and never modify the code of an extracted block.
type Block struct {
	// Index is the position of the block among all blocks of one extraction,
	// assigned before any filtering.
	Index  int
	Source string
	Kind   Kind
	// Lang is the info string of a fenced block. Empty means no language.
	Lang string
	// StartLine and EndLine are 1-based line numbers within Source. Zero
	// means the position is unknown.
	StartLine int
	EndLine   int
	Code      string
}

// HasLang reports whether the block carries a language tag.
func (b Block) HasLang() bool {
	return len(b.Lang) != 0
}

// LineCount returns the number of lines in the block's code.
func (b Block) LineCount() int {
	if len(b.Code) == 0 {
		return 0
	}

	return len(splitLines(b.Code))
}

type Blocks []Block
