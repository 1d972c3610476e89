package mdcode

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrNoBlocks is returned by [Select] when the input held no blocks at all.
	ErrNoBlocks = errors.New("no code blocks found")
	// ErrNoMatch is returned by [Select] when blocks existed but none passed
	// the filters.
	ErrNoMatch = errors.New("no matching code blocks found")

	errStartAfterEnd = errors.New("range start must be <= end")
)

// RangeError reports a malformed index or range expression.
type RangeError struct {
	Expr string
	Err  error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid index or range %q: %v", e.Expr, e.Err)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

// IndexFilter keeps blocks whose index lies in [Start, End]. A single index
// is a range with Start == End.
type IndexFilter struct {
	Start int
	End   int
}

// ParseIndexFilter parses "N" or "START-END" where both bounds are inclusive.
func ParseIndexFilter(expr string) (*IndexFilter, error) {
	first, second, isRange := strings.Cut(expr, "-")

	start, err := parseIndex(first)
	if err != nil {
		return nil, &RangeError{Expr: expr, Err: err}
	}

	if !isRange {
		return &IndexFilter{Start: start, End: start}, nil
	}

	end, err := parseIndex(second)
	if err != nil {
		return nil, &RangeError{Expr: expr, Err: err}
	}

	if start > end {
		return nil, &RangeError{Expr: expr, Err: errStartAfterEnd}
	}

	return &IndexFilter{Start: start, End: end}, nil
}

func parseIndex(s string) (int, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, strconv.IntSize-1)
	if err != nil {
		return 0, err
	}

	return int(n), nil
}

// Match reports whether index passes the filter.
func (f IndexFilter) Match(index int) bool {
	return index >= f.Start && index <= f.End
}

func (f IndexFilter) String() string {
	if f.Start == f.End {
		return strconv.Itoa(f.Start)
	}

	return fmt.Sprintf("%d-%d", f.Start, f.End)
}

type langMode int

const (
	langAll langMode = iota
	langList
	langFilter
)

// LangSelector is what the caller asked for regarding languages: every block,
// the list of languages present, or only blocks of one language.
type LangSelector struct {
	mode    langMode
	lang    string
	pattern glob.Glob
}

// AllLanguages selects blocks regardless of language.
func AllLanguages() LangSelector {
	return LangSelector{mode: langAll}
}

// ListLanguages asks for the languages present instead of the blocks. Blocks
// are not filtered by language.
func ListLanguages() LangSelector {
	return LangSelector{mode: langList}
}

// ByLanguage selects blocks whose language equals lang, ignoring case. A lang
// holding glob metacharacters is matched as a glob pattern, e.g. "py*".
func ByLanguage(lang string) (LangSelector, error) {
	sel := LangSelector{mode: langFilter, lang: strings.ToLower(strings.TrimSpace(lang))}

	if strings.ContainsAny(sel.lang, "*?[{") {
		pattern, err := glob.Compile(sel.lang)
		if err != nil {
			return sel, fmt.Errorf("invalid language pattern %q: %w", lang, err)
		}

		sel.pattern = pattern
	}

	return sel, nil
}

// Listing reports whether the selector asks for the language list.
func (s LangSelector) Listing() bool {
	return s.mode == langList
}

// Match reports whether block passes the selector. Blocks without a language
// never match an explicit language.
func (s LangSelector) Match(block Block) bool {
	switch s.mode {
	case langAll, langList:
		return true
	case langFilter:
		if !block.HasLang() {
			return false
		}

		if s.pattern != nil {
			return s.pattern.Match(strings.ToLower(block.Lang))
		}

		return strings.EqualFold(block.Lang, s.lang)
	}

	return false
}

func (s LangSelector) String() string {
	switch s.mode {
	case langList:
		return "list"
	case langFilter:
		return s.lang
	}

	return "all"
}

// Filter applies the language selector and then the index filter. Indices are
// those assigned by [Extract]; filtering never renumbers blocks, so an index
// filter refers to the same blocks whether or not a language was selected.
func Filter(blocks Blocks, sel LangSelector, index *IndexFilter) Blocks {
	result := make(Blocks, 0, len(blocks))

	for _, block := range blocks {
		if !sel.Match(block) {
			continue
		}

		if index != nil && !index.Match(block.Index) {
			continue
		}

		result = append(result, block)
	}

	return result
}

// Select is [Filter] with emptiness checks: it returns [ErrNoBlocks] when
// blocks is empty and [ErrNoMatch] when nothing passed the filters.
func Select(blocks Blocks, sel LangSelector, index *IndexFilter) (Blocks, error) {
	if len(blocks) == 0 {
		return nil, ErrNoBlocks
	}

	result := Filter(blocks, sel, index)
	if len(result) == 0 {
		return nil, ErrNoMatch
	}

	return result, nil
}

// Languages returns the distinct language tags of blocks in sorted order.
func Languages(blocks Blocks) []string {
	seen := make(map[string]struct{})

	var langs []string

	for _, block := range blocks {
		if !block.HasLang() {
			continue
		}

		if _, has := seen[block.Lang]; has {
			continue
		}

		seen[block.Lang] = struct{}{}
		langs = append(langs, block.Lang)
	}

	sort.Strings(langs)

	return langs
}
