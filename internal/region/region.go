// Package region narrows code to named #region/#endregion sections.
package region

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ezerfernandes/mdcode/internal/mdcode"
)

const (
	reSpecial    = `[!"#$%%&'()*+,\-./:;<=>?@[\\\]^_{|}~]`
	reLineBegin  = `(?m)^[[:blank:]]*`
	reLineEnd    = `*[[:blank:]]*\r?\n`
	regionFormat = reLineBegin + reSpecial +
		`+[[:blank:]]*#region[[:blank:]]+%s[[:blank:]]*` +
		reSpecial + reLineEnd
	namedendFormat = reLineBegin + reSpecial +
		`+[[:blank:]]*#endregion[[:blank:]]+%s[[:blank:]]*` +
		reSpecial + reLineEnd
)

var reEnd = regexp.MustCompile(reLineBegin + reSpecial +
	`+[[:blank:]]*#endregion[[:blank:]]*` +
	reSpecial + reLineEnd)

func marker(format string, name string) (*regexp.Regexp, error) {
	return regexp.Compile(fmt.Sprintf(format, regexp.QuoteMeta(name)))
}

// Matcher finds one named region.
type Matcher struct {
	begin *regexp.Regexp
	end   *regexp.Regexp
}

// NewMatcher compiles the markers of the region called name. A region starts
// at a comment line like "// #region name" and ends at "// #endregion name"
// or, failing that, at the first "// #endregion".
func NewMatcher(name string) (*Matcher, error) {
	begin, err := marker(regionFormat, name)
	if err != nil {
		return nil, err
	}

	end, err := marker(namedendFormat, name)
	if err != nil {
		return nil, err
	}

	return &Matcher{begin: begin, end: end}, nil
}

// find returns the byte range of the region body in source.
func (m *Matcher) find(source string) (int, int, bool) {
	idxBegin := m.begin.FindStringIndex(source)
	if idxBegin == nil {
		return 0, 0, false
	}

	rest := source[idxBegin[1]:]

	idxEnd := m.end.FindStringIndex(rest)
	if idxEnd == nil {
		if idxEnd = reEnd.FindStringIndex(rest); idxEnd == nil {
			return 0, 0, false
		}
	}

	return idxBegin[1], idxBegin[1] + idxEnd[0], true
}

// Read returns the lines between the region markers in code, without the
// markers themselves. The bool reports whether the region was found.
func (m *Matcher) Read(code string) (string, bool) {
	// Markers must end with a line terminator.
	source := code + "\n"

	begin, end, found := m.find(source)
	if !found {
		return "", false
	}

	return strings.TrimSuffix(source[begin:end], "\n"), true
}

// Replace returns code with the lines between the region markers set to
// value. The markers and everything outside them are kept.
func (m *Matcher) Replace(code, value string) (string, bool) {
	source := code + "\n"

	begin, end, found := m.find(source)
	if !found {
		return "", false
	}

	if len(value) != 0 && !strings.HasSuffix(value, "\n") {
		value += "\n"
	}

	return strings.TrimSuffix(source[:begin]+value+source[end:], "\n"), true
}

// Narrow returns copies of blocks whose code is cut down to the region called
// name. Blocks without that region are left out.
func Narrow(blocks mdcode.Blocks, name string) (mdcode.Blocks, error) {
	matcher, err := NewMatcher(name)
	if err != nil {
		return nil, err
	}

	var result mdcode.Blocks

	for _, block := range blocks {
		code, found := matcher.Read(block.Code)
		if !found {
			continue
		}

		block.Code = code
		result = append(result, block)
	}

	return result, nil
}
