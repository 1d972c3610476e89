package mdcode

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/shlex"
)

// Meta holds key-value metadata written after the language word of a fenced
// block's info string, for example "go file=main.go".
type Meta map[string]interface{}

// Get returns the metadata value for the given key as a string.
// It returns an empty string if the key is missing or the Meta is nil.
func (m Meta) Get(name string) string {
	if m == nil {
		return ""
	}

	value, has := m[name]
	if !has {
		return ""
	}

	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprint(value)
}

var (
	reInfo = regexp.MustCompile(`^\s*([^\s{]+)?\s*(.*?)\s*$`)
	reJSON = regexp.MustCompile(`^{\s*["}]`)
)

// ParseInfo splits an info string into its language word and metadata. The
// metadata is either a JSON object or shell-quoted key=value words, optionally
// wrapped in braces.
func ParseInfo(info string) (string, Meta, error) {
	all := reInfo.FindStringSubmatch(info)
	if all == nil {
		return "", Meta{}, nil
	}

	meta, err := parseMeta(all[2])
	if err != nil {
		return all[1], nil, fmt.Errorf("parse info %q: %w", info, err)
	}

	return all[1], meta, nil
}

func parseMeta(input string) (Meta, error) {
	switch {
	case len(input) == 0:
		return Meta{}, nil
	case reJSON.MatchString(input):
		var meta Meta

		return meta, json.Unmarshal([]byte(input), &meta)
	}

	if inner, ok := strings.CutPrefix(input, "{"); ok {
		input = strings.TrimSuffix(inner, "}")
	}

	words, err := shlex.Split(input)
	if err != nil {
		return nil, err
	}

	meta := make(Meta, len(words))

	// Bare words carry no value.
	for _, word := range words {
		if key, value, ok := strings.Cut(word, "="); ok {
			meta[key] = value
		}
	}

	return meta, nil
}
