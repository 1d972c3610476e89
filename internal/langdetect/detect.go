// Package langdetect guesses the language of unlabeled code with go-enry.
package langdetect

import (
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/ezerfernandes/mdcode/internal/mdcode"
)

// rule labels code when match holds. Rules are tried in order, the most
// specific first.
type rule struct {
	lang  string
	match func(code, trimmed string) bool
}

var rules = []rule{
	{"go", func(_, trimmed string) bool {
		return strings.HasPrefix(trimmed, "package ")
	}},
	{"python", isPython},
	{"html", func(_, trimmed string) bool {
		return containsAny(strings.ToLower(trimmed), "<!doctype html", "<html", "<head>", "<body>")
	}},
	{"json", func(_, trimmed string) bool {
		return (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) && strings.Contains(trimmed, `"`)
	}},
	{"dockerfile", func(code, trimmed string) bool {
		return strings.HasPrefix(trimmed, "FROM ") ||
			(strings.Contains(code, "\nFROM ") && strings.Contains(code, "\nRUN ")) ||
			(strings.Contains(code, "WORKDIR ") && strings.Contains(code, "COPY "))
	}},
	{"sql", func(_, trimmed string) bool {
		upper := strings.ToUpper(trimmed)
		for _, verb := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
			if strings.HasPrefix(upper, verb) {
				return true
			}
		}

		return false
	}},
	{"rust", func(code, _ string) bool {
		return containsAny(code, "fn main()", "println!", "let mut ")
	}},
	{"javascript", func(code, _ string) bool {
		return containsAny(code, "=>", "const ", "let ", "console.log")
	}},
	{"yaml", isYAML},
}

func isPython(code, trimmed string) bool {
	switch {
	case strings.Contains(code, "def ") && strings.Contains(code, "):"):
		return true
	case containsAny(code, "__name__", "__main__"):
		return true
	case strings.Contains(code, "import (") || !strings.Contains(code, "import "):
		return false
	}

	return strings.HasPrefix(trimmed, "import ") || strings.Contains(code, "from ")
}

// isYAML wants at least two "key: value" or "- item" lines that do not look
// like code.
func isYAML(code, _ string) bool {
	count := 0

	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.Contains(line, ": ") && !containsAny(line, "(", "{") && !strings.HasPrefix(line, `"`) {
			count++
		}

		if strings.HasPrefix(line, "- ") {
			count++
		}
	}

	return count >= 2 //nolint:gomnd
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}

// Detect returns the lowercase language of code, or "" when no confident
// guess can be made. A shebang or an editor modeline wins over content
// patterns.
func Detect(code string) string {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) == 0 {
		return ""
	}

	content := []byte(code)

	if lang, safe := enry.GetLanguageByShebang(content); safe && len(lang) != 0 {
		return strings.ToLower(lang)
	}

	if lang, safe := enry.GetLanguageByModeline(content); safe && len(lang) != 0 {
		return strings.ToLower(lang)
	}

	for _, r := range rules {
		if r.match(code, trimmed) {
			return r.lang
		}
	}

	return ""
}

// Annotate returns copies of blocks where unlabeled fenced blocks carry the
// detected language. Inline blocks are never labeled.
func Annotate(blocks mdcode.Blocks) mdcode.Blocks {
	result := make(mdcode.Blocks, len(blocks))

	for i, block := range blocks {
		if block.Kind == mdcode.Fenced && !block.HasLang() {
			block.Lang = Detect(block.Code)
		}

		result[i] = block
	}

	return result
}
