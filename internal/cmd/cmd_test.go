package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/liamg/memoryfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezerfernandes/mdcode/internal/config"
	"github.com/ezerfernandes/mdcode/internal/logging"
	"github.com/ezerfernandes/mdcode/internal/mdcode"
)

const readme = "# Readme\n\nUse `mdcode` here.\n\n```go\npackage main\n```\n\n```sh\necho hi\n```\n\n~~~Go file=x.go\nvar x = 1\n~~~\n"

const notes = "Notes with `inline` only.\n\n```python\nprint(1)\n```\n"

type harness struct {
	fsys   *memoryfs.FS
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{fsys: memoryfs.New()}

	require.NoError(t, h.fsys.MkdirAll("docs", 0o700))
	require.NoError(t, h.fsys.WriteFile("docs/readme.md", []byte(readme), 0o600))
	require.NoError(t, h.fsys.WriteFile("docs/notes.md", []byte(notes), 0o600))

	return h
}

func (h *harness) run(t *testing.T, stdin io.Reader, args ...string) error {
	t.Helper()

	opts := newOptions(stdin, &h.stderr)
	opts.fsys = h.fsys
	opts.writeFile = h.fsys.WriteFile
	opts.configOpts = config.LoadOptions{
		WorkingDir:       t.TempDir(),
		IgnoreUserConfig: true,
		IgnoreEnv:        true,
	}

	root := rootCmd(opts)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(&h.stdout)
	root.SetErr(&h.stderr)

	return run(context.Background(), root, opts)
}

func noStdin() io.Reader {
	return strings.NewReader("")
}

func TestRawOutput(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	require.NoError(t, h.run(t, noStdin(), "docs/readme.md"))
	assert.Equal(t, "package main\necho hi\nvar x = 1", h.stdout.String())

	h = newHarness(t)
	require.NoError(t, h.run(t, noStdin(), "--sep", "::", "docs/readme.md"))
	assert.Equal(t, "package main::echo hi::var x = 1\n", h.stdout.String())
}

func TestIndexRange(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	require.NoError(t, h.run(t, noStdin(), "-n", "1-2", "--list", "docs/readme.md", "docs/notes.md"))
	assert.Equal(t, "1: sh (1 lines) [docs/readme.md]\n2: Go file=x.go (1 lines) [docs/readme.md]\n", h.stdout.String())
}

func TestIndicesSpanFiles(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	require.NoError(t, h.run(t, noStdin(), "-n", "3", "--inline", "--line-numbers", "--list", "docs/notes.md", "docs/readme.md"))
	assert.Equal(t, "3: go (1 lines) [docs/readme.md:6]\n", h.stdout.String())
}

func TestLangFilterKeepsIndices(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	require.NoError(t, h.run(t, noStdin(), "--lang", "GO", "--list", "docs/readme.md"))
	assert.Equal(t, "0: go (1 lines) [docs/readme.md]\n", h.stdout.String())

	h = newHarness(t)
	require.NoError(t, h.run(t, noStdin(), "--lang", "go*", "-n", "2", "--list", "docs/readme.md"))
	assert.Equal(t, "2: Go file=x.go (1 lines) [docs/readme.md]\n", h.stdout.String())
}

func TestInvalidRangeFailsBeforeReading(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	err := h.run(t, noStdin(), "-n", "4-2", "docs/missing.md")

	var rangeErr *mdcode.RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Empty(t, h.stdout.String())
}

func TestNoMatch(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	err := h.run(t, noStdin(), "--lang", "rust", "docs/readme.md")
	require.ErrorIs(t, err, mdcode.ErrNoMatch)
	assert.Empty(t, h.stdout.String())
}

func TestNoBlocks(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	err := h.run(t, strings.NewReader("just text\n"))
	require.ErrorIs(t, err, mdcode.ErrNoBlocks)
}

func TestNoInput(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	err := h.run(t, nil)
	require.ErrorIs(t, err, ErrNoInput)
}

func TestStdinFirst(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	stdin := strings.NewReader("```c\nint x;\n```\n")
	require.NoError(t, h.run(t, stdin, "--list", "docs/notes.md"))
	assert.Equal(t, "0: c (1 lines) [stdin]\n1: python (1 lines) [docs/notes.md]\n", h.stdout.String())
}

func TestJSONOutput(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	require.NoError(t, h.run(t, noStdin(), "--json", "--line-numbers", "-n", "0", "docs/notes.md"))
	assert.JSONEq(t, `[{"index":0,"source":"docs/notes.md","kind":"fenced","lang":"python","start_line":4,"end_line":4,"code":"print(1)"}]`, h.stdout.String())
}

func TestLangsListing(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	require.NoError(t, h.run(t, noStdin(), "--langs", "docs/readme.md", "docs/notes.md"))
	assert.Equal(t, "Go file=x.go\ngo\npython\nsh\n", h.stdout.String())
}

func TestFencedSeparator(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	require.NoError(t, h.run(t, noStdin(), "--fenced", "--sep", "\n\n", "-n", "0-1", "docs/readme.md"))
	assert.Equal(t, "```go\npackage main\n```\n\n```sh\necho hi\n```", h.stdout.String())
}

func TestMutuallyExclusiveFlags(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	require.Error(t, h.run(t, noStdin(), "--json", "--list", "docs/readme.md"))

	h = newHarness(t)
	require.Error(t, h.run(t, noStdin(), "--lang", "go", "--langs", "docs/readme.md"))
}

func TestCommonMarkEngine(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	require.NoError(t, h.run(t, noStdin(), "--engine", "commonmark", "--inline", "--list", "docs/notes.md"))
	assert.Equal(t, "0: plain (1 lines) [docs/notes.md]\n1: python (1 lines) [docs/notes.md]\n", h.stdout.String())
}

func TestRegion(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	doc := "```go\npackage main\n// #region main\nfunc main() {}\n// #endregion\n```\n\n```go\nvar y int\n```\n"
	require.NoError(t, h.fsys.WriteFile("docs/region.md", []byte(doc), 0o600))

	require.NoError(t, h.run(t, noStdin(), "--region", "main", "docs/region.md"))
	assert.Equal(t, "func main() {}", h.stdout.String())

	h = newHarness(t)
	require.ErrorIs(t, h.run(t, noStdin(), "--region", "absent", "docs/readme.md"), mdcode.ErrNoMatch)
}

func TestExecuteExitCode(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	code := Execute([]string{"-n", "x-1"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "invalid index or range")
	assert.Empty(t, stdout.String())
}

func TestDebugLogging(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	require.NoError(t, h.run(t, noStdin(), "--debug", "docs/notes.md"))
	assert.Contains(t, h.stderr.String(), "extracted")
	assert.Contains(t, h.stderr.String(), logging.FieldSource)
}

func TestCollectUsesContextLogger(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	opts := newOptions(strings.NewReader(notes), io.Discard)
	opts.selector = mdcode.AllLanguages()

	ctx := logging.WithLogger(context.Background(), logging.New(&logs, "debug"))

	blocks, err := collect(ctx, opts, nil)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Contains(t, logs.String(), "extracted")
	assert.Contains(t, logs.String(), mdcode.StdinName)
}
