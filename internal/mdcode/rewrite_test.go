package mdcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezerfernandes/mdcode/internal/mdcode"
)

func TestRewrite(t *testing.T) {
	t.Parallel()

	content := "# Doc\n\n```go\nx:=1\n```\n\ntext `y`\n\n```sh\necho  hi\n\n```\n"
	blocks := extract(content, true)
	require.Len(t, blocks, 3)

	got, err := mdcode.Rewrite(content, []mdcode.Edit{
		{Block: blocks[0], Code: "x := 1\ny := 2"},
		{Block: blocks[2], Code: "echo hi\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, "# Doc\n\n```go\nx := 1\ny := 2\n```\n\ntext `y`\n\n```sh\necho hi\n```\n", got)

	reparsed := extract(got, false)
	require.Len(t, reparsed, 2)
	assert.Equal(t, "x := 1\ny := 2", reparsed[0].Code)
	assert.Equal(t, "echo hi", reparsed[1].Code)
}

func TestRewriteEmptyFence(t *testing.T) {
	t.Parallel()

	content := "```go\n```\nafter\n"
	blocks := extract(content, false)
	require.Len(t, blocks, 1)

	got, err := mdcode.Rewrite(content, []mdcode.Edit{{Block: blocks[0], Code: "package main"}})
	require.NoError(t, err)
	assert.Equal(t, "```go\npackage main\n```\nafter\n", got)
}

func TestRewriteToEmpty(t *testing.T) {
	t.Parallel()

	content := "```\na\nb\n```\n"
	blocks := extract(content, false)

	got, err := mdcode.Rewrite(content, []mdcode.Edit{{Block: blocks[0], Code: ""}})
	require.NoError(t, err)
	assert.Equal(t, "```\n```\n", got)
}

func TestRewriteRejects(t *testing.T) {
	t.Parallel()

	content := "a `b`\n"
	blocks := extract(content, true)
	require.Len(t, blocks, 1)

	_, err := mdcode.Rewrite(content, []mdcode.Edit{{Block: blocks[0], Code: "c"}})
	require.Error(t, err)

	outside := mdcode.Block{Kind: mdcode.Fenced, StartLine: 5, EndLine: 9}
	_, err = mdcode.Rewrite(content, []mdcode.Edit{{Block: outside, Code: "c"}})
	require.Error(t, err)
}

func TestRewriteRejectsOverlap(t *testing.T) {
	t.Parallel()

	content := "```go\na\n```\n"
	blocks := extract(content, false)
	require.Len(t, blocks, 1)

	_, err := mdcode.Rewrite(content, []mdcode.Edit{
		{Block: blocks[0], Code: "b"},
		{Block: blocks[0], Code: "c"},
	})
	require.ErrorContains(t, err, "overlap")
}

func TestBody(t *testing.T) {
	t.Parallel()

	content := "text\n\n```go\nx := 1\r\n\ny := 2\n```\n\n```\n```\n"
	blocks := extract(content, false)
	require.Len(t, blocks, 2)

	body, err := mdcode.Body(content, blocks[0])
	require.NoError(t, err)
	assert.Equal(t, "x := 1\r\n\ny := 2", body)

	body, err = mdcode.Body(content, blocks[1])
	require.NoError(t, err)
	assert.Empty(t, body)

	_, err = mdcode.Body(content, mdcode.Block{Kind: mdcode.Inline, StartLine: 1, EndLine: 1})
	require.Error(t, err)
}
