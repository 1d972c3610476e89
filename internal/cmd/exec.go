package cmd

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/ezerfernandes/mdcode/internal/logging"
	"github.com/ezerfernandes/mdcode/internal/mdcode"
	"github.com/ezerfernandes/mdcode/internal/region"
)

//go:embed help/exec.md
var execHelp string

var (
	errMissingCommand = errors.New("command is required after '--'")
	errRegionMissing  = errors.New("region not found")
)

type blockInfo struct {
	block    mdcode.Block
	lang     string
	file     string
	tempPath string
}

type execFlags struct {
	update bool
	batch  bool
}

func execCmd(opts *options) *cobra.Command {
	var flags execFlags

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "exec [flags] [file...] -- command",
		Aliases: []string{"e"},
		Short:   "Execute shell commands on individual code blocks",
		Long:    execHelp,
		Args:    checkargs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, scr := script(cmd, args)
			if len(scr) == 0 {
				return errMissingCommand
			}

			if !cmd.Flag("dir").Changed {
				dir, err := os.MkdirTemp("", "mdcode-exec-")
				if err != nil {
					return err
				}

				opts.dir = dir

				if !opts.keep {
					defer os.RemoveAll(dir)
				}
			}

			return execRun(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, files, scr, flags)
		},

		DisableAutoGenTag: true,
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "directory for block files (default: a removed temporary directory)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "don't print block headers")
	cmd.Flags().BoolVarP(&opts.keep, "keep", "k", false, "don't remove temporary directory")
	cmd.Flags().BoolVar(&flags.update, "update", false, "update markdown code blocks with modified files")
	cmd.Flags().BoolVar(&flags.batch, "batch", false, "run command once for all files instead of once per block")

	return cmd
}

func checkargs(cmd *cobra.Command, _ []string) error {
	if cmd.ArgsLenAtDash() < 0 {
		return errMissingCommand
	}

	return nil
}

// script splits the arguments at "--" into input files and the script.
func script(cmd *cobra.Command, args []string) ([]string, string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, ""
	}

	return args[:dash], strings.Join(args[dash:], " ")
}

func execRun(ctx context.Context, stdout, stderr io.Writer, opts *options, files []string, scr string, flags execFlags) error {
	// A file read twice would be rewritten twice from stale line ranges.
	if flags.update {
		files = uniqueFiles(files)
	}

	blocks, err := collect(ctx, opts, files)
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(opts.dir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return err
	}

	logger := logging.FromContext(ctx)
	logger.Debug("executing", logging.FieldDir, dir, logging.FieldBlocks, len(blocks))

	var entries []*blockInfo

	for _, block := range blocks {
		if info := writeBlockToTemp(logger, block, dir, opts); info != nil {
			entries = append(entries, info)
		}
	}

	if flags.batch {
		return execBatch(ctx, stdout, stderr, opts, entries, dir, scr, flags.update)
	}

	return execPerBlock(ctx, stdout, stderr, opts, entries, dir, scr, flags.update)
}

func execPerBlock(ctx context.Context, stdout, stderr io.Writer, opts *options, entries []*blockInfo, dir, scr string, update bool) error {
	var (
		failures int
		updated  []*blockInfo
	)

	for _, info := range entries {
		block := info.block
		expanded := expandCommand(scr, info, dir)

		opts.status("--- block %d (%s%s) : L%d-%d : %s ---\n", block.Index, info.lang, fileLabel(info.file), block.StartLine, block.EndLine, filepath.Base(block.Source))

		exitCode, execErr := runCommand(ctx, expanded, dir, stdout, stderr)
		if execErr != nil {
			return execErr
		}

		if exitCode != 0 {
			failures++

			logging.FromContext(ctx).Debug("block failed", logging.FieldIndex, block.Index, logging.FieldExit, exitCode)

			if update {
				opts.status("warning: block %d exited with %d, skipping update\n", block.Index, exitCode)
			}

			continue
		}

		updated = append(updated, info)
	}

	if update {
		if err := updateSources(ctx, opts, updated); err != nil {
			return err
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d block(s) failed", failures)
	}

	return nil
}

func execBatch(ctx context.Context, stdout, stderr io.Writer, opts *options, entries []*blockInfo, dir, scr string, update bool) error {
	if len(entries) == 0 {
		return nil
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.tempPath
	}

	expanded := strings.ReplaceAll(scr, "{}", strings.Join(paths, " "))
	expanded = strings.ReplaceAll(expanded, "{dir}", dir)

	opts.status("--- batch (%d blocks) ---\n", len(entries))

	exitCode, execErr := runCommand(ctx, expanded, dir, stdout, stderr)
	if execErr != nil {
		return execErr
	}

	if exitCode != 0 {
		if update {
			opts.status("warning: command exited with %d, skipping update\n", exitCode)
		}

		return fmt.Errorf("command exited with %d", exitCode)
	}

	if update {
		return updateSources(ctx, opts, entries)
	}

	return nil
}

// updateSources writes changed block files back into their Markdown sources.
// Only fenced blocks of real files can be written back. With a region
// selected, only the region inside each block is replaced.
func updateSources(ctx context.Context, opts *options, entries []*blockInfo) error {
	logger := logging.FromContext(ctx)
	edits := make(map[string][]mdcode.Edit)

	var order []string

	for _, info := range entries {
		block := info.block

		if block.Kind != mdcode.Fenced || block.Source == mdcode.StdinName {
			logger.Debug("skipping update", logging.FieldIndex, block.Index, logging.FieldSource, block.Source)

			continue
		}

		data, err := os.ReadFile(info.tempPath)
		if err != nil {
			return err
		}

		code := strings.TrimSuffix(string(data), "\n")
		if code == block.Code {
			continue
		}

		if _, has := edits[block.Source]; !has {
			order = append(order, block.Source)
		}

		edits[block.Source] = append(edits[block.Source], mdcode.Edit{Block: block, Code: code})
	}

	var matcher *region.Matcher

	if len(opts.region) != 0 && len(order) != 0 {
		var err error
		if matcher, err = region.NewMatcher(opts.region); err != nil {
			return err
		}
	}

	for _, source := range order {
		data, err := fs.ReadFile(opts.fsys, source)
		if err != nil {
			return fmt.Errorf("read %s: %w", source, err)
		}

		content := string(data)
		sourceEdits := edits[source]

		if matcher != nil {
			if sourceEdits, err = spliceRegion(content, sourceEdits, matcher); err != nil {
				return fmt.Errorf("update %s: %w", source, err)
			}
		}

		result, err := mdcode.Rewrite(content, sourceEdits)
		if err != nil {
			return fmt.Errorf("update %s: %w", source, err)
		}

		if err := opts.writeFile(source, []byte(result), fileMode); err != nil {
			return err
		}

		opts.status("updated %s (%d block(s))\n", source, len(sourceEdits))
	}

	return nil
}

// spliceRegion turns edits of region text into edits of whole block bodies.
func spliceRegion(content string, edits []mdcode.Edit, matcher *region.Matcher) ([]mdcode.Edit, error) {
	spliced := make([]mdcode.Edit, 0, len(edits))

	for _, edit := range edits {
		body, err := mdcode.Body(content, edit.Block)
		if err != nil {
			return nil, err
		}

		code, found := matcher.Replace(body, edit.Code)
		if !found {
			return nil, fmt.Errorf("block %d: %w", edit.Block.Index, errRegionMissing)
		}

		spliced = append(spliced, mdcode.Edit{Block: edit.Block, Code: code})
	}

	return spliced, nil
}

func uniqueFiles(files []string) []string {
	seen := make(map[string]bool, len(files))
	unique := files[:0:0]

	for _, file := range files {
		key := filepath.Clean(file)
		if seen[key] {
			continue
		}

		seen[key] = true
		unique = append(unique, file)
	}

	return unique
}

func writeBlockToTemp(logger *log.Logger, block mdcode.Block, dir string, opts *options) *blockInfo {
	lang, meta, err := mdcode.ParseInfo(block.Lang)
	if err != nil {
		logger.Warn("ignoring block metadata", logging.FieldIndex, block.Index, logging.FieldError, err)
	}

	info := &blockInfo{
		block: block,
		lang:  lang,
		file:  meta.Get(metaFile),
	}

	info.tempPath = filepath.Join(dir, tempFilename(info))

	if err := os.MkdirAll(filepath.Dir(info.tempPath), dirMode); err != nil {
		opts.status("warning: failed to create directory for block %d: %v\n", block.Index, err)

		return nil
	}

	code := block.Code
	if len(code) != 0 {
		code += "\n"
	}

	if err := os.WriteFile(info.tempPath, []byte(code), fileMode); err != nil {
		opts.status("warning: failed to write block %d: %v\n", block.Index, err)

		return nil
	}

	return info
}

func tempFilename(info *blockInfo) string {
	if len(info.file) != 0 {
		return fmt.Sprintf("%d_%s", info.block.Index, filepath.Base(filepath.FromSlash(info.file)))
	}

	return fmt.Sprintf("block_%d%s", info.block.Index, langExtension(info.lang))
}

func langExtension(lang string) string {
	if len(lang) > 0 {
		return "." + strings.ToLower(lang)
	}

	return ".txt"
}

func expandCommand(scr string, info *blockInfo, dir string) string {
	expanded := strings.ReplaceAll(scr, "{}", info.tempPath)
	expanded = strings.ReplaceAll(expanded, "{lang}", info.lang)
	expanded = strings.ReplaceAll(expanded, "{index}", fmt.Sprint(info.block.Index))
	expanded = strings.ReplaceAll(expanded, "{dir}", dir)

	return expanded
}

func runCommand(ctx context.Context, command, dir string, stdout, stderr io.Writer) (int, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return -1, err
	}

	runner, err := interp.New(interp.Dir(dir), interp.StdIO(strings.NewReader(""), stdout, stderr))
	if err != nil {
		return -1, err
	}

	err = runner.Run(ctx, file)
	if err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return int(status), nil
		}

		return -1, err
	}

	return 0, nil
}

func fileLabel(file string) string {
	if len(file) != 0 {
		return ", file=" + file
	}

	return ""
}
