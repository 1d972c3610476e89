// Package cmd implements the mdcode command line.
package cmd

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ezerfernandes/mdcode/internal/config"
	"github.com/ezerfernandes/mdcode/internal/logging"
	"github.com/ezerfernandes/mdcode/internal/mdcode"
)

//go:embed help/root.md
var rootHelp string

// ErrNoInput is returned when neither files nor stdin provided any input.
var ErrNoInput = errors.New("no input provided: pass files or pipe markdown into stdin")

const (
	fileMode = 0o600
	dirMode  = 0o750
	metaFile = "file"
)

type statusFunc func(format string, args ...interface{})

type options struct {
	stdin     io.Reader
	fsys      fs.FS
	writeFile func(name string, data []byte, perm fs.FileMode) error
	logger    *log.Logger
	status    statusFunc

	number     string
	lang       string
	langs      bool
	inline     bool
	engine     string
	detect     bool
	region     string
	configPath string
	logLevel   string
	debug      bool

	separator   string
	fenced      bool
	lineNumbers bool
	json        bool
	yaml        bool
	list        bool
	table       bool

	dir   string
	keep  bool
	quiet bool

	configOpts config.LoadOptions

	selector mdcode.LangSelector
	index    *mdcode.IndexFilter
	extract  mdcode.Options
}

func newOptions(stdin io.Reader, stderr io.Writer) *options {
	return &options{
		stdin:     stdin,
		fsys:      osFS{},
		writeFile: os.WriteFile,
		logger:    logging.New(stderr, "info"),
		selector:  mdcode.AllLanguages(),
	}
}

func (o *options) createStatus(w io.Writer) {
	o.status = func(format string, args ...interface{}) {
		if !o.quiet {
			fmt.Fprintf(w, format, args...)
		}
	}
}

// Execute runs the mdcode command line and returns the process exit code.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := newOptions(stdin, stderr)

	root := rootCmd(opts)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := run(context.Background(), root, opts); err != nil {
		opts.logger.Error(err)

		return 1
	}

	return 0
}

// run executes root with opts.logger available through the context.
func run(ctx context.Context, root *cobra.Command, opts *options) error {
	return root.ExecuteContext(logging.WithLogger(ctx, opts.logger))
}

func rootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:   "mdcode [flags] [file...]",
		Short: "Extract fenced and inline code blocks from Markdown",
		Long:  rootHelp,
		Args:  cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, err := collect(cmd.Context(), opts, args)
			if err != nil {
				return err
			}

			return output(cmd.OutOrStdout(), blocks, opts)
		},

		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	pflags := cmd.PersistentFlags()
	pflags.StringVarP(&opts.number, "number", "n", "", "select block by index or inclusive range (e.g. 0, 1-3)")
	pflags.StringVar(&opts.lang, "lang", "", "select blocks by language, case-insensitive; globs allowed")
	pflags.BoolVar(&opts.langs, "langs", false, "list the languages of the selected blocks")
	pflags.BoolVar(&opts.inline, config.KeyInline, false, "include inline code spans")
	pflags.StringVar(&opts.engine, config.KeyEngine, "scan", "block parser: scan or commonmark")
	pflags.BoolVar(&opts.detect, "detect", false, "guess the language of unlabeled fenced blocks")
	pflags.StringVar(&opts.region, "region", "", "narrow block code to the named #region")
	pflags.StringVar(&opts.configPath, "config", "", "path to config file")
	pflags.StringVar(&opts.logLevel, config.KeyLogLevel, "info", "log level: debug, info, warn, error")
	pflags.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	flags := cmd.Flags()
	flags.StringVar(&opts.separator, "sep", "\n", "separator written between blocks")
	flags.BoolVar(&opts.fenced, config.KeyFenced, false, "wrap output blocks in fences")
	flags.BoolVar(&opts.lineNumbers, config.KeyLineNumbers, false, "include source line numbers")
	flags.BoolVar(&opts.json, "json", false, "emit JSON")
	flags.BoolVar(&opts.yaml, "yaml", false, "emit YAML")
	flags.BoolVar(&opts.list, "list", false, "list blocks with metadata")
	flags.BoolVar(&opts.table, "table", false, "list blocks as a table")

	cmd.MarkFlagsMutuallyExclusive("lang", "langs")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml", "list", "table")

	cmd.AddCommand(execCmd(opts))

	return cmd
}

// resolve validates the filter flags and merges configuration into every
// flag the user did not set.
func (o *options) resolve(cmd *cobra.Command) error {
	o.createStatus(cmd.ErrOrStderr())

	var err error

	if cmd.Flags().Changed("number") {
		if o.index, err = mdcode.ParseIndexFilter(o.number); err != nil {
			return err
		}
	}

	loadOpts := o.configOpts
	loadOpts.ExplicitPath = o.configPath

	res, err := config.Load(loadOpts)
	if err != nil {
		return err
	}

	o.merge(cmd, res.Config)

	switch {
	case o.debug:
		o.logger.SetLevel(log.DebugLevel)
	default:
		o.logger.SetLevel(logging.ParseLevel(o.logLevel))
	}

	if len(res.LoadedFrom) != 0 {
		o.logger.Debug("loaded configuration", logging.FieldConfig, res.LoadedFrom)
	}

	switch {
	case o.langs:
		o.selector = mdcode.ListLanguages()
	case cmd.Flags().Changed("lang"):
		if o.selector, err = mdcode.ByLanguage(o.lang); err != nil {
			return err
		}
	}

	engine, err := mdcode.ParseEngine(o.engine)
	if err != nil {
		return err
	}

	o.extract = mdcode.Options{Inline: o.inline, Engine: engine}

	return nil
}

func (o *options) merge(cmd *cobra.Command, cfg config.Config) {
	changed := cmd.Flags().Changed

	if !changed("sep") {
		o.separator = cfg.Separator
	}

	if !changed(config.KeyInline) {
		o.inline = cfg.Inline
	}

	if !changed(config.KeyLineNumbers) {
		o.lineNumbers = cfg.LineNumbers
	}

	if !changed(config.KeyFenced) {
		o.fenced = cfg.Fenced
	}

	if !changed(config.KeyEngine) {
		o.engine = cfg.Engine
	}

	if !changed(config.KeyLogLevel) {
		o.logLevel = cfg.LogLevel
	}
}
