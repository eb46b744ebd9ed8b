package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gnolang/plint/formatter"
	"github.com/gnolang/plint/internal/version"
	"github.com/gnolang/plint/lint"
)

const defaultTimeout = 5 * time.Minute

// ErrIssuesFound is returned when a run leaves issues behind. It maps to
// exit status 1.
var ErrIssuesFound = errors.New("issues found")

// ExitCode maps the error returned by Execute to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrIssuesFound):
		return 1
	default:
		return 2
	}
}

type rootOptions struct {
	cfgFile    string
	timeout    time.Duration
	verbose    bool
	format     string
	cacheDir   string
	noCache    bool
	noProgress bool
	selected   []string
	ignored    []string

	logger *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:              "plint [paths...]",
		Short:            "plint - a Python linter with automatic fixes",
		Version:          version.Version,
		SilenceUsage:     true,
		SilenceErrors:    true,
		Args:             cobra.ArbitraryArgs,
		TraverseChildren: true, // Prioritize subcommands
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.verbose)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	lintCmd := newLintCmd(opts)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			// display help when only 'plint' is entered
			return cmd.Help()
		}
		// Format: plint [path1 path2 ...] => behaves like the lint subcommand
		return lintCmd.RunE(cmd, args)
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.cfgFile, "config", "c", "", "Path to a .plint.yaml or pyproject.toml (default: discovered)")
	flags.DurationVar(&opts.timeout, "timeout", defaultTimeout, "Abort the run after this duration")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&opts.format, "format", string(formatter.FormatText), "Output format: text, concise or json")
	flags.StringVar(&opts.cacheDir, "cache-dir", "", "Directory of the result cache (overrides the config)")
	flags.BoolVar(&opts.noCache, "no-cache", false, "Disable the result cache")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "Hide the progress bar")
	flags.StringSliceVar(&opts.selected, "select", nil, "Comma-separated rule codes, prefixes or names to enable (overrides the config)")
	flags.StringSliceVar(&opts.ignored, "ignore", nil, "Comma-separated rule codes, prefixes or names to disable")

	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(newFixCmd(opts))
	rootCmd.AddCommand(newRulesCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newCleanCmd(opts))
	return rootCmd
}

func Execute() error {
	return NewRootCmd().Execute()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// loadConfig resolves the configuration: the --config file, a discovered
// one, or the defaults, with the command line overrides applied.
func (o *rootOptions) loadConfig() (lint.Config, error) {
	config := lint.DefaultConfig()
	path := o.cfgFile
	if path == "" {
		if found, ok := lint.FindConfig("."); ok {
			path = found
		}
	}
	if path != "" {
		var err error
		if config, err = lint.LoadConfig(path); err != nil {
			return config, err
		}
		o.logger.Debug("loaded configuration", zap.String("path", path))
	}

	if len(o.selected) > 0 {
		config.Select = o.selected
	}
	config.Ignore = append(config.Ignore, o.ignored...)
	if o.cacheDir != "" {
		config.CacheDir = o.cacheDir
	}
	if o.noCache {
		config.CacheDir = ""
	}
	return config, nil
}

// newLinter loads the configuration and builds the engine, warning about
// selectors that match no rule.
func (o *rootOptions) newLinter() (*lint.Linter, error) {
	config, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	l, err := lint.New(config, o.logger)
	if err != nil {
		return nil, err
	}
	for _, key := range l.Settings.Unknown() {
		o.logger.Warn("unknown rule selector", zap.String("selector", key))
	}
	return l, nil
}
