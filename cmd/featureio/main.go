// Package main provides the featureio command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/featureio/internal/fasta"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".featureio"

// logger is replaced in the root PersistentPreRunE once log-level is known.
var logger = zap.NewNop()

// usageError marks errors caused by bad invocation rather than bad data.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// usageArgs wraps a cobra argument validator so failures exit with ExitUsage.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "featureio",
		Short: "Read, convert and compare gene models and fetch sequences from indexed FASTA",
		Long: `featureio works with transcript models (BED12, PSL, AUGUSTUS GTF) and
samtools-style indexed FASTA files.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			l, err := newLogger(viper.GetString("log-level"))
			if err != nil {
				return &usageError{err: err}
			}
			logger = l
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: ~/.featureio.yaml)")
	pf.StringSlice("fasta", nil, "Indexed FASTA file(s) to read sequences from")
	pf.Bool("shared-handle", false, "Keep one open handle per FASTA file")
	pf.Int("wrap", fasta.DefaultWrap, "Residues per line in FASTA output")
	pf.Int("workers", 0, "Parallel workers (0 = number of CPUs)")
	pf.String("log-level", "warn", "Log level: debug, info, warn, error")
	pf.String("db", "", "Feature database path (default: ~/.featureio/features.duckdb)")

	for _, name := range []string{"fasta", "shared-handle", "wrap", "workers", "log-level", "db"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newCompareCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig reads the config file and environment.
func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FEATUREIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine; config set creates it.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// newLogger builds a production logger writing to stderr at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// openSequences opens the configured FASTA files as one collection.
func openSequences() (*fasta.Collection, error) {
	paths := viper.GetStringSlice("fasta")
	if len(paths) == 0 {
		return nil, usagef("no FASTA files configured; use --fasta or set fasta in %s.yaml", configName)
	}

	opts := []fasta.Option{fasta.WithLogger(logger)}
	if viper.GetBool("shared-handle") {
		opts = append(opts, fasta.WithSharedHandle())
	}

	c, err := fasta.OpenCollection(paths, opts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened FASTA collection",
		zap.Int("files", len(paths)),
		zap.Int("sequences", c.Len()))
	return c, nil
}

// defaultDBPath returns ~/.featureio/features.duckdb.
func defaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName, "features.duckdb"), nil
}
