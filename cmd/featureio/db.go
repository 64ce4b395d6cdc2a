package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/featureio/internal/format"
	"github.com/inodb/featureio/internal/store"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Load and query the feature database",
		Long: `Keep records from many annotation files in a DuckDB database and query
them by region. Files that have not changed since they were loaded are skipped.`,
		Example: `  featureio db load genes.bed augustus.gtf -i augustusgtf
  featureio db query chr1:1000000-2000000`,
	}

	cmd.AddCommand(newDBLoadCmd())
	cmd.AddCommand(newDBQueryCmd())
	cmd.AddCommand(newDBClearCmd())
	cmd.AddCommand(newDBStatsCmd())

	return cmd
}

func openStore() (*store.Store, error) {
	path := viper.GetString("db")
	if path == "" {
		var err error
		if path, err = defaultDBPath(); err != nil {
			return nil, err
		}
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	s.SetLogger(logger)
	return s, nil
}

func newDBLoadCmd() *cobra.Command {
	var (
		inputFormat string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "load <file>...",
		Short: "Load annotation files into the database",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			for _, path := range args {
				fp, err := store.StatFile(path)
				if err != nil {
					return fmt.Errorf("stat %s: %w", path, err)
				}

				if !force {
					loaded, err := s.SourceLoaded(fp)
					if err != nil {
						return err
					}
					if loaded {
						logger.Info("source unchanged, skipping", zap.String("path", path))
						continue
					}
				}

				records, err := readRecords(cmd, path, inputFormat)
				if err != nil {
					return err
				}
				if err := s.LoadSource(fp, records); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d records from %s\n", len(records), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFormat, "input-format", "i", "bed12", "Input format")
	cmd.Flags().BoolVar(&force, "force", false, "Reload files even if unchanged")

	return cmd
}

func newDBQueryCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "query <chrom:start-end>",
		Short: "Print records overlapping a region",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			chrom, start, end, ok, err := parseRegion(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return usagef("expected chrom:start-end, got %q", args[0])
			}

			w, err := format.NewWriter(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return &usageError{err: err}
			}

			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.FindOverlapping(chrom, start, end)
			if err != nil {
				return err
			}
			return format.WriteAll(w, records)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output-format", "o", "bed12", "Output format")

	return cmd
}

func newDBClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all records and loaded-file fingerprints",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Clear()
		},
	}
}

func newDBStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record count and loaded files",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.Count()
			if err != nil {
				return err
			}
			sources, err := s.Sources()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "records\t%d\n", n)
			for _, fp := range sources {
				fmt.Fprintf(out, "source\t%s\t%d\t%s\n", fp.Path, fp.Size, fp.ModTime.UTC().Format("2006-01-02T15:04:05Z"))
			}
			return nil
		},
	}
}
