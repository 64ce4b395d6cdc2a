package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/featureio/internal/fasta"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <name[:start-end]>...",
		Short: "Print sequences from the indexed FASTA collection",
		Long: `Print whole sequences or 1-based inclusive regions from the FASTA files
given with --fasta (or the fasta config key). Each file needs a .fai index.`,
		Example: `  featureio fetch --fasta hg38.fa chr1:1000-2000
  featureio fetch --fasta a.fa --fasta b.fa seq1 NZ_BBIY01000160.1`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openSequences()
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			wrap := viper.GetInt("wrap")
			for _, arg := range args {
				seq, err := fetchSeq(c, arg)
				if err != nil {
					return err
				}
				if err := fasta.WriteFASTA(out, seq, wrap); err != nil {
					return fmt.Errorf("write %s: %w", seq.Name, err)
				}
			}
			return nil
		},
	}
}

// fetchSeq resolves a whole-sequence name or a name:start-end region.
func fetchSeq(c *fasta.Collection, arg string) (*fasta.Seq, error) {
	if c.Contains(arg) {
		return c.Get(arg)
	}

	name, start, end, ok, err := parseRegion(arg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return c.Get(arg)
	}

	residues, err := c.Fetch(name, start, end)
	if err != nil {
		return nil, err
	}
	return &fasta.Seq{Name: arg, Sequence: residues}, nil
}

// parseRegion splits "name:start-end". ok is false when arg carries no range.
func parseRegion(arg string) (name string, start, end int64, ok bool, err error) {
	i := strings.LastIndexByte(arg, ':')
	if i <= 0 {
		return arg, 0, 0, false, nil
	}
	lo, hi, found := strings.Cut(arg[i+1:], "-")
	if !found {
		return arg, 0, 0, false, nil
	}

	start, err = strconv.ParseInt(strings.ReplaceAll(lo, ",", ""), 10, 64)
	if err != nil {
		return "", 0, 0, false, usagef("invalid region start in %q", arg)
	}
	end, err = strconv.ParseInt(strings.ReplaceAll(hi, ",", ""), 10, 64)
	if err != nil {
		return "", 0, 0, false, usagef("invalid region end in %q", arg)
	}
	if start > end {
		return "", 0, 0, false, usagef("region start after end in %q", arg)
	}
	return arg[:i], start, end, true, nil
}
