package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/featureio/internal/feature"
)

func newCompareCmd() *cobra.Command {
	var (
		cds        bool
		formatA    string
		formatB    string
		onlyShared bool
	)

	cmd := &cobra.Command{
		Use:   "compare <a> <b>",
		Short: "Report overlapping record pairs between two annotation files",
		Long: `For every record in <a>, report each record in <b> on the same chromosome
and strand whose exons (or CDS exons with --cds) overlap it. Columns:

  a  b  overlap_length  isoform  identical`,
		Example: `  featureio compare predicted.bed reference.bed
  featureio compare --cds -a augustusgtf augustus.gtf reference.bed`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			set := feature.Exons
			if cds {
				set = feature.CDSExons
			}

			a, err := readRecords(cmd, args[0], formatA)
			if err != nil {
				return err
			}
			b, err := readRecords(cmd, args[1], formatB)
			if err != nil {
				return err
			}

			return writeComparison(cmd.OutOrStdout(), a, b, set, onlyShared)
		},
	}

	cmd.Flags().BoolVar(&cds, "cds", false, "Compare CDS exons instead of all exons")
	cmd.Flags().StringVarP(&formatA, "format-a", "a", "bed12", "Format of <a>")
	cmd.Flags().StringVarP(&formatB, "format-b", "b", "bed12", "Format of <b>")
	cmd.Flags().BoolVar(&onlyShared, "isoforms-only", false, "Only report pairs sharing an identical exon")

	return cmd
}

// writeComparison writes one line per overlapping pair in the order of a.
func writeComparison(w io.Writer, a, b []*feature.Record, set feature.IntervalSet, onlyShared bool) error {
	idx := feature.NewIndex(b)
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "#a\tb\toverlap_length\tisoform\tidentical")

	pairs := 0
	for _, r := range a {
		for _, o := range idx.Candidates(r) {
			if !r.Overlaps(o, set) {
				continue
			}
			isoform := r.IsIsoform(o, set)
			if onlyShared && !isoform {
				continue
			}
			fmt.Fprintf(bw, "%s\t%s\t%d\t%t\t%t\n",
				r.Name, o.Name, r.OverlapLength(o, set), isoform, r.Identical(o, set))
			pairs++
		}
	}

	logger.Info("compared records",
		zap.Int("a", len(a)),
		zap.Int("b", len(b)),
		zap.String("set", set.String()),
		zap.Int("pairs", pairs))

	return bw.Flush()
}
