package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/featureio/internal/extract"
	"github.com/inodb/featureio/internal/feature"
)

func newExtractCmd() *cobra.Command {
	var (
		cds         bool
		inputFormat string
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "extract [records]",
		Short: "Write spliced transcript or CDS sequences as FASTA",
		Long: `Splice the exons (default) or CDS exons of each record out of the indexed
FASTA collection. Minus-strand records are reverse complemented. Records whose
chromosome is missing are logged and skipped.`,
		Example: `  featureio extract --fasta hg38.fa genes.bed > transcripts.fa
  featureio extract --fasta hg38.fa --cds -i augustusgtf augustus.gtf`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath := "-"
			if len(args) == 1 {
				inPath = args[0]
			}

			set := feature.Exons
			if cds {
				set = feature.CDSExons
			}

			c, err := openSequences()
			if err != nil {
				return err
			}
			defer c.Close()

			in, err := openInput(cmd, inPath)
			if err != nil {
				return err
			}
			defer in.Close()

			reader, err := newFormatReader(inputFormat, in)
			if err != nil {
				return err
			}

			out, err := createOutput(cmd, outputPath)
			if err != nil {
				return err
			}
			defer out.Close()

			e := extract.New(c, set)
			e.SetLogger(logger)
			if err := e.ExtractAll(reader, extract.NewFASTAWriter(out, viper.GetInt("wrap")), viper.GetInt("workers")); err != nil {
				return err
			}
			return out.Close()
		},
	}

	cmd.Flags().BoolVar(&cds, "cds", false, "Extract CDS exons instead of all exons")
	cmd.Flags().Bool("exons", true, "Extract all exons (default)")
	cmd.Flags().StringVarP(&inputFormat, "input-format", "i", "bed12", "Input format")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")
	cmd.MarkFlagsMutuallyExclusive("cds", "exons")

	return cmd
}
