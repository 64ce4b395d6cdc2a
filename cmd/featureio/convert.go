package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/featureio/internal/format"
)

func newConvertCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert transcript models between formats",
		Long: fmt.Sprintf(`Read records in one format and write them in another.

Input formats:  %s
Output formats: %s

Input and output default to stdin and stdout; use '-' explicitly to keep the
default for one side.`, strings.Join(format.Readers(), ", "), strings.Join(format.Writers(), ", ")),
		Example: `  featureio convert -i augustusgtf -o bed12 augustus.gtf genes.bed
  featureio convert -i blatpsl -o gff3 hits.psl
  cat genes.bed | featureio convert -o augustus_exon_hints > hints.gff`,
		Args: usageArgs(cobra.MaximumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath, outPath := "-", "-"
			if len(args) > 0 {
				inPath = args[0]
			}
			if len(args) > 1 {
				outPath = args[1]
			}
			return runConvert(cmd, from, to, inPath, outPath)
		},
	}

	cmd.Flags().StringVarP(&from, "input-format", "i", "bed12", "Input format")
	cmd.Flags().StringVarP(&to, "output-format", "o", "bed12", "Output format")

	return cmd
}

func runConvert(cmd *cobra.Command, from, to, inPath, outPath string) error {
	in, err := openInput(cmd, inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	reader, err := newFormatReader(from, in)
	if err != nil {
		return err
	}

	out, err := createOutput(cmd, outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	writer, err := format.NewWriter(to, out)
	if err != nil {
		return &usageError{err: err}
	}

	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	n := 0
	for {
		rec, err := reader.Next()
		if err != nil {
			return fmt.Errorf("read %s: %w", inPath, err)
		}
		if rec == nil {
			break
		}
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("write %s: %w", rec.Name, err)
		}
		n++
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	logger.Info("converted records",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("records", n))
	return out.Close()
}
