package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meigma/s3p"
)

func newExtractCommand(verbose *bool) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "extract <file.s3p>",
		Short: "Extract an S3P container into a directory of ASF payloads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), args[0], outputFlag, *verbose)
		},
	}
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Directory to create the extraction directory in (default: working directory)")
	return cmd
}

// runExtract extracts input into <output>/<input stem>/.
func runExtract(ctx context.Context, input, output string, verbose bool) error {
	if output == "" {
		output = "."
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	outDir := filepath.Join(output, stem)

	report, err := s3p.ExtractFile(ctx, input, outDir, s3p.ExtractWithLogger(newLogger(verbose)))
	if err != nil {
		return err
	}
	fmt.Printf("extracted %d streams to %s\n", len(report.Streams), outDir)
	return nil
}
