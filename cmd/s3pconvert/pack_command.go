package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meigma/s3p"
)

func newPackCommand(verbose *bool) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "pack <dir>",
		Short: "Pack an extraction directory back into an S3P container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPack(cmd.Context(), args[0], outputFlag, *verbose)
		},
	}
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Container path, or directory to place <dir>.s3p in (default: working directory)")
	return cmd
}

// runPack packs dir into a container. A missing or directory output means
// <output>/<dir basename>.s3p; anything else is taken as the file path.
func runPack(ctx context.Context, dir, output string, verbose bool) error {
	if output == "" {
		output = "."
	}
	outPath := output
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		outPath = filepath.Join(output, filepath.Base(filepath.Clean(dir))+".s3p")
	}

	if err := s3p.PackFile(ctx, dir, outPath, s3p.PackWithLogger(newLogger(verbose))); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}
