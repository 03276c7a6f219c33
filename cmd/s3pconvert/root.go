package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var outputFlag string
	var verboseFlag bool

	rootCmd := &cobra.Command{
		Use:   "s3pconvert <input>",
		Short: "Convert between S3P containers and directories of ASF payloads",
		Long: `s3pconvert extracts the ASF streams embedded in an S3P container into a
directory (one numbered .asf file per stream plus a metadata.json sidecar),
and packs such a directory back into a container. The mode is picked from
the input path: a file is extracted, a directory is packed.

The sidecar holds header values the format does not document; keep it next
to the payload files between the two steps, editing it only deliberately.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("stat input: %w", err)
			}
			if info.IsDir() {
				return runPack(cmd.Context(), args[0], outputFlag, verboseFlag)
			}
			return runExtract(cmd.Context(), args[0], outputFlag, verboseFlag)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log codec progress to stderr")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory (extract) or directory/file (pack)")

	rootCmd.AddCommand(newExtractCommand(&verboseFlag))
	rootCmd.AddCommand(newPackCommand(&verboseFlag))
	rootCmd.AddCommand(newListCommand())

	return rootCmd
}
