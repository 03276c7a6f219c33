package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/meigma/s3p"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <file.s3p>",
		Short: "List the streams embedded in an S3P container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(args[0])
		},
	}
}

func runList(input string) error {
	result, err := s3p.InspectFile(input)
	if err != nil {
		return err
	}

	headers := []string{"#", "Offset", "Length", "Payload", "Digest", "Unk1", "Unk2", "Unk3", "Unk4", "Unk5"}
	aligns := []columnAlignment{
		alignRight, alignRight, alignRight, alignRight, alignLeft,
		alignRight, alignRight, alignRight, alignRight, alignRight,
	}
	rows := make([][]string, len(result.Entries))
	for i, e := range result.Entries {
		rows[i] = []string{
			strconv.Itoa(e.Index),
			strconv.FormatUint(uint64(e.Offset), 10),
			strconv.FormatUint(uint64(e.Length), 10),
			strconv.FormatUint(uint64(e.PayloadSize), 10),
			e.Digest.Encoded()[:12],
			strconv.FormatUint(uint64(e.Opaque["unk1"]), 10),
			strconv.FormatUint(uint64(e.Opaque["unk2"]), 10),
			strconv.FormatUint(uint64(e.Opaque["unk3"]), 10),
			strconv.FormatUint(uint64(e.Opaque["unk4"]), 10),
			strconv.FormatUint(uint64(e.Opaque["unk5"]), 10),
		}
	}

	fmt.Print(renderTable(headers, rows, aligns))
	fmt.Printf("%d streams, alignment %d, trailer %v\n",
		len(result.Entries), result.Layout.Alignment, result.Layout.Trailer)
	return nil
}
