package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type blockView struct {
	Role    string `json:"role" yaml:"role"`
	ID      string `json:"id" yaml:"id"`
	Entries int    `json:"entries" yaml:"entries"`
}

type memberBlocks struct {
	Member    string      `json:"member" yaml:"member"`
	File      string      `json:"file" yaml:"file"`
	Blocks    []blockView `json:"blocks" yaml:"blocks"`
	Anomalies []string    `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
}

func newBlocksCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "blocks <path>",
		Short: "List the blocks of every member of a lot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := opts.decoder(cmd)
			if err != nil {
				return err
			}
			x, err := d.DecodePath(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var out []memberBlocks
			for _, r := range x.Members {
				mb := memberBlocks{Member: r.Member.String(), File: r.Name}
				for _, blk := range r.Segmentation.Blocks {
					mb.Blocks = append(mb.Blocks, blockView{Role: string(blk.Role), ID: blk.ID, Entries: len(blk.Entries)})
				}
				for _, a := range r.Segmentation.Anomalies {
					mb.Anomalies = append(mb.Anomalies, a.String())
				}
				out = append(out, mb)
			}

			return render(cmd.OutOrStdout(), opts.output, out, func(w io.Writer) error {
				for _, mb := range out {
					fmt.Fprintf(w, "%s (%s)\n", mb.Member, mb.File)
					for _, blk := range mb.Blocks {
						fmt.Fprintf(w, "  %-24s %s %d\n", blk.Role, blk.ID, blk.Entries)
					}
					for _, a := range mb.Anomalies {
						fmt.Fprintf(w, "  ! %s\n", a)
					}
				}
				return nil
			})
		},
	}
}
