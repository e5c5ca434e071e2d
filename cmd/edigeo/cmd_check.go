package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odvcencio/edigeo/pkg/bundle"
)

type memberSummary struct {
	Member      string `json:"member" yaml:"member"`
	File        string `json:"file" yaml:"file"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	Blocks      int    `json:"blocks" yaml:"blocks"`
	Records     int    `json:"records" yaml:"records"`
	Anomalies   int    `json:"anomalies" yaml:"anomalies"`
	Transcode   string `json:"transcode,omitempty" yaml:"transcode,omitempty"`
}

type checkReport struct {
	Path      string          `json:"path" yaml:"path"`
	Members   []memberSummary `json:"members" yaml:"members"`
	Anomalies int             `json:"anomalies" yaml:"anomalies"`
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Load and decode a lot, reporting each member",
		Long: `Load a lot from a directory, a .THF manifest or a tar archive
(.tar, .tar.gz, .tar.bz2, .tar.zst, .tar.lz4, .tar.sz), decode every member
and print a per-member summary with its BLAKE3 fingerprint.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := opts.decoder(cmd)
			if err != nil {
				return err
			}
			b, err := bundle.LoadPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			x, err := d.Decode(cmd.Context(), b)
			if err != nil {
				return err
			}

			report := checkReport{Path: args[0], Anomalies: x.AnomalyCount()}
			for _, r := range x.Members {
				s := memberSummary{
					Member:      r.Member.String(),
					File:        r.Name,
					Fingerprint: b.Fingerprint(r.Member),
					Blocks:      len(r.Segmentation.Blocks),
					Records:     r.Segmentation.Len(),
					Anomalies:   len(r.Segmentation.Anomalies),
				}
				if r.Transcode != nil {
					s.Transcode = r.Transcode.Error()
				}
				report.Members = append(report.Members, s)
			}

			return render(cmd.OutOrStdout(), opts.output, report, func(w io.Writer) error {
				for _, s := range report.Members {
					fmt.Fprintf(w, "%-3s %-14s %s blocks=%d records=%d anomalies=%d\n",
						s.Member, s.File, s.Fingerprint[:16], s.Blocks, s.Records, s.Anomalies)
					if s.Transcode != "" {
						fmt.Fprintf(w, "    warning: %s\n", s.Transcode)
					}
				}
				fmt.Fprintf(w, "ok: decoded %d member(s), %d anomaly(ies)\n", len(report.Members), report.Anomalies)
				return nil
			})
		},
	}
}
