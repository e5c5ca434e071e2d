package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odvcencio/edigeo/pkg/bundle"
	"github.com/odvcencio/edigeo/pkg/record"
)

type recordView struct {
	Line   int    `json:"line" yaml:"line"`
	Code   string `json:"code" yaml:"code"`
	Nature string `json:"nature" yaml:"nature"`
	Format string `json:"format" yaml:"format"`
	Size   int    `json:"size" yaml:"size"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
}

func newRecordsCmd(opts *options) *cobra.Command {
	var memberName string
	cmd := &cobra.Command{
		Use:   "records <path>",
		Short: "Print the decoded records of one member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := bundle.ParseMember(memberName)
			if err != nil {
				return err
			}
			cfg, err := opts.decoderConfig(cmd)
			if err != nil {
				return err
			}
			enc, err := bundle.ParseEncoding(cfg.Encoding)
			if err != nil {
				return err
			}
			b, err := bundle.LoadPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !b.Has(m) {
				return fmt.Errorf("member %s not present in %s", m, args[0])
			}

			text, err := bundle.Transcode(b.Data(m), enc)
			if err != nil {
				if !errors.Is(err, bundle.ErrTranscode) || cfg.Strict {
					return fmt.Errorf("%s: %w", b.Name(m), err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %v\n", b.Name(m), err)
			}
			recs, err := record.ParseLines(b.Name(m), text)
			if err != nil {
				return err
			}

			views := make([]recordView, 0, len(recs))
			for _, r := range recs {
				v := recordView{
					Line:   r.Line,
					Code:   r.Header.Code.String(),
					Nature: r.Header.Nature.String(),
					Format: r.Header.Format.String(),
					Size:   r.Header.Size,
				}
				if r.Value != nil {
					v.Value = r.Value.String()
				}
				views = append(views, v)
			}

			return render(cmd.OutOrStdout(), opts.output, views, func(w io.Writer) error {
				for _, v := range views {
					fmt.Fprintf(w, "%5d %s %-8s %-14s %02d %s\n", v.Line, v.Code, v.Nature, v.Format, v.Size, v.Value)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&memberName, "member", "m", "THF", "member to print (THF, GEO, QAL, T1, T2, T3, S1, DIC, GEN, SCD)")
	return cmd
}
