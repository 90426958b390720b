package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eytandecker/vn-diagram/internal/render"
)

func (a *app) renderCmd() *cobra.Command {
	opts := render.Options{Width: a.cfg.Diagram.Width, Height: a.cfg.Diagram.Height}
	output := a.cfg.Diagram.OutputPath

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the V-n diagram to an image file",
		Long: `Draws the maneuver and gust envelopes to a PNG, SVG or PDF file.
The format follows the output file extension.

Examples:
  vndiagram render
  vndiagram render -o vn.svg --width 12 --height 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.diagram()
			if err != nil {
				return err
			}
			if err := render.SaveFile(d, output, opts); err != nil {
				return err
			}
			a.logger.Info("wrote diagram", zap.String("path", output), zap.String("aircraft", d.Aircraft.Name))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", output, "output file (.png, .svg or .pdf)")
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "figure width in inches")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "figure height in inches")
	return cmd
}
