package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/eytandecker/vn-diagram/internal/envelope"
)

func (a *app) computeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Print limit loads, corner speed and gust endpoints",
		Long: `Computes the V-n diagram for the configured aircraft and prints its
summary: limit load factors, corner speed and the gust envelope endpoints.

Examples:
  vndiagram compute
  vndiagram compute --profile c152.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.diagram()
			if err != nil {
				return err
			}
			if asJSON {
				return writeSummaryJSON(cmd.OutOrStdout(), d.Summary())
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), summaryTable(d.Summary()))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func writeSummaryJSON(w io.Writer, s envelope.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func summaryTable(s envelope.Summary) string {
	kts := func(v float64) string { return fmt.Sprintf("%.2f kts", v) }
	n := func(v float64) string { return fmt.Sprintf("%.3f", v) }

	rows := [][]string{
		{"Stall speed (V_s)", kts(s.Aircraft.StallSpeed)},
		{"Corner speed", kts(s.CornerSpeed)},
		{"Cruise speed (V_c)", kts(s.Aircraft.CruiseSpeed)},
		{"Dive speed (V_d)", kts(s.Aircraft.DiveSpeed)},
		{"n_max", n(s.NMax)},
		{"n_min", n(s.NMin)},
		{"+n1 (cruise gust)", n(s.CruiseGustPositive)},
		{"-n1 (cruise gust)", n(s.CruiseGustNegative)},
		{"+n2 (dive gust)", n(s.DiveGustPositive)},
		{"-n2 (dive gust)", n(s.DiveGustNegative)},
	}

	header := lipgloss.NewStyle().Bold(true)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(s.Aircraft.Name, "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.Render()
}
