package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newScenariosCmd() *cobra.Command {
	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List scenario fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(outputFormat); err != nil {
				return err
			}
			fixtures, err := loadFixtures()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outputFormat != formatText {
				return encodeStructured(out, outputFormat, fixtures)
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(borderStyle).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return cellStyle
				}).
				Headers("NAME", "MODE", "N/L", "R", "T", "W", "ALPHA", "DESCRIPTION")
			for _, s := range fixtures.Scenarios {
				seqLen := "-"
				if s.SeqLen != nil {
					seqLen = strconv.FormatInt(*s.SeqLen, 10)
				}
				t.Row(s.Name, string(s.Mode), seqLen, optional(s.R), optional(s.T), optional(s.W), optional(s.Alpha), s.Description)
			}
			_, err = fmt.Fprintln(out, t.Render())
			return err
		},
	}
	scenariosCmd.Flags().StringVar(&scenariosFile, "scenarios-file", "", "YAML scenario fixtures (default: built-in scenarios)")
	scenariosCmd.Flags().StringVar(&outputFormat, "output", formatText, "Output format (text, json, yaml)")
	return scenariosCmd
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return num(*v)
}
