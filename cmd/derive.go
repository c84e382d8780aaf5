package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/inference-sim/kv-offload-roofline/offload/derive"
)

func newDeriveCmd() *cobra.Command {
	deriveCmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive rate constants from benchmark latency logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(outputFormat); err != nil {
				return err
			}
			c, err := derive.Derive(derive.Config{
				BaselineDir: baselineDir,
				OffloadDir:  offloadDir,
				FallbackR:   &fallbackR,
				UnitScale:   unitScale,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outputFormat != formatText {
				return encodeStructured(out, outputFormat, c)
			}

			offloadFile := c.OffloadFile
			if offloadFile == "" {
				offloadFile = "-"
			}
			tPrefill := "-"
			if c.TPrefill != nil {
				tPrefill = num(*c.TPrefill) + "us"
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
				Headers("CONSTANT", "VALUE").
				Row("N", strconv.FormatInt(c.N, 10)).
				Row("T_prefill", tPrefill).
				Row("T_decode", num(c.TDecode)+"us").
				Row("R", num(c.R)+"us ("+c.RSource+")").
				Row("Baseline log", c.BaselineFile).
				Row("Rows", strconv.Itoa(c.Rows)).
				Row("Offload I/O log", offloadFile)
			_, err = fmt.Fprintln(out, t.Render())
			return err
		},
	}
	addDeriveFlags(deriveCmd)
	_ = deriveCmd.MarkFlagRequired("baseline-dir")
	deriveCmd.Flags().StringVar(&outputFormat, "output", formatText, "Output format (text, json, yaml)")
	return deriveCmd
}
