package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/kv-offload-roofline/offload"
	"github.com/inference-sim/kv-offload-roofline/offload/scenario"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	computeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")) // green
	ioStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")) // red
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

// renderOutcomes writes scenario outcomes in the requested format. The text
// report and the structured formats carry the same fields at full precision.
func renderOutcomes(w io.Writer, format string, outcomes []scenario.Outcome) error {
	switch format {
	case formatJSON, formatYAML:
		return encodeStructured(w, format, outcomes)
	}
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("--- %s [%s] ---", o.Name, strings.ToUpper(string(o.Mode)))))
			fmt.Fprintln(w, errorStyle.Render("Error: "+o.Error))
			fmt.Fprintln(w)
			continue
		}
		for _, res := range o.Results {
			fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("--- %s [%s] ---", o.Name, strings.ToUpper(string(res.Phase)))))
			fmt.Fprintln(w, resultTable(res))
			fmt.Fprintln(w)
		}
	}
	return nil
}

func encodeStructured(w io.Writer, format string, v any) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// resultTable renders every AnalysisResult field as a two-column table.
func resultTable(res offload.AnalysisResult) string {
	in := res.Inputs
	regime := computeStyle
	if res.Regime == offload.RegimeIOBound {
		regime = ioStyle
	}
	criticalLabel := "Alpha* (critical)"
	if res.Phase == offload.PhaseDecode {
		criticalLabel = "Alpha* (max allowed)"
	}

	rows := [][]string{
		{"Inputs", fmt.Sprintf("%s=%d, R=%sus, T=%sus, W=%sus, alpha=%s",
			res.Phase.SeqLenName(), in.SeqLen, num(in.R), num(in.T), num(in.W), num(in.Alpha))},
		{"Regime", regime.Render(res.RegimeLabel) + " (" + string(res.Regime) + ")"},
		{"Alpha (current)", fmt.Sprintf("%s (%.1f%%)", num(res.AlphaCurrent), res.AlphaCurrent*100)},
		{criticalLabel, fmt.Sprintf("%s (%s)", ratio(res.AlphaCritical), res.AlphaCritical.Percent())},
	}
	if res.Efficiency != nil {
		rows = append(rows, []string{"Efficiency E (T/R)", ratio(*res.Efficiency)})
	}
	rows = append(rows,
		[]string{res.MetricName() + " vanilla", num(res.BaselineMetric) + "us"},
		[]string{res.MetricName() + " offloaded", num(res.OffloadedMetric) + "us"},
		[]string{res.RatioName(), fmt.Sprintf("%sx (theoretical: %sx)", ratio(res.ActualRatio), ratio(res.TheoreticalRatio))},
	)
	if res.MaxPotentialGain != nil {
		rows = append(rows, []string{"Max potential gain", ratio(*res.MaxPotentialGain) + "x"})
	}
	rows = append(rows,
		[]string{"Insight", res.Insight},
		[]string{"Strategy", res.Recommendation},
	)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("FIELD", "VALUE").
		Rows(rows...).
		Render()
}

// num formats v with the fewest digits that represent it exactly.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ratio(r offload.Ratio) string {
	if r.IsUnbounded() {
		return "∞"
	}
	return num(float64(r))
}
