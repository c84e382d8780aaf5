package cmd

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/kv-offload-roofline/offload/derive"
	"github.com/inference-sim/kv-offload-roofline/offload/scenario"
)

var (
	// CLI flags for the analysis
	mode          string  // prefill, decode or both
	promptLen     int64   // N: prompt tokens (prefill) / context length (decode)
	contextLen    int64   // L: alias of N for decode
	retrievalTime float64 // R: retrieval time per token from the offload tier (us)
	computeTime   float64 // T: on-device compute time per token (us)
	writeTime     float64 // W: write-back time per token to the offload tier (us)
	offloadAlpha  float64 // alpha: fraction of tokens served from the offload tier

	// CLI flags for auto-derivation from benchmark logs
	baselineDir string  // directory with metrics_*.csv from a baseline run
	offloadDir  string  // directory with pcie_stats_*.csv from an offload run
	fallbackR   float64 // R used when it cannot be derived
	unitScale   float64 // log seconds to model time units

	// CLI flags for scenario fixtures and output
	scenarioName  string // run a single named fixture
	scenariosFile string // fixture file replacing the built-in scenarios
	outputFormat  string // text, json or yaml
)

func newAnalyzeCmd() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify prefill/decode as compute-bound or I/O-bound under KV offload",
		Long: `Evaluates the prefill (TTFT speedup) and decode (TPOT slowdown) roofline models.

Each constant is taken from explicit flags first, then from constants derived
from --baseline-dir, then from the selected scenario fixture. Without any
constants, every built-in scenario is analyzed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd)
		},
	}

	analyzeCmd.Flags().StringVar(&mode, "mode", string(scenario.ModeBoth), "Analysis mode (prefill, decode, both)")
	analyzeCmd.Flags().Int64Var(&promptLen, "N", 0, "Number of prompt tokens (prefill) / context length (decode)")
	analyzeCmd.Flags().Int64Var(&contextLen, "L", 0, "Context length (alias for N in decode mode)")
	analyzeCmd.Flags().Float64Var(&retrievalTime, "R", 0, "Retrieval time per token from the offload tier (us)")
	analyzeCmd.Flags().Float64Var(&computeTime, "T", 0, "Compute time per token (us)")
	analyzeCmd.Flags().Float64Var(&writeTime, "W", 0, "Write-back time per token to the offload tier (us, prefill only)")
	analyzeCmd.Flags().Float64Var(&offloadAlpha, "alpha", scenario.DefaultAlpha, "Cache hit ratio served from the offload tier (0.0 - 1.0)")

	addDeriveFlags(analyzeCmd)

	analyzeCmd.Flags().StringVar(&scenarioName, "scenario", "", "Name of a scenario fixture to analyze")
	analyzeCmd.Flags().StringVar(&scenariosFile, "scenarios-file", "", "YAML scenario fixtures (default: built-in scenarios)")
	analyzeCmd.Flags().StringVar(&outputFormat, "output", formatText, "Output format (text, json, yaml)")
	return analyzeCmd
}

// addDeriveFlags registers the log derivation flags shared by analyze and derive.
func addDeriveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&baselineDir, "baseline-dir", "", "Baseline experiment results dir (to auto-derive N and T)")
	cmd.Flags().StringVar(&offloadDir, "offload-dir", "", "Offload experiment results dir (I/O logs)")
	cmd.Flags().Float64Var(&fallbackR, "fallback-r", derive.DefaultFallbackR, "Retrieval time per token (us) used when R is not derived")
	cmd.Flags().Float64Var(&unitScale, "unit-scale", derive.DefaultUnitScale, "Conversion from log seconds to model time units")
}

func runAnalyze(cmd *cobra.Command) error {
	m, err := scenario.ParseMode(mode)
	if err != nil {
		return err
	}
	if err := validateFormat(outputFormat); err != nil {
		return err
	}
	fixtures, err := loadFixtures()
	if err != nil {
		return err
	}
	explicit := explicitOverrides(cmd)

	var derived *derive.Constants
	if baselineDir != "" {
		derived = deriveOrWarn()
	}

	var reqs []scenario.Request
	switch {
	case scenarioName != "":
		s, ok := fixtures.Find(scenarioName)
		if !ok {
			return fmt.Errorf("unknown scenario %q", scenarioName)
		}
		req := scenario.Request{Name: s.Name, Mode: s.Mode, Explicit: explicit, Base: s}
		if cmd.Flags().Changed("mode") {
			req.Mode = m
		}
		reqs = append(reqs, req)
	case explicit.SeqLen == nil && explicit.R == nil && baselineDir == "":
		logrus.Info("No constants provided; running built-in scenarios")
		reqs = scenario.RequestsFor(fixtures, explicit)
		if cmd.Flags().Changed("mode") {
			reqs = filterByMode(reqs, m)
		}
	default:
		reqs = append(reqs, scenario.Request{Name: "Custom Analysis", Mode: m, Explicit: explicit})
	}

	outcomes := scenario.NewRunner(derived).RunAll(reqs)
	if err := renderOutcomes(cmd.OutOrStdout(), outputFormat, outcomes); err != nil {
		return err
	}

	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

// explicitOverrides collects the constants given on the command line.
func explicitOverrides(cmd *cobra.Command) scenario.Overrides {
	var o scenario.Overrides
	flags := cmd.Flags()
	switch {
	case flags.Changed("N"):
		o.SeqLen = &promptLen
	case flags.Changed("L"):
		o.SeqLen = &contextLen
	}
	if flags.Changed("R") {
		o.R = &retrievalTime
	}
	if flags.Changed("T") {
		o.T = &computeTime
	}
	if flags.Changed("W") {
		o.W = &writeTime
	}
	if flags.Changed("alpha") {
		o.Alpha = &offloadAlpha
	}
	return o
}

// deriveOrWarn runs the constant derivation, logging a warning and returning
// nil when the baseline logs are unusable.
func deriveOrWarn() *derive.Constants {
	derived, err := derive.Derive(derive.Config{
		BaselineDir: baselineDir,
		OffloadDir:  offloadDir,
		FallbackR:   &fallbackR,
		UnitScale:   unitScale,
	})
	if err != nil {
		logrus.Warnf("Cannot derive constants: %v", err)
		return nil
	}
	logrus.Infof("[Auto-Derived] N=%d, T_prefill=%sus, T_decode=%.2fus, R=%.2fus (%s)",
		derived.N, derived.TPrefillString(), derived.TDecode, derived.R, derived.RSource)
	return derived
}

func loadFixtures() (*scenario.File, error) {
	if scenariosFile != "" {
		return scenario.LoadScenarios(scenariosFile)
	}
	return scenario.DefaultScenarios()
}

// filterByMode keeps the fixtures that cover mode m and restricts scenarios
// analyzing both phases to m.
func filterByMode(reqs []scenario.Request, m scenario.Mode) []scenario.Request {
	if m == scenario.ModeBoth {
		return reqs
	}
	kept := reqs[:0]
	for _, r := range reqs {
		switch r.Mode {
		case m:
		case scenario.ModeBoth:
			r.Mode = m
		default:
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
