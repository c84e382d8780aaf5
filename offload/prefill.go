package offload

import (
	"fmt"
	"math"
)

// PrefillModel estimates TTFT speedup when a fraction alpha of the prompt's
// KV cache is retrieved from the offload tier instead of recomputed.
//
// Retrieval, compute of the remaining tokens, and write-back of the newly
// computed KV run concurrently, so offloaded TTFT is the max of the three:
//
//	retrieval = alpha * N * R
//	compute   = (1 - alpha) * N * T
//	write     = (1 - alpha) * N * W
//
// The regime flips at alpha* = E/(1+E), where E = T/R.
type PrefillModel struct{}

func (PrefillModel) Phase() Phase { return PhasePrefill }

func (PrefillModel) Analyze(c RateConstants) (AnalysisResult, error) {
	if err := c.Validate(); err != nil {
		return AnalysisResult{}, fmt.Errorf("prefill: %w", err)
	}
	n := float64(c.SeqLen)

	efficiency := divide(c.T, c.R)
	alphaStar := criticalPrefillFraction(efficiency)

	ttftVanilla := n * c.T
	retrieval := c.Alpha * n * c.R
	compute := (1 - c.Alpha) * n * c.T
	write := (1 - c.Alpha) * n * c.W
	ttftOffloaded := math.Max(retrieval, math.Max(compute, write))

	res := AnalysisResult{
		Phase:           PhasePrefill,
		Inputs:          c,
		AlphaCurrent:    c.Alpha,
		AlphaCritical:   alphaStar,
		Efficiency:      &efficiency,
		BaselineMetric:  ttftVanilla,
		OffloadedMetric: ttftOffloaded,
		ActualRatio:     divide(ttftVanilla, ttftOffloaded),
	}

	if c.Alpha <= float64(alphaStar) {
		res.Regime = RegimeComputeBound
		res.TheoreticalRatio = divide(1, 1-c.Alpha)
		res.Insight = "Speedup is limited by on-device compute time (T); retrieval keeps up."
		res.Recommendation = "Current setup is optimal."
	} else {
		res.Regime = RegimeIOBound
		// alpha > alpha* >= 0 here, so alpha is positive and E is finite.
		res.TheoreticalRatio = Ratio(float64(efficiency) / c.Alpha)
		gain := efficiency + 1
		res.MaxPotentialGain = &gain
		res.Insight = "Speedup is limited by offload tier retrieval time (R); storage is too slow."
		res.Recommendation = fmt.Sprintf(
			"Optimization required: retrieve only %s of tokens from the offload tier instead of %.1f%%. Potential speedup: %sx",
			alphaStar.Percent(), c.Alpha*100, gain)
	}
	res.RegimeLabel = res.Regime.Label(PhasePrefill)
	return res, nil
}

// criticalPrefillFraction returns E/(1+E), or 1 when retrieval is free.
func criticalPrefillFraction(e Ratio) Ratio {
	if e.IsUnbounded() {
		return 1
	}
	return Ratio(float64(e) / (1 + float64(e)))
}
