package offload

import (
	"fmt"
	"math"
)

// DecodeModel estimates TPOT slowdown when a fraction alpha of the context's
// KV cache lives in the offload tier and must be streamed back every step.
//
// The decode step (T) overlaps with retrieval of alpha*L tokens, so offloaded
// TPOT is max(T, alpha*L*R). The largest safe fraction is alpha* = T/(L*R).
type DecodeModel struct{}

func (DecodeModel) Phase() Phase { return PhaseDecode }

func (DecodeModel) Analyze(c RateConstants) (AnalysisResult, error) {
	if err := c.Validate(); err != nil {
		return AnalysisResult{}, fmt.Errorf("decode: %w", err)
	}
	l := float64(c.SeqLen)

	tpotVanilla := c.T
	ioTime := c.Alpha * l * c.R
	tpotOffloaded := math.Max(c.T, ioTime)
	alphaStar := divide(c.T, l*c.R)

	res := AnalysisResult{
		Phase:           PhaseDecode,
		Inputs:          c,
		AlphaCurrent:    c.Alpha,
		AlphaCritical:   alphaStar,
		BaselineMetric:  tpotVanilla,
		OffloadedMetric: tpotOffloaded,
		ActualRatio:     divide(tpotOffloaded, tpotVanilla),
	}

	if c.Alpha <= float64(alphaStar) {
		res.Regime = RegimeComputeBound
		res.TheoreticalRatio = 1
		res.Insight = "Storage is fast enough to feed the context each step. No slowdown."
		res.Recommendation = "Current setup maintains baseline latency."
	} else {
		res.Regime = RegimeIOBound
		res.TheoreticalRatio = divide(c.Alpha, float64(alphaStar))
		res.Insight = "Context is too long for the offload tier's speed; the decode step starves on retrieval."
		res.Recommendation = fmt.Sprintf(
			"Critical: reduce the offload fraction below %s or switch to faster storage.", alphaStar.Percent())
	}
	res.RegimeLabel = res.Regime.Label(PhaseDecode)
	return res, nil
}
