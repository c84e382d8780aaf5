package offload

// AnalysisResult is the outcome of one model evaluation for one phase.
//
// BaselineMetric and OffloadedMetric are TTFT for prefill and TPOT for decode.
// ActualRatio is a speedup (baseline/offloaded) for prefill and a slowdown
// (offloaded/baseline) for decode.
type AnalysisResult struct {
	Phase         Phase         `json:"phase" yaml:"phase"`
	Regime        Regime        `json:"regime" yaml:"regime"`
	RegimeLabel   string        `json:"regime_label" yaml:"regime_label"`
	Inputs        RateConstants `json:"inputs" yaml:"inputs"`
	AlphaCurrent  float64       `json:"alpha_current" yaml:"alpha_current"`
	AlphaCritical Ratio         `json:"alpha_critical" yaml:"alpha_critical"`

	// Efficiency is E = T/R, set for prefill only.
	Efficiency *Ratio `json:"efficiency,omitempty" yaml:"efficiency,omitempty"`

	BaselineMetric   float64 `json:"baseline_metric" yaml:"baseline_metric"`
	OffloadedMetric  float64 `json:"offloaded_metric" yaml:"offloaded_metric"`
	ActualRatio      Ratio   `json:"actual_ratio" yaml:"actual_ratio"`
	TheoreticalRatio Ratio   `json:"theoretical_ratio" yaml:"theoretical_ratio"`

	// MaxPotentialGain is E+1, the speedup reachable at alpha*; set when prefill is io-bound.
	MaxPotentialGain *Ratio `json:"max_potential_gain,omitempty" yaml:"max_potential_gain,omitempty"`

	Insight        string `json:"insight" yaml:"insight"`
	Recommendation string `json:"recommendation" yaml:"recommendation"`
}

// MetricName returns the name of the baseline/offloaded metric for the phase.
func (r AnalysisResult) MetricName() string {
	if r.Phase == PhaseDecode {
		return "TPOT"
	}
	return "TTFT"
}

// RatioName returns the name of the actual/theoretical ratio for the phase.
func (r AnalysisResult) RatioName() string {
	if r.Phase == PhaseDecode {
		return "Slowdown"
	}
	return "Speedup"
}
