package offload

import "fmt"

// BottleneckModel classifies one serving phase as compute-bound or io-bound.
// Implementations are stateless and safe for concurrent use.
type BottleneckModel interface {
	Phase() Phase
	Analyze(c RateConstants) (AnalysisResult, error)
}

// NewModel returns the bottleneck model for a phase.
func NewModel(p Phase) (BottleneckModel, error) {
	switch p {
	case PhasePrefill:
		return PrefillModel{}, nil
	case PhaseDecode:
		return DecodeModel{}, nil
	default:
		return nil, fmt.Errorf("bottleneck model: unknown phase %q", p)
	}
}

// Analyze evaluates the model for phase p on c.
func Analyze(p Phase, c RateConstants) (AnalysisResult, error) {
	m, err := NewModel(p)
	if err != nil {
		return AnalysisResult{}, err
	}
	return m.Analyze(c)
}
