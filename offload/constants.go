package offload

import (
	"errors"
	"fmt"
	"math"
)

// Phase identifies the serving phase a model analyzes.
type Phase string

const (
	PhasePrefill Phase = "prefill"
	PhaseDecode  Phase = "decode"
)

// SeqLenName returns the conventional name of the sequence-length input for
// the phase: N (prompt tokens) for prefill, L (context tokens) for decode.
func (p Phase) SeqLenName() string {
	if p == PhaseDecode {
		return "L"
	}
	return "N"
}

// Regime is the resource that bounds latency under offload.
type Regime string

const (
	RegimeComputeBound Regime = "compute-bound"
	RegimeIOBound      Regime = "io-bound"
)

// Label returns the presentation name of the regime for a phase. Decode tags
// compute-bound as safe and io-bound as laggy.
func (r Regime) Label(p Phase) string {
	switch {
	case r == RegimeComputeBound && p == PhaseDecode:
		return "Compute-Bound (Safe)"
	case r == RegimeIOBound && p == PhaseDecode:
		return "I/O-Bound (Laggy)"
	case r == RegimeIOBound:
		return "I/O-Bound"
	default:
		return "Compute-Bound"
	}
}

var (
	// ErrInvalidAlpha is returned when the offload fraction is outside [0,1] or NaN.
	ErrInvalidAlpha = errors.New("offload fraction alpha must be within [0, 1]")
	// ErrInvalidRate is returned for negative, NaN or infinite rates, negative
	// lengths, and lengths whose total per-phase cost overflows float64.
	ErrInvalidRate = errors.New("rates and sequence length must be finite and non-negative")
)

// RateConstants holds the empirical or assumed rates consumed by both models.
// SeqLen is N (prompt length) in prefill and L (context length) in decode.
// R, T and W are times per token; W (write-back) is only used by prefill.
type RateConstants struct {
	SeqLen int64   `json:"seq_len" yaml:"seq_len"`
	R      float64 `json:"r" yaml:"r"`
	T      float64 `json:"t" yaml:"t"`
	W      float64 `json:"w" yaml:"w"`
	Alpha  float64 `json:"alpha" yaml:"alpha"`
}

// Validate checks that the constants are inside the models' legal domain.
func (c RateConstants) Validate() error {
	if c.SeqLen < 0 {
		return fmt.Errorf("%w: seq_len=%d", ErrInvalidRate, c.SeqLen)
	}
	rates := []struct {
		name string
		v    float64
	}{{"R", c.R}, {"T", c.T}, {"W", c.W}}
	for _, r := range rates {
		if math.IsNaN(r.v) || math.IsInf(r.v, 0) || r.v < 0 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidRate, r.name, r.v)
		}
		// alpha <= 1, so every cost term is bounded by SeqLen times a rate.
		if total := float64(c.SeqLen) * r.v; math.IsInf(total, 0) {
			return fmt.Errorf("%w: seq_len*%s overflows (seq_len=%d, %s=%v)",
				ErrInvalidRate, r.name, c.SeqLen, r.name, r.v)
		}
	}
	if math.IsNaN(c.Alpha) || c.Alpha < 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: alpha=%v", ErrInvalidAlpha, c.Alpha)
	}
	return nil
}
