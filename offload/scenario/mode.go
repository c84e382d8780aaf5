package scenario

import (
	"fmt"

	"github.com/inference-sim/kv-offload-roofline/offload"
)

// Mode selects which phases a scenario analyzes.
type Mode string

const (
	ModePrefill Mode = "prefill"
	ModeDecode  Mode = "decode"
	ModeBoth    Mode = "both"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModePrefill, ModeDecode, ModeBoth:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want prefill, decode or both)", s)
	}
}

// Phases returns the phases analyzed in this mode, prefill first.
func (m Mode) Phases() []offload.Phase {
	switch m {
	case ModePrefill:
		return []offload.Phase{offload.PhasePrefill}
	case ModeDecode:
		return []offload.Phase{offload.PhaseDecode}
	default:
		return []offload.Phase{offload.PhasePrefill, offload.PhaseDecode}
	}
}
