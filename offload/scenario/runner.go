// Package scenario resolves rate constants for named scenarios and runs the
// bottleneck models on them.
//
// Each constant is taken from the first source that defines it:
// explicit overrides, then constants derived from benchmark logs, then the
// scenario fixture. alpha defaults to 1.0 (fully offloaded) and W to 0.
// N/L, R and T have no default; leaving one unresolved is a
// ConfigurationError for that scenario only.
package scenario

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/kv-offload-roofline/offload"
	"github.com/inference-sim/kv-offload-roofline/offload/derive"
)

// DefaultAlpha is the offload fraction used when no source sets alpha.
const DefaultAlpha = 1.0

const (
	sourceExplicit = "explicit"
	sourceDerived  = "derived"
	sourceScenario = "scenario"
	sourceDefault  = "default"
)

// Overrides are constants given explicitly by the caller. Nil means unset.
type Overrides struct {
	SeqLen *int64
	R      *float64
	T      *float64
	W      *float64
	Alpha  *float64
}

// Request asks for one scenario to be analyzed.
type Request struct {
	Name     string
	Mode     Mode
	Explicit Overrides
	Base     *Scenario // fixture tier; may be nil
}

// ConfigurationError reports constants that no source could provide.
type ConfigurationError struct {
	Scenario string
	Phase    offload.Phase
	Missing  []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("scenario %q (%s): missing required constant(s) %s; provide them explicitly or via a baseline results directory",
		e.Scenario, e.Phase, strings.Join(e.Missing, ", "))
}

// Outcome is the result of one scenario in a batch.
type Outcome struct {
	Name    string                   `json:"scenario" yaml:"scenario"`
	Mode    Mode                     `json:"mode" yaml:"mode"`
	Results []offload.AnalysisResult `json:"results,omitempty" yaml:"results,omitempty"`
	Err     error                    `json:"-" yaml:"-"`
	Error   string                   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Runner resolves constants and evaluates the bottleneck models.
// It holds no mutable state and may be shared.
type Runner struct {
	derived *derive.Constants
}

// NewRunner creates a Runner. derived may be nil when no logs were usable.
func NewRunner(derived *derive.Constants) *Runner {
	return &Runner{derived: derived}
}

// Resolve builds the RateConstants for one phase of req.
func (r *Runner) Resolve(req Request, p offload.Phase) (offload.RateConstants, error) {
	var c offload.RateConstants
	var missing []string
	base := req.Base
	if base == nil {
		base = &Scenario{}
	}

	var derivedN *int64
	var derivedR, derivedT *float64
	if r.derived != nil {
		derivedN = &r.derived.N
		derivedR = &r.derived.R
		if p == offload.PhaseDecode {
			derivedT = &r.derived.TDecode
		} else {
			derivedT = r.derived.TPrefill
		}
	}

	if v, src := first(req.Explicit.SeqLen, derivedN, base.SeqLen); v != nil {
		c.SeqLen = *v
		r.logSource(req.Name, p, p.SeqLenName(), src)
	} else {
		missing = append(missing, p.SeqLenName())
	}
	if v, src := first(req.Explicit.R, derivedR, base.R); v != nil {
		c.R = *v
		r.logSource(req.Name, p, "R", src)
	} else {
		missing = append(missing, "R")
	}
	if v, src := first(req.Explicit.T, derivedT, base.T); v != nil {
		c.T = *v
		r.logSource(req.Name, p, "T", src)
	} else {
		missing = append(missing, "T")
	}
	if len(missing) > 0 {
		return c, &ConfigurationError{Scenario: req.Name, Phase: p, Missing: missing}
	}

	c.Alpha = DefaultAlpha
	if v, _ := first[float64](req.Explicit.Alpha, nil, base.Alpha); v != nil {
		c.Alpha = *v
	}
	if p == offload.PhasePrefill {
		if v, _ := first[float64](req.Explicit.W, nil, base.W); v != nil {
			c.W = *v
		}
	}
	return c, nil
}

// Run analyzes every phase of req's mode.
func (r *Runner) Run(req Request) ([]offload.AnalysisResult, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeBoth
	}
	phases := mode.Phases()
	results := make([]offload.AnalysisResult, 0, len(phases))
	for _, p := range phases {
		c, err := r.Resolve(req, p)
		if err != nil {
			return nil, err
		}
		res, err := offload.Analyze(p, c)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", req.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// RunAll runs every request. A failing scenario is recorded in its Outcome
// and does not stop the others.
func (r *Runner) RunAll(reqs []Request) []Outcome {
	outcomes := make([]Outcome, 0, len(reqs))
	for _, req := range reqs {
		o := Outcome{Name: req.Name, Mode: req.Mode}
		o.Results, o.Err = r.Run(req)
		if o.Err != nil {
			o.Error = o.Err.Error()
			logrus.Warnf("Scenario %q failed: %v", req.Name, o.Err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// RequestsFor builds one request per fixture scenario, applying explicit
// overrides to each.
func RequestsFor(f *File, explicit Overrides) []Request {
	reqs := make([]Request, 0, len(f.Scenarios))
	for i := range f.Scenarios {
		s := &f.Scenarios[i]
		reqs = append(reqs, Request{Name: s.Name, Mode: s.Mode, Explicit: explicit, Base: s})
	}
	return reqs
}

func (r *Runner) logSource(name string, p offload.Phase, field, src string) {
	logrus.Debugf("Scenario %q (%s): %s from %s", name, p, field, src)
}

// first returns the highest-precedence defined value and its source name.
func first[T int64 | float64](explicit, derived, scenario *T) (*T, string) {
	switch {
	case explicit != nil:
		return explicit, sourceExplicit
	case derived != nil:
		return derived, sourceDerived
	case scenario != nil:
		return scenario, sourceScenario
	}
	return nil, sourceDefault
}
