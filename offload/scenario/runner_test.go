package scenario

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/kv-offload-roofline/offload"
	"github.com/inference-sim/kv-offload-roofline/offload/derive"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func TestResolve_ExplicitBeatsDerivedBeatsScenario(t *testing.T) {
	// GIVEN all three sources define N, R and T
	derived := &derive.Constants{N: 1000, TPrefill: f64(120), TDecode: 22000, R: 50, RSource: derive.RSourceFallback}
	base := &Scenario{Name: "s", SeqLen: i64(2000), R: f64(41), T: f64(110), Alpha: f64(0.6)}
	req := Request{Name: "s", Mode: ModeBoth, Base: base, Explicit: Overrides{R: f64(7)}}

	// WHEN constants are resolved per phase
	r := NewRunner(derived)
	prefill, err := r.Resolve(req, offload.PhasePrefill)
	require.NoError(t, err)
	decode, err := r.Resolve(req, offload.PhaseDecode)
	require.NoError(t, err)

	// THEN explicit R wins, N and T come from derivation, alpha from the scenario
	assert.Equal(t, offload.RateConstants{SeqLen: 1000, R: 7, T: 120, Alpha: 0.6}, prefill)
	// AND decode uses the derived decode compute time
	assert.Equal(t, offload.RateConstants{SeqLen: 1000, R: 7, T: 22000, Alpha: 0.6}, decode)
}

func TestResolve_ScenarioTierUsedWithoutDerivation(t *testing.T) {
	base := &Scenario{Name: "s", SeqLen: i64(2000), R: f64(41), T: f64(110), W: f64(5), Alpha: f64(0.6)}
	c, err := NewRunner(nil).Resolve(Request{Name: "s", Base: base}, offload.PhasePrefill)
	require.NoError(t, err)
	assert.Equal(t, offload.RateConstants{SeqLen: 2000, R: 41, T: 110, W: 5, Alpha: 0.6}, c)
}

func TestResolve_AlphaDefaultsToFullOffload(t *testing.T) {
	req := Request{Name: "custom", Explicit: Overrides{SeqLen: i64(100), R: f64(1), T: f64(2)}}
	c, err := NewRunner(nil).Resolve(req, offload.PhasePrefill)
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Alpha)
	assert.Equal(t, 0.0, c.W)
}

func TestResolve_WriteBackIgnoredForDecode(t *testing.T) {
	req := Request{Name: "custom", Explicit: Overrides{SeqLen: i64(100), R: f64(1), T: f64(2), W: f64(9)}}
	c, err := NewRunner(nil).Resolve(req, offload.PhaseDecode)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.W)
}

func TestResolve_ZeroValuesAreDefined(t *testing.T) {
	// Explicit zeros are values, not absence.
	req := Request{Name: "custom", Explicit: Overrides{SeqLen: i64(0), R: f64(0), T: f64(0), Alpha: f64(0)}}
	c, err := NewRunner(nil).Resolve(req, offload.PhaseDecode)
	require.NoError(t, err)
	assert.Equal(t, offload.RateConstants{}, c)
}

func TestResolve_MissingConstants_ConfigurationErrorNamesFields(t *testing.T) {
	// GIVEN only T is provided
	req := Request{Name: "Custom Decode Analysis", Mode: ModeDecode, Explicit: Overrides{T: f64(200)}}

	// WHEN the scenario runs
	_, err := NewRunner(nil).Run(req)

	// THEN a configuration error names L and R
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"L", "R"}, cfgErr.Missing)
	assert.Equal(t, offload.PhaseDecode, cfgErr.Phase)
	assert.Contains(t, err.Error(), "L, R")
	assert.Contains(t, err.Error(), "Custom Decode Analysis")
}

func TestResolve_UnresolvedDerivedTPrefill_FallsThrough(t *testing.T) {
	// GIVEN derived constants without a prefill T
	derived := &derive.Constants{N: 0, TDecode: 20000, R: 50, RSource: derive.RSourceFallback}
	runner := NewRunner(derived)

	// WHEN prefill resolves without any other T source
	_, err := runner.Resolve(Request{Name: "empty prompts"}, offload.PhasePrefill)

	// THEN T is reported missing instead of resolving to zero
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"T"}, cfgErr.Missing)

	// AND a scenario T fills the gap while decode still uses the derived value
	c, err := runner.Resolve(Request{Name: "empty prompts", Base: &Scenario{T: f64(90)}}, offload.PhasePrefill)
	require.NoError(t, err)
	assert.Equal(t, 90.0, c.T)
	c, err = runner.Resolve(Request{Name: "empty prompts"}, offload.PhaseDecode)
	require.NoError(t, err)
	assert.Equal(t, 20000.0, c.T)
}

func TestRun_BothMode_PrefillThenDecode(t *testing.T) {
	req := Request{Name: "custom", Mode: ModeBoth, Explicit: Overrides{SeqLen: i64(2000), R: f64(50), T: f64(100), Alpha: f64(0.9)}}
	results, err := NewRunner(nil).Run(req)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, offload.PhasePrefill, results[0].Phase)
	assert.Equal(t, offload.PhaseDecode, results[1].Phase)
	assert.Equal(t, offload.RegimeIOBound, results[0].Regime)
}

func TestRun_InvalidAlpha_ReturnsModelError(t *testing.T) {
	req := Request{Name: "custom", Mode: ModePrefill, Explicit: Overrides{SeqLen: i64(10), R: f64(1), T: f64(1), Alpha: f64(1.5)}}
	_, err := NewRunner(nil).Run(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, offload.ErrInvalidAlpha))
}

func TestRunAll_DefaultScenarios_MatchReferenceOutcomes(t *testing.T) {
	// GIVEN the built-in fixtures
	f, err := DefaultScenarios()
	require.NoError(t, err)

	// WHEN all of them run
	outcomes := NewRunner(nil).RunAll(RequestsFor(f, Overrides{}))

	// THEN each has one result with the expected regime
	want := []offload.Regime{
		offload.RegimeComputeBound,
		offload.RegimeIOBound,
		offload.RegimeComputeBound,
		offload.RegimeIOBound,
		offload.RegimeIOBound,
	}
	require.Len(t, outcomes, len(want))
	for i, o := range outcomes {
		require.NoError(t, o.Err, o.Name)
		require.Len(t, o.Results, 1, o.Name)
		assert.Equal(t, want[i], o.Results[0].Regime, o.Name)
	}
	assert.InDelta(t, 3.2, float64(outcomes[3].Results[0].ActualRatio), 1e-9)
}

func TestRunAll_FailingScenario_DoesNotStopOthers(t *testing.T) {
	reqs := []Request{
		{Name: "incomplete", Mode: ModePrefill, Base: &Scenario{Name: "incomplete", R: f64(1)}},
		{Name: "complete", Mode: ModeDecode, Base: &Scenario{Name: "complete", SeqLen: i64(1000), R: f64(0.1), T: f64(200), Alpha: f64(0.8)}},
	}
	outcomes := NewRunner(nil).RunAll(reqs)

	require.Len(t, outcomes, 2)
	assert.Error(t, outcomes[0].Err)
	assert.Contains(t, outcomes[0].Error, "N, T")
	assert.Empty(t, outcomes[0].Results)
	assert.NoError(t, outcomes[1].Err)
	assert.Len(t, outcomes[1].Results, 1)
}

func TestRequestsFor_ExplicitOverridesApplyToEveryScenario(t *testing.T) {
	f, err := DefaultScenarios()
	require.NoError(t, err)
	outcomes := NewRunner(nil).RunAll(RequestsFor(f, Overrides{Alpha: f64(0)}))
	for _, o := range outcomes {
		require.NoError(t, o.Err)
		assert.Equal(t, 0.0, o.Results[0].AlphaCurrent, o.Name)
		assert.Equal(t, offload.Ratio(1), o.Results[0].ActualRatio, o.Name)
	}
}
