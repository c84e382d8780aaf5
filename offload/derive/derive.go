// Package derive turns benchmark latency logs into model rate constants.
//
// The baseline run (no offload) is treated as a pure compute measurement:
// mean TTFT divided by mean prompt length gives the prefill compute time per
// token, and mean inter-token latency is already the decode time per token.
// The offload-tier retrieval rate R is not derived from measurements; it is
// always the configured fallback and is tagged as such.
package derive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultFallbackR is the retrieval time per token (us) used when R is not measured.
	DefaultFallbackR = 50.0
	// DefaultUnitScale converts log seconds to model microseconds.
	DefaultUnitScale = 1e6

	// BaselinePattern matches benchmark latency logs inside a results directory.
	BaselinePattern = "metrics_*.csv"
	// OffloadStatsPattern matches offload-tier I/O logs inside a results directory.
	OffloadStatsPattern = "pcie_stats_*.csv"

	// RSourceFallback tags an R that came from Config.FallbackR.
	RSourceFallback = "fallback"
)

// Config selects the logs and conversion factors used for derivation.
type Config struct {
	BaselineDir string   // directory holding metrics_*.csv (required)
	OffloadDir  string   // directory holding pcie_stats_*.csv (optional)
	FallbackR   *float64 // R reported when no I/O rate can be derived; nil means DefaultFallbackR
	UnitScale   float64  // seconds to model time units; 0 means DefaultUnitScale
}

// Constants is the best-effort result of a derivation. TPrefill is nil when
// the mean prompt length is zero.
type Constants struct {
	N        int64    `json:"n" yaml:"n"`
	TPrefill *float64 `json:"t_prefill,omitempty" yaml:"t_prefill,omitempty"`
	TDecode  float64  `json:"t_decode" yaml:"t_decode"`
	R        float64  `json:"r" yaml:"r"`
	RSource  string   `json:"r_source" yaml:"r_source"`

	BaselineFile string `json:"baseline_file" yaml:"baseline_file"`
	OffloadFile  string `json:"offload_file,omitempty" yaml:"offload_file,omitempty"`
	Rows         int    `json:"rows" yaml:"rows"`
}

// TPrefillString formats TPrefill with two decimals, or "-" when unresolved.
func (c *Constants) TPrefillString() string {
	if c.TPrefill == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *c.TPrefill)
}

// MissingDataWarning reports that no usable baseline log was found. It is
// non-fatal: callers fall through to the next source of constants.
type MissingDataWarning struct {
	Dir     string
	Pattern string
	Err     error // cause when a log was found but could not be used
}

func (w *MissingDataWarning) Error() string {
	if w.Err != nil {
		return fmt.Sprintf("no usable %s in %s: %v", w.Pattern, w.Dir, w.Err)
	}
	return fmt.Sprintf("no %s found in %s", w.Pattern, w.Dir)
}

func (w *MissingDataWarning) Unwrap() error { return w.Err }

// Derive reads the latest baseline log in cfg.BaselineDir and averages it into
// Constants. When the log is absent or unusable it returns nil and a
// *MissingDataWarning. Other errors are not returned.
func Derive(cfg Config) (*Constants, error) {
	fallbackR := DefaultFallbackR
	if cfg.FallbackR != nil {
		fallbackR = *cfg.FallbackR
	}
	unitScale := cfg.UnitScale
	if unitScale == 0 {
		unitScale = DefaultUnitScale
	}

	warn := &MissingDataWarning{Dir: cfg.BaselineDir, Pattern: BaselinePattern}
	path, err := findLatest(cfg.BaselineDir, BaselinePattern)
	if err != nil {
		warn.Err = err
		return nil, warn
	}
	if path == "" {
		return nil, warn
	}

	records, err := ReadLatencyLog(path)
	if err != nil {
		warn.Err = err
		return nil, warn
	}
	if len(records) == 0 {
		warn.Err = fmt.Errorf("%s has no rows", path)
		return nil, warn
	}

	promptLens := make([]float64, len(records))
	ttfts := make([]float64, len(records))
	itls := make([]float64, len(records))
	for i, r := range records {
		promptLens[i] = float64(r.PromptLen)
		ttfts[i] = r.TTFT
		itls[i] = r.AvgITL
	}

	meanN := stat.Mean(promptLens, nil)
	c := &Constants{
		N:            int64(meanN),
		TDecode:      stat.Mean(itls, nil) * unitScale,
		R:            fallbackR,
		RSource:      RSourceFallback,
		BaselineFile: path,
		Rows:         len(records),
	}
	if meanN > 0 {
		tPrefill := stat.Mean(ttfts, nil) * unitScale / meanN
		c.TPrefill = &tPrefill
	} else {
		logrus.Warnf("Mean prompt_len in %s is 0; T_prefill left unresolved", path)
	}
	logrus.Debugf("Derived from %s (%d rows): N=%d, T_prefill=%s, T_decode=%.2f",
		path, c.Rows, c.N, c.TPrefillString(), c.TDecode)

	if cfg.OffloadDir != "" {
		statsPath, err := findLatest(cfg.OffloadDir, OffloadStatsPattern)
		switch {
		case err != nil:
			logrus.Debugf("Scanning %s for %s: %v", cfg.OffloadDir, OffloadStatsPattern, err)
		case statsPath != "":
			c.OffloadFile = statsPath
			logrus.Debugf("Found offload I/O log %s; R is not derived from it, using fallback %.2f", statsPath, fallbackR)
		default:
			logrus.Debugf("No %s in %s", OffloadStatsPattern, cfg.OffloadDir)
		}
	}
	return c, nil
}

// findLatest returns the most recently modified file in dir matching pattern,
// or "" when nothing matches.
func findLatest(dir, pattern string) (string, error) {
	if dir == "" {
		return "", nil
	}
	if _, err := os.Stat(dir); err != nil {
		return "", err
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("matching %s: %w", pattern, err)
	}
	var latest string
	var latestInfo os.FileInfo
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if latestInfo == nil || info.ModTime().After(latestInfo.ModTime()) {
			latest, latestInfo = m, info
		}
	}
	return latest, nil
}
