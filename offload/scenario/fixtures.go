package scenario

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Scenario is a named set of constants from a fixture file. Unset fields are
// nil and must be supplied by another source at resolution time.
type Scenario struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Mode        Mode     `json:"mode" yaml:"mode"`
	SeqLen      *int64   `json:"seq_len,omitempty" yaml:"seq_len,omitempty"`
	R           *float64 `json:"r,omitempty" yaml:"r,omitempty"`
	T           *float64 `json:"t,omitempty" yaml:"t,omitempty"`
	W           *float64 `json:"w,omitempty" yaml:"w,omitempty"`
	Alpha       *float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`
}

// File is the top-level structure of a scenario fixture file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type File struct {
	Version   string     `json:"version" yaml:"version"`
	Scenarios []Scenario `json:"scenarios" yaml:"scenarios"`
}

// Find returns the scenario with the given name.
func (f *File) Find(name string) (*Scenario, bool) {
	for i := range f.Scenarios {
		if f.Scenarios[i].Name == name {
			return &f.Scenarios[i], true
		}
	}
	return nil, false
}

// DefaultScenarios returns the built-in scenario fixtures.
func DefaultScenarios() (*File, error) {
	f, err := ParseScenarios(defaultsYAML)
	if err != nil {
		return nil, fmt.Errorf("built-in scenarios: %w", err)
	}
	return f, nil
}

// LoadScenarios reads a scenario fixture file.
func LoadScenarios(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenarios file: %w", err)
	}
	f, err := ParseScenarios(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseScenarios decodes fixture YAML with strict field checking (typos must
// cause errors) and validates names and modes.
func ParseScenarios(data []byte) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing scenarios YAML: %w", err)
	}
	seen := make(map[string]bool, len(f.Scenarios))
	for i := range f.Scenarios {
		s := &f.Scenarios[i]
		if s.Name == "" {
			return nil, fmt.Errorf("scenario %d has no name", i)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate scenario name %q", s.Name)
		}
		seen[s.Name] = true
		if s.Mode == "" {
			s.Mode = ModeBoth
		}
		if _, err := ParseMode(string(s.Mode)); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	}
	return &f, nil
}
