package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// envDefaults maps flags to environment variables that replace their built-in
// default. Flags given on the command line always win.
var envDefaults = []struct {
	flag string
	env  string
}{
	{"log", "KVROOFLINE_LOG"},
	{"fallback-r", "KVROOFLINE_FALLBACK_R"},
	{"unit-scale", "KVROOFLINE_UNIT_SCALE"},
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
// Variables already set in the environment are not overridden.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// applyEnvDefaults sets every unchanged flag of cmd that has an environment
// default.
func applyEnvDefaults(cmd *cobra.Command) error {
	for _, d := range envDefaults {
		f := cmd.Flags().Lookup(d.flag)
		if f == nil || f.Changed {
			continue
		}
		v, ok := os.LookupEnv(d.env)
		if !ok || v == "" {
			continue
		}
		if err := f.Value.Set(v); err != nil {
			return fmt.Errorf("%s=%q: %w", d.env, v, err)
		}
	}
	return nil
}
