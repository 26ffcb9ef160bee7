package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envOverrides maps environment variables onto flags. A variable only applies
// when its flag was not set on the command line.
var envOverrides = map[string]string{
	"MONACO_SEED":      "seed",
	"MONACO_WORKERS":   "workers",
	"MONACO_SCENARIOS": "scenarios",
	"MONACO_LOG_LEVEL": "log",
}

// applyEnvOverrides copies MONACO_* variables into unset flags of cmd.
func applyEnvOverrides(cmd *cobra.Command) error {
	for env, name := range envOverrides {
		v, ok := os.LookupEnv(env)
		if !ok || v == "" {
			continue
		}
		f := lookupFlag(cmd, name)
		if f == nil || f.Changed {
			continue
		}
		if err := f.Value.Set(v); err != nil {
			return fmt.Errorf("%s=%q: %w", env, v, err)
		}
	}
	return nil
}

func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f
	}
	return cmd.InheritedFlags().Lookup(name)
}
