package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnvTestCommand(seed *int64, workers *int, level *string) *cobra.Command {
	parent := &cobra.Command{Use: "parent"}
	parent.PersistentFlags().StringVar(level, "log", "warn", "")
	child := &cobra.Command{Use: "child", Run: func(*cobra.Command, []string) {}}
	child.Flags().Int64Var(seed, "seed", 42, "")
	child.Flags().IntVar(workers, "workers", 1, "")
	parent.AddCommand(child)
	return child
}

func TestApplyEnvOverrides_FillsUnsetFlags(t *testing.T) {
	// GIVEN MONACO_SEED, MONACO_WORKERS and MONACO_LOG_LEVEL in the environment
	var seed int64
	var workers int
	var level string
	child := newEnvTestCommand(&seed, &workers, &level)
	t.Setenv("MONACO_SEED", "7")
	t.Setenv("MONACO_WORKERS", "3")
	t.Setenv("MONACO_LOG_LEVEL", "debug")

	// WHEN only --workers is passed explicitly
	require.NoError(t, child.Flags().Set("workers", "8"))
	require.NoError(t, applyEnvOverrides(child))

	// THEN the environment fills the unset flags and the explicit flag wins
	assert.Equal(t, int64(7), seed)
	assert.Equal(t, 8, workers)
	assert.Equal(t, "debug", level)
}

func TestApplyEnvOverrides_InvalidValue(t *testing.T) {
	var seed int64
	var workers int
	var level string
	child := newEnvTestCommand(&seed, &workers, &level)
	t.Setenv("MONACO_SEED", "lots")

	err := applyEnvOverrides(child)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONACO_SEED")
}

func TestApplyEnvOverrides_IgnoresUnknownFlags(t *testing.T) {
	// presets has no --scenarios flag
	t.Setenv("MONACO_SCENARIOS", "5")
	assert.NoError(t, applyEnvOverrides(presetsCmd))
}
