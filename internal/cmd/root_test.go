package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistration(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"submit", "describe", "engines"} {
		assert.True(t, names[want], "command %q must be registered", want)
	}
}

func TestRootPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "log-level", "engine", "name-prefix"} {
		f := rootCmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, "flag --%s must exist", name)
	}
}

func TestSubmitRequiresManifestArg(t *testing.T) {
	require.NotNil(t, submitCmd.Args)
	assert.Error(t, submitCmd.Args(submitCmd, nil))
	assert.NoError(t, submitCmd.Args(submitCmd, []string{"pipeline.yaml"}))
	assert.Error(t, submitCmd.Args(submitCmd, []string{"a.yaml", "b.yaml"}))
}

func TestExitErrorCarriesCode(t *testing.T) {
	err := exitError(3, "Pipeline failed", assert.AnError)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Pipeline failed")
	assert.Contains(t, err.Error(), "exit code 3")
}
