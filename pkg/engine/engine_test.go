package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutableOn(t *testing.T) {
	withBin := t.TempDir()
	empty := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(withBin, "sbatch"), []byte("#!/bin/sh\n"), 0755))

	tests := []struct {
		name     string
		paths    PathList
		exe      string
		expected bool
	}{
		{"present", PathList{empty, withBin}, "sbatch", true},
		{"absent", PathList{empty}, "sbatch", false},
		{"wrong name", PathList{withBin}, "qsub", false},
		{"empty path entry skipped", PathList{"", withBin}, "sbatch", true},
		{"no dirs", nil, "sbatch", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExecutableOn(tt.paths, tt.exe))
		})
	}
}

func TestRecognized(t *testing.T) {
	for _, p := range Parameters {
		assert.True(t, Recognized(p), p)
	}
	assert.False(t, Recognized("WALLTIME"))
	assert.False(t, Recognized("memory"))
}

func TestSlurmParameterFlags(t *testing.T) {
	s := NewSlurm(nil)
	flags := s.ParameterFlags(map[string]string{
		"MEMORY":    "4G",
		"TIME":      "4:00:00",
		"QUEUE":     "gpu",
		"GPU_COUNT": "2",
	})

	assert.Equal(t, "--mem=4G", flags["MEMORY"])
	assert.Equal(t, "--time=4:00:00", flags["TIME"])
	assert.Equal(t, "--partition=gpu", flags["QUEUE"])
	assert.Equal(t, "--gres=gpu:2", flags["GPU_COUNT"])

	// Every recognized parameter has an entry, unset ones empty.
	for _, p := range Parameters {
		_, ok := flags[p]
		assert.True(t, ok, p)
	}
	assert.Equal(t, "", flags["ACCOUNT"])
	assert.Equal(t, "", flags["NODELIST"])
}

func TestSlurmFormatDependencies(t *testing.T) {
	s := NewSlurm(nil)
	assert.Equal(t, "", s.FormatDependencies(nil))
	assert.Equal(t, "--dependency=afterok:42", s.FormatDependencies([]int64{42}))
	assert.Equal(t, "--dependency=afterok:7:42", s.FormatDependencies([]int64{7, 42}))
}

func TestSGEFormatDependencies(t *testing.T) {
	s := NewSGE(nil)
	assert.Equal(t, "", s.FormatDependencies(nil))
	assert.Equal(t, "-hold_jid 7,42", s.FormatDependencies([]int64{7, 42}))
}

func TestSlurmJobExists(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected bool
	}{
		{"job listed", "123 gpu macadam_abc user R 0:01 1 node1\n", true},
		{"empty output", "", false},
		{"whitespace only", "  \n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSlurm(nil)
			var gotArgv []string
			s.run = func(_ context.Context, argv []string) ([]byte, error) {
				gotArgv = argv
				return []byte(tt.output), nil
			}

			exists, err := s.JobExists(context.Background(), "macadam_abc")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, exists)
			assert.Equal(t, []string{"squeue", "--me", "--noheader", "--name", "macadam_abc"}, gotArgv)
		})
	}
}

func TestRegistrySelect(t *testing.T) {
	r := NewRegistry(nil)

	eng, err := r.Select("slurm")
	require.NoError(t, err)
	assert.Equal(t, "slurm", eng.Name())

	eng, err = r.Select("SGE")
	require.NoError(t, err)
	assert.Equal(t, "sge", eng.Name())

	_, err = r.Select("pbs")
	require.Error(t, err)

	// Auto with nothing on PATH fails.
	_, err = r.Select("auto")
	require.Error(t, err)
}

func TestRegistrySelectAuto(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qsub"), []byte("#!/bin/sh\n"), 0755))

	r := NewRegistry(PathList{dir})
	eng, err := r.Select("auto")
	require.NoError(t, err)
	assert.Equal(t, "sge", eng.Name())
}
