// Package engine defines the closed family of scheduler backends. Each
// engine declares availability (is its CLI on the search path?), a
// submission-string template, per-parameter flag rendering, and a
// queued-job existence check. Engines are stateless; the descriptive-mode
// pseudo-id counter lives in its own type with an explicit lifetime.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Parameters is the recognized set of submission options. Values for these
// names are substituted into an engine's template as flag fragments; an
// absent value renders as an empty fragment, never as an error.
var Parameters = []string{
	"MEMORY",
	"TIME",
	"QUEUE",
	"ACCOUNT",
	"GPU_COUNT",
	"DEPENDENCIES",
	"LABEL_PREFIX",
	"WORKING_DIRECTORY",
	"NODELIST",
	"EXCLUDE",
}

// Recognized reports whether name is a known engine parameter.
func Recognized(name string) bool {
	for _, p := range Parameters {
		if p == name {
			return true
		}
	}
	return false
}

// Engine is one scheduler backend.
type Engine interface {
	// Name is the human-readable engine name ("slurm", "sge").
	Name() string

	// Available reports whether the engine's submit executable exists on
	// the search path. The check scans directories for the literal file
	// name; it never invokes the executable.
	Available() bool

	// SubmitTemplate is the submission command-line pattern. It references
	// NAME, LOG_FILE, WORKING_DIRECTORY, DEPENDENCIES, and the recognized
	// parameter fragments.
	SubmitTemplate() string

	// ParameterFlags renders raw parameter values into engine-specific
	// flag fragments. Every recognized parameter gets an entry; unset
	// parameters map to the empty string so templates substitute cleanly.
	ParameterFlags(params map[string]string) map[string]string

	// FormatDependencies renders the job-ordering flag for ids, or "" when
	// there are none.
	FormatDependencies(ids []int64) string

	// JobExists queries the scheduler for a currently-queued job with the
	// given name. Non-empty listing output means the job exists.
	JobExists(ctx context.Context, name string) (bool, error)
}

// PathList is the PATH-like search list of directories.
type PathList []string

// SearchPath returns the process's executable search path.
func SearchPath() PathList {
	return filepath.SplitList(os.Getenv("PATH"))
}

// ExecutableOn reports whether some directory on paths contains an entry
// literally named name.
func ExecutableOn(paths PathList, name string) bool {
	for _, dir := range paths {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// runCommandFunc runs argv and returns its stdout. Injected in tests.
type runCommandFunc func(ctx context.Context, argv []string) ([]byte, error)

func runCommand(ctx context.Context, argv []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("%s: %w", argv[0], err)
	}
	return stdout.Bytes(), nil
}

// fillFlags maps every recognized parameter to its rendered fragment,
// defaulting to "". render receives only parameters with non-empty values.
func fillFlags(params map[string]string, render func(name, value string) string) map[string]string {
	out := make(map[string]string, len(Parameters))
	for _, p := range Parameters {
		out[p] = ""
	}
	for name, value := range params {
		value = strings.TrimSpace(value)
		if value == "" || !Recognized(name) {
			continue
		}
		out[name] = render(name, value)
	}
	return out
}
