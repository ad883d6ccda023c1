package jobs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/macadam-build/macadam/pkg/graph"
)

// OutputParseError reports a submission whose stdout was not an integer job
// identifier. This is fatal: the rule failed, nothing gets tagged.
type OutputParseError struct {
	Output string
}

func (e *OutputParseError) Error() string {
	return fmt.Sprintf("submission output is not a job id: %q", e.Output)
}

// Request describes one submission. Vars holds the engine-formatted
// parameter fragments (MEMORY, TIME, DEPENDENCIES, ...) the template
// references; absent parameters must be present as empty strings.
type Request struct {
	Template   string
	Env        *graph.Env
	Name       string
	Targets    []*graph.Node
	Commands   []string
	Vars       map[string]string
	WorkingDir string
}

// Submitter turns scripts into externally-tracked asynchronous jobs. It
// blocks until the scheduler subprocess exits and its output is parsed; it
// never retries and enforces no timeout of its own.
type Submitter struct {
	shell   string
	log     *zap.Logger
	limiter *rate.Limiter
}

// NewSubmitter builds a Submitter. shell is the directive line prepended to
// every generated script. limiter may be nil to submit unpaced.
func NewSubmitter(shell string, log *zap.Logger, limiter *rate.Limiter) *Submitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter{shell: shell, log: log, limiter: limiter}
}

// Submit renders the submission command line, launches it, streams the
// generated script to its stdin, and parses the integer job id from its
// stdout.
func (s *Submitter) Submit(ctx context.Context, req Request) (int64, error) {
	if len(req.Targets) == 0 {
		return 0, fmt.Errorf("submission has no targets")
	}
	if len(req.Commands) == 0 {
		return 0, fmt.Errorf("submission has no commands")
	}

	logFile := req.Targets[0].AbsPath() + ".log"
	workDir := strings.TrimSpace(req.WorkingDir)
	if workDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return 0, fmt.Errorf("resolve working directory: %w", err)
		}
		workDir = cwd
	}

	vars := make(map[string]string, len(req.Vars)+3)
	for k, v := range req.Vars {
		vars[k] = v
	}
	vars["NAME"] = req.Name
	vars["LOG_FILE"] = graph.Quote(logFile)
	vars["WORKING_DIRECTORY"] = graph.Quote(workDir)

	line, err := req.Env.Override(vars).Subst(req.Template)
	if err != nil {
		return 0, fmt.Errorf("render submission string: %w", err)
	}
	argv, err := graph.Split(line)
	if err != nil {
		return 0, err
	}
	if len(argv) == 0 {
		return 0, fmt.Errorf("submission string rendered empty")
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("wait for submission slot: %w", err)
		}
	}

	s.log.Debug("submitting job",
		zap.String("name", req.Name),
		zap.String("submit_string", line),
		zap.String("log_file", logFile),
	)

	script := strings.Join(append([]string{s.shell}, req.Commands...), "\n")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("submission command %q failed: %w (stderr: %s)",
			argv[0], err, strings.TrimSpace(stderr.String()))
	}

	raw := strings.TrimSpace(stdout.String())
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &OutputParseError{Output: raw}
	}

	s.log.Info("job submitted", zap.Int64("job_id", id), zap.String("name", req.Name))
	return id, nil
}
