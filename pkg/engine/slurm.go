package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/macadam-build/macadam/pkg/graph"
)

// Slurm submits through sbatch and queries through squeue. --parsable keeps
// sbatch's stdout to the bare job id the submission protocol requires.
type Slurm struct {
	paths PathList
	run   runCommandFunc
}

func NewSlurm(paths PathList) *Slurm {
	return &Slurm{paths: paths, run: runCommand}
}

func (s *Slurm) Name() string { return "slurm" }

func (s *Slurm) Available() bool {
	return ExecutableOn(s.paths, "sbatch")
}

func (s *Slurm) SubmitTemplate() string {
	return "sbatch --parsable --job-name ${NAME} --output ${LOG_FILE} --chdir ${WORKING_DIRECTORY}" +
		" ${DEPENDENCIES} ${MEMORY} ${TIME} ${QUEUE} ${ACCOUNT} ${GPU_COUNT} ${NODELIST} ${EXCLUDE}"
}

func (s *Slurm) ParameterFlags(params map[string]string) map[string]string {
	return fillFlags(params, func(name, value string) string {
		switch name {
		case "MEMORY":
			return "--mem=" + graph.Quote(value)
		case "TIME":
			return "--time=" + graph.Quote(value)
		case "QUEUE":
			return "--partition=" + graph.Quote(value)
		case "ACCOUNT":
			return "--account=" + graph.Quote(value)
		case "GPU_COUNT":
			return "--gres=gpu:" + graph.Quote(value)
		case "NODELIST":
			return "--nodelist=" + graph.Quote(value)
		case "EXCLUDE":
			return "--exclude=" + graph.Quote(value)
		default:
			return ""
		}
	})
}

func (s *Slurm) FormatDependencies(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return "--dependency=afterok:" + strings.Join(parts, ":")
}

// JobExists lists the caller's own queued jobs filtered by name; any
// non-empty output means a job with that name is already queued.
func (s *Slurm) JobExists(ctx context.Context, name string) (bool, error) {
	out, err := s.run(ctx, []string{"squeue", "--me", "--noheader", "--name", name})
	if err != nil {
		return false, fmt.Errorf("query queued jobs: %w", err)
	}
	return len(strings.TrimSpace(string(out))) > 0, nil
}
