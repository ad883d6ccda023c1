package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/macadam-build/macadam/pkg/graph"
)

// SGE submits through qsub and queries through qstat. -terse keeps qsub's
// stdout to the bare job id.
type SGE struct {
	paths PathList
	run   runCommandFunc
}

func NewSGE(paths PathList) *SGE {
	return &SGE{paths: paths, run: runCommand}
}

func (s *SGE) Name() string { return "sge" }

func (s *SGE) Available() bool {
	return ExecutableOn(s.paths, "qsub")
}

func (s *SGE) SubmitTemplate() string {
	return "qsub -terse -N ${NAME} -o ${LOG_FILE} -j y -wd ${WORKING_DIRECTORY}" +
		" ${DEPENDENCIES} ${MEMORY} ${TIME} ${QUEUE} ${ACCOUNT} ${GPU_COUNT} ${NODELIST} ${EXCLUDE}"
}

func (s *SGE) ParameterFlags(params map[string]string) map[string]string {
	return fillFlags(params, func(name, value string) string {
		switch name {
		case "MEMORY":
			return "-l mem_free=" + graph.Quote(value)
		case "TIME":
			return "-l h_rt=" + graph.Quote(value)
		case "QUEUE":
			return "-q " + graph.Quote(value)
		case "ACCOUNT":
			return "-A " + graph.Quote(value)
		case "GPU_COUNT":
			return "-l gpu=" + graph.Quote(value)
		case "NODELIST":
			return "-l " + graph.Quote("hostname="+value)
		case "EXCLUDE":
			return "-l " + graph.Quote("hostname=!("+value+")")
		default:
			return ""
		}
	})
}

func (s *SGE) FormatDependencies(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return "-hold_jid " + strings.Join(parts, ",")
}

// JobExists probes qstat by job name. Grid Engine's listing has no owner
// filter to combine with a name match; -j resolves by name pattern and
// prints nothing on a miss, which satisfies the non-empty-output contract.
func (s *SGE) JobExists(ctx context.Context, name string) (bool, error) {
	out, err := s.run(ctx, []string{"qstat", "-j", name})
	if err != nil {
		// qstat exits non-zero when no job matches.
		return false, nil
	}
	return len(strings.TrimSpace(string(out))) > 0, nil
}
