package engine

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/macadam-build/macadam/pkg/graph"
	"github.com/macadam-build/macadam/pkg/jobs"
)

// Counter fabricates monotonically increasing pseudo job ids for descriptive
// mode. One counter is created per build invocation; ids start at 0 and
// share no namespace with real scheduler ids.
type Counter struct {
	n atomic.Int64
}

func NewCounter() *Counter {
	return &Counter{}
}

// Next returns the current pseudo id and advances the counter.
func (c *Counter) Next() int64 {
	return c.n.Add(1) - 1
}

// Description is what a submission would have been. It is built entirely
// from pseudo tags so it can never satisfy real dependency tracking.
type Description struct {
	Engine    string
	Commands  []string
	Name      string
	JobID     int64
	DependsOn []int64
}

// Describe fabricates a pseudo id for the rule, computes its dependency set
// from the pseudo tag namespace, and tags its targets under the pseudo key.
func Describe(eng Engine, counter *Counter, tags *graph.TagTable, commands []string, name string, targets, sources []*graph.Node) *Description {
	dependsOn := jobs.CollectDependencies(tags, sources, graph.TagBuiltByPseudoJob)
	id := counter.Next()
	jobs.TagTargets(tags, targets, graph.TagBuiltByPseudoJob, id)

	return &Description{
		Engine:    eng.Name(),
		Commands:  commands,
		Name:      name,
		JobID:     id,
		DependsOn: dependsOn,
	}
}

func (d *Description) String() string {
	deps := make([]string, 0, len(d.DependsOn))
	for _, id := range d.DependsOn {
		deps = append(deps, fmt.Sprintf("%d", id))
	}
	return fmt.Sprintf("%s(commands=[%s], name=%s, job_id=%d, depends_on_jobs={%s})",
		titleCase(d.Engine),
		strings.Join(d.Commands, "; "),
		d.Name,
		d.JobID,
		strings.Join(deps, ", "),
	)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
