package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/macadam-build/macadam/pkg/address"
	"github.com/macadam-build/macadam/pkg/command"
	"github.com/macadam-build/macadam/pkg/engine"
	"github.com/macadam-build/macadam/pkg/graph"
	"github.com/macadam-build/macadam/pkg/jobs"
)

// RuleResult is the per-rule outcome reported back to the caller.
type RuleResult struct {
	Rule      string
	Name      string
	JobID     int64
	DependsOn []int64
	Skipped   bool
	Described string
	Targets   []string
	LogPaths  []string
}

// Report collects the outcomes of one pipeline run.
type Report struct {
	Results []RuleResult
}

// Runner drives the core for each rule of a manifest, in declared order.
// Rule-level failures abort the run; nothing is retried or rolled back.
type Runner struct {
	Engine     engine.Engine
	Tags       *graph.TagTable
	Counter    *engine.Counter
	Submitter  *jobs.Submitter
	Env        *graph.Env
	NamePrefix string

	// DefaultParams are build-wide engine parameters; rule params shadow
	// them key by key.
	DefaultParams map[string]string

	Log *zap.Logger

	// renamed maps nominal target paths to their content-addressed nodes,
	// standing in for the host graph's target substitution: a later rule
	// naming an earlier rule's nominal target consumes the renamed node.
	renamed map[string]*graph.Node
}

// Run processes every rule. baseDir anchors the manifest's relative paths.
// With describe set, submissions are fabricated instead of executed.
func (r *Runner) Run(ctx context.Context, m *Manifest, baseDir string, describe bool) (*Report, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	baseEnv := r.Env
	if baseEnv == nil {
		baseEnv = graph.NewEnv(nil)
	}
	if len(m.Variables) > 0 {
		baseEnv = baseEnv.Override(m.Variables)
	}

	if r.renamed == nil {
		r.renamed = make(map[string]*graph.Node)
	}

	report := &Report{}
	for i := range m.Rules {
		rule := &m.Rules[i]
		res, err := r.runRule(ctx, rule, baseDir, baseEnv, describe, log)
		if err != nil {
			return report, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
		report.Results = append(report.Results, *res)
	}
	return report, nil
}

func (r *Runner) runRule(ctx context.Context, rule *Rule, baseDir string, baseEnv *graph.Env, describe bool, log *zap.Logger) (*RuleResult, error) {
	env := baseEnv
	if len(rule.Variables) > 0 {
		env = env.Override(rule.Variables)
	}

	targets, err := targetNodes(rule.Targets, baseDir)
	if err != nil {
		return nil, err
	}
	sources, err := sourceNodes(rule, baseDir)
	if err != nil {
		return nil, err
	}
	for i, s := range sources {
		if rn, ok := r.renamed[s.AbsPath()]; ok {
			sources[i] = rn
		}
	}

	gen, err := command.NewGenerator(rule.Commands)
	if err != nil {
		return nil, err
	}

	script, err := resolveScript(rule, baseDir)
	if err != nil {
		return nil, err
	}

	auxDeps, err := fileNodes(rule.AuxDeps, baseDir)
	if err != nil {
		return nil, err
	}

	res, err := address.Rewrite(gen, env, targets, sources, script, auxDeps)
	if err != nil {
		return nil, err
	}
	for i, nominal := range targets {
		r.renamed[nominal.AbsPath()] = res.Targets[i]
	}

	name := jobs.JobName(r.NamePrefix, res.Targets, res.Sources)
	targetPaths := nodePaths(res.Targets)

	if describe {
		desc := engine.Describe(r.Engine, r.Counter, r.Tags, res.FinalCommands, name, res.Targets, res.Sources)
		log.Info("described rule",
			zap.String("rule", rule.Name),
			zap.Int64("pseudo_job_id", desc.JobID),
			zap.Int64s("depends_on", desc.DependsOn),
		)
		return &RuleResult{
			Rule:      rule.Name,
			Name:      name,
			JobID:     desc.JobID,
			DependsOn: desc.DependsOn,
			Described: desc.String(),
			Targets:   targetPaths,
			LogPaths:  res.LogPaths,
		}, nil
	}

	dependsOn := jobs.CollectDependencies(r.Tags, res.Sources, graph.TagBuiltByJob)

	exists, err := r.Engine.JobExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Warn("job already queued, skipping submission",
			zap.String("rule", rule.Name), zap.String("name", name))
		return &RuleResult{
			Rule:      rule.Name,
			Name:      name,
			DependsOn: dependsOn,
			Skipped:   true,
			Targets:   targetPaths,
			LogPaths:  res.LogPaths,
		}, nil
	}

	params := make(map[string]string, len(r.DefaultParams)+len(rule.Params))
	for k, v := range r.DefaultParams {
		params[k] = v
	}
	for k, v := range rule.Params {
		params[k] = v
	}

	vars := r.Engine.ParameterFlags(params)
	vars["DEPENDENCIES"] = r.Engine.FormatDependencies(dependsOn)

	id, err := r.Submitter.Submit(ctx, jobs.Request{
		Template:   r.Engine.SubmitTemplate(),
		Env:        env,
		Name:       name,
		Targets:    res.Targets,
		Commands:   res.FinalCommands,
		Vars:       vars,
		WorkingDir: resolveWorkingDir(rule.WorkingDir, baseDir),
	})
	if err != nil {
		return nil, err
	}

	jobs.TagTargets(r.Tags, res.Targets, graph.TagBuiltByJob, id)
	log.Info("job depends on",
		zap.Int64("job_id", id),
		zap.Int64s("depends_on", dependsOn),
	)

	return &RuleResult{
		Rule:      rule.Name,
		Name:      name,
		JobID:     id,
		DependsOn: dependsOn,
		Targets:   targetPaths,
		LogPaths:  res.LogPaths,
	}, nil
}

// resolveScript finds the generating script a rule's outputs depend on:
// either declared explicitly or decomposed from the first command template.
// The script file must exist.
func resolveScript(rule *Rule, baseDir string) (*graph.Node, error) {
	path := strings.TrimSpace(rule.Script)
	if path == "" {
		_, script, _, err := command.Decompose(rule.Commands[0])
		if err != nil {
			return nil, err
		}
		path = script
	}
	path = resolvePath(path, baseDir)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no such file: %q", path)
	}
	return graph.NewFile(path)
}

func targetNodes(paths []string, baseDir string) ([]*graph.Node, error) {
	nodes := make([]*graph.Node, 0, len(paths))
	for _, p := range paths {
		resolved := resolvePath(strings.TrimSuffix(p, "/"), baseDir)
		var (
			n   *graph.Node
			err error
		)
		if strings.HasSuffix(p, "/") {
			n, err = graph.NewDir(resolved)
		} else {
			n, err = graph.NewFile(resolved)
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func sourceNodes(rule *Rule, baseDir string) ([]*graph.Node, error) {
	nodes, err := fileNodes(rule.Sources, baseDir)
	if err != nil {
		return nil, err
	}

	for _, pattern := range rule.SourceGlobs {
		matches, err := doublestar.FilepathGlob(resolvePath(pattern, baseDir))
		if err != nil {
			return nil, fmt.Errorf("source glob %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			n, err := graph.NewFile(m)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

func fileNodes(paths []string, baseDir string) ([]*graph.Node, error) {
	nodes := make([]*graph.Node, 0, len(paths))
	for _, p := range paths {
		n, err := graph.NewFile(resolvePath(p, baseDir))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func resolveWorkingDir(dir, baseDir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return ""
	}
	return resolvePath(dir, baseDir)
}

func resolvePath(p, baseDir string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

func nodePaths(nodes []*graph.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.AbsPath())
	}
	return out
}
