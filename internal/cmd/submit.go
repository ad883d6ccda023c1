package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/macadam-build/macadam/internal/observability"
	"github.com/macadam-build/macadam/pkg/engine"
	"github.com/macadam-build/macadam/pkg/graph"
	"github.com/macadam-build/macadam/pkg/jobs"
	"github.com/macadam-build/macadam/pkg/pipeline"
)

var submitCmd = &cobra.Command{
	Use:   "submit <manifest>",
	Short: "Submit a pipeline's rules as scheduler jobs",
	Long: `Process every rule of a pipeline manifest: render its commands,
content-address its targets, derive its job dependencies, and submit it to
the configured scheduler.

Examples:
  macadam submit pipeline.yaml
  macadam submit pipeline.yaml --engine slurm
  macadam submit pipeline.yaml --name-prefix exp42`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	report, err := runPipeline(cmd, args[0], false)
	if err != nil {
		return err
	}

	for _, res := range report.Results {
		if res.Skipped {
			fmt.Printf("%s: skipped (job %s already queued)\n", res.Rule, res.Name)
			continue
		}
		fmt.Printf("%s: job %d (depends on %v)\n", res.Rule, res.JobID, res.DependsOn)
	}
	return nil
}

// runPipeline wires the core from config and drives every rule of the
// manifest. Shared by submit and describe.
func runPipeline(cmd *cobra.Command, manifestPath string, describe bool) (*pipeline.Report, error) {
	log := observability.CLILogger

	m, err := pipeline.Load(manifestPath)
	if err != nil {
		log.Error("Invalid manifest", zap.String("path", manifestPath), zap.Error(err))
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid manifest", err)
	}

	absManifest, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid manifest path", err)
	}

	registry := engine.NewRegistry(engine.SearchPath())
	eng, err := registry.Select(cfg.Engine)
	if err != nil {
		log.Error("Engine selection failed", zap.Error(err))
		return nil, exitError(foundry.ExitExternalServiceUnavailable, "No usable scheduler engine", err)
	}
	if !describe && !eng.Available() {
		err := fmt.Errorf("engine %q executable not found on PATH", eng.Name())
		return nil, exitError(foundry.ExitExternalServiceUnavailable, "Scheduler unavailable", err)
	}

	var limiter *rate.Limiter
	if cfg.Submit.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Submit.RatePerSecond), cfg.Submit.Burst)
	}

	baseVars := map[string]string{"LABEL_PREFIX": cfg.NamePrefix}
	for k, v := range cfg.Variables {
		baseVars[k] = v
	}

	runner := &pipeline.Runner{
		Engine:        eng,
		Tags:          graph.NewTagTable(),
		Counter:       engine.NewCounter(),
		Submitter:     jobs.NewSubmitter(cfg.Shell, log, limiter),
		Env:           graph.NewEnv(baseVars),
		NamePrefix:    cfg.NamePrefix,
		DefaultParams: cfg.Parameters,
		Log:           log,
	}

	report, err := runner.Run(cmd.Context(), m, filepath.Dir(absManifest), describe)
	if err != nil {
		log.Error("Pipeline failed", zap.Error(err))
		if strings.Contains(err.Error(), "no such file") {
			return nil, exitError(foundry.ExitFileReadError, "Pipeline failed", err)
		}
		return nil, exitError(foundry.ExitExternalServiceUnavailable, "Pipeline failed", err)
	}
	return report, nil
}
