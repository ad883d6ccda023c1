package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macadam-build/macadam/internal/config"
	"github.com/macadam-build/macadam/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "macadam",
	Short: "Pave build rules onto batch schedulers",
	Long: `macadam bridges a build pipeline to external batch schedulers.

Each rule's commands are submitted as an asynchronous scheduler job instead
of running locally. Job ordering is derived from the build graph, and output
artifacts are renamed so their paths are content-addressed by the exact
command that produces them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	cfgFile    string
	logLevel   string
	engineName string
	namePrefix string

	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./macadam.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&engineName, "engine", "", "Scheduler engine (slurm|sge|auto)")
	rootCmd.PersistentFlags().StringVar(&namePrefix, "name-prefix", "", "Prefix for derived job names")

	rootCmd.PersistentPreRunE = loadRootConfig
}

func loadRootConfig(cmd *cobra.Command, _ []string) error {
	overrides := map[string]any{}
	if logLevel != "" {
		overrides["logging"] = map[string]any{"level": logLevel}
	}
	if engineName != "" {
		overrides["engine"] = engineName
	}
	if namePrefix != "" {
		overrides["name_prefix"] = namePrefix
	}

	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFile(cmd.Context(), cfgFile, overrides)
	} else {
		cfg, err = config.Load(cmd.Context(), overrides)
	}
	if err != nil {
		return err
	}

	return observability.Init(cfg.Logging.Level, cfg.Logging.Format)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func exitError(code int, message string, err error) error {
	return fmt.Errorf("%s: %w (exit code %d)", message, err, code)
}
