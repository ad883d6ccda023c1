package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <manifest>",
	Short: "Preview submissions without contacting a scheduler",
	Long: `Dry-run a pipeline manifest: render each rule's commands, derive its
deterministic job name and dependency set, and print what would be submitted.
Identifiers are fabricated sequentially and never touch a scheduler.

Examples:
  macadam describe pipeline.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	report, err := runPipeline(cmd, args[0], true)
	if err != nil {
		return err
	}
	for _, res := range report.Results {
		fmt.Println(res.Described)
	}
	return nil
}
