package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/macadam-build/macadam/pkg/engine"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List scheduler engines and their availability",
	Args:  cobra.NoArgs,
	RunE:  runEngines,
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}

func runEngines(cmd *cobra.Command, _ []string) error {
	registry := engine.NewRegistry(engine.SearchPath())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENGINE\tAVAILABLE")
	for _, e := range registry.All() {
		fmt.Fprintf(w, "%s\t%t\n", e.Name(), e.Available())
	}
	return w.Flush()
}
