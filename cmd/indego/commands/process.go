package commands

import (
	"indego-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Normalizes every stored raw archive into its jsonl partition.",
	Run: func(cmd *cobra.Command, args []string) {
		p := newPipeline(readConfig())
		err := p.ProcessAll(cmd.Context())
		if err != nil {
			serviceutil.Fatal("processing finished with failures", err)
		}
	},
}
