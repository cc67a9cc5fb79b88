package commands

import (
	"indego-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the full pipeline: fetch all archives, then process them.",
	Run: func(cmd *cobra.Command, args []string) {
		p := newPipeline(readConfig())
		err := p.Run(cmd.Context())
		if err != nil {
			serviceutil.Fatal("pipeline finished with failures", err)
		}
	},
}
