package commands

import (
	"indego-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Downloads every published archive not already in raw storage.",
	Run: func(cmd *cobra.Command, args []string) {
		p := newPipeline(readConfig())
		err := p.FetchAll(cmd.Context())
		if err != nil {
			serviceutil.Fatal("fetch finished with failures", err)
		}
	},
}
