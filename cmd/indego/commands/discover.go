package commands

import (
	"fmt"
	"os"

	"indego-backend/lib/catalog"
	"indego-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Prints the archives currently published on the data portal.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		c := catalog.New(catalog.Options{PageUrl: cfg.CatalogUrl})
		entries, err := c.Discover(cmd.Context())
		if err != nil {
			serviceutil.Fatal("discovery failed", err)
		}

		fmt.Fprintf(os.Stderr, "Found %d trip data URLs:\n", len(entries))
		for _, entry := range entries {
			fmt.Printf("%s: %s\n", entry.Label, entry.Url)
		}
	},
}
