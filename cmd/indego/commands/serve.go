package commands

import (
	"database/sql"
	"net/http"

	"indego-backend/lib/serviceutil"
	"indego-backend/services/popularity"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the station popularity API over the trip warehouse.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		db, err := sql.Open("sqlite", cfg.WarehouseDb)
		if err != nil {
			serviceutil.Fatal("failed to open warehouse db", err)
		}
		defer db.Close()
		_, err = db.Exec(popularity.Schema)
		if err != nil {
			serviceutil.Fatal("failed to apply warehouse schema", err)
		}

		port := cfg.Port
		if port == 0 {
			port = 8080
		}

		mux := http.NewServeMux()
		mux.Handle("/popularity", popularity.Handler(popularity.NewService(db)))
		serviceutil.StartHttpServer(port, mux)
	},
}
