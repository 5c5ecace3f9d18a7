package cmd

import (
	"log"
	"os"

	"github.com/aqlanhadi/kapreport/api"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long:  `Starts the HTTP API server that accepts IBKR activity statements and returns Anlage KAP values as JSON or HTML.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Configure logging for server mode
		log.SetOutput(os.Stdout)
		log.SetFlags(log.Ltime | log.Lmsgprefix)

		server := api.New(serverConfig())
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	},
}

func serverConfig() api.Config {
	cfg := api.DefaultConfig()
	if port := viper.GetString("server.port"); port != "" {
		cfg.Port = ":" + port
	}
	if limit := viper.GetInt64("server.max_upload_mb"); limit > 0 {
		cfg.MaxUploadMB = limit
	}
	cfg.LogPrefix = "SERVER: "
	return cfg
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to run the API server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
