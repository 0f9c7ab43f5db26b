package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pms-api",
	Short: "Project management REST API",
	Long: `pms-api serves users, roles, projects, tasks, comments and file
attachments over a JSON REST API with bearer-token authentication.

Examples:
  # Start the HTTP server
  pms-api serve --config server_config.yaml

  # Create tables and indexes only
  pms-api migrate

  # Bootstrap the first administrator
  pms-api seed-admin --username admin --email admin@example.com --password secret`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	defaultPath := os.Getenv("PMS_CONFIG")
	if defaultPath == "" {
		defaultPath = "server_config.yaml"
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultPath, "path to the YAML config file")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
