package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/giapha/core/cmd/api/commands"
)

// @title Gia Phả API
// @version 1.0
// @description Family genealogy site: tree editor, news, events calendar, shared-document sync and tree views.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token from /auth/login.

func main() {
	rootCmd := &cobra.Command{
		Use:           "giapha",
		Short:         "Family genealogy site server",
		Long:          `giapha serves a clan's family tree, news and events calendar, keeps them in sync with a shared document and renders the tree as an image.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: $GIAPHA_CONFIG or ./giapha.yaml)")

	rootCmd.AddCommand(
		commands.NewServeCommand(),
		commands.NewMigrateCommand(),
		commands.NewExportCommand(),
		commands.NewSyncCommand(),
		commands.NewSeedCommand(),
		commands.NewAdminCommand(),
		commands.NewConfigCommand(),
		commands.NewVersionCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
