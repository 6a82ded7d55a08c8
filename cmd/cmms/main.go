package main

import (
	"os"

	"github.com/spf13/cobra"

	"cmms/internal/interfaces/cli/generate"
	"cmms/internal/interfaces/cli/migrate"
	"cmms/internal/interfaces/cli/server"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "cmms",
		Short:        "CMMS - preventive maintenance work-order generator",
		Long:         `CMMS turns active maintenance plans into preventive work orders, on a schedule or on demand.`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(version),
		migrate.NewCommand(),
		generate.NewCommand(),
		generate.NewPendingCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
