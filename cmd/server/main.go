package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command. Running it without a subcommand
// starts the server.
func NewRootCmd() *cobra.Command {
	serve := NewServeCmd()

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Course marketplace API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	registerServeFlags(cmd.Flags())

	cmd.AddCommand(serve)
	cmd.AddCommand(NewSeedCmd())

	return cmd
}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		newLogger("info", "text").Fatal(err)
	}
}
