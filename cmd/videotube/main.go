package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:          "videotube",
		Short:        "Video sharing API server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")

	root.AddCommand(
		newServeCommand(&configFile),
		newMigrateCommand(&configFile),
	)
	return root
}
