package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "podcast-feed-gen",
		Short:         "Generate and serve podcast RSS feeds for the station's shows",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newGenerateCommand(&configFlag))
	rootCmd.AddCommand(newServeCommand(&configFlag))
	rootCmd.AddCommand(newShowsCommand(&configFlag))

	return rootCmd
}
