package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"podcast-feed-gen/internal/config"
)

func newShowsCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "shows",
		Short: "List the shows the backend knows about and their feed filenames",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFlag)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			gen, err := buildGenerator(cfg, newLogger())
			if err != nil {
				return err
			}

			shows, err := gen.ListShows(ctx)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(shows))
			for _, show := range shows {
				rows = append(rows, []string{
					strconv.Itoa(show.ID),
					show.Title,
					slug.Make(show.Title),
					gen.FeedFilename(show),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Slug", "Feed file"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
