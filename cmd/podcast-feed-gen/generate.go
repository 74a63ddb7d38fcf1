package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"podcast-feed-gen/internal/config"
	"podcast-feed-gen/internal/generator"
	"podcast-feed-gen/internal/models"
)

func newGenerateCommand(configFlag *string) *cobra.Command {
	var excludeFlag []int

	cmd := &cobra.Command{
		Use:   "generate [show-id...]",
		Short: "Generate feed files for all shows, or only the given show IDs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFlag)
			if err != nil {
				return err
			}

			ids, err := parseShowIDs(args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runGenerate(ctx, cfg, ids, excludeFlag)
		},
	}

	cmd.Flags().IntSliceVar(&excludeFlag, "exclude", nil, "Show IDs to skip")

	return cmd
}

func parseShowIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("show id %q is not a number", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func runGenerate(ctx context.Context, cfg config.Config, ids, exclude []int) error {
	logger := newLogger()

	gen, err := buildGenerator(cfg, logger)
	if err != nil {
		return err
	}

	// One batch run at a time per target directory; a second run racing the
	// first would interleave snapshot reads and writes.
	if err := os.MkdirAll(cfg.Feeds.TargetDir, 0o755); err != nil {
		return err
	}
	lock := flock.New(filepath.Join(cfg.Feeds.TargetDir, ".generate.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return errors.New("another generate run is already writing to this target directory")
	}
	defer lock.Unlock()

	shows, err := gen.ListShows(ctx)
	if err != nil {
		return err
	}

	shows = selectShows(shows, ids, exclude)
	if len(shows) == 0 {
		return errors.New("no shows matched the requested IDs")
	}

	var progress func(done, total int, r generator.Result)
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		progress = func(done, total int, r generator.Result) {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, total, r.Show.Title)
		}
	}

	results := gen.GenerateAll(ctx, shows, progress)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Printf("show %d (%s): %v", r.Show.ID, r.Show.Title, r.Err)
			continue
		}
		for _, warning := range r.Warnings {
			logger.Printf("show %d (%s): %s", r.Show.ID, r.Show.Title, warning)
		}
	}

	fmt.Fprintf(os.Stderr, "generated %d of %d feeds in %s\n", len(results)-failed, len(results), cfg.Feeds.TargetDir)
	if failed > 0 {
		return fmt.Errorf("%d of %d shows failed", failed, len(results))
	}
	return nil
}

func selectShows(shows []models.Show, ids, exclude []int) []models.Show {
	wanted := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	skipped := make(map[int]struct{}, len(exclude))
	for _, id := range exclude {
		skipped[id] = struct{}{}
	}

	selected := make([]models.Show, 0, len(shows))
	for _, show := range shows {
		if _, skip := skipped[show.ID]; skip {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[show.ID]; !ok {
				continue
			}
		}
		selected = append(selected, show)
	}
	return selected
}
