// Package generator runs the feed pipeline: catalog stub, show enrichment,
// episode ingest, visibility gate, preservation split, episode enrichment for
// new material only, assembly and atomic write. Shows are independent, so
// batch mode fans them out across workers.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"

	"podcast-feed-gen/internal/feed"
	"podcast-feed-gen/internal/gate"
	"podcast-feed-gen/internal/models"
	"podcast-feed-gen/internal/preserve"
	"podcast-feed-gen/internal/snapshot"
	"podcast-feed-gen/internal/source"
)

// Catalog enumerates the shows known to the authoritative backend.
type Catalog interface {
	ListShows(ctx context.Context) ([]models.Show, error)
}

// EpisodeLister fetches the canonical episode list for one show.
type EpisodeLister interface {
	ListEpisodes(ctx context.Context, showID int) ([]models.Episode, []string, error)
}

// ShowResolver enriches a show through the configured source chain.
type ShowResolver interface {
	Resolve(ctx context.Context, show models.Show) (models.Show, []source.Warning)
}

// EpisodeResolver enriches an episode through the configured source chain.
type EpisodeResolver interface {
	Resolve(ctx context.Context, ep models.Episode) (models.Episode, []source.Warning)
}

// Options wires a Generator.
type Options struct {
	Catalog      Catalog
	Episodes     EpisodeLister
	ShowChain    ShowResolver
	EpisodeChain EpisodeResolver
	TargetDir    string
	NamingScheme string
	FeedBaseURL  string
	Workers      int
	Logger       *log.Logger
	Now          func() time.Time
}

// Generator produces feed documents for shows.
type Generator struct {
	catalog      Catalog
	episodes     EpisodeLister
	showChain    ShowResolver
	episodeChain EpisodeResolver
	targetDir    string
	namingScheme string
	feedBaseURL  string
	workers      int
	logger       *log.Logger
	now          func() time.Time
}

// Result reports one show's generation outcome. Err is set when the show
// failed entirely; in that case no file was written.
type Result struct {
	Show     models.Show
	File     string
	Episodes int
	Frozen   int
	Warnings []string
	Err      error
}

// New builds a Generator from options, filling in defaults.
func New(opts Options) (*Generator, error) {
	if opts.Catalog == nil || opts.Episodes == nil {
		return nil, errors.New("generator needs a catalog and an episode lister")
	}
	if opts.ShowChain == nil || opts.EpisodeChain == nil {
		return nil, errors.New("generator needs both source chains")
	}
	if opts.TargetDir == "" {
		return nil, errors.New("generator needs a target directory")
	}
	g := &Generator{
		catalog:      opts.Catalog,
		episodes:     opts.Episodes,
		showChain:    opts.ShowChain,
		episodeChain: opts.EpisodeChain,
		targetDir:    opts.TargetDir,
		namingScheme: opts.NamingScheme,
		feedBaseURL:  strings.TrimRight(opts.FeedBaseURL, "/"),
		workers:      opts.Workers,
		logger:       opts.Logger,
		now:          opts.Now,
	}
	if g.namingScheme == "" {
		g.namingScheme = "%t.xml"
	}
	if g.workers <= 0 {
		g.workers = 1
	}
	if g.logger == nil {
		g.logger = log.Default()
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g, nil
}

// ListShows exposes the catalog enumeration for callers that select shows.
func (g *Generator) ListShows(ctx context.Context) ([]models.Show, error) {
	return g.catalog.ListShows(ctx)
}

// FeedFilename applies the naming scheme to a show. %T is the title, %t its
// URL slug, %i the show ID, %% a literal percent sign.
func (g *Generator) FeedFilename(show models.Show) string {
	replacements := []struct{ from, to string }{
		{"%T", show.Title},
		{"%t", slug.Make(show.Title)},
		{"%i", strconv.Itoa(show.ID)},
		{"%%", "%"},
	}
	name := g.namingScheme
	for _, r := range replacements {
		name = strings.ReplaceAll(name, r.from, r.to)
	}
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	return name
}

// GenerateShow runs the full pipeline for one show and writes the feed file.
// Per-source and per-episode failures degrade to warnings; only a missing
// episode list aborts the show.
func (g *Generator) GenerateShow(ctx context.Context, stub models.Show) Result {
	result := Result{Show: stub}
	asOf := g.now().UTC()

	filename := g.FeedFilename(stub)
	path := filepath.Join(g.targetDir, filename)

	previous, err := snapshot.Load(path)
	if err != nil {
		// Availability over strict preservation: regenerate from scratch.
		result.Warnings = append(result.Warnings, fmt.Sprintf("snapshot %s unreadable, re-resolving all episodes: %v", filename, err))
		g.logger.Printf("show %d: %s", stub.ID, result.Warnings[len(result.Warnings)-1])
	}

	show, showWarnings := g.showChain.Resolve(ctx, stub)
	for _, w := range showWarnings {
		result.Warnings = append(result.Warnings, fmt.Sprintf("show source %s", w.String()))
	}

	episodes, skipped, err := g.episodes.ListEpisodes(ctx, stub.ID)
	if err != nil {
		result.Err = fmt.Errorf("show %d (%s): %w", stub.ID, stub.Title, err)
		return result
	}
	result.Warnings = append(result.Warnings, skipped...)

	visible := gate.Filter(episodes, asOf)
	frozen, fresh := preserve.Split(visible, previous)

	resolved := make([]models.Episode, 0, len(fresh))
	for _, ep := range fresh {
		enriched, warnings := g.episodeChain.Resolve(ctx, ep)
		for _, w := range warnings {
			result.Warnings = append(result.Warnings, fmt.Sprintf("episode %s: source %s", ep.GUID, w.String()))
		}
		resolved = append(resolved, enriched)
	}

	show.Episodes = preserve.Merge(frozen, resolved)

	doc, dropped := feed.Assemble(show, g.feedURL(filename))
	for _, d := range dropped {
		result.Warnings = append(result.Warnings, fmt.Sprintf("episode %s dropped: %s", d.GUID, d.Reason))
	}

	data, err := doc.Render()
	if err != nil {
		result.Err = fmt.Errorf("show %d (%s): render feed: %w", stub.ID, stub.Title, err)
		return result
	}
	if err := snapshot.Write(path, data); err != nil {
		result.Err = fmt.Errorf("show %d (%s): %w", stub.ID, stub.Title, err)
		return result
	}

	result.File = path
	result.Episodes = len(show.Episodes) - len(dropped)
	result.Frozen = len(frozen)
	return result
}

// GenerateAll runs the pipeline for every given show, workers at a time.
// Results come back in input order; progress, when non-nil, is called as
// each show completes.
func (g *Generator) GenerateAll(ctx context.Context, shows []models.Show, progress func(done, total int, r Result)) []Result {
	results := make([]Result, len(shows))

	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for w := 0; w < g.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = g.GenerateShow(ctx, shows[i])
				mu.Lock()
				done++
				if progress != nil {
					progress(done, len(shows), results[i])
				}
				mu.Unlock()
			}
		}()
	}

dispatch:
	for i := range shows {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

func (g *Generator) feedURL(filename string) string {
	if g.feedBaseURL == "" {
		return ""
	}
	return g.feedBaseURL + "/" + filename
}
