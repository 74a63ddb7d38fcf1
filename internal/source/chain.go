package source

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"podcast-feed-gen/internal/models"
)

const defaultSourceTimeout = 15 * time.Second

// ShowChain applies an ordered list of show sources with last-writer-wins
// merge semantics. Later sources overwrite an attribute only when they supply
// it; configured order is the single ordering axis.
type ShowChain struct {
	sources []ShowSource
	timeout time.Duration
	logger  *log.Logger
}

// NewShowChain builds a chain over the given sources in configured order.
func NewShowChain(sources []ShowSource, timeout time.Duration, logger *log.Logger) *ShowChain {
	if timeout <= 0 {
		timeout = defaultSourceTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ShowChain{sources: sources, timeout: timeout, logger: logger}
}

// Resolve enriches the baseline show. All applicable sources are fetched
// concurrently, then their patches are folded strictly in configured order so
// completion order can never influence the result.
func (c *ShowChain) Resolve(ctx context.Context, show models.Show) (models.Show, []Warning) {
	type result struct {
		patch models.ShowPatch
		err   error
	}

	results := make([]*result, len(c.sources))
	var wg sync.WaitGroup
	for i, src := range c.sources {
		if !src.AppliesToShow(show) {
			continue
		}
		res := &result{}
		results[i] = res
		wg.Add(1)
		go func(src ShowSource) {
			defer wg.Done()
			srcCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			res.patch, res.err = src.EnrichShow(srcCtx, show)
			if srcCtx.Err() != nil && res.err != nil && !errors.Is(res.err, ErrSourceUnavailable) {
				res.err = fmt.Errorf("%w: %v", ErrSourceUnavailable, res.err)
			}
		}(src)
	}
	wg.Wait()

	var warnings []Warning
	for i, src := range c.sources {
		res := results[i]
		if res == nil {
			continue
		}
		if res.err != nil {
			warnings = append(warnings, Warning{Source: src.Name(), Err: res.err})
			c.logger.Printf("show %d: source %s skipped: %v", show.ID, src.Name(), res.err)
			continue
		}
		res.patch.Apply(&show)
	}
	return show, warnings
}

// EpisodeChain is the episode-context counterpart of ShowChain.
type EpisodeChain struct {
	sources []EpisodeSource
	timeout time.Duration
	logger  *log.Logger
}

// NewEpisodeChain builds a chain over the given sources in configured order.
func NewEpisodeChain(sources []EpisodeSource, timeout time.Duration, logger *log.Logger) *EpisodeChain {
	if timeout <= 0 {
		timeout = defaultSourceTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &EpisodeChain{sources: sources, timeout: timeout, logger: logger}
}

// Resolve enriches the baseline episode, gathering applicable sources
// concurrently and merging sequentially in configured order.
func (c *EpisodeChain) Resolve(ctx context.Context, ep models.Episode) (models.Episode, []Warning) {
	type result struct {
		patch models.EpisodePatch
		err   error
	}

	results := make([]*result, len(c.sources))
	var wg sync.WaitGroup
	for i, src := range c.sources {
		if !src.AppliesToEpisode(ep) {
			continue
		}
		res := &result{}
		results[i] = res
		wg.Add(1)
		go func(src EpisodeSource) {
			defer wg.Done()
			srcCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			res.patch, res.err = src.EnrichEpisode(srcCtx, ep)
			if srcCtx.Err() != nil && res.err != nil && !errors.Is(res.err, ErrSourceUnavailable) {
				res.err = fmt.Errorf("%w: %v", ErrSourceUnavailable, res.err)
			}
		}(src)
	}
	wg.Wait()

	var warnings []Warning
	for i, src := range c.sources {
		res := results[i]
		if res == nil {
			continue
		}
		if res.err != nil {
			warnings = append(warnings, Warning{Source: src.Name(), Err: res.err})
			c.logger.Printf("episode %s: source %s skipped: %v", ep.GUID, src.Name(), res.err)
			continue
		}
		res.patch.Apply(&ep)
	}
	return ep, warnings
}
