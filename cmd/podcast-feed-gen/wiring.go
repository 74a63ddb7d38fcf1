package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"podcast-feed-gen/internal/backend"
	"podcast-feed-gen/internal/config"
	"podcast-feed-gen/internal/generator"
	"podcast-feed-gen/internal/source"
	"podcast-feed-gen/internal/source/article"
	"podcast-feed-gen/internal/source/audioprobe"
	"podcast-feed-gen/internal/source/chimera"
	"podcast-feed-gen/internal/source/manual"
	"podcast-feed-gen/internal/source/radiorest"
)

func newLogger() *log.Logger {
	return log.New(os.Stderr, "podcast-feed-gen ", log.LstdFlags|log.Lmsgprefix)
}

// buildGenerator wires the backend client and the configured source chains
// into a ready Generator.
func buildGenerator(cfg config.Config, logger *log.Logger) (*generator.Generator, error) {
	client, err := backend.NewClient(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.BackendTimeout()})
	if err != nil {
		return nil, err
	}

	httpc := &http.Client{Timeout: cfg.SourceTimeout()}

	cutoff, err := cfg.RadioRestCutoff()
	if err != nil {
		return nil, err
	}

	manualSource := manual.New(cfg.Overrides.Shows, cfg.Overrides.Episodes)
	chimeraSource := chimera.New(cfg.Sources.Chimera.BaseURL, httpc)

	showSources := make([]source.ShowSource, 0, len(cfg.Sources.Show))
	for _, name := range cfg.Sources.Show {
		switch name {
		case "chimera":
			showSources = append(showSources, chimeraSource)
		case "manual":
			showSources = append(showSources, manualSource)
		default:
			return nil, fmt.Errorf("unknown show source %q in chain", name)
		}
	}

	episodeSources := make([]source.EpisodeSource, 0, len(cfg.Sources.Episode))
	for _, name := range cfg.Sources.Episode {
		switch name {
		case "audioprobe":
			episodeSources = append(episodeSources, audioprobe.New(httpc))
		case "chimera":
			episodeSources = append(episodeSources, chimeraSource)
		case "radiorest":
			episodeSources = append(episodeSources, radiorest.New(cfg.Sources.RadioRest.BaseURL, cutoff, httpc))
		case "article":
			episodeSources = append(episodeSources, article.New(httpc))
		case "manual":
			episodeSources = append(episodeSources, manualSource)
		default:
			return nil, fmt.Errorf("unknown episode source %q in chain", name)
		}
	}

	return generator.New(generator.Options{
		Catalog:      client,
		Episodes:     client,
		ShowChain:    source.NewShowChain(showSources, cfg.SourceTimeout(), logger),
		EpisodeChain: source.NewEpisodeChain(episodeSources, cfg.SourceTimeout(), logger),
		TargetDir:    cfg.Feeds.TargetDir,
		NamingScheme: cfg.Feeds.NamingScheme,
		FeedBaseURL:  cfg.Feeds.BaseURL,
		Workers:      cfg.Workers,
		Logger:       logger,
	})
}
