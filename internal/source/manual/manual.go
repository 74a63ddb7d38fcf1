// Package manual applies editor-maintained overrides from the configuration
// file. It sits last in the default chains so a human correction always wins
// over anything the automated sources report.
package manual

import (
	"context"
	"time"

	"podcast-feed-gen/internal/models"
)

// ShowOverride holds the per-show attributes an editor pinned.
type ShowOverride struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image"`
	Link        string `yaml:"link"`
	Language    string `yaml:"language"`
	Author      string `yaml:"author"`
}

// EpisodeOverride holds the per-episode attributes an editor pinned, keyed by
// GUID.
type EpisodeOverride struct {
	Title           string `yaml:"title"`
	Description     string `yaml:"description"`
	ImageURL        string `yaml:"image"`
	Link            string `yaml:"link"`
	DurationSeconds int    `yaml:"duration_seconds"`
	Explicit        *bool  `yaml:"explicit"`
}

// Source implements both capabilities from static override tables.
type Source struct {
	shows    map[int]ShowOverride
	episodes map[string]EpisodeOverride
}

// New builds a manual source; nil maps mean no overrides of that kind.
func New(shows map[int]ShowOverride, episodes map[string]EpisodeOverride) *Source {
	return &Source{shows: shows, episodes: episodes}
}

func (s *Source) Name() string { return "manual" }

func (s *Source) AppliesToShow(show models.Show) bool {
	_, ok := s.shows[show.ID]
	return ok
}

func (s *Source) AppliesToEpisode(ep models.Episode) bool {
	_, ok := s.episodes[ep.GUID]
	return ok
}

func (s *Source) EnrichShow(_ context.Context, show models.Show) (models.ShowPatch, error) {
	override := s.shows[show.ID]
	return models.ShowPatch{
		Title:       models.Optional(override.Title),
		Description: models.Optional(override.Description),
		ImageURL:    models.Optional(override.ImageURL),
		Link:        models.Optional(override.Link),
		Language:    models.Optional(override.Language),
		Author:      models.Optional(override.Author),
	}, nil
}

func (s *Source) EnrichEpisode(_ context.Context, ep models.Episode) (models.EpisodePatch, error) {
	override := s.episodes[ep.GUID]
	patch := models.EpisodePatch{
		Title:       models.Optional(override.Title),
		Description: models.Optional(override.Description),
		ImageURL:    models.Optional(override.ImageURL),
		Link:        models.Optional(override.Link),
		Explicit:    override.Explicit,
	}
	if override.DurationSeconds > 0 {
		duration := time.Duration(override.DurationSeconds) * time.Second
		patch.Duration = &duration
	}
	return patch, nil
}
