// Package radiorest enriches episodes from the station's newer REST API.
// The API only covers content produced after the station migrated away from
// the old CMS, so the source is scoped by the episode's publish date: the
// cutoff instant itself belongs to this source, not to the legacy one.
package radiorest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"podcast-feed-gen/internal/models"
	"podcast-feed-gen/internal/source"
)

// Source implements the episode capability against the REST API.
type Source struct {
	baseURL string
	cutoff  time.Time
	httpc   *http.Client
}

// New builds a radiorest source. Episodes published before cutoff are out of
// this source's window; a zero cutoff applies it to everything.
func New(baseURL string, cutoff time.Time, httpc *http.Client) *Source {
	if httpc == nil {
		httpc = &http.Client{Timeout: 20 * time.Second}
	}
	return &Source{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		cutoff:  cutoff,
		httpc:   httpc,
	}
}

func (s *Source) Name() string { return "radiorest" }

// AppliesToEpisode scopes the source to episodes published on or after the
// cutoff. The boundary is inclusive on this, the newer, source.
func (s *Source) AppliesToEpisode(ep models.Episode) bool {
	if s.baseURL == "" {
		return false
	}
	return !ep.PublishedAt.Before(s.cutoff)
}

type payload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	ArticleURL  string `json:"article_url"`
}

// EnrichEpisode fetches episode metadata keyed by the enclosure URL, which
// both systems agree on.
func (s *Source) EnrichEpisode(ctx context.Context, ep models.Episode) (models.EpisodePatch, error) {
	target := s.baseURL + "/v1/episodes/by-audio/?url=" + url.QueryEscape(ep.Enclosure.URL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return models.EpisodePatch{}, err
	}
	req.Header.Set("User-Agent", "podcast-feed-gen")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return models.EpisodePatch{}, fmt.Errorf("%w: radiorest: %v", source.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.EpisodePatch{}, nil
	case resp.StatusCode != http.StatusOK:
		return models.EpisodePatch{}, fmt.Errorf("%w: radiorest: %s", source.ErrSourceUnavailable, resp.Status)
	}

	var body payload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.EpisodePatch{}, fmt.Errorf("%w: radiorest: decode: %v", source.ErrSourceUnavailable, err)
	}

	return models.EpisodePatch{
		Title:       models.Optional(body.Title),
		Description: models.Optional(body.Description),
		ImageURL:    models.Optional(body.ImageURL),
		Link:        models.Optional(body.ArticleURL),
	}, nil
}
