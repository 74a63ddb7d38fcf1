// Package chimera enriches shows and episodes from the station website's CMS
// API. It is the legacy system of record for show descriptions and images
// and can look episodes up by their article URL.
package chimera

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

// Source implements both the show and episode capability against the CMS.
type Source struct {
	baseURL string
	httpc   *http.Client
}

// New builds a chimera source for the given API base URL.
func New(baseURL string, httpc *http.Client) *Source {
	if httpc == nil {
		httpc = &http.Client{Timeout: 20 * time.Second}
	}
	return &Source{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"), httpc: httpc}
}

func (s *Source) Name() string { return "chimera" }

// AppliesToShow is true whenever the source is configured; whether the CMS
// actually knows the show is only discoverable by asking it.
func (s *Source) AppliesToShow(models.Show) bool { return s.baseURL != "" }

// AppliesToEpisode is true when the episode carries an article URL the CMS
// can be queried by.
func (s *Source) AppliesToEpisode(ep models.Episode) bool {
	return s.baseURL != "" && ep.Link != ""
}

type showPayload struct {
	Name        string `json:"name"`
	Lead        string `json:"lead"`
	ImageURL    string `json:"image"`
	WebsiteURL  string `json:"url"`
	IsOldFormat bool   `json:"old_format"`
}

// EnrichShow fetches show metadata by DigAS ID. A 404 means the CMS has no
// record and yields an empty patch; transport failures are unavailability.
func (s *Source) EnrichShow(ctx context.Context, show models.Show) (models.ShowPatch, error) {
	var payload showPayload
	found, err := s.getJSON(ctx, fmt.Sprintf("/api/shows/digas/%d/", show.ID), &payload)
	if err != nil || !found {
		return models.ShowPatch{}, err
	}
	return models.ShowPatch{
		Title:       models.Optional(payload.Name),
		Description: models.Optional(payload.Lead),
		ImageURL:    models.Optional(payload.ImageURL),
		Link:        models.Optional(payload.WebsiteURL),
	}, nil
}

type episodePayload struct {
	Lead     string `json:"lead"`
	ImageURL string `json:"image"`
}

// EnrichEpisode looks the episode's article up in the CMS for a richer
// description and an episode image.
func (s *Source) EnrichEpisode(ctx context.Context, ep models.Episode) (models.EpisodePatch, error) {
	var payload episodePayload
	found, err := s.getJSON(ctx, "/api/episodes/lookup/?url="+url.QueryEscape(ep.Link), &payload)
	if err != nil || !found {
		return models.EpisodePatch{}, err
	}
	return models.EpisodePatch{
		Description: models.Optional(payload.Lead),
		ImageURL:    models.Optional(payload.ImageURL),
	}, nil
}

func (s *Source) getJSON(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", "podcast-feed-gen")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: chimera: %v", source.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// The CMS simply has nothing for this context.
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("%w: chimera: %s returned %s", source.ErrSourceUnavailable, path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("%w: chimera: decode %s: %v", source.ErrSourceUnavailable, path, err)
	}
	return true, nil
}
