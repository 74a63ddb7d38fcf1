// Package article scrapes the episode's public article page as a fallback
// metadata source. It only trusts explicit Open Graph tags; anything else on
// the page is too unreliable to supply.
package article

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"podcast-feed-gen/internal/models"
	"podcast-feed-gen/internal/source"
)

// Source implements the episode capability by fetching the article page.
type Source struct {
	httpc *http.Client
}

// New builds an article scraping source.
func New(httpc *http.Client) *Source {
	if httpc == nil {
		httpc = &http.Client{Timeout: 20 * time.Second}
	}
	return &Source{httpc: httpc}
}

func (s *Source) Name() string { return "article" }

// AppliesToEpisode requires a page to scrape.
func (s *Source) AppliesToEpisode(ep models.Episode) bool {
	return strings.HasPrefix(ep.Link, "http://") || strings.HasPrefix(ep.Link, "https://")
}

// EnrichEpisode fetches the article page and extracts og:description and
// og:image. Parsing is pure: the same page always yields the same patch.
func (s *Source) EnrichEpisode(ctx context.Context, ep models.Episode) (models.EpisodePatch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.Link, nil)
	if err != nil {
		return models.EpisodePatch{}, err
	}
	req.Header.Set("User-Agent", "podcast-feed-gen")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return models.EpisodePatch{}, fmt.Errorf("%w: article: %v", source.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// The article is simply no longer there.
		return models.EpisodePatch{}, nil
	case resp.StatusCode != http.StatusOK:
		return models.EpisodePatch{}, fmt.Errorf("%w: article: %s returned %s", source.ErrSourceUnavailable, ep.Link, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return models.EpisodePatch{}, fmt.Errorf("%w: article: parse %s: %v", source.ErrSourceUnavailable, ep.Link, err)
	}
	return parse(doc), nil
}

func parse(doc *goquery.Document) models.EpisodePatch {
	var patch models.EpisodePatch
	if desc, ok := metaContent(doc, "og:description"); ok {
		patch.Description = models.Optional(desc)
	}
	if img, ok := metaContent(doc, "og:image"); ok {
		patch.ImageURL = models.Optional(img)
	}
	return patch
}

func metaContent(doc *goquery.Document, property string) (string, bool) {
	value, ok := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}
