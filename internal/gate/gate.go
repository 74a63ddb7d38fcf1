// Package gate decides whether an episode's post is publicly visible. The
// check runs before any metadata enrichment so drafts and scheduled posts
// never reach external sources.
package gate

import (
	"time"

	"podcast-feed-gen/internal/models"
)

// Visible reports whether the episode may appear in a feed generated at asOf.
// Drafts never do. Published and scheduled posts appear once their publish
// timestamp has been reached; a schedule whose instant has passed counts as
// fired even if the backend has not flipped the status yet.
func Visible(ep models.Episode, asOf time.Time) bool {
	switch ep.Status {
	case models.StatusPublished, models.StatusScheduled:
		return !ep.PublishedAt.After(asOf)
	default:
		return false
	}
}

// Filter returns the episodes visible at asOf, preserving input order.
func Filter(episodes []models.Episode, asOf time.Time) []models.Episode {
	visible := make([]models.Episode, 0, len(episodes))
	for _, ep := range episodes {
		if Visible(ep, asOf) {
			visible = append(visible, ep)
		}
	}
	return visible
}
