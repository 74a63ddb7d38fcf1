package source

import (
	"context"
	"errors"

	"podcast-feed-gen/internal/models"
)

// ErrSourceUnavailable signals that a metadata source could not be reached at
// all, as opposed to having no metadata for the given context. Chains skip
// unavailable sources and keep the state assembled so far.
var ErrSourceUnavailable = errors.New("metadata source unavailable")

// ShowSource supplies partial metadata for shows.
//
// AppliesToShow must be a pure predicate. EnrichShow returns only attributes
// the source can confidently determine; an empty patch with a nil error means
// "nothing known about this show".
type ShowSource interface {
	Name() string
	AppliesToShow(show models.Show) bool
	EnrichShow(ctx context.Context, show models.Show) (models.ShowPatch, error)
}

// EpisodeSource supplies partial metadata for episodes. The same supply rules
// as ShowSource apply.
type EpisodeSource interface {
	Name() string
	AppliesToEpisode(ep models.Episode) bool
	EnrichEpisode(ctx context.Context, ep models.Episode) (models.EpisodePatch, error)
}

// Warning records a non-fatal enrichment failure for the caller.
type Warning struct {
	Source string
	Err    error
}

func (w Warning) String() string {
	return w.Source + ": " + w.Err.Error()
}
