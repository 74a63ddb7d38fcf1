package models

import "time"

// PublishStatus mirrors the editorial state a CMS post can be in.
type PublishStatus string

const (
	StatusPublished PublishStatus = "published"
	StatusDraft     PublishStatus = "draft"
	StatusScheduled PublishStatus = "scheduled"
)

// Enclosure describes the playable audio attached to an episode.
type Enclosure struct {
	URL    string
	Length int64
	Type   string
}

// Episode represents one podcast installment.
//
// Frozen marks episodes copied verbatim from a previous feed; once set, no
// resolution pass may touch any other field.
type Episode struct {
	GUID        string
	Title       string
	Description string
	ImageURL    string
	Link        string
	PublishedAt time.Time
	Enclosure   Enclosure
	Duration    time.Duration
	Explicit    bool
	Status      PublishStatus
	Frozen      bool
}

// EpisodePatch is a partial episode record produced by a metadata source.
// A nil field means "not supplied" and never clears an assigned value.
type EpisodePatch struct {
	Title       *string
	Description *string
	ImageURL    *string
	Link        *string
	Duration    *time.Duration
	Explicit    *bool
}

// Apply overlays the patch's supplied fields onto the episode.
func (p EpisodePatch) Apply(ep *Episode) {
	if p.Title != nil {
		ep.Title = *p.Title
	}
	if p.Description != nil {
		ep.Description = *p.Description
	}
	if p.ImageURL != nil {
		ep.ImageURL = *p.ImageURL
	}
	if p.Link != nil {
		ep.Link = *p.Link
	}
	if p.Duration != nil {
		ep.Duration = *p.Duration
	}
	if p.Explicit != nil {
		ep.Explicit = *p.Explicit
	}
}

// IsZero reports whether the patch supplies nothing.
func (p EpisodePatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.ImageURL == nil &&
		p.Link == nil && p.Duration == nil && p.Explicit == nil
}
