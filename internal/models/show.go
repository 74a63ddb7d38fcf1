package models

import "strings"

// Show represents a podcast series. The ID is the stable key assigned by the
// source system and never changes across runs.
type Show struct {
	ID          int
	Title       string
	Description string
	ImageURL    string
	Link        string
	Language    string
	Author      string
	Episodes    []Episode
}

// ShowPatch is a partial show record produced by a metadata source.
// A nil field means "not supplied" and never clears an assigned value.
type ShowPatch struct {
	Title       *string
	Description *string
	ImageURL    *string
	Link        *string
	Language    *string
	Author      *string
}

// Apply overlays the patch's supplied fields onto the show.
func (p ShowPatch) Apply(show *Show) {
	if p.Title != nil {
		show.Title = *p.Title
	}
	if p.Description != nil {
		show.Description = *p.Description
	}
	if p.ImageURL != nil {
		show.ImageURL = *p.ImageURL
	}
	if p.Link != nil {
		show.Link = *p.Link
	}
	if p.Language != nil {
		show.Language = *p.Language
	}
	if p.Author != nil {
		show.Author = *p.Author
	}
}

// IsZero reports whether the patch supplies nothing.
func (p ShowPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.ImageURL == nil &&
		p.Link == nil && p.Language == nil && p.Author == nil
}

// Optional returns a pointer for a non-blank string; sources use it so that
// blank values count as "not supplied" instead of overwriting.
func Optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
