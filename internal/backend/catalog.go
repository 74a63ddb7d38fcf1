package backend

import (
	"context"
	"fmt"
	"sort"

	"podcast-feed-gen/internal/models"
)

type showRecord struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// ListShows enumerates every show known to the backend as a stub carrying
// identity only; metadata sources fill in the rest. The result is sorted by
// ID so repeated enumerations are stable.
func (c *Client) ListShows(ctx context.Context) ([]models.Show, error) {
	var records []showRecord
	if err := c.getJSON(ctx, "/shows", &records); err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}

	shows := make([]models.Show, 0, len(records))
	for _, rec := range records {
		if rec.ID <= 0 {
			continue
		}
		shows = append(shows, models.Show{ID: rec.ID, Title: rec.Title})
	}
	sort.Slice(shows, func(i, j int) bool { return shows[i].ID < shows[j].ID })
	return shows, nil
}
