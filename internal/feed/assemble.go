package feed

import (
	"encoding/xml"
	"time"

	"podcast-feed-gen/internal/models"
)

// Dropped reports an episode excluded from the final document because a
// required field was still missing after resolution.
type Dropped struct {
	GUID   string
	Reason string
}

// Document is the assembled feed, ready to render.
type Document struct {
	rss rssFeed
}

// Assemble maps a resolved show and its merged episode list onto the RSS
// dialect. Episodes lacking a title or an enclosure URL are dropped, never
// emitted half-filled. No resolution happens here.
func Assemble(show models.Show, feedURL string) (Document, []Dropped) {
	channel := rssChannel{
		Title:        show.Title,
		Link:         show.Link,
		Description:  show.Description,
		Language:     show.Language,
		Generator:    generatorName,
		ITunesAuthor: show.Author,
	}
	if show.ImageURL != "" {
		channel.ITunesImage = &rssImage{Href: show.ImageURL}
	}
	if feedURL != "" {
		channel.AtomLink = &rssAtomLink{Href: feedURL, Rel: "self", Type: "application/rss+xml"}
	}

	var dropped []Dropped
	var newest time.Time
	for _, ep := range show.Episodes {
		if ep.Title == "" {
			dropped = append(dropped, Dropped{GUID: ep.GUID, Reason: "missing title"})
			continue
		}
		if ep.Enclosure.URL == "" {
			dropped = append(dropped, Dropped{GUID: ep.GUID, Reason: "missing enclosure URL"})
			continue
		}

		item := rssItem{
			Title:          ep.Title,
			Link:           ep.Link,
			GUID:           rssGUID{IsPermaLink: "false", Value: ep.GUID},
			PubDate:        ep.PublishedAt.UTC().Format(time.RFC1123Z),
			Description:    ep.Description,
			Enclosure:      rssEnclosure{URL: ep.Enclosure.URL, Length: ep.Enclosure.Length, Type: ep.Enclosure.Type},
			ITunesDuration: formatDuration(ep.Duration),
			ITunesExplicit: formatExplicit(ep.Explicit),
		}
		if ep.ImageURL != "" {
			item.ITunesImage = &rssImage{Href: ep.ImageURL}
		}
		channel.Items = append(channel.Items, item)

		if ep.PublishedAt.After(newest) {
			newest = ep.PublishedAt
		}
	}

	// lastBuildDate tracks the newest episode rather than wall-clock time so
	// an unchanged backend regenerates to identical bytes.
	if !newest.IsZero() {
		channel.LastBuildDate = newest.UTC().Format(time.RFC1123Z)
	}

	return Document{rss: rssFeed{
		Version:  "2.0",
		AtomNS:   atomNamespace,
		ITunesNS: itunesNamespace,
		Channel:  channel,
	}}, dropped
}

// Render serializes the document. Output is deterministic for a given input.
func (d Document) Render() ([]byte, error) {
	output, err := xml.MarshalIndent(d.rss, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), output...), nil
}
