package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"podcast-feed-gen/internal/models"
)

type parsedFeed struct {
	Channel struct {
		Items []parsedItem `xml:"item"`
	} `xml:"channel"`
}

type parsedItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
	Enclosure   struct {
		URL    string `xml:"url,attr"`
		Length int64  `xml:"length,attr"`
		Type   string `xml:"type,attr"`
	} `xml:"enclosure"`
	Duration string `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd duration"`
	Explicit string `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd explicit"`
	Image    struct {
		Href string `xml:"href,attr"`
	} `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd image"`
}

// ParseEpisodes reads a previously generated feed document back into a
// GUID-keyed episode map. Items without a GUID or a parseable publish date
// are ignored; a document that does not decode at all is an error so callers
// can apply their corrupt-snapshot handling.
func ParseEpisodes(r io.Reader) (map[string]models.Episode, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	var parsed parsedFeed
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	episodes := make(map[string]models.Episode, len(parsed.Channel.Items))
	for _, item := range parsed.Channel.Items {
		if item.GUID == "" {
			continue
		}
		publishedAt, err := time.Parse(time.RFC1123Z, item.PubDate)
		if err != nil {
			continue
		}
		episodes[item.GUID] = models.Episode{
			GUID:        item.GUID,
			Title:       item.Title,
			Description: item.Description,
			ImageURL:    item.Image.Href,
			Link:        item.Link,
			PublishedAt: publishedAt.UTC(),
			Enclosure: models.Enclosure{
				URL:    item.Enclosure.URL,
				Length: item.Enclosure.Length,
				Type:   item.Enclosure.Type,
			},
			Duration: parseDurationField(item.Duration),
			Explicit: parseExplicit(item.Explicit),
			Status:   models.StatusPublished,
		}
	}
	return episodes, nil
}
