package feed

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	atomNamespace   = "http://www.w3.org/2005/Atom"
	itunesNamespace = "http://www.itunes.com/dtds/podcast-1.0.dtd"
	generatorName   = "podcast-feed-gen"
)

type rssFeed struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	AtomNS   string     `xml:"xmlns:atom,attr"`
	ITunesNS string     `xml:"xmlns:itunes,attr"`
	Channel  rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string       `xml:"title"`
	Link          string       `xml:"link"`
	Description   string       `xml:"description"`
	Language      string       `xml:"language,omitempty"`
	LastBuildDate string       `xml:"lastBuildDate,omitempty"`
	Generator     string       `xml:"generator"`
	AtomLink      *rssAtomLink `xml:"atom:link,omitempty"`
	ITunesAuthor  string       `xml:"itunes:author,omitempty"`
	ITunesImage   *rssImage    `xml:"itunes:image,omitempty"`
	Items         []rssItem    `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssImage struct {
	Href string `xml:"href,attr"`
}

type rssItem struct {
	Title          string       `xml:"title"`
	Link           string       `xml:"link,omitempty"`
	GUID           rssGUID      `xml:"guid"`
	PubDate        string       `xml:"pubDate"`
	Description    string       `xml:"description"`
	Enclosure      rssEnclosure `xml:"enclosure"`
	ITunesDuration string       `xml:"itunes:duration,omitempty"`
	ITunesExplicit string       `xml:"itunes:explicit"`
	ITunesImage    *rssImage    `xml:"itunes:image,omitempty"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	total := int64(d.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

func parseDurationField(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parts := strings.Split(value, ":")
	if len(parts) == 1 {
		secs, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	var total int64
	for _, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}

func formatExplicit(explicit bool) string {
	if explicit {
		return "yes"
	}
	return "no"
}

func parseExplicit(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "explicit":
		return true
	default:
		return false
	}
}
