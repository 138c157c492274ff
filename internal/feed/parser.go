// Package feed fetches and parses RSS podcast feeds for the controller's
// sync handlers.
package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const fetchTimeout = 30 * time.Second

var client = &http.Client{Timeout: fetchTimeout}

// Feed is a parsed RSS channel.
type Feed struct {
	Title       string
	Description string
	Author      string
	Explicit    *bool
	Items       []FeedItem
}

// FeedItem is one episode entry of a feed.
type FeedItem struct {
	Title        string
	GUID         string
	Description  string
	EnclosureURL string
	PubDate      time.Time
	Duration     time.Duration
}

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Author      string `xml:"author"`
	Explicit    string `xml:"explicit"`
	Items       []item `xml:"item"`
}

type item struct {
	Title          string    `xml:"title"`
	GUID           string    `xml:"guid"`
	Description    string    `xml:"description"`
	Enclosure      enclosure `xml:"enclosure"`
	PubDate        string    `xml:"pubDate"`
	ITunesDuration string    `xml:"itunes:duration"`
	Duration       string    `xml:"duration"`
}

type enclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length string `xml:"length,attr"`
}

// Fetch downloads and parses the feed at url.
func Fetch(url string) (*Feed, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch feed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return Parse(data)
}

// Parse parses raw RSS bytes into a Feed.
func Parse(data []byte) (*Feed, error) {
	var doc rss
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse RSS: %w", err)
	}

	feed := &Feed{
		Title:       doc.Channel.Title,
		Description: doc.Channel.Description,
		Author:      doc.Channel.Author,
		Explicit:    parseExplicit(doc.Channel.Explicit),
		Items:       make([]FeedItem, 0, len(doc.Channel.Items)),
	}

	for _, it := range doc.Channel.Items {
		// iTunes duration wins over a plain duration element
		duration := it.ITunesDuration
		if duration == "" {
			duration = it.Duration
		}

		entry := FeedItem{
			Title:        it.Title,
			GUID:         it.GUID,
			Description:  it.Description,
			EnclosureURL: it.Enclosure.URL,
			Duration:     parseDuration(duration),
		}
		if pubDate, err := parseRFC2822Date(it.PubDate); err == nil {
			entry.PubDate = pubDate
		}

		feed.Items = append(feed.Items, entry)
	}

	return feed, nil
}

func parseExplicit(value string) *bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true":
		v := true
		return &v
	case "no", "false", "clean":
		v := false
		return &v
	}
	return nil
}

func parseRFC2822Date(dateStr string) (time.Time, error) {
	layouts := []string{
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 02 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 -0700",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// parseDuration converts plain seconds, MM:SS, or HH:MM:SS to a Duration.
func parseDuration(duration string) time.Duration {
	if duration == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(duration); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if strings.Contains(duration, ":") {
		return parseTimeFormatDuration(duration)
	}

	return 0
}

func parseTimeFormatDuration(timeStr string) time.Duration {
	parts := strings.Split(timeStr, ":")

	var hours, minutes, seconds int
	var err error

	switch len(parts) {
	case 2: // MM:SS
		if minutes, err = strconv.Atoi(parts[0]); err != nil {
			return 0
		}
		if seconds, err = strconv.Atoi(parts[1]); err != nil {
			return 0
		}
	case 3: // HH:MM:SS
		if hours, err = strconv.Atoi(parts[0]); err != nil {
			return 0
		}
		if minutes, err = strconv.Atoi(parts[1]); err != nil {
			return 0
		}
		if seconds, err = strconv.Atoi(parts[2]); err != nil {
			return 0
		}
	default:
		return 0
	}

	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
}
