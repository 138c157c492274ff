package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/tidecast/tidecast/internal/models"
)

// OPMLOutline is one feed entry of an OPML subscription list.
type OPMLOutline struct {
	Title string
	URL   string
}

type opml struct {
	XMLName xml.Name    `xml:"opml"`
	Version string      `xml:"version,attr"`
	Head    opmlHead    `xml:"head"`
	Body    opmlOutline `xml:"body"`
}

type opmlHead struct {
	Title string `xml:"title,omitempty"`
}

// opmlOutline doubles as the body element; outlines nest arbitrarily.
type opmlOutline struct {
	Text     string        `xml:"text,attr,omitempty"`
	Title    string        `xml:"title,attr,omitempty"`
	Type     string        `xml:"type,attr,omitempty"`
	XMLURL   string        `xml:"xmlUrl,attr,omitempty"`
	Outlines []opmlOutline `xml:"outline"`
}

// ParseOPML extracts the feed URLs from an OPML document, walking nested
// outline groups. Outlines without a feed URL are skipped.
func ParseOPML(data []byte) ([]OPMLOutline, error) {
	var doc opml
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse OPML: %w", err)
	}

	var feeds []OPMLOutline
	var walk func(outlines []opmlOutline)
	walk = func(outlines []opmlOutline) {
		for _, o := range outlines {
			if o.XMLURL != "" {
				title := o.Title
				if title == "" {
					title = o.Text
				}
				feeds = append(feeds, OPMLOutline{Title: title, URL: o.XMLURL})
			}
			walk(o.Outlines)
		}
	}
	walk(doc.Body.Outlines)
	return feeds, nil
}

// ExportOPML renders the given feeds as an OPML subscription list.
func ExportOPML(feeds []OPMLOutline) ([]byte, error) {
	doc := opml{
		Version: "2.0",
		Head:    opmlHead{Title: "tidecast subscriptions"},
	}
	for _, f := range feeds {
		doc.Body.Outlines = append(doc.Body.Outlines, opmlOutline{
			Text:   f.Title,
			Title:  f.Title,
			Type:   "rss",
			XMLURL: f.URL,
		})
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render OPML: %w", err)
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}

// BuildPodcast converts a parsed feed into library models, allocating fresh
// IDs from the library.
func BuildPodcast(lib *models.Library, url string, parsed *Feed) *models.Podcast {
	pod := &models.Podcast{
		ID:          lib.NextID(),
		Title:       parsed.Title,
		URL:         url,
		Description: parsed.Description,
		Author:      parsed.Author,
		Explicit:    parsed.Explicit,
		LastChecked: time.Now(),
	}
	eps := make([]*models.Episode, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		eps = append(eps, &models.Episode{
			ID:          lib.NextID(),
			PodcastID:   pod.ID,
			Title:       item.Title,
			URL:         item.EnclosureURL,
			GUID:        item.GUID,
			Description: item.Description,
			PubDate:     item.PubDate,
			Duration:    item.Duration,
		})
	}
	pod.Episodes = models.NewStore(eps)
	return pod
}
