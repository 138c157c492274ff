package models

import (
	"fmt"
	"time"
)

// Podcast is a subscribed feed and its episodes. Episodes share a single
// Store so the episode menu can hold the same collection the library owns.
type Podcast struct {
	ID          int64
	Title       string
	URL         string
	Description string
	Author      string
	Explicit    *bool
	LastChecked time.Time
	Episodes    *Store[*Episode]
}

// Episode is one item of a podcast's feed. DownloadPath is empty unless the
// episode has been downloaded locally.
type Episode struct {
	ID           int64
	PodcastID    int64
	Title        string
	URL          string
	GUID         string
	Description  string
	PubDate      time.Time
	Duration     time.Duration
	Played       bool
	DownloadPath string
}

func (p *Podcast) ItemID() int64 { return p.ID }

func (e *Episode) ItemID() int64 { return e.ID }

// Downloaded reports whether the episode has a local file.
func (e *Episode) Downloaded() bool {
	return e.DownloadPath != ""
}

// AllPlayed reports whether every episode of the podcast has been played.
// A podcast with no episodes counts as played.
func (p *Podcast) AllPlayed() bool {
	played := true
	p.Episodes.Each(func(e *Episode) {
		if !e.Played {
			played = false
		}
	})
	return played
}

// NumUnplayed counts the episodes not yet played.
func (p *Podcast) NumUnplayed() int {
	n := 0
	p.Episodes.Each(func(e *Episode) {
		if !e.Played {
			n++
		}
	})
	return n
}

// AnyDownloaded reports whether at least one episode has a local file.
func (p *Podcast) AnyDownloaded() bool {
	found := false
	p.Episodes.Each(func(e *Episode) {
		if e.Downloaded() {
			found = true
		}
	})
	return found
}

// MenuTitle renders the podcast's menu line: title plus unplayed/total count.
func (p *Podcast) MenuTitle(width int) string {
	total := p.Episodes.Len()
	meta := fmt.Sprintf("(%d/%d)", p.NumUnplayed(), total)
	return layoutLine(p.Title, meta, width)
}

// IsPlayed reports whether the item should render as played. For a podcast
// that means every episode is played.
func (p *Podcast) IsPlayed() bool { return p.AllPlayed() }

// MenuTitle renders the episode's menu line: title plus publish date.
func (e *Episode) MenuTitle(width int) string {
	meta := ""
	if !e.PubDate.IsZero() {
		meta = e.PubDate.Format("2006-01-02")
	}
	title := e.Title
	if e.Downloaded() {
		title = "[D] " + title
	}
	return layoutLine(title, meta, width)
}

func (e *Episode) IsPlayed() bool { return e.Played }

// FormatDuration renders the episode duration as MM:SS or HH:MM:SS, or
// "--:--" when unknown.
func (e *Episode) FormatDuration() string {
	if e.Duration <= 0 {
		return "--:--"
	}
	total := int(e.Duration / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// layoutLine left-aligns title and right-aligns meta within width,
// truncating the title when the two collide.
func layoutLine(title, meta string, width int) string {
	if width <= 0 {
		return ""
	}
	tr := []rune(title)
	if meta == "" {
		if len(tr) > width {
			return string(tr[:width])
		}
		return title
	}
	mr := []rune(meta)
	avail := width - len(mr) - 1
	if avail < 0 {
		if len(mr) > width {
			return string(mr[:width])
		}
		return meta
	}
	if len(tr) > avail {
		tr = tr[:avail]
	}
	pad := width - len(tr) - len(mr)
	line := string(tr)
	for i := 0; i < pad; i++ {
		line += " "
	}
	return line + string(mr)
}
