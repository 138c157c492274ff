package ui

import (
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
)

// Details is the record shown in the details panel. Nil fields mean "no
// data", distinct from a present-but-blank value.
type Details struct {
	PodcastTitle *string
	EpisodeTitle *string
	PubDate      time.Time
	Duration     *string
	Explicit     *bool
	Description  *string
}

type detailsLine struct {
	text  string
	style tcell.Style
}

// DetailsView renders episode details with its own scrollable viewport. It
// exists only while the terminal is wide enough for a third column.
type DetailsView struct {
	panel   *Panel
	theme   *Theme
	details Details
	lines   []detailsLine
	topRow  int
}

// NewDetailsView creates an empty details view.
func NewDetailsView(panel *Panel, theme *Theme) *DetailsView {
	return &DetailsView{panel: panel, theme: theme}
}

// ChangeDetails replaces the content and resets the viewport to the top.
func (d *DetailsView) ChangeDetails(details Details) {
	d.details = details
	d.topRow = 0
	d.layout()
	d.Redraw()
}

// Scroll moves only the text viewport; nothing cascades from here.
func (d *DetailsView) Scroll(req ScrollRequest) {
	maxTop := len(d.lines) - d.panel.InnerHeight()
	if maxTop < 0 {
		maxTop = 0
	}
	switch req.Dir {
	case ScrollDown:
		if d.topRow > maxTop-req.Amount {
			d.topRow = maxTop
		} else {
			d.topRow += req.Amount
		}
	case ScrollUp:
		if req.Amount > d.topRow {
			d.topRow = 0
		} else {
			d.topRow -= req.Amount
		}
	}
	d.Redraw()
}

// Resize adjusts the panel and re-wraps the content for the new width.
func (d *DetailsView) Resize(height, width, x int) {
	d.panel.Resize(height, width, x)
	d.layout()
	if d.topRow > len(d.lines)-1 {
		d.topRow = 0
	}
}

// Redraw repaints the panel and the visible slice of lines.
func (d *DetailsView) Redraw() {
	d.panel.Redraw()
	visible := d.panel.InnerHeight()
	for row := 0; row < visible; row++ {
		idx := d.topRow + row
		if idx >= len(d.lines) {
			break
		}
		d.panel.WriteLine(row, d.lines[idx].text, d.lines[idx].style)
	}
}

// layout rebuilds the wrapped line buffer from the current details record.
func (d *DetailsView) layout() {
	width := d.panel.InnerWidth()
	d.lines = d.lines[:0]
	if width <= 0 {
		return
	}

	bold := d.theme.Prompt
	dim := d.theme.Dim

	if d.details.PodcastTitle != nil {
		d.appendWrapped(*d.details.PodcastTitle, width, bold)
	}
	if d.details.EpisodeTitle != nil {
		d.appendWrapped(*d.details.EpisodeTitle, width, bold)
	}
	d.lines = append(d.lines, detailsLine{})

	if !d.details.PubDate.IsZero() {
		d.lines = append(d.lines, detailsLine{
			text:  "Published: " + d.details.PubDate.Format("January 2, 2006"),
			style: d.theme.Normal,
		})
	}
	if d.details.Duration != nil {
		d.lines = append(d.lines, detailsLine{
			text:  "Duration: " + *d.details.Duration,
			style: d.theme.Normal,
		})
	}
	if d.details.Explicit != nil {
		text := "Explicit: No"
		if *d.details.Explicit {
			text = "Explicit: Yes"
		}
		d.lines = append(d.lines, detailsLine{text: text, style: d.theme.Normal})
	}
	d.lines = append(d.lines, detailsLine{})

	if d.details.Description == nil {
		d.lines = append(d.lines, detailsLine{text: "No description.", style: dim})
		return
	}
	for _, para := range strings.Split(*d.details.Description, "\n") {
		if para == "" {
			d.lines = append(d.lines, detailsLine{})
			continue
		}
		d.appendWrapped(para, width, d.theme.Normal)
	}
}

func (d *DetailsView) appendWrapped(text string, width int, style tcell.Style) {
	for _, line := range wrapText(text, width) {
		d.lines = append(d.lines, detailsLine{text: line, style: style})
	}
}

// wrapText wraps text at spaces to fit within width. It works in runes so a
// forced break inside a long word never splits a multi-byte sequence.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= width {
		return []string{text}
	}

	var lines []string
	for len(runes) > width {
		breakPoint := width
		for i := width - 1; i >= 0; i-- {
			if runes[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, string(runes[:breakPoint]))
		runes = runes[breakPoint:]
		if len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}

	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}

	return lines
}
