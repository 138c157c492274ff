package ui

import (
	"github.com/gdamore/tcell/v2"
)

// Panel is a bordered screen region with a title. Widgets draw their content
// on its interior rows.
type Panel struct {
	screen tcell.Screen
	theme  *Theme
	title  string

	x      int
	height int
	width  int
	active bool
}

// NewPanel creates a panel anchored to the top of the screen at column x.
func NewPanel(screen tcell.Screen, theme *Theme, title string, height, width, x int) *Panel {
	return &Panel{
		screen: screen,
		theme:  theme,
		title:  title,
		x:      x,
		height: height,
		width:  width,
	}
}

// Resize moves and resizes the panel in place.
func (p *Panel) Resize(height, width, x int) {
	p.height = height
	p.width = width
	p.x = x
}

// SetActive switches the border style used on the next redraw.
func (p *Panel) SetActive(active bool) {
	p.active = active
	p.drawBorder()
}

// InnerWidth returns the number of columns inside the border.
func (p *Panel) InnerWidth() int {
	if p.width < 2 {
		return 0
	}
	return p.width - 2
}

// InnerHeight returns the number of rows inside the border.
func (p *Panel) InnerHeight() int {
	if p.height < 2 {
		return 0
	}
	return p.height - 2
}

// Redraw clears the panel and redraws the border and title.
func (p *Panel) Redraw() {
	p.clear()
	p.drawBorder()
}

// WriteLine draws one interior row, padding to the full inner width.
func (p *Panel) WriteLine(row int, text string, style tcell.Style) {
	width := p.InnerWidth()
	if row < 0 || row >= p.InnerHeight() || width <= 0 {
		return
	}
	runes := []rune(text)
	if len(runes) > width {
		runes = runes[:width]
	}
	y := row + 1
	for i := 0; i < width; i++ {
		ch := ' '
		if i < len(runes) {
			ch = runes[i]
		}
		p.screen.SetContent(p.x+1+i, y, ch, nil, style)
	}
}

func (p *Panel) clear() {
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			p.screen.SetContent(p.x+x, y, ' ', nil, p.theme.Normal)
		}
	}
}

func (p *Panel) drawBorder() {
	if p.width < 2 || p.height < 2 {
		return
	}
	style := p.theme.Border
	if p.active {
		style = p.theme.BorderActive
	}

	right := p.x + p.width - 1
	bottom := p.height - 1

	p.screen.SetContent(p.x, 0, '┌', nil, style)
	p.screen.SetContent(right, 0, '┐', nil, style)
	p.screen.SetContent(p.x, bottom, '└', nil, style)
	p.screen.SetContent(right, bottom, '┘', nil, style)
	for x := p.x + 1; x < right; x++ {
		p.screen.SetContent(x, 0, '─', nil, style)
		p.screen.SetContent(x, bottom, '─', nil, style)
	}
	for y := 1; y < bottom; y++ {
		p.screen.SetContent(p.x, y, '│', nil, style)
		p.screen.SetContent(right, y, '│', nil, style)
	}

	if p.title != "" && p.width > len(p.title)+4 {
		titleStyle := p.theme.Title
		if !p.active {
			titleStyle = p.theme.Dim
		}
		start := p.x + 2
		runes := []rune(p.title)
		p.screen.SetContent(start-1, 0, ' ', nil, titleStyle)
		for i, r := range runes {
			p.screen.SetContent(start+i, 0, r, nil, titleStyle)
		}
		p.screen.SetContent(start+len(runes), 0, ' ', nil, titleStyle)
	}
}
