package ui

import (
	"github.com/tidecast/tidecast/internal/models"
)

// ScrollDir is the direction of a scroll request.
type ScrollDir int

const (
	ScrollUp ScrollDir = iota
	ScrollDown
)

// ScrollMax is the saturating "all the way" magnitude; the target widget
// clamps it to its own bounds.
const ScrollMax = 1 << 30

// ScrollRequest asks a widget to move its viewport or selection.
type ScrollRequest struct {
	Dir    ScrollDir
	Amount int
}

// Menuable is what a menu needs from its items.
type Menuable interface {
	models.Item
	MenuTitle(width int) string
	IsPlayed() bool
}

// Menu is a scrollable list over a shared store, drawn inside a panel. The
// highlighted item is always topRow+selected into the store's filtered order.
type Menu[T Menuable] struct {
	panel  *Panel
	theme  *Theme
	items  *models.Store[T]
	topRow int
	sel    int
	active bool
	muted  bool
}

// NewMenu creates a menu over the given store.
func NewMenu[T Menuable](panel *Panel, theme *Theme, items *models.Store[T]) *Menu[T] {
	return &Menu[T]{panel: panel, theme: theme, items: items}
}

// Items returns the store the menu currently displays.
func (m *Menu[T]) Items() *models.Store[T] { return m.items }

// SetItems swaps the backing store without touching selection state.
func (m *Menu[T]) SetItems(items *models.Store[T]) { m.items = items }

// ResetSelection moves the selection and scroll offset back to the top.
func (m *Menu[T]) ResetSelection() {
	m.topRow = 0
	m.sel = 0
}

// SelectedPos returns the highlighted position in the filtered order.
func (m *Menu[T]) SelectedPos() int { return m.topRow + m.sel }

// ScrollOffset returns the first visible position.
func (m *Menu[T]) ScrollOffset() int { return m.topRow }

// SelectedID resolves the highlighted position against the filtered order.
func (m *Menu[T]) SelectedID() (int64, bool) {
	return m.items.FilteredIDAt(m.SelectedPos())
}

// Activate highlights the menu as the focused widget.
func (m *Menu[T]) Activate() {
	m.active = true
	m.muted = false
	m.panel.SetActive(true)
	m.HighlightSelected()
}

// Deactivate removes focus. With muted set the selected row keeps a dimmed
// highlight (details still reflect it); otherwise the highlight is cleared.
func (m *Menu[T]) Deactivate(muted bool) {
	m.active = false
	m.muted = muted
	m.panel.SetActive(false)
	m.Redraw()
}

// Scroll applies a scroll request, clamping to the filtered bounds, and
// redraws.
func (m *Menu[T]) Scroll(req ScrollRequest) {
	n := m.items.FilteredLen()
	if n == 0 {
		return
	}
	pos := m.SelectedPos()
	switch req.Dir {
	case ScrollDown:
		if pos > n-1-req.Amount {
			pos = n - 1
		} else {
			pos += req.Amount
		}
	case ScrollUp:
		if req.Amount > pos {
			pos = 0
		} else {
			pos -= req.Amount
		}
	}
	m.scrollTo(pos)
	m.Redraw()
}

// Resize adjusts the underlying panel and keeps the selection visible.
func (m *Menu[T]) Resize(height, width, x int) {
	m.panel.Resize(height, width, x)
	m.scrollTo(m.SelectedPos())
}

// Redraw repaints the panel and every visible row.
func (m *Menu[T]) Redraw() {
	m.panel.Redraw()
	width := m.panel.InnerWidth()
	visible := m.panel.InnerHeight()
	if width <= 0 || visible <= 0 {
		return
	}

	m.clampViewport()
	m.items.EachFiltered(func(pos int, item T) {
		row := pos - m.topRow
		if row < 0 || row >= visible {
			return
		}
		style := m.theme.Normal
		if item.IsPlayed() {
			style = m.theme.Dim
		}
		if pos == m.SelectedPos() {
			if m.active {
				style = m.theme.Selected
			} else if m.muted {
				style = m.theme.SelectedMuted
			}
		}
		m.panel.WriteLine(row, item.MenuTitle(width), style)
	})
}

// HighlightSelected redraws only as much as needed to show the current
// selection state.
func (m *Menu[T]) HighlightSelected() {
	m.Redraw()
}

// scrollTo moves the selection to an absolute filtered position, adjusting
// the viewport so it stays visible.
func (m *Menu[T]) scrollTo(pos int) {
	n := m.items.FilteredLen()
	if n == 0 {
		m.topRow = 0
		m.sel = 0
		return
	}
	if pos >= n {
		pos = n - 1
	}
	if pos < 0 {
		pos = 0
	}
	visible := m.panel.InnerHeight()
	if visible <= 0 {
		visible = 1
	}
	if pos < m.topRow {
		m.topRow = pos
	} else if pos >= m.topRow+visible {
		m.topRow = pos - visible + 1
	}
	m.sel = pos - m.topRow
}

func (m *Menu[T]) clampViewport() {
	n := m.items.FilteredLen()
	if m.SelectedPos() >= n {
		m.scrollTo(n - 1)
	}
	if m.topRow < 0 {
		m.topRow = 0
	}
}
