package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/tidecast/tidecast/internal/config"
	"github.com/tidecast/tidecast/internal/models"
)

func simScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init simulation screen: %v", err)
	}
	screen.SetSize(cols, rows)
	t.Cleanup(screen.Fini)
	return screen
}

func testMenu(t *testing.T, n int) *Menu[*models.Episode] {
	t.Helper()
	screen := simScreen(t, 80, 24)
	theme := NewTheme(config.Colors{})

	eps := make([]*models.Episode, 0, n)
	for i := 1; i <= n; i++ {
		eps = append(eps, &models.Episode{ID: int64(i), Title: "Episode"})
	}
	// panel shows 8 rows inside its border
	panel := NewPanel(screen, theme, "Episodes", 10, 40, 0)
	return NewMenu(panel, theme, models.NewStore(eps))
}

func TestMenu_ScrollDown(t *testing.T) {
	m := testMenu(t, 20)

	m.Scroll(ScrollRequest{Dir: ScrollDown, Amount: 1})
	if m.SelectedPos() != 1 {
		t.Errorf("Expected position 1, got %d", m.SelectedPos())
	}

	m.Scroll(ScrollRequest{Dir: ScrollDown, Amount: 5})
	if m.SelectedPos() != 6 {
		t.Errorf("Expected position 6, got %d", m.SelectedPos())
	}

	// viewport follows the selection once it passes the bottom
	m.Scroll(ScrollRequest{Dir: ScrollDown, Amount: 5})
	if m.SelectedPos() != 11 {
		t.Errorf("Expected position 11, got %d", m.SelectedPos())
	}
	if m.SelectedPos()-m.ScrollOffset() >= 8 {
		t.Errorf("Expected selection within viewport, top %d sel %d", m.ScrollOffset(), m.SelectedPos())
	}
}

func TestMenu_ScrollClamps(t *testing.T) {
	m := testMenu(t, 5)

	m.Scroll(ScrollRequest{Dir: ScrollUp, Amount: 3})
	if m.SelectedPos() != 0 {
		t.Errorf("Expected clamp at top, got %d", m.SelectedPos())
	}

	m.Scroll(ScrollRequest{Dir: ScrollDown, Amount: 100})
	if m.SelectedPos() != 4 {
		t.Errorf("Expected clamp at bottom, got %d", m.SelectedPos())
	}

	m.Scroll(ScrollRequest{Dir: ScrollUp, Amount: ScrollMax})
	if m.SelectedPos() != 0 {
		t.Errorf("Expected jump to top, got %d", m.SelectedPos())
	}
	if m.ScrollOffset() != 0 {
		t.Errorf("Expected viewport at top, got %d", m.ScrollOffset())
	}
}

func TestMenu_ScrollEmptyStore(t *testing.T) {
	m := testMenu(t, 0)

	m.Scroll(ScrollRequest{Dir: ScrollDown, Amount: 1})
	if m.SelectedPos() != 0 {
		t.Errorf("Expected position 0 on empty store, got %d", m.SelectedPos())
	}
	if _, ok := m.SelectedID(); ok {
		t.Error("Expected no selected ID on empty store")
	}
}

func TestMenu_SelectedID(t *testing.T) {
	m := testMenu(t, 10)

	id, ok := m.SelectedID()
	if !ok || id != 1 {
		t.Errorf("Expected initial selection ID 1, got %d (ok=%v)", id, ok)
	}

	m.Scroll(ScrollRequest{Dir: ScrollDown, Amount: 3})
	id, ok = m.SelectedID()
	if !ok || id != 4 {
		t.Errorf("Expected ID 4 after scrolling, got %d (ok=%v)", id, ok)
	}
}

func TestMenu_SelectionTracksFilteredOrder(t *testing.T) {
	m := testMenu(t, 10)
	m.Scroll(ScrollRequest{Dir: ScrollDown, Amount: 2})

	// hide the even IDs; position 2 now resolves to the third odd ID
	m.Items().ApplyFilter(func(e *models.Episode) bool { return e.ID%2 == 1 })

	id, ok := m.SelectedID()
	if !ok || id != 5 {
		t.Errorf("Expected ID 5 at filtered position 2, got %d (ok=%v)", id, ok)
	}
}

func TestMenu_RedrawClampsAfterShrink(t *testing.T) {
	m := testMenu(t, 10)
	m.Scroll(ScrollRequest{Dir: ScrollDown, Amount: ScrollMax})

	// the collection shrinks underneath the selection
	m.Items().ApplyFilter(func(e *models.Episode) bool { return e.ID <= 3 })
	m.Redraw()

	if m.SelectedPos() > 2 {
		t.Errorf("Expected selection clamped to 2, got %d", m.SelectedPos())
	}
	if _, ok := m.SelectedID(); !ok {
		t.Error("Expected selection to resolve after clamping")
	}
}

func TestMenu_ResetSelection(t *testing.T) {
	m := testMenu(t, 20)
	m.Scroll(ScrollRequest{Dir: ScrollDown, Amount: 15})

	m.ResetSelection()
	if m.SelectedPos() != 0 || m.ScrollOffset() != 0 {
		t.Errorf("Expected reset to top, got pos %d top %d", m.SelectedPos(), m.ScrollOffset())
	}
}
