package ui

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"

	"github.com/tidecast/tidecast/internal/keymap"
	"github.com/tidecast/tidecast/internal/msg"
)

type popupKind int

const (
	popupNone popupKind = iota
	popupWelcome
	popupHelp
	popupDownload
)

// pickEntry is one selectable row of the download picker.
type pickEntry struct {
	id       int64
	title    string
	selected bool
}

// downloadPicker lets the user choose episodes to download, with an fzf
// filter line.
type downloadPicker struct {
	podcastID int64
	entries   []pickEntry
	visible   []int // indices into entries, after filtering
	cursor    int
	topRow    int
	query     string
	filtering bool
}

// PopupStack owns the modal overlays: the input-less welcome window, the
// help window, and the download picker. At most one is active at a time.
type PopupStack struct {
	screen tcell.Screen
	theme  *Theme
	keymap *keymap.Keymap

	rows int
	cols int

	kind     popupKind
	download *downloadPicker
}

// NewPopupStack creates an empty popup stack.
func NewPopupStack(screen tcell.Screen, theme *Theme, km *keymap.Keymap, rows, cols int) *PopupStack {
	return &PopupStack{
		screen: screen,
		theme:  theme,
		keymap: km,
		rows:   rows,
		cols:   cols,
	}
}

// IsPopupActive reports whether any overlay is showing.
func (p *PopupStack) IsPopupActive() bool {
	return p.kind != popupNone
}

// IsNonWelcomePopupActive reports whether an input-consuming overlay is
// showing. The welcome window takes no input.
func (p *PopupStack) IsNonWelcomePopupActive() bool {
	return p.kind != popupNone && p.kind != popupWelcome
}

// WelcomeActive reports whether the first-run welcome window is showing.
func (p *PopupStack) WelcomeActive() bool {
	return p.kind == popupWelcome
}

// SpawnWelcomeWin shows the first-run welcome overlay.
func (p *PopupStack) SpawnWelcomeWin() {
	p.kind = popupWelcome
	p.Redraw()
}

// TurnOffWelcomeWin dismisses the welcome overlay.
func (p *PopupStack) TurnOffWelcomeWin() {
	if p.kind == popupWelcome {
		p.kind = popupNone
	}
}

// SpawnHelpWin shows the keybinding help overlay.
func (p *PopupStack) SpawnHelpWin() {
	p.kind = popupHelp
	p.Redraw()
}

// SpawnDownloadWin shows the download picker for a podcast's episodes.
// Titles come paired with episode IDs; preselected IDs start checked.
func (p *PopupStack) SpawnDownloadWin(podcastID int64, ids []int64, titles []string, preselected []int64) {
	pre := make(map[int64]bool, len(preselected))
	for _, id := range preselected {
		pre[id] = true
	}
	picker := &downloadPicker{podcastID: podcastID}
	for i, id := range ids {
		title := ""
		if i < len(titles) {
			title = titles[i]
		}
		picker.entries = append(picker.entries, pickEntry{
			id:       id,
			title:    title,
			selected: pre[id],
		})
	}
	picker.refilter()
	p.download = picker
	p.kind = popupDownload
	p.Redraw()
}

// Resize adjusts to the new full screen dimensions.
func (p *PopupStack) Resize(rows, cols int) {
	p.rows = rows
	p.cols = cols
}

// HandleInput routes a key event to the active overlay and returns the
// resulting intent, if any. Closing an overlay sets the stack back to none.
func (p *PopupStack) HandleInput(ev *tcell.EventKey) msg.Intent {
	switch p.kind {
	case popupHelp:
		// any key closes
		p.kind = popupNone
		return nil
	case popupDownload:
		return p.handleDownloadInput(ev)
	}
	return nil
}

func (p *PopupStack) handleDownloadInput(ev *tcell.EventKey) msg.Intent {
	picker := p.download
	if picker == nil {
		p.kind = popupNone
		return nil
	}

	if picker.filtering {
		switch ev.Key() {
		case tcell.KeyEnter, tcell.KeyEscape:
			picker.filtering = false
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(picker.query) > 0 {
				runes := []rune(picker.query)
				picker.query = string(runes[:len(runes)-1])
				picker.refilter()
			}
		case tcell.KeyRune:
			picker.query += string(ev.Rune())
			picker.refilter()
		}
		p.Redraw()
		return nil
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		p.close()
		return nil
	case tcell.KeyEnter:
		var refs []msg.EpisodeRef
		for _, e := range picker.entries {
			if e.selected {
				refs = append(refs, msg.EpisodeRef{
					PodcastID: picker.podcastID,
					EpisodeID: e.id,
				})
			}
		}
		p.close()
		if len(refs) == 0 {
			return nil
		}
		return msg.DownloadMulti{Episodes: refs}
	case tcell.KeyUp:
		picker.move(-1)
	case tcell.KeyDown:
		picker.move(1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			p.close()
			return nil
		case 'j':
			picker.move(1)
		case 'k':
			picker.move(-1)
		case ' ':
			picker.toggle()
		case 'a':
			picker.toggleAll()
		case '/':
			picker.filtering = true
		}
	}
	p.Redraw()
	return nil
}

func (p *PopupStack) close() {
	p.kind = popupNone
	p.download = nil
}

// Redraw paints the active overlay on top of whatever is on screen.
func (p *PopupStack) Redraw() {
	switch p.kind {
	case popupWelcome:
		p.drawWelcome()
	case popupHelp:
		p.drawHelp()
	case popupDownload:
		p.drawDownload()
	}
}

func (picker *downloadPicker) refilter() {
	picker.visible = picker.visible[:0]
	type scored struct {
		idx   int
		score int
	}
	var matches []scored
	for i, e := range picker.entries {
		score := fuzzyScore(e.title, picker.query)
		if score >= 0 {
			matches = append(matches, scored{idx: i, score: score})
		}
	}
	if picker.query != "" {
		sort.SliceStable(matches, func(a, b int) bool {
			return matches[a].score > matches[b].score
		})
	}
	for _, m := range matches {
		picker.visible = append(picker.visible, m.idx)
	}
	picker.cursor = 0
	picker.topRow = 0
}

func (picker *downloadPicker) move(delta int) {
	picker.cursor += delta
	if picker.cursor < 0 {
		picker.cursor = 0
	}
	if picker.cursor > len(picker.visible)-1 {
		picker.cursor = len(picker.visible) - 1
	}
}

func (picker *downloadPicker) toggle() {
	if picker.cursor >= 0 && picker.cursor < len(picker.visible) {
		idx := picker.visible[picker.cursor]
		picker.entries[idx].selected = !picker.entries[idx].selected
	}
}

func (picker *downloadPicker) toggleAll() {
	all := true
	for _, idx := range picker.visible {
		if !picker.entries[idx].selected {
			all = false
			break
		}
	}
	for _, idx := range picker.visible {
		picker.entries[idx].selected = !all
	}
}

// drawing

func (p *PopupStack) frame(width, height int, title string) (x, y, w, h int) {
	w = width
	h = height
	if w > p.cols {
		w = p.cols
	}
	if h > p.rows {
		h = p.rows
	}
	x = (p.cols - w) / 2
	y = (p.rows - h) / 2

	style := p.theme.Normal
	border := p.theme.BorderActive
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			p.screen.SetContent(xx, yy, ' ', nil, style)
		}
	}
	for xx := x; xx < x+w; xx++ {
		p.screen.SetContent(xx, y, '─', nil, border)
		p.screen.SetContent(xx, y+h-1, '─', nil, border)
	}
	for yy := y; yy < y+h; yy++ {
		p.screen.SetContent(x, yy, '│', nil, border)
		p.screen.SetContent(x+w-1, yy, '│', nil, border)
	}
	p.screen.SetContent(x, y, '┌', nil, border)
	p.screen.SetContent(x+w-1, y, '┐', nil, border)
	p.screen.SetContent(x, y+h-1, '└', nil, border)
	p.screen.SetContent(x+w-1, y+h-1, '┘', nil, border)

	if title != "" && w > len(title)+4 {
		start := x + (w-len(title))/2
		for i, r := range []rune(title) {
			p.screen.SetContent(start+i, y, r, nil, p.theme.Title)
		}
	}
	return x, y, w, h
}

func (p *PopupStack) writeAt(x, y, width int, text string, style tcell.Style) {
	runes := []rune(text)
	if len(runes) > width {
		runes = runes[:width]
	}
	for i, r := range runes {
		p.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (p *PopupStack) drawWelcome() {
	lines := []string{
		"Welcome to tidecast!",
		"",
		"Your podcast library is empty.",
		"",
		fmt.Sprintf("Press %q to add a feed,", firstKey(p.keymap, keymap.AddFeed)),
		fmt.Sprintf("%q for help, or %q to quit.", firstKey(p.keymap, keymap.Help), firstKey(p.keymap, keymap.Quit)),
	}
	x, y, w, _ := p.frame(44, len(lines)+4, "")
	for i, line := range lines {
		p.writeAt(x+(w-len(line))/2, y+2+i, w-4, line, p.theme.Normal)
	}
}

func (p *PopupStack) drawHelp() {
	actions := []keymap.Action{
		keymap.Down, keymap.Up, keymap.Left, keymap.Right,
		keymap.PageUp, keymap.PageDown, keymap.BigUp, keymap.BigDown,
		keymap.GoTop, keymap.GoBot,
		keymap.AddFeed, keymap.Sync, keymap.SyncAll,
		keymap.Play, keymap.MarkPlayed, keymap.MarkAllPlayed,
		keymap.Download, keymap.DownloadAll,
		keymap.Delete, keymap.DeleteAll, keymap.UnmarkDownloaded,
		keymap.Remove, keymap.RemoveAll,
		keymap.FilterPlayed, keymap.FilterDownloaded,
		keymap.Help, keymap.Quit,
	}

	height := len(actions) + 5
	x, y, w, h := p.frame(46, height, " Help ")
	row := y + 2
	for _, action := range actions {
		if row >= y+h-2 {
			break
		}
		keys := ""
		for i, k := range p.keymap.KeysFor(action) {
			if i > 0 {
				keys += ", "
			}
			keys += k
		}
		line := fmt.Sprintf("%-24s %s", action.Label(), keys)
		p.writeAt(x+2, row, w-4, line, p.theme.Normal)
		row++
	}
	p.writeAt(x+2, y+h-2, w-4, "press any key to close", p.theme.Dim)
}

func (p *PopupStack) drawDownload() {
	picker := p.download
	if picker == nil {
		return
	}

	x, y, w, h := p.frame(p.cols-8, p.rows-4, " Download episodes ")
	inner := w - 4
	listTop := y + 2
	listHeight := h - 5
	if listHeight < 1 {
		listHeight = 1
	}

	if picker.cursor < picker.topRow {
		picker.topRow = picker.cursor
	} else if picker.cursor >= picker.topRow+listHeight {
		picker.topRow = picker.cursor - listHeight + 1
	}

	for row := 0; row < listHeight; row++ {
		idx := picker.topRow + row
		if idx >= len(picker.visible) {
			break
		}
		entry := picker.entries[picker.visible[idx]]
		mark := "[ ] "
		if entry.selected {
			mark = "[x] "
		}
		style := p.theme.Normal
		if idx == picker.cursor {
			style = p.theme.Selected
		}
		p.writeAt(x+2, listTop+row, inner, mark+entry.title, style)
	}

	status := "space: toggle  a: all  enter: download  /: filter"
	if picker.filtering || picker.query != "" {
		status = "filter: " + picker.query
	}
	p.writeAt(x+2, y+h-2, inner, status, p.theme.Dim)
}

func firstKey(km *keymap.Keymap, a keymap.Action) string {
	keys := km.KeysFor(a)
	if len(keys) == 0 {
		return "?"
	}
	return keys[0]
}
