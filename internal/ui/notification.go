package ui

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

type notification struct {
	text   string
	error  bool
	expiry time.Time // zero for persistent
}

// StatusLine owns the bottom row of the screen: timed and persistent
// notifications plus the blocking line editor used for prompts.
type StatusLine struct {
	screen tcell.Screen
	theme  *Theme
	events <-chan tcell.Event

	rows int
	cols int

	persistent *notification
	timed      []notification

	pendingResize bool // a resize arrived while the line editor was open
}

// NewStatusLine creates the status line for a screen of the given size.
func NewStatusLine(screen tcell.Screen, theme *Theme, events <-chan tcell.Event, rows, cols int) *StatusLine {
	return &StatusLine{
		screen: screen,
		theme:  theme,
		events: events,
		rows:   rows,
		cols:   cols,
	}
}

// Resize adjusts to the new full screen dimensions.
func (n *StatusLine) Resize(rows, cols int) {
	n.rows = rows
	n.cols = cols
	n.Redraw()
}

// CheckNotifs expires any timed message whose duration has elapsed.
func (n *StatusLine) CheckNotifs() {
	if len(n.timed) == 0 {
		return
	}
	now := time.Now()
	kept := n.timed[:0]
	for _, msg := range n.timed {
		if msg.expiry.After(now) {
			kept = append(kept, msg)
		}
	}
	changed := len(kept) != len(n.timed)
	n.timed = kept
	if changed {
		n.Redraw()
	}
}

// TimedNotif shows a message that expires after the given duration.
func (n *StatusLine) TimedNotif(text string, duration time.Duration, isError bool) {
	n.timed = append(n.timed, notification{
		text:   text,
		error:  isError,
		expiry: time.Now().Add(duration),
	})
	n.Redraw()
}

// PersistentNotif shows a message that stays until cleared.
func (n *StatusLine) PersistentNotif(text string, isError bool) {
	n.persistent = &notification{text: text, error: isError}
	n.Redraw()
}

// ClearPersistentNotif removes the persistent message, if any. Timed
// messages are unaffected.
func (n *StatusLine) ClearPersistentNotif() {
	n.persistent = nil
	n.Redraw()
}

// Redraw repaints the bottom row with the most recent timed message, the
// persistent message, or nothing.
func (n *StatusLine) Redraw() {
	var current *notification
	if len(n.timed) > 0 {
		current = &n.timed[len(n.timed)-1]
	} else if n.persistent != nil {
		current = n.persistent
	}

	text := ""
	style := n.theme.Normal
	if current != nil {
		text = current.text
		if current.error {
			style = n.theme.Error
		}
	}
	n.writeRow(text, style)
}

// InputNotif runs a blocking line editor on the bottom row with the given
// prompt. It returns the entered text, or "" when the user cancels. This is
// the one place the event loop's tick cadence is suspended.
func (n *StatusLine) InputNotif(prompt string) string {
	input := ""
	defer func() {
		n.screen.HideCursor()
		n.Redraw()
		n.screen.Show()
	}()

	for {
		n.writeRow(prompt+input, n.theme.Prompt)
		n.screen.ShowCursor(len([]rune(prompt+input)), n.rows-1)
		n.screen.Show()

		ev, ok := <-n.events
		if !ok {
			return ""
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			cols, rows := ev.Size()
			n.rows = rows
			n.cols = cols
			n.pendingResize = true
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEnter:
				return input
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return ""
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				if len(input) > 0 {
					runes := []rune(input)
					input = string(runes[:len(runes)-1])
				}
			case tcell.KeyRune:
				input += string(ev.Rune())
			}
		}
	}
}

// TakeResize returns the screen dimensions of a resize consumed during a
// blocking prompt and clears the record. The caller relays them to the rest
// of the layout, which never saw the event.
func (n *StatusLine) TakeResize() (cols, rows int, ok bool) {
	if !n.pendingResize {
		return 0, 0, false
	}
	n.pendingResize = false
	return n.cols, n.rows, true
}

func (n *StatusLine) writeRow(text string, style tcell.Style) {
	if n.rows <= 0 {
		return
	}
	y := n.rows - 1
	runes := []rune(text)
	for x := 0; x < n.cols; x++ {
		ch := ' '
		if x < len(runes) {
			ch = runes[x]
		}
		n.screen.SetContent(x, y, ch, nil, style)
	}
}
