// Package keymap maps terminal key events to logical user actions. The
// default table can be overridden per action from the config file.
package keymap

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"
)

// Action is a logical operation the user can trigger with a key.
type Action int

const (
	Down Action = iota
	Up
	Left
	Right
	BigUp
	BigDown
	PageUp
	PageDown
	GoTop
	GoBot
	AddFeed
	Sync
	SyncAll
	Play
	MarkPlayed
	MarkAllPlayed
	Download
	DownloadAll
	Delete
	DeleteAll
	UnmarkDownloaded
	Remove
	RemoveAll
	FilterPlayed
	FilterDownloaded
	Help
	Quit
)

var actionNames = map[string]Action{
	"down":              Down,
	"up":                Up,
	"left":              Left,
	"right":             Right,
	"big_up":            BigUp,
	"big_down":          BigDown,
	"page_up":           PageUp,
	"page_down":         PageDown,
	"go_top":            GoTop,
	"go_bottom":         GoBot,
	"add_feed":          AddFeed,
	"sync":              Sync,
	"sync_all":          SyncAll,
	"play":              Play,
	"mark_played":       MarkPlayed,
	"mark_all_played":   MarkAllPlayed,
	"download":          Download,
	"download_all":      DownloadAll,
	"delete":            Delete,
	"delete_all":        DeleteAll,
	"unmark_downloaded": UnmarkDownloaded,
	"remove":            Remove,
	"remove_all":        RemoveAll,
	"filter_played":     FilterPlayed,
	"filter_downloaded": FilterDownloaded,
	"help":              Help,
	"quit":              Quit,
}

// Label returns a short human-readable description, used by the help window.
func (a Action) Label() string {
	switch a {
	case Down:
		return "Move down"
	case Up:
		return "Move up"
	case Left:
		return "Move left"
	case Right:
		return "Move right"
	case BigUp:
		return "Jump up"
	case BigDown:
		return "Jump down"
	case PageUp:
		return "Page up"
	case PageDown:
		return "Page down"
	case GoTop:
		return "Go to top"
	case GoBot:
		return "Go to bottom"
	case AddFeed:
		return "Add feed"
	case Sync:
		return "Sync feed"
	case SyncAll:
		return "Sync all feeds"
	case Play:
		return "Play episode"
	case MarkPlayed:
		return "Mark played/unplayed"
	case MarkAllPlayed:
		return "Mark all played/unplayed"
	case Download:
		return "Download episode"
	case DownloadAll:
		return "Download all episodes"
	case Delete:
		return "Delete local file"
	case DeleteAll:
		return "Delete all local files"
	case UnmarkDownloaded:
		return "Unmark downloaded"
	case Remove:
		return "Remove from library"
	case RemoveAll:
		return "Remove all from library"
	case FilterPlayed:
		return "Filter by played"
	case FilterDownloaded:
		return "Filter by downloaded"
	case Help:
		return "Help"
	case Quit:
		return "Quit"
	}
	return "?"
}

// Keymap is the key-name to action table.
type Keymap struct {
	byKey map[string]Action
}

// Default returns the built-in key table.
func Default() *Keymap {
	k := &Keymap{byKey: make(map[string]Action)}
	defaults := map[Action][]string{
		Down:             {"j", "Down"},
		Up:               {"k", "Up"},
		Left:             {"h", "Left"},
		Right:            {"l", "Right"},
		BigUp:            {"K"},
		BigDown:          {"J"},
		PageUp:           {"PgUp"},
		PageDown:         {"PgDn"},
		GoTop:            {"g"},
		GoBot:            {"G"},
		AddFeed:          {"a"},
		Sync:             {"s"},
		SyncAll:          {"S"},
		Play:             {"Enter", "p"},
		MarkPlayed:       {"m"},
		MarkAllPlayed:    {"M"},
		Download:         {"d"},
		DownloadAll:      {"D"},
		Delete:           {"x"},
		DeleteAll:        {"X"},
		UnmarkDownloaded: {"u"},
		Remove:           {"r"},
		RemoveAll:        {"R"},
		FilterPlayed:     {"1"},
		FilterDownloaded: {"2"},
		Help:             {"?"},
		Quit:             {"q"},
	}
	for action, keys := range defaults {
		for _, key := range keys {
			k.byKey[key] = action
		}
	}
	return k
}

// Apply replaces the bindings for the named actions. Unknown action names
// are an error; the bindings of unnamed actions are left alone.
func (k *Keymap) Apply(overrides map[string][]string) error {
	for name, keys := range overrides {
		action, ok := actionNames[name]
		if !ok {
			return fmt.Errorf("unknown action %q in keybindings", name)
		}
		for key, bound := range k.byKey {
			if bound == action {
				delete(k.byKey, key)
			}
		}
		for _, key := range keys {
			k.byKey[key] = action
		}
	}
	return nil
}

// Lookup resolves a canonical key name to its bound action.
func (k *Keymap) Lookup(key string) (Action, bool) {
	a, ok := k.byKey[key]
	return a, ok
}

// KeysFor lists the keys bound to an action, sorted for stable display.
func (k *Keymap) KeysFor(a Action) []string {
	var keys []string
	for key, bound := range k.byKey {
		if bound == a {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Describe canonicalizes a tcell key event into the names used by the key
// table: plain runes as themselves, everything else by tcell's key name.
func Describe(ev *tcell.EventKey) string {
	if ev.Key() == tcell.KeyRune {
		name := string(ev.Rune())
		if ev.Modifiers()&tcell.ModAlt != 0 {
			name = "Alt+" + name
		}
		return name
	}
	switch ev.Key() {
	case tcell.KeyEnter:
		return "Enter"
	case tcell.KeyEscape:
		return "Esc"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "Backspace"
	case tcell.KeyDelete:
		return "Del"
	case tcell.KeyTab:
		return "Tab"
	}
	if name, ok := tcell.KeyNames[ev.Key()]; ok {
		return name
	}
	return ""
}
