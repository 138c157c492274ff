package keymap

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestDefault(t *testing.T) {
	km := Default()

	tests := []struct {
		key      string
		expected Action
	}{
		{"j", Down},
		{"Down", Down},
		{"k", Up},
		{"h", Left},
		{"l", Right},
		{"J", BigDown},
		{"K", BigUp},
		{"g", GoTop},
		{"G", GoBot},
		{"a", AddFeed},
		{"Enter", Play},
		{"m", MarkPlayed},
		{"M", MarkAllPlayed},
		{"1", FilterPlayed},
		{"2", FilterDownloaded},
		{"?", Help},
		{"q", Quit},
	}

	for _, tt := range tests {
		action, ok := km.Lookup(tt.key)
		if !ok {
			t.Errorf("Expected %q to be bound", tt.key)
			continue
		}
		if action != tt.expected {
			t.Errorf("Expected %q to map to %v, got %v", tt.key, tt.expected, action)
		}
	}

	if _, ok := km.Lookup("z"); ok {
		t.Error("Expected 'z' to be unbound")
	}
}

func TestKeymap_Apply(t *testing.T) {
	km := Default()

	err := km.Apply(map[string][]string{"quit": {"Q", "Esc"}})
	if err != nil {
		t.Fatalf("Failed to apply override: %v", err)
	}

	// the old binding is gone, the new ones work
	if _, ok := km.Lookup("q"); ok {
		t.Error("Expected 'q' to be unbound after override")
	}
	if action, ok := km.Lookup("Q"); !ok || action != Quit {
		t.Error("Expected 'Q' to quit after override")
	}
	if action, ok := km.Lookup("Esc"); !ok || action != Quit {
		t.Error("Expected 'Esc' to quit after override")
	}

	// untouched actions keep their defaults
	if action, ok := km.Lookup("j"); !ok || action != Down {
		t.Error("Expected 'j' to keep its default binding")
	}
}

func TestKeymap_ApplyUnknownAction(t *testing.T) {
	km := Default()
	if err := km.Apply(map[string][]string{"warp_drive": {"w"}}); err == nil {
		t.Error("Expected error for unknown action name")
	}
}

func TestKeymap_KeysFor(t *testing.T) {
	km := Default()
	keys := km.KeysFor(Down)
	if len(keys) != 2 || keys[0] != "Down" || keys[1] != "j" {
		t.Errorf("Expected sorted [Down j], got %v", keys)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		event    *tcell.EventKey
		expected string
	}{
		{"plain rune", tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone), "j"},
		{"upper rune", tcell.NewEventKey(tcell.KeyRune, 'G', tcell.ModNone), "G"},
		{"alt rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModAlt), "Alt+x"},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), "Enter"},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), "Esc"},
		{"backspace2", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), "Backspace"},
		{"page down", tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone), "PgDn"},
		{"arrow", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), "Up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.event); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
