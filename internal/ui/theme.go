package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/tidecast/tidecast/internal/config"
)

// TokyoNight-derived defaults, overridable from the config file.
var (
	defaultBg          = tcell.NewRGBColor(0x1a, 0x1b, 0x26)
	defaultFg          = tcell.NewRGBColor(0xc0, 0xca, 0xf5)
	defaultDim         = tcell.NewRGBColor(0x56, 0x5f, 0x89)
	defaultHighlightBg = tcell.NewRGBColor(0x29, 0x2e, 0x42)
	defaultBorder      = tcell.NewRGBColor(0x3b, 0x42, 0x61)
	defaultAccent      = tcell.NewRGBColor(0x7a, 0xa2, 0xf7)
	defaultError       = tcell.NewRGBColor(0xf7, 0x76, 0x8e)
)

// Theme is the shared color handle passed to every widget.
type Theme struct {
	Normal        tcell.Style
	Dim           tcell.Style
	Border        tcell.Style
	BorderActive  tcell.Style
	Selected      tcell.Style
	SelectedMuted tcell.Style
	Title         tcell.Style
	Error         tcell.Style
	Prompt        tcell.Style
}

// NewTheme builds the widget styles from the config color overrides.
func NewTheme(c config.Colors) *Theme {
	bg := pickColor(c.Background, defaultBg)
	fg := pickColor(c.Foreground, defaultFg)
	hlBg := pickColor(c.HighlightBg, defaultHighlightBg)
	hlFg := pickColor(c.HighlightFg, fg)
	errFg := pickColor(c.Error, defaultError)

	base := tcell.StyleDefault.Background(bg).Foreground(fg)
	return &Theme{
		Normal:        base,
		Dim:           base.Foreground(defaultDim),
		Border:        base.Foreground(defaultBorder),
		BorderActive:  base.Foreground(defaultAccent),
		Selected:      base.Background(hlBg).Foreground(hlFg).Bold(true),
		SelectedMuted: base.Background(hlBg).Foreground(defaultDim),
		Title:         base.Foreground(defaultAccent).Bold(true),
		Error:         base.Foreground(errFg).Bold(true),
		Prompt:        base.Bold(true),
	}
}

func pickColor(name string, fallback tcell.Color) tcell.Color {
	if name == "" {
		return fallback
	}
	color := tcell.GetColor(name)
	if color == tcell.ColorDefault {
		return fallback
	}
	return color
}
