package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// SpritepackTheme wraps the default Fyne theme with compact sizing and a
// fixed light or dark variant.
type SpritepackTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
	system  bool
}

// NewTheme returns the theme named by the "theme" preference: "light",
// "dark" or anything else for the system default.
func NewTheme(name string) *SpritepackTheme {
	t := &SpritepackTheme{base: theme.DefaultTheme()}
	t.SetVariant(name)
	return t
}

// SetVariant switches between "light", "dark" and "system".
func (t *SpritepackTheme) SetVariant(name string) {
	switch name {
	case "light":
		t.variant, t.system = theme.VariantLight, false
	case "dark":
		t.variant, t.system = theme.VariantDark, false
	default:
		t.system = true
	}
}

func (t *SpritepackTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if t.system {
		return t.base.Color(name, variant)
	}
	return t.base.Color(name, t.variant)
}

func (t *SpritepackTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *SpritepackTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns compact sizing overrides.
func (t *SpritepackTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 9
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameSubHeadingText:
		return 15
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 16
	default:
		return t.base.Size(name)
	}
}
