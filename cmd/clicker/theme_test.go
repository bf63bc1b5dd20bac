package main

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

func TestClickerThemeOverridesAccentOnly(t *testing.T) {
	custom := newClickerTheme()
	base := theme.DarkTheme()

	if got := custom.Color(theme.ColorNamePrimary, theme.VariantDark); got != clickerAccent {
		t.Fatalf("primary = %v, want %v", got, clickerAccent)
	}
	for _, name := range []fyne.ThemeColorName{
		theme.ColorNameBackground,
		theme.ColorNameButton,
		theme.ColorNameForeground,
		theme.ColorNameSeparator,
	} {
		if custom.Color(name, theme.VariantDark) != base.Color(name, theme.VariantDark) {
			t.Fatalf("%s differs from the dark theme", name)
		}
	}
	if custom.Size(theme.SizeNamePadding) != base.Size(theme.SizeNamePadding) {
		t.Fatalf("padding differs from the dark theme")
	}
}
