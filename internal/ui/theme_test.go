package ui

import (
	"testing"

	"github.com/five82/termnote/internal/app"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	cases := map[string]string{
		"Nightfox": "Kanagawa",
		"Kanagawa": "Slate",
		"Slate":    "Nightfox",
		"Unknown":  "Nightfox",
	}
	for in, want := range cases {
		if got := NextTheme(in); got != want {
			t.Fatalf("NextTheme(%s) = %q, want %s", in, got, want)
		}
	}
}

func TestGetThemeFallsBack(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got)
	}
	if got := GetTheme("Unknown").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox (fallback)", got)
	}
}

func TestToastStyleByLevel(t *testing.T) {
	s := GetTheme("Nightfox").Styles()
	if s.ToastStyle(app.LevelError).GetForeground() != s.DangerText.GetForeground() {
		t.Fatalf("error toast should use danger color")
	}
	if s.ToastStyle(app.LevelWarning).GetForeground() != s.WarningText.GetForeground() {
		t.Fatalf("warning toast should use warning color")
	}
	if s.ToastStyle(app.LevelInfo).GetForeground() != s.SuccessText.GetForeground() {
		t.Fatalf("info toast should use success color")
	}
}
