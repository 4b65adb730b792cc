package ui

import "testing"

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")

	t.Setenv("VQA_DARK_MODE", "1")
	dark := DetectTheme()
	if !dark.IsDark {
		t.Fatalf("expected dark theme when VQA_DARK_MODE=1")
	}

	t.Setenv("VQA_DARK_MODE", "")
	light := DetectTheme()
	if light.IsDark {
		t.Fatalf("expected light theme when VQA_DARK_MODE is unset")
	}

	t.Setenv("COLORFGBG", "15;0")
	if !DetectTheme().IsDark {
		t.Fatalf("expected dark theme for black COLORFGBG background")
	}
}

func TestThemeFor(t *testing.T) {
	t.Setenv("VQA_DARK_MODE", "")
	t.Setenv("COLORFGBG", "")

	if ThemeFor("dark").GlamourStyle() != "dark" {
		t.Errorf("dark theme should render with the dark glamour style")
	}
	if ThemeFor("light").IsDark {
		t.Errorf("light theme reported dark")
	}
	if ThemeFor("auto").IsDark {
		t.Errorf("auto should fall back to light without terminal hints")
	}
}

func TestNewStyles_StatusColors(t *testing.T) {
	s := NewStyles(DarkTheme())
	if s.Error.GetForeground() != Destructive {
		t.Errorf("error style should use the destructive color")
	}
	if s.Spinner.GetForeground() != DarkTheme().Accent {
		t.Errorf("spinner should follow the theme accent")
	}
}
