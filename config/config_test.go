package config

import (
	"os"
	"path/filepath"
	"testing"
)

// P10: a missing config file yields the built-in defaults.
func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error for missing file: %v", err)
	}
	want := Default()
	if *cfg != *want {
		t.Fatalf("cfg = %+v, want defaults %+v", cfg, want)
	}
}

// P10: a partial file overrides only the fields it sets, leaving the
// rest at their defaults (idempotent layering).
func TestLoadPartialFileOverridesOnlySetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`shell = "/bin/zsh"`+"\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Shell != "/bin/zsh" {
		t.Fatalf("Shell = %q, want /bin/zsh", cfg.Shell)
	}
	if cfg.ScrollbackSize != DefaultScrollbackSize {
		t.Fatalf("ScrollbackSize = %d, want default %d", cfg.ScrollbackSize, DefaultScrollbackSize)
	}
	if cfg.TermType != DefaultTermType {
		t.Fatalf("TermType = %q, want default %q", cfg.TermType, DefaultTermType)
	}
}

func TestThemeLabelFallsBackToNameForUnknownTheme(t *testing.T) {
	if got := ThemeLabel("made-up-theme"); got != "made-up-theme" {
		t.Fatalf("ThemeLabel(unknown) = %q, want passthrough", got)
	}
	if got := ThemeLabel(""); got != "Raven Blue" {
		t.Fatalf("ThemeLabel(empty) = %q, want %q", got, "Raven Blue")
	}
}
