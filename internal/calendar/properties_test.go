package calendar

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProperties(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "properties.yaml")
	content := `"The Glasshouse": glasshouse@group.calendar.google.com
"The Potter's Cabin": potters@group.calendar.google.com
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	props, err := LoadProperties(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := props.Resolve("The Potter's Cabin"); got != "potters@group.calendar.google.com" {
		t.Errorf("unexpected calendar id %q", got)
	}
	if names := props.Names(); len(names) != 2 {
		t.Errorf("expected 2 properties, got %v", names)
	}
}

func TestLoadProperties_Missing(t *testing.T) {
	if _, err := LoadProperties(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadProperties_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "properties.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProperties(path); err == nil {
		t.Fatal("expected error for empty property map")
	}
}
