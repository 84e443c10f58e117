package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseLocaleTable(t *testing.T) {
	table, err := ParseLocaleTable(`{"reagent-name-milk": "milk", "empty": "", "count": 3}`)
	if err != nil {
		t.Fatalf("ParseLocaleTable: %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("len = %d, want 2", table.Len())
	}
	if msg, ok := table.Message("reagent-name-milk"); !ok || msg != "milk" {
		t.Errorf("milk = %q %v", msg, ok)
	}
	// An empty message falls back like a missing one.
	if _, ok := table.Message("empty"); ok {
		t.Error("empty message found")
	}
	if got := localizedName(table, "reagent-name-cream", "Cream"); got != "Cream" {
		t.Errorf("fallback = %q, want Cream", got)
	}

	for _, src := range []string{`["milk"]`, `{"a":`} {
		if _, err := ParseLocaleTable(src); err == nil {
			t.Errorf("ParseLocaleTable(%s): got nil error", src)
		}
	}
}

func TestLoadLocaleTable(t *testing.T) {
	table, err := LoadLocaleTable("")
	if err != nil || table.Len() != 0 {
		t.Errorf("empty path = %v, %v", table, err)
	}

	path := filepath.Join(t.TempDir(), "en-US.json")
	if err := os.WriteFile(path, []byte(`{"reagent-name-water": "water"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err = LoadLocaleTable(path)
	if err != nil {
		t.Fatalf("LoadLocaleTable: %v", err)
	}
	if got := localizedName(table, "reagent-name-water", "Water"); got != "water" {
		t.Errorf("water = %q", got)
	}

	if _, err := LoadLocaleTable(path + ".missing"); err == nil {
		t.Error("missing file: got nil error")
	}
}

func TestLocaleTableLookups(t *testing.T) {
	table, err := ParseLocaleTable(`{
		"food-sequence.burger": "burger",
		"reagent-name-milk": "milk",
		"reagent-name-milk": "cream",
		"ingredient*": "star"
	}`)
	if err != nil {
		t.Fatalf("ParseLocaleTable: %v", err)
	}

	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"food-sequence.burger", "burger", true},
		{"reagent-name-milk", "milk", true},
		{"ingredient*", "star", true},
		{"ingredient", "", false},
		{"food-sequence", "", false},
	}
	for range 2 {
		for _, tt := range tests {
			if msg, ok := table.Message(tt.key); msg != tt.want || ok != tt.ok {
				t.Errorf("Message(%q) = %q %v, want %q %v", tt.key, msg, ok, tt.want, tt.ok)
			}
		}
	}
	// One memo entry per key, misses included.
	if n := table.lookups.ItemCount(); n != len(tests) {
		t.Errorf("memoized %d lookups, want %d", n, len(tests))
	}
}

func TestLocaleLoader(t *testing.T) {
	dir := t.TempDir()
	shared := filepath.Join(dir, "en-US.json")
	if err := os.WriteFile(shared, []byte(`{"reagent-name-water": "water"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	l := newLocaleLoader()

	a, err := l.Load(shared)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	localizedName(a, "reagent-name-water", "Water")
	b, _ := l.Load(shared)
	if a != b {
		t.Error("same path loaded twice")
	}
	if b.lookups.ItemCount() != 1 {
		t.Errorf("shared table lost its lookups: %d", b.lookups.ItemCount())
	}

	missing := filepath.Join(dir, "fr-FR.json")
	if _, err := l.Load(missing); err == nil {
		t.Fatal("missing file: got nil error")
	}
	if err := os.WriteFile(missing, []byte(`{"reagent-name-water": "eau"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	fr, err := l.Load(missing)
	if err != nil {
		t.Fatalf("Load after the file appeared: %v", err)
	}
	if got := localizedName(fr, "reagent-name-water", "Water"); got != "eau" {
		t.Errorf("fr water = %q", got)
	}
}
