package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/konomi/internal/interest"
)

func writeTableFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "domains.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write table file: %v", err)
	}
	return path
}

func TestLoadTable(t *testing.T) {
	path := writeTableFile(t, `{
		"version": 1,
		"domains": {
			"espn.com": "sports",
			"Allrecipes.COM": "food",
			"example.org": "inconclusive"
		}
	}`)

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable() unexpected error: %v", err)
	}
	if table.Len() != 3 {
		t.Errorf("Len() = %d, want 3", table.Len())
	}

	tests := []struct {
		host   string
		want   interest.Interest
		wantOK bool
	}{
		{host: "espn.com", want: interest.Sports, wantOK: true},
		{host: "allrecipes.com", want: interest.Food, wantOK: true},
		{host: "example.org", want: interest.Inconclusive, wantOK: true},
		{host: "unknown.net", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := table.Lookup(tt.host)
		if ok != tt.wantOK {
			t.Errorf("Lookup(%q) ok = %v, want %v", tt.host, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("Lookup(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestLoadTableErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unsupported version", content: `{"version": 2, "domains": {}}`},
		{name: "missing version", content: `{"domains": {"espn.com": "sports"}}`},
		{name: "unknown category", content: `{"version": 1, "domains": {"example.com": "astrology"}}`},
		{name: "malformed JSON", content: `{"version": 1, "domains":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTableFile(t, tt.content)
			if _, err := LoadTable(path); err == nil {
				t.Error("LoadTable() expected error, got nil")
			}
		})
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("LoadTable() expected error for missing file, got nil")
	}
}

func TestNewTableLowercasesKeys(t *testing.T) {
	table := NewTable(map[string]interest.Interest{"ESPN.com": interest.Sports})

	if _, ok := table.Lookup("espn.com"); !ok {
		t.Error("Lookup(lowercase) failed for a mixed-case key")
	}
}

func TestTableLenNil(t *testing.T) {
	var table *Table
	if got := table.Len(); got != 0 {
		t.Errorf("Len() on nil table = %d, want 0", got)
	}
}
