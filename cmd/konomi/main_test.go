package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/konomi/internal/cli"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after urls are moved first",
			args:     []string{"https://espn.com/nba", "-server", ""},
			expected: []string{"-server", "", "https://espn.com/nba"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-server", "", "https://espn.com/nba"},
			expected: []string{"-server", "", "https://espn.com/nba"},
		},
		{
			name:     "urls only returns unchanged",
			args:     []string{"https://espn.com/nba", "https://cnn.com/politics"},
			expected: []string{"https://espn.com/nba", "https://cnn.com/politics"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"https://a.com", "https://b.com", "-output", "json"},
			expected: []string{"-output", "json", "https://a.com", "https://b.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReadURLLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single url", "https://espn.com/nba\n", []string{"https://espn.com/nba"}},
		{
			"blanks and comments skipped",
			"# browser export\n\nhttps://espn.com/nba\n   \nhttps://cnn.com/us\n",
			[]string{"https://espn.com/nba", "https://cnn.com/us"},
		},
		{
			"whitespace trimmed",
			"  https://espn.com/nba  \n",
			[]string{"https://espn.com/nba"},
		},
		{
			"no trailing newline",
			"https://espn.com/nba",
			[]string{"https://espn.com/nba"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readURLLines(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("readURLLines: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("readURLLines(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in     string
		want   cli.OutputFormat
		wantOK bool
	}{
		{"text", cli.OutputText, true},
		{"json", cli.OutputJSON, true},
		{"yaml", cli.OutputText, false},
		{"", cli.OutputText, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseOutputFormat(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("parseOutputFormat(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8090
storage:
  database_path: "./test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "./test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
}
