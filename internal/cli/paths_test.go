package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("cacheDir() = %q, should be under home %q", dir, home)
	}

	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestLayoutPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"flows.yaml", "flows.layout.json"},
		{"data/trade.json", "data/trade.layout.json"},
		{"noext", "noext.layout.json"},
	}
	for _, tt := range tests {
		if got := layoutPath(tt.input); got != tt.want {
			t.Errorf("layoutPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		output string
		format string
		multi  bool
		want   string
	}{
		{"derived", "flows.yaml", "", "svg", false, "flows.svg"},
		{"explicit single", "flows.yaml", "map.svg", "svg", false, "map.svg"},
		{"explicit multi", "flows.yaml", "map.svg", "dot", true, "map.dot"},
		{"layout input", "flows.layout.json", "", "dot", false, "flows.layout.dot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := artifactPath(tt.input, tt.output, tt.format, tt.multi); got != tt.want {
				t.Errorf("artifactPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"dot", []string{"dot"}},
		{"SVG, dot,", []string{"svg", "dot"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
