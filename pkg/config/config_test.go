package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/stageboard/pkg/board"
	"github.com/vanderheijden86/stageboard/pkg/viewmodel"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Board.Progress != board.DefaultProgress {
		t.Errorf("expected default progress bar, got %+v", cfg.Board.Progress)
	}
	if cfg.Board.Duplicates != "suffix" {
		t.Errorf("expected duplicates 'suffix', got %q", cfg.Board.Duplicates)
	}
	if cfg.Server.Port != 8585 {
		t.Errorf("expected port 8585, got %d", cfg.Server.Port)
	}
	if !cfg.MouseEnabled() || !cfg.AltScreen() || !cfg.WatchEnabled() {
		t.Error("expected ui toggles to default on")
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Board.ProgressMode != "fixed" {
		t.Errorf("expected default config, got progress mode %q", cfg.Board.ProgressMode)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
sources:
  - name: weekly
    path: ~/reports/weekly.xlsx
  - name: live
    path: /var/lib/stages.db

board:
  progress_mode: share
  duplicates: reject
  connectors: false
  viewport:
    width: 1600
    height: 900

source:
  default: live

server:
  port: 9000

ui:
  mouse: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if len(cfg.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(cfg.Sources))
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "reports/weekly.xlsx"); cfg.Sources[0].Path != want {
		t.Errorf("expected expanded path %q, got %q", want, cfg.Sources[0].Path)
	}
	if cfg.Board.Progress != board.DefaultProgress {
		t.Errorf("missing progress block should keep defaults, got %+v", cfg.Board.Progress)
	}
	if cfg.Server.Addr != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.MouseEnabled() {
		t.Error("expected mouse disabled")
	}
	if got := cfg.ResolveSource(""); got != "/var/lib/stages.db" {
		t.Errorf("ResolveSource default = %q", got)
	}
	if got := cfg.Viewport(); got.Width != 1600 || got.Height != 900 {
		t.Errorf("viewport = %+v", got)
	}

	vmOpts, err := cfg.ViewModelOptions()
	if err != nil || vmOpts.Duplicates != viewmodel.DuplicateReject {
		t.Errorf("ViewModelOptions = %+v, %v", vmOpts, err)
	}
	rOpts, err := cfg.RenderOptions()
	if err != nil {
		t.Fatal(err)
	}
	if rOpts.ProgressMode != board.ProgressShare || rOpts.DrawConnectors {
		t.Errorf("RenderOptions = %+v", rOpts)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestInvalidBoardValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Board.Duplicates = "merge"
	if _, err := cfg.ViewModelOptions(); err == nil {
		t.Error("expected error for unknown duplicate policy")
	}
	cfg = DefaultConfig()
	cfg.Board.ProgressMode = "pie"
	if _, err := cfg.RenderOptions(); err == nil {
		t.Error("expected error for unknown progress mode")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Sources = []Source{{Name: "s1", Path: "/data/s1.json"}}
	cfg.Board.Progress = board.ProgressBar{CurrentValue: 70, Max: 100, WidthPercent: 70}
	cfg.Server.Port = 7001

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}

	if len(loaded.Sources) != 1 || loaded.Sources[0].Name != "s1" {
		t.Errorf("sources = %+v", loaded.Sources)
	}
	if loaded.Board.Progress.WidthPercent != 70 {
		t.Errorf("expected width 70, got %v", loaded.Board.Progress.WidthPercent)
	}
	if loaded.ListenAddr() != "127.0.0.1:7001" {
		t.Errorf("listen addr = %q", loaded.ListenAddr())
	}
}

func TestFindSource(t *testing.T) {
	cfg := Config{
		Sources: []Source{
			{Name: "alpha", Path: "/a"},
			{Name: "Beta", Path: "/b"},
		},
	}

	s := cfg.FindSource("alpha")
	if s == nil || s.Name != "alpha" {
		t.Error("expected to find 'alpha'")
	}

	// Case-insensitive
	s = cfg.FindSource("BETA")
	if s == nil || s.Name != "Beta" {
		t.Error("expected to find 'Beta' case-insensitively")
	}

	if cfg.FindSource("nonexistent") != nil {
		t.Error("expected nil for nonexistent source")
	}
}

func TestResolveSource(t *testing.T) {
	cfg := Config{
		Sources: []Source{{Name: "alpha", Path: "/a.json"}},
		Source:  SourceConfig{Path: "/configured.db"},
	}

	tests := []struct {
		arg  string
		want string
	}{
		{"alpha", "/a.json"},
		{"./local.xlsx", "./local.xlsx"},
		{"", "/configured.db"},
	}
	for _, tt := range tests {
		if got := cfg.ResolveSource(tt.arg); got != tt.want {
			t.Errorf("ResolveSource(%q) = %q, want %q", tt.arg, got, tt.want)
		}
	}

	if got := (Config{}).ResolveSource(""); got != "" {
		t.Errorf("empty config should resolve to scan mode, got %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"~/", filepath.Join(home, "")},
		{"/absolute", "/absolute"},
		{"relative", "relative"},
	}

	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.expected {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestConfigDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got := ConfigDir()
	expected := filepath.Join(dir, "stageboard")
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
	if ConfigPath() != filepath.Join(expected, "config.yaml") {
		t.Errorf("unexpected config path %q", ConfigPath())
	}
}

func TestLoadFrom_ProgressBar(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want board.ProgressBar
	}{
		{
			name: "empty bars",
			yaml: "board:\n  progress:\n    current_value: 0\n    min: 0\n    max: 0\n    width_percent: 0\n",
			want: board.ProgressBar{},
		},
		{
			name: "partial keeps defaults",
			yaml: "board:\n  progress:\n    width_percent: 0\n",
			want: board.ProgressBar{CurrentValue: 40, Max: 100},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadFrom(path)
			if err != nil {
				t.Fatal(err)
			}
			opts, err := cfg.RenderOptions()
			if err != nil {
				t.Fatal(err)
			}
			if opts.Progress == nil || *opts.Progress != tc.want {
				t.Errorf("progress = %+v, want %+v", opts.Progress, tc.want)
			}
		})
	}
}
