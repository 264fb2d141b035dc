package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/doctxt/internal/config"
	"github.com/hyperjump/doctxt/internal/testutil"
)

func TestSearchArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"quarterly revenue", "-limit", "5"},
			expected: []string{"-limit", "5", "quarterly revenue"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-limit", "5", "quarterly revenue"},
			expected: []string{"-limit", "5", "quarterly revenue"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"quarterly revenue"},
			expected: []string{"quarterly revenue"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "file then output flag",
			args:     []string{"deck.key", "-output", "json"},
			expected: []string{"-output", "json", "deck.key"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("searchArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"quarterly"}, "quarterly"},
		{"multiple words", []string{"board", "minutes"}, "board minutes"},
		{"single quoted phrase", []string{"board minutes"}, "board minutes"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestParseExtensions(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"pdf", []string{".pdf"}},
		{"PDF, .docx ,key", []string{".pdf", ".docx", ".key"}},
		{",,", nil},
	}
	for _, tt := range tests {
		got := parseExtensions(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseExtensions(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConvertFlagsApply(t *testing.T) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	cf := addConvertFlags(fs)
	if err := fs.Parse([]string{"-workers", "3", "-ext", "pdf,key", "-incremental", "-debug"}); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	if err := cf.apply(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Convert.Workers != 3 || !cfg.Convert.Incremental || !cfg.Debug {
		t.Errorf("flags not applied: %+v", cfg.Convert)
	}
	if !reflect.DeepEqual(cfg.Convert.Extensions, []string{".pdf", ".key"}) {
		t.Errorf("extensions = %v", cfg.Convert.Extensions)
	}

	fs = flag.NewFlagSet("convert", flag.ContinueOnError)
	cf = addConvertFlags(fs)
	if err := fs.Parse([]string{"-ext", "xlsx"}); err != nil {
		t.Fatal(err)
	}
	if err := cf.apply(config.Default()); err == nil {
		t.Error("unsupported extension: expected error")
	}
}

func TestResolveRoots(t *testing.T) {
	abs := func(p string) string {
		a, err := filepath.Abs(filepath.FromSlash(p))
		if err != nil {
			t.Fatal(err)
		}
		return a
	}
	cfg := config.Default()
	cfg.Convert.InputRoot = "/cfg/in"
	cfg.Convert.OutputRoot = "/cfg/out"

	tests := []struct {
		name    string
		args    []string
		cfg     *config.Config
		wantIn  string
		wantOut string
		wantErr bool
	}{
		{"from config", nil, cfg, abs("/cfg/in"), abs("/cfg/out"), false},
		{"input arg defaults output", []string{"/data/docs_not_txt"}, cfg, abs("/data/docs_not_txt"), abs("/data/txt_output"), false},
		{"both args", []string{"/a", "/b"}, cfg, abs("/a"), abs("/b"), false},
		{"no input", nil, config.Default(), "", "", true},
		{"too many args", []string{"/a", "/b", "/c"}, cfg, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out, err := resolveRoots(tt.args, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if in != tt.wantIn || out != tt.wantOut {
				t.Errorf("resolveRoots() = %q, %q; want %q, %q", in, out, tt.wantIn, tt.wantOut)
			}
		})
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
convert:
  workers: 6
storage:
  database_path: "./manifest.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if !cfg.Debug || cfg.Convert.Workers != 6 {
		t.Errorf("cwd config.yaml not used: %+v", cfg)
	}
}

func TestLoadConfig_defaultsWithoutConfigFile(t *testing.T) {
	if _, err := os.Stat(defaultConfigPath); err == nil {
		t.Skip("a system config exists at the default path")
	}
	chdir(t, t.TempDir())

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved path = %q, want empty for built-in defaults", resolved)
	}
	if cfg.Convert.Workers != 1 || cfg.Server.Port != 8080 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "custom.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
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

	if _, _, err := loadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("explicit missing path: expected error")
	}
}

func TestComponents_convertAndSearch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "docs_not_txt")
	testutil.WriteFile(t, filepath.Join(in, "minutes.docx"), testutil.DOCX(testutil.Paragraph("Board approved the budget")))
	testutil.WriteFile(t, filepath.Join(in, "slides", "kickoff.pptx"), testutil.PPTX([]string{testutil.TextShape("Kickoff agenda")}))

	cfg := config.Default()
	cfg.Storage.DatabasePath = filepath.Join(dir, "state", "manifest.db")
	cfg.Storage.IndexPath = filepath.Join(dir, "state", "bleve")
	cfg.Convert.Workers = 2

	components, err := initializeComponents(cfg, zap.NewNop(), true, true)
	if err != nil {
		t.Fatal(err)
	}
	defer components.Close()

	inRoot, outRoot, err := resolveRoots([]string{in}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	run, err := components.newConverter(cfg, zap.NewNop(), nil).ConvertTree(context.Background(), inRoot, outRoot)
	if err != nil {
		t.Fatal(err)
	}
	if run.Success != 2 {
		t.Errorf("run: %+v", run)
	}
	if _, err := os.Stat(filepath.Join(dir, "txt_output", "slides", "kickoff.txt")); err != nil {
		t.Errorf("mirrored output missing: %v", err)
	}

	resp, err := components.KeywordIndex.Search(context.Background(), "budget", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 1 || filepath.Base(resp.Hits[0].Path) != "minutes.docx" {
		t.Errorf("search hits: %+v", resp.Hits)
	}
}

func TestInitializeComponents_disabled(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.DatabasePath = filepath.Join(t.TempDir(), "unused.db")
	components, err := initializeComponents(cfg, zap.NewNop(), false, false)
	if err != nil {
		t.Fatal(err)
	}
	defer components.Close()
	if components.Manifest != nil || components.KeywordIndex != nil {
		t.Errorf("components should be disabled: %+v", components)
	}
	if _, err := os.Stat(cfg.Storage.DatabasePath); !os.IsNotExist(err) {
		t.Errorf("manifest file should not be created, stat err = %v", err)
	}
}
