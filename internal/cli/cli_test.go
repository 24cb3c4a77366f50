package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/ghgraph/pkg/cache"
	"github.com/matzehuels/ghgraph/pkg/config"
	ghErrors "github.com/matzehuels/ghgraph/pkg/errors"
	"github.com/matzehuels/ghgraph/pkg/model"
	"github.com/matzehuels/ghgraph/pkg/render/nodelink"
)

// isolate points every config and cache location at a temp dir and clears
// the connection environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, k := range []string{"NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD", "NEO4J_DATABASE", config.EnvRedisURL} {
		t.Setenv(k, "")
	}
	captureStdout(t)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, log.InfoLevel).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"cache", "clusters", "completion", "extract", "insight", "render"} {
		found := false
		for _, n := range names {
			found = found || n == want
		}
		if !found {
			t.Errorf("missing command %q in %v", want, names)
		}
	}
	for _, flag := range []string{"verbose", "config", "no-cache"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    []nodelink.Format
		wantErr bool
	}{
		{"", []nodelink.Format{nodelink.FormatPNG}, false},
		{"png", []nodelink.Format{nodelink.FormatPNG}, false},
		{"svg, dot,", []nodelink.Format{nodelink.FormatSVG, nodelink.FormatDOT}, false},
		{"png,gif", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFormats(tt.in)
			if tt.wantErr {
				if !ghErrors.Is(err, ghErrors.ErrCodeInvalidFormat) {
					t.Errorf("parseFormats(%q) error = %v, want INVALID_FORMAT", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseFormats(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseTypes(t *testing.T) {
	got, err := parseTypes("user, repo")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]model.EntityType{model.User, model.Repo}, got); diff != "" {
		t.Errorf("parseTypes mismatch (-want +got):\n%s", diff)
	}
	if got, _ := parseTypes(""); got != nil {
		t.Errorf("parseTypes(\"\") = %v, want nil", got)
	}
	if _, err := parseTypes("user,team"); !ghErrors.Is(err, ghErrors.ErrCodeInvalidInput) {
		t.Errorf("parseTypes(team) = %v, want INVALID_INPUT", err)
	}
}

func TestRenderOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Width = 800
	cfg.Render.Seed = 7
	off := false
	cfg.Render.Declutter = &off

	opts, err := renderOptions(cfg, "", 0, 600, 0)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Width != 800 || opts.Height != 600 || opts.Seed != 7 {
		t.Errorf("size/seed = %dx%d/%d", opts.Width, opts.Height, opts.Seed)
	}
	if opts.Capabilities.Declutter {
		t.Error("config should switch declutter off")
	}
	if diff := cmp.Diff([]nodelink.Format{nodelink.FormatPNG}, opts.Formats); diff != "" {
		t.Errorf("formats from config (-want +got):\n%s", diff)
	}

	opts, err = renderOptions(cfg, "svg", 1024, 0, 42)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Width != 1024 || opts.Seed != 42 || opts.Formats[0] != nodelink.FormatSVG {
		t.Errorf("flags should override config: %+v", opts)
	}
}

func TestRowsFormatFromPath(t *testing.T) {
	for path, want := range map[string]string{
		"":             rowsJSON,
		"rows.json":    rowsJSON,
		"out/ROWS.CSV": rowsCSV,
	} {
		if got := rowsFormatFromPath(path); got != want {
			t.Errorf("rowsFormatFromPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestFixedCompletions(t *testing.T) {
	complete := fixedCompletions("png", "svg")
	got, _ := complete(nil, nil, "png,s")
	if diff := cmp.Diff([]string{"png,png", "png,svg"}, got); diff != "" {
		t.Errorf("completions (-want +got):\n%s", diff)
	}
}

func TestLoadExploration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.json")
	if err := os.WriteFile(path, []byte(`{"seeds":["epfl"],"visited":["alice"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	x, err := loadExploration(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"epfl"}, x.Seeds); diff != "" {
		t.Errorf("seeds (-want +got):\n%s", diff)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(bad, []byte("{"), 0o644)
	if _, err := loadExploration(bad); !ghErrors.Is(err, ghErrors.ErrCodeInvalidInput) {
		t.Errorf("loadExploration(bad) = %v, want INVALID_INPUT", err)
	}
}

func TestExtractRequiresDatabase(t *testing.T) {
	isolate(t)
	_, err := execute(t, "extract")
	if !ghErrors.Is(err, ghErrors.ErrCodeInvalidConfig) {
		t.Errorf("extract without NEO4J_URI = %v, want INVALID_CONFIG", err)
	}
}

func TestExtractRejectsFormat(t *testing.T) {
	isolate(t)
	_, err := execute(t, "extract", "--format", "xml")
	if !ghErrors.Is(err, ghErrors.ErrCodeInvalidFormat) {
		t.Errorf("extract --format xml = %v, want INVALID_FORMAT", err)
	}
}

func TestCachePath(t *testing.T) {
	dir := isolate(t)
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "cache", "ghgraph"); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCacheClear(t *testing.T) {
	dir := isolate(t)
	opts := cache.Options{Backend: cache.BackendFile, Dir: filepath.Join(dir, "cache", "ghgraph")}
	fc, err := cache.NewFileCache(opts.Dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := fc.Get(ctx, "k"); hit {
		t.Error("entry survived cache clear")
	}
}

func TestInsightCommand(t *testing.T) {
	dir := isolate(t)
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	cfgPath := filepath.Join(dir, "ghgraph.toml")
	body := "[insight]\nbase_url = \"" + server.URL + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "--config", cfgPath, "--no-cache", "insight", "nobody/nothing", "--dir", filepath.Join(dir, "out"))
	if !ghErrors.Is(err, ghErrors.ErrCodeNotFound) {
		t.Errorf("insight on unknown repo = %v, want NOT_FOUND", err)
	}

	if _, err := execute(t, "insight", "not-a-slug"); !ghErrors.Is(err, ghErrors.ErrCodeInvalidInput) {
		t.Errorf("insight with bad slug = %v, want INVALID_INPUT", err)
	}
}

func testClusters() []nodelink.ClusterInfo {
	return []nodelink.ClusterInfo{
		{Index: 1, Nodes: 5, Edges: 4, Members: []string{"alice", "bob", "epfl", "epfl/dlc", "carol"}},
		{Index: 2, Nodes: 2, Edges: 1, Members: []string{"zed", "zed/dotfiles"}},
		{Index: 3, Nodes: 1, Members: []string{"lonely"}},
	}
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEscape}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestClusterListModel(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want []int
		quit bool
	}{
		{"cursor", []string{"j", "enter"}, []int{2}, false},
		{"bounded", []string{"j", "j", "j", "k", "enter"}, []int{2}, false},
		{"marked", []string{" ", "j", "j", " ", "enter"}, []int{1, 3}, false},
		{"unmark", []string{" ", " ", "j", "enter"}, []int{2}, false},
		{"all", []string{"a", "enter"}, []int{1, 2, 3}, false},
		{"quit", []string{"j", "q"}, nil, true},
		{"escape", []string{"esc"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(NewClusterListModel(testClusters()), tt.keys...).(ClusterListModel)
			if m.Quit != tt.quit {
				t.Errorf("Quit = %v, want %v", m.Quit, tt.quit)
			}
			if diff := cmp.Diff(tt.want, m.Selected); diff != "" {
				t.Errorf("Selected (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClusterListModelView(t *testing.T) {
	m := press(NewClusterListModel(testClusters()), "j", " ").(ClusterListModel)
	view := m.View()
	for _, want := range []string{"Select Clusters", "alice, bob, epfl, epfl/dlc, +1 more", "zed/dotfiles", "[2/3] 1 marked"} {
		if !strings.Contains(view, want) {
			t.Errorf("view misses %q:\n%s", want, view)
		}
	}

	empty := NewClusterListModel(nil)
	if !strings.Contains(empty.View(), "no clusters") {
		t.Error("empty picker should say so")
	}
	if m := press(empty, "enter").(ClusterListModel); !m.Quit {
		t.Error("enter on an empty picker should quit")
	}
}
