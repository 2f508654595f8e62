package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	layoutio "github.com/shawnoster/bookcover-wallpaper/pkg/io"
	"github.com/shawnoster/bookcover-wallpaper/pkg/masonry"
)

// run executes the root command with args and returns stdout.
// A config file pointing the cache into a temp dir is always passed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgPath := writeConfig(t, "")
	return runWithConfig(t, cfgPath, args...)
}

func runWithConfig(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out, errOut, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// writeConfig writes a config file whose cache lives under a temp dir,
// followed by extra TOML lines.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("cache_dir = '%s'\n%s", filepath.Join(dir, "cache"), extra)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeCovers(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := range n {
		img := image.NewNRGBA(image.Rect(0, 0, 40, 60))
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p], img.Pix[p+3] = uint8(40*i), 0xff
		}
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("Book %02d.png", i)))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}
	return dir
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	want := []string{"cache", "completion", "config", "generate", "layout", "serve"}
	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	for _, name := range want {
		found := false
		for _, g := range got {
			if g == name {
				found = true
			}
		}
		if !found {
			t.Errorf("missing subcommand %q (have %v)", name, got)
		}
	}

	for _, name := range []string{"verbose", "config"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent flag --%s", name)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, appName) {
		t.Errorf("version output %q missing %q", out, appName)
	}
}

func TestGenerate(t *testing.T) {
	covers := writeCovers(t, 5)
	output := filepath.Join(t.TempDir(), "wall.png")

	out, err := run(t, "generate",
		"--path", covers, "-o", output,
		"--width", "320", "--height", "200", "--gap", "2")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "Wallpaper generated") || !strings.Contains(out, output) {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "5 covers") {
		t.Errorf("output missing cover count:\n%s", out)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || cfg.Width != 320 || cfg.Height != 200 {
		t.Errorf("output = %s %dx%d, want png 320x200", format, cfg.Width, cfg.Height)
	}
}

func TestGenerateJPEGFromExtension(t *testing.T) {
	covers := writeCovers(t, 3)
	output := filepath.Join(t.TempDir(), "wall.jpg")

	if _, err := run(t, "generate", "--path", covers, "-o", output, "--width", "120", "--height", "90", "--no-cache"); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, format, err := image.DecodeConfig(f); err != nil || format != "jpeg" {
		t.Errorf("format = %q, %v; want jpeg", format, err)
	}
}

func TestGenerateUsesConfig(t *testing.T) {
	covers := writeCovers(t, 2)
	output := filepath.Join(t.TempDir(), "configured.png")
	cfgPath := writeConfig(t, fmt.Sprintf("width = 100\nheight = 80\noutput = '%s'\n\n[source]\npath = '%s'\n", output, covers))

	if _, err := runWithConfig(t, cfgPath, "generate", "--height", "50"); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("size = %dx%d, want 100x50 (config width, flag height)", cfg.Width, cfg.Height)
	}
}

func TestGenerateFromLayout(t *testing.T) {
	dir := t.TempDir()
	layoutPath := filepath.Join(dir, "layout.json")
	if _, err := run(t, "layout", "--count", "5", "--width", "240", "--height", "160", "--gap", "2", "-o", layoutPath); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		covers     int
		wantCovers string
	}{
		{"fewer covers than cells", 3, "3 covers"},
		{"more covers than cells", 7, "5 covers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "wall.png")
			out, err := run(t, "generate",
				"--path", writeCovers(t, tt.covers), "--layout", layoutPath, "-o", output,
				"--width", "999", "--height", "999")
			if err != nil {
				t.Fatalf("generate --layout: %v", err)
			}
			if !strings.Contains(out, tt.wantCovers) {
				t.Errorf("output missing %q:\n%s", tt.wantCovers, out)
			}

			f, err := os.Open(output)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			cfg, _, err := image.DecodeConfig(f)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Width != 240 || cfg.Height != 160 {
				t.Errorf("size = %dx%d, want the layout canvas 240x160", cfg.Width, cfg.Height)
			}
		})
	}
}

func TestGenerateErrors(t *testing.T) {
	empty := t.TempDir()
	covers := writeCovers(t, 1)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"no covers", []string{"--path", empty, "-o", filepath.Join(empty, "w.png")}, errors.ErrCodeNoCovers},
		{"bad extension", []string{"--path", covers, "-o", filepath.Join(empty, "w.bmp")}, errors.ErrCodeInvalidFormat},
		{"no path", []string{"-o", filepath.Join(empty, "w.png")}, errors.ErrCodeInvalidSource},
		{"bad color", []string{"--path", covers, "--background", "nope", "-o", filepath.Join(empty, "w.png")}, errors.ErrCodeInvalidColor},
		{"missing layout", []string{"--path", covers, "--layout", filepath.Join(empty, "none.json"), "-o", filepath.Join(empty, "w.png")}, errors.ErrCodeNotFound},
		{"watch with layout", []string{"--path", covers, "--layout", filepath.Join(empty, "l.json"), "--watch", "-o", filepath.Join(empty, "w.png")}, errors.ErrCodeInvalidInput},
		{"watch remote", []string{"--source", "search", "--query", "dune", "--watch", "-o", filepath.Join(empty, "w.png")}, errors.ErrCodeInvalidSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"generate"}, tt.args...)...)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLayoutJSON(t *testing.T) {
	out, err := run(t, "layout", "--count", "12", "--json")
	if err != nil {
		t.Fatal(err)
	}

	var l masonry.Layout
	if err := json.Unmarshal([]byte(out), &l); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(l.Placements) != 12 {
		t.Fatalf("placements = %d, want 12", len(l.Placements))
	}
	if p := l.Placements[0]; p.X != 4 || p.Y != 4 {
		t.Errorf("first placement at (%d,%d), want (4,4)", p.X, p.Y)
	}
	if l.Placements[0].Ref != "cover-1" {
		t.Errorf("first ref = %q", l.Placements[0].Ref)
	}
}

func TestLayoutTable(t *testing.T) {
	out, err := run(t, "layout", "--count", "3", "--columns", "3", "--width", "800", "--height", "600", "--gap", "0")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Columns", "3", "266x399", "cover-3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLayoutExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	out, err := run(t, "layout", "--count", "5", "-o", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Layout exported") {
		t.Errorf("unexpected output:\n%s", out)
	}

	l, err := layoutio.ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Placements) != 5 {
		t.Errorf("placements = %d, want 5", len(l.Placements))
	}
}

func TestLayoutInvalid(t *testing.T) {
	if _, err := run(t, "layout", "--aspect", "2-3"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
	if _, err := run(t, "layout", "--count=-1"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestConfigShow(t *testing.T) {
	cfgPath := writeConfig(t, "gap = 9\nbackground = '#102030'\n")
	out, err := runWithConfig(t, cfgPath, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"gap = 9", `background = "#102030"`, `timeout = "30s"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigPathCommand(t *testing.T) {
	cfgPath := writeConfig(t, "")
	out, err := runWithConfig(t, cfgPath, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != cfgPath {
		t.Errorf("config path = %q, want %q", out, cfgPath)
	}
}

func TestConfigInvalid(t *testing.T) {
	cfgPath := writeConfig(t, "colums = 3\n")
	if _, err := runWithConfig(t, cfgPath, "layout"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestCacheClear(t *testing.T) {
	covers := writeCovers(t, 2)
	cfgPath := writeConfig(t, "")
	output := filepath.Join(t.TempDir(), "wall.png")

	if _, err := runWithConfig(t, cfgPath, "generate", "--path", covers, "-o", output, "--width", "100", "--height", "80"); err != nil {
		t.Fatal(err)
	}

	out, err := runWithConfig(t, cfgPath, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cache cleared") {
		t.Errorf("first clear output = %q", out)
	}

	out, err = runWithConfig(t, cfgPath, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("second clear output = %q", out)
	}
}

func TestCachePath(t *testing.T) {
	cfgPath := writeConfig(t, "")
	out, err := runWithConfig(t, cfgPath, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(filepath.Dir(cfgPath), "cache")
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCompletion(t *testing.T) {
	out, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion does not mention the binary")
	}
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wall.png")
	if err := writeOutput(path, []byte("data")); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "data" {
		t.Fatalf("ReadFile = %q, %v", got, err)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}
