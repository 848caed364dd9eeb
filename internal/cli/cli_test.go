package cli

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/piwi3910/spritepack/internal/model"
	"github.com/piwi3910/spritepack/internal/project"
)

// testCLI returns a CLI whose preferences live in a temporary directory.
func testCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, &out, LogInfo)
	dir := t.TempDir()
	c.configPath = filepath.Join(dir, "config.json")
	c.presetsPath = filepath.Join(dir, "presets.json")
	return c, &out
}

func execute(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(append(args, "--config", c.configPath, "--presets", c.presetsPath))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

// writeFrames saves walk0001.png .. walk0003.png and returns the first path.
func writeFrames(t *testing.T, dir string) string {
	t.Helper()
	boxes := []image.Rectangle{
		image.Rect(2, 3, 12, 23),
		image.Rect(0, 0, 15, 15),
		image.Rect(4, 4, 12, 12),
	}
	for i, box := range boxes {
		canvas := image.NewNRGBA(image.Rect(0, 0, 24, 24))
		draw.Draw(canvas, box, &image.Uniform{C: color.NRGBA{R: 200, A: 255}}, image.Point{}, draw.Src)
		name := filepath.Join(dir, "walk000"+string(rune('1'+i))+".png")
		if err := imaging.Save(canvas, name); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(dir, "walk0001.png")
}

func TestPackCommand(t *testing.T) {
	c, out := testCLI(t)
	dir := t.TempDir()
	selected := writeFrames(t, dir)

	if err := execute(t, c, "pack", selected, "--in-memory", "--format", "xlsx,dxf", "--trials"); err != nil {
		t.Fatalf("pack failed: %v", err)
	}

	for _, name := range []string{
		"walk_spritesheet.png",
		"walk_spritesheet_metadata.csv",
		"walk_spritesheet_metadata.xlsx",
		"walk_spritesheet_layout.dxf",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if !strings.Contains(out.String(), "Height") {
		t.Errorf("expected trial table in output:\n%s", out.String())
	}

	cfg, err := project.LoadAppConfig(c.configPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.RecentSources) != 1 || cfg.RecentSources[0] != selected {
		t.Errorf("expected %s in recent sources, got %v", selected, cfg.RecentSources)
	}

	if err := execute(t, c, "verify", filepath.Join(dir, "walk_spritesheet.png")); err != nil {
		t.Errorf("verify failed on a fresh sheet: %v", err)
	}
	if err := execute(t, c, "verify", filepath.Join(dir, "walk_spritesheet.png"), filepath.Join(dir, "walk_spritesheet_metadata.xlsx")); err != nil {
		t.Errorf("verify failed on the workbook: %v", err)
	}
}

func TestPackCommandUnknownFormat(t *testing.T) {
	c, _ := testCLI(t)
	selected := writeFrames(t, t.TempDir())
	if err := execute(t, c, "pack", selected, "--format", "svg"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestVerifyCommandDetectsOverlap(t *testing.T) {
	c, out := testCLI(t)
	dir := t.TempDir()
	sheet := filepath.Join(dir, "sheet.png")
	if err := imaging.Save(imaging.New(20, 20, color.NRGBA{}), sheet); err != nil {
		t.Fatal(err)
	}
	meta := filepath.Join(dir, "sheet_metadata.csv")
	if err := os.WriteFile(meta, []byte("0,0,10,10,5.0,5.0\n5,5,10,10,5.0,5.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, c, "verify", sheet); err == nil {
		t.Fatal("expected verify to fail")
	}
	if !strings.Contains(out.String(), "frame 0 overlaps frame 1") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestCompareCommand(t *testing.T) {
	c, out := testCLI(t)
	selected := writeFrames(t, t.TempDir())

	if err := execute(t, c, "compare", selected); err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if !strings.Contains(out.String(), "Current Settings") {
		t.Errorf("expected the current scenario in output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Smallest sheet") {
		t.Errorf("expected a winner in output:\n%s", out.String())
	}
}

func TestConfigSetAndShow(t *testing.T) {
	c, out := testCLI(t)

	if err := execute(t, c, "config", "set", "step", "4"); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, c, "config", "set", "formats", "pdf, cards"); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, c, "config", "set", "bogus", "1"); err == nil {
		t.Error("expected an error for an unknown key")
	}

	cfg, err := project.LoadAppConfig(c.configPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultHeightStep != 4 {
		t.Errorf("expected step 4, got %d", cfg.DefaultHeightStep)
	}
	if strings.Join(cfg.ExtraFormats, ",") != "pdf,cards" {
		t.Errorf("expected formats pdf,cards, got %v", cfg.ExtraFormats)
	}

	out.Reset()
	if err := execute(t, c, "config", "show"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "pdf,cards") {
		t.Errorf("expected formats in output:\n%s", out.String())
	}
}

func TestConfigExportImport(t *testing.T) {
	c, _ := testCLI(t)
	if err := execute(t, c, "config", "set", "workers", "3"); err != nil {
		t.Fatal(err)
	}
	custom := []model.Preset{{Name: "tiny", Settings: model.PackSettings{HeightStep: 2}}}
	if err := project.SaveCustomPresets(c.presetsPath, custom); err != nil {
		t.Fatal(err)
	}

	backup := filepath.Join(t.TempDir(), "backup.json")
	if err := execute(t, c, "config", "export", backup); err != nil {
		t.Fatal(err)
	}

	restored, _ := testCLI(t)
	if err := execute(t, restored, "config", "import", backup); err != nil {
		t.Fatal(err)
	}
	cfg, err := project.LoadAppConfig(restored.configPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultWorkers != 3 {
		t.Errorf("expected workers 3, got %d", cfg.DefaultWorkers)
	}
	presets, err := project.LoadCustomPresets(restored.presetsPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(presets) != 1 || presets[0].Name != "tiny" {
		t.Errorf("expected preset tiny, got %+v", presets)
	}
}

func TestPresetsExportImport(t *testing.T) {
	c, out := testCLI(t)
	file := filepath.Join(t.TempDir(), "quick.json")

	if err := execute(t, c, "config", "presets", "export", "QUICK", file); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, c, "config", "presets", "import", file); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := execute(t, c, "config", "presets", "list"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "custom") {
		t.Errorf("expected the imported preset listed as custom:\n%s", out.String())
	}
}

func TestSearchFlagsResolve(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		cfg     model.AppConfig
		want    model.PackSettings
		wantErr bool
	}{
		{
			name: "config defaults",
			cfg:  model.AppConfig{DefaultHeightStep: 5, DefaultWorkers: 2},
			want: model.PackSettings{HeightStep: 5, Workers: 2},
		},
		{
			name: "preset then flag",
			args: []string{"--preset", "thorough", "--workers", "8"},
			cfg:  model.DefaultAppConfig(),
			want: model.PackSettings{HeightStep: 1, Workers: 8},
		},
		{
			name: "flags override config",
			args: []string{"--min-height", "40", "--max-height", "400", "--step", "7"},
			cfg:  model.DefaultAppConfig(),
			want: model.PackSettings{MinHeight: 40, MaxHeight: 400, HeightStep: 7, Workers: 1},
		},
		{
			name:    "unknown preset",
			args:    []string{"--preset", "nope"},
			cfg:     model.DefaultAppConfig(),
			wantErr: true,
		},
		{
			name:    "inverted bounds",
			args:    []string{"--min-height", "100", "--max-height", "50"},
			cfg:     model.DefaultAppConfig(),
			wantErr: true,
		},
		{
			name:    "negative workers",
			args:    []string{"--workers", "-1"},
			cfg:     model.DefaultAppConfig(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f searchFlags
			cmd := &cobra.Command{Use: "test"}
			f.register(cmd)
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			got, err := f.resolve(cmd, tt.cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    bool
	}{
		{"min-height", "12", false},
		{"min-height", "-1", true},
		{"step", "0", true},
		{"keep-staging", "true", false},
		{"keep-staging", "maybe", true},
		{"theme", "dark", false},
		{"theme", "neon", true},
		{"formats", "xlsx,svg", true},
	}
	for _, tt := range tests {
		cfg := model.DefaultAppConfig()
		err := setConfigValue(&cfg, tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("setConfigValue(%s, %s) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
		}
	}
}

func TestWorkersFlagCoversTrimAndSearch(t *testing.T) {
	var f searchFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)

	usage := cmd.Flags().Lookup("workers").Usage
	for _, want := range []string{"trimmed", "heights"} {
		if !strings.Contains(usage, want) {
			t.Errorf("workers flag usage %q does not mention %q", usage, want)
		}
	}
}

func TestSetConfigValueKeepsFloorBelowCeiling(t *testing.T) {
	cfg := model.DefaultAppConfig()
	if err := setConfigValue(&cfg, "max-height", "256"); err != nil {
		t.Fatal(err)
	}

	err := setConfigValue(&cfg, "min-height", "300")
	if !errors.Is(err, model.ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
	if cfg.DefaultMinHeight != 0 {
		t.Errorf("rejected value was stored: min height %d", cfg.DefaultMinHeight)
	}

	if err := setConfigValue(&cfg, "min-height", "128"); err != nil {
		t.Fatal(err)
	}
	if err := setConfigValue(&cfg, "max-height", "100"); err == nil {
		t.Error("lowering the ceiling below the floor should fail")
	}
	if err := setConfigValue(&cfg, "max-height", "0"); err != nil {
		t.Errorf("removing the ceiling should succeed: %v", err)
	}
}
