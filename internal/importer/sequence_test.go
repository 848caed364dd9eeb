package importer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"walk0007.png":         "walk",
		"/a/b/run_12.png":      "run_",
		"idle.png":             "idle",
		"0001.png":             "",
		"jump2x0003.webp":      "jump2x",
		"walk_spritesheet.png": "walk_spritesheet",
	}
	for in, want := range tests {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFrameIndex(t *testing.T) {
	tests := []struct {
		name, base, ext string
		want            int
		ok              bool
	}{
		{"walk0007.png", "walk", ".png", 7, true},
		{"walk12.PNG", "walk", ".png", 12, true},
		{"walk.png", "walk", ".png", 0, false},
		{"walk_spritesheet.png", "walk", ".png", 0, false},
		{"walk0007.gif", "walk", ".png", 0, false},
		{"run0007.png", "walk", ".png", 0, false},
		{"walk7a.png", "walk", ".png", 0, false},
	}
	for _, tt := range tests {
		got, ok := FrameIndex(tt.name, tt.base, tt.ext)
		if ok != tt.ok || got != tt.want {
			t.Errorf("FrameIndex(%q) = %d, %v; want %d, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestScanSequence(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"walk0010.png", "walk0002.png", "walk0001.png",
		"walk_spritesheet.png", "walk0003.gif", "run0001.png", "notes.txt")
	if err := os.Mkdir(filepath.Join(dir, "walk0004.png"), 0755); err != nil {
		t.Fatal(err)
	}

	seq, err := ScanSequence(filepath.Join(dir, "walk0002.png"))
	if err != nil {
		t.Fatalf("ScanSequence failed: %v", err)
	}
	if seq.Base != "walk" || seq.Ext != ".png" {
		t.Errorf("unexpected base/ext %q %q", seq.Base, seq.Ext)
	}
	want := []int{1, 2, 10}
	if len(seq.Files) != len(want) {
		t.Fatalf("expected %d files, got %d: %+v", len(want), len(seq.Files), seq.Files)
	}
	for i, f := range seq.Files {
		if f.Index != want[i] {
			t.Errorf("file %d: expected index %d, got %d", i, want[i], f.Index)
		}
	}
	if filepath.Base(seq.Files[2].Path) != "walk0010.png" {
		t.Errorf("unexpected path %s", seq.Files[2].Path)
	}
}

func TestScanSequence_DuplicateIndex(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "walk01.png", "walk1.png")

	seq, err := ScanSequence(filepath.Join(dir, "walk1.png"))
	if err != nil {
		t.Fatalf("ScanSequence failed: %v", err)
	}
	if len(seq.Files) != 1 || filepath.Base(seq.Files[0].Path) != "walk01.png" {
		t.Errorf("expected only walk01.png to be kept, got %+v", seq.Files)
	}
	if len(seq.Warnings) != 1 {
		t.Errorf("expected one duplicate warning, got %v", seq.Warnings)
	}
}

func TestScanSequence_NoFrames(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "idle.png")

	_, err := ScanSequence(filepath.Join(dir, "idle.png"))
	if !errors.Is(err, ErrNoSequence) {
		t.Errorf("expected ErrNoSequence, got %v", err)
	}

	_, err = ScanSequence(filepath.Join(dir, "noext"))
	if !errors.Is(err, ErrNoSequence) {
		t.Errorf("expected ErrNoSequence for a file without extension, got %v", err)
	}
}

func TestDefaultSheetName(t *testing.T) {
	got := DefaultSheetName(filepath.Join("art", "walk0003.png"))
	if want := filepath.Join("art", "walk_spritesheet.png"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestEnsurePNG(t *testing.T) {
	tests := map[string]string{
		"sheet":      "sheet.png",
		"sheet.png":  "sheet.png",
		"sheet.PNG":  "sheet.PNG",
		"sheet.webp": "sheet.webp.png",
	}
	for in, want := range tests {
		if got := EnsurePNG(in); got != want {
			t.Errorf("EnsurePNG(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("a.PNG") || !IsSupported("a.webp") {
		t.Error("expected png and webp to be supported")
	}
	if IsSupported("a.txt") {
		t.Error("txt must not be supported")
	}
}
