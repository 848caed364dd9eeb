package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	// Frame decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNoSequence is returned when no frame of a sequence can be found.
var ErrNoSequence = errors.New("no numbered frames found")

// SupportedExtensions lists the frame formats that can be decoded.
var SupportedExtensions = []string{".png", ".gif", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

// IsSupported reports whether path has a decodable image extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// SequenceFile is one frame file and its parsed sequence index.
type SequenceFile struct {
	Path  string
	Index int
}

// Sequence is the set of numbered files sharing one base name.
type Sequence struct {
	Dir      string
	Base     string // file name without extension and trailing digits
	Ext      string
	Files    []SequenceFile // ascending index
	Warnings []string
}

// BaseName returns the file name of path without its extension and without
// the trailing run of digits: "walk0007.png" gives "walk".
func BaseName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.TrimRight(name, "0123456789")
}

// FrameIndex parses the sequence index of name, which must be base followed
// by at least one digit and then ext (compared case-insensitively).
func FrameIndex(name, base, ext string) (int, bool) {
	if !strings.HasPrefix(name, base) || len(name) < len(base)+len(ext) {
		return 0, false
	}
	suffix := name[len(name)-len(ext):]
	if !strings.EqualFold(suffix, ext) {
		return 0, false
	}
	digits := name[len(base) : len(name)-len(ext)]
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, false
	}
	idx, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return idx, true
}

// ScanSequence finds every file in the directory of selected that shares
// its base name and extension and ends in a frame number. Files with a
// repeated index (e.g. "walk1.png" and "walk01.png") keep the first in
// name order and are reported in Warnings.
func ScanSequence(selected string) (Sequence, error) {
	seq := Sequence{
		Dir:  filepath.Dir(selected),
		Base: BaseName(selected),
		Ext:  filepath.Ext(selected),
	}
	if seq.Ext == "" {
		return seq, fmt.Errorf("%s has no file extension: %w", selected, ErrNoSequence)
	}

	entries, err := os.ReadDir(seq.Dir)
	if err != nil {
		return seq, fmt.Errorf("failed to list %s: %w", seq.Dir, err)
	}

	byIndex := make(map[int]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		idx, ok := FrameIndex(e.Name(), seq.Base, seq.Ext)
		if !ok {
			continue
		}
		path := filepath.Join(seq.Dir, e.Name())
		if prev, dup := byIndex[idx]; dup {
			seq.Warnings = append(seq.Warnings,
				fmt.Sprintf("%s repeats frame %d of %s, skipped", e.Name(), idx, filepath.Base(prev)))
			continue
		}
		byIndex[idx] = path
		seq.Files = append(seq.Files, SequenceFile{Path: path, Index: idx})
	}

	if len(seq.Files) == 0 {
		return seq, fmt.Errorf("%s: %w", selected, ErrNoSequence)
	}
	sort.Slice(seq.Files, func(i, j int) bool {
		return seq.Files[i].Index < seq.Files[j].Index
	})
	return seq, nil
}

// DefaultSheetName suggests the output sheet for a sequence:
// <dir>/<base>_spritesheet.png.
func DefaultSheetName(selected string) string {
	return filepath.Join(filepath.Dir(selected), BaseName(selected)+"_spritesheet.png")
}

// EnsurePNG appends ".png" unless path already ends with it.
func EnsurePNG(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return path
	}
	return path + ".png"
}
