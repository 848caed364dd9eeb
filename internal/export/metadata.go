package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/spritepack/internal/model"
)

// MetadataPath returns the metadata file that accompanies a sheet image:
// the sheet path without its .png extension plus "_metadata.csv".
func MetadataPath(sheetPath string) string {
	if ext := filepath.Ext(sheetPath); strings.EqualFold(ext, ".png") {
		sheetPath = strings.TrimSuffix(sheetPath, ext)
	}
	return sheetPath + "_metadata.csv"
}

// FormatAnchor renders an anchor coordinate in its shortest form, always
// with a decimal point ("32.0", "12.5", "-3.0").
func FormatAnchor(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// WriteMetadata writes one line per frame in ascending index order:
// x,y,width,height,anchorX,anchorY. There is no header row.
func WriteMetadata(w io.Writer, sheet model.Sheet) error {
	cw := csv.NewWriter(w)
	for _, r := range sheet.Records() {
		row := []string{
			strconv.Itoa(r.X),
			strconv.Itoa(r.Y),
			strconv.Itoa(r.Width),
			strconv.Itoa(r.Height),
			FormatAnchor(r.AnchorX),
			FormatAnchor(r.AnchorY),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write metadata for frame %d: %w", r.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportMetadata writes the metadata CSV to path, creating parent directories.
func ExportMetadata(path string, sheet model.Sheet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metadata file: %w", err)
	}
	if err := WriteMetadata(f, sheet); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close metadata file: %w", err)
	}
	return nil
}
