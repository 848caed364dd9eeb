// Package importer discovers frame sequences on disk and reads metadata
// files back. Metadata import supports automatic delimiter detection,
// flexible column mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/spritepack/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of a metadata import.
type ImportResult struct {
	Records  []model.Record
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
// A role of -1 is absent.
type ColumnMapping struct {
	Index   int
	X       int
	Y       int
	Width   int
	Height  int
	AnchorX int
	AnchorY int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"index":    {"index", "idx", "frame", "#", "n"},
	"x":        {"x", "left"},
	"y":        {"y", "top"},
	"width":    {"width", "w"},
	"height":   {"height", "h"},
	"anchor_x": {"anchor x", "anchorx", "anchor_x", "ax"},
	"anchor_y": {"anchor y", "anchory", "anchor_y", "ay"},
}

// positionalMapping is the layout of a metadata file without a header:
// x,y,width,height,anchorX,anchorY with the frame index given by line order.
var positionalMapping = ColumnMapping{Index: -1, X: 0, Y: 1, Width: 2, Height: 3, AnchorX: 4, AnchorY: 5}

// delimiterNames describes the delimiters DetectCSVDelimiter tries, in
// order of preference.
var delimiterNames = []struct {
	r    rune
	name string
}{
	{',', "comma"},
	{';', "semicolon"},
	{'\t', "tab"},
	{'|', "pipe"},
}

// readCSV reads every row of r, tolerating stray quotes and ragged rows.
func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// DetectCSVDelimiter picks the delimiter that splits data into rows of a
// consistent width of at least two columns. Comma wins ties.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, d := range delimiterNames {
		rows, err := readCSV(bytes.NewReader(data), d.r)
		if err != nil || len(rows) == 0 || len(rows[0]) < 2 {
			continue
		}
		width := len(rows[0])
		consistent := 0
		for _, row := range rows {
			if len(row) == width {
				consistent++
			}
		}
		if score := consistent*10 + width; score > bestScore {
			best, bestScore = d.r, score
		}
	}
	return best
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// metadata layout and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Index: -1, X: -1, Y: -1, Width: -1, Height: -1, AnchorX: -1, AnchorY: -1}
	roles := map[string]*int{
		"index":    &mapping.Index,
		"x":        &mapping.X,
		"y":        &mapping.Y,
		"width":    &mapping.Width,
		"height":   &mapping.Height,
		"anchor_x": &mapping.AnchorX,
		"anchor_y": &mapping.AnchorY,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if col := roles[role]; *col == -1 {
						*col = i
					}
				}
			}
		}
	}

	if !isHeader {
		return positionalMapping, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseInt(row []string, col int, name, rowLabel string) (int, string) {
	s := getCell(row, col)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Spreadsheets may store integers as "12.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, s)
		}
		v = int(f)
	}
	return v, ""
}

// parseRow extracts a Record from a row using the given column mapping.
// Returns the record, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, ordinal int) (model.Record, string, string) {
	rec := model.Record{Index: ordinal}

	if mapping.Index >= 0 {
		idx, errMsg := parseInt(row, mapping.Index, "index", rowLabel)
		if errMsg != "" {
			return model.Record{}, errMsg, ""
		}
		rec.Index = idx
	}

	fields := []struct {
		col  int
		name string
		dst  *int
	}{
		{mapping.X, "x", &rec.X},
		{mapping.Y, "y", &rec.Y},
		{mapping.Width, "width", &rec.Width},
		{mapping.Height, "height", &rec.Height},
	}
	for _, f := range fields {
		v, errMsg := parseInt(row, f.col, f.name, rowLabel)
		if errMsg != "" {
			return model.Record{}, errMsg, ""
		}
		*f.dst = v
	}

	if rec.X < 0 || rec.Y < 0 {
		return model.Record{}, fmt.Sprintf("%s: Position must not be negative", rowLabel), ""
	}
	if rec.Width <= 0 || rec.Height <= 0 {
		return model.Record{}, fmt.Sprintf("%s: Width and height must be positive", rowLabel), ""
	}

	var warning string
	for _, a := range []struct {
		col  int
		name string
		dst  *float64
	}{
		{mapping.AnchorX, "anchor x", &rec.AnchorX},
		{mapping.AnchorY, "anchor y", &rec.AnchorY},
	} {
		s := getCell(row, a.col)
		if s == "" {
			warning = fmt.Sprintf("%s: Missing anchor, defaulting to 0", rowLabel)
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Record{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, a.name, s), ""
		}
		*a.dst = v
	}

	return rec, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportMetadataCSV imports records from a metadata CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportMetadataCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	for _, d := range delimiterNames[1:] {
		if d.r == delimiter {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", d.name))
		}
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportMetadataCSVFromReader imports records from a CSV reader with a
// specific delimiter.
func ImportMetadataCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	records, err := readCSV(reader, delimiter)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}

	return importFromRows(records, "Line", nil)
}

// ImportMetadataExcel imports records from a workbook. It reads the
// "Frames" sheet when present and the first sheet otherwise.
func ImportMetadataExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}
	sheet := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, "Frames") {
			sheet = name
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// ImportMetadata picks the CSV or Excel importer by file extension.
func ImportMetadata(path string) ImportResult {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm") {
		return ImportMetadataExcel(path)
	}
	return ImportMetadataCSV(path)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		for _, req := range []struct {
			col  int
			name string
		}{{mapping.X, "X"}, {mapping.Y, "Y"}, {mapping.Width, "Width"}, {mapping.Height, "Height"}} {
			if req.col == -1 {
				missing = append(missing, req.name)
			}
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if _, err := strconv.ParseFloat(getCell(rows[0], 0), 64); err != nil {
		// Unrecognized header: skip it but use positional mapping.
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	}

	seen := make(map[int]bool)
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		rec, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Records))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		if seen[rec.Index] {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Duplicate frame index %d", rowLabel, rec.Index))
			continue
		}
		seen[rec.Index] = true

		result.Records = append(result.Records, rec)
	}

	if len(result.Records) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}
	return result
}
