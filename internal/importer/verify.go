package importer

import (
	"fmt"
	"image"
	"sort"

	"github.com/piwi3910/spritepack/internal/model"
)

// VerifyRecords checks imported records against a sheet of the given size:
// every rectangle must lie inside the sheet and no two may overlap. It
// returns one message per problem, ordered by frame index.
func VerifyRecords(records []model.Record, sheetW, sheetH int) []string {
	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	var problems []string
	sheet := image.Rect(0, 0, sheetW, sheetH)
	for i, r := range sorted {
		rect := r.Rect()
		if !rect.In(sheet) {
			problems = append(problems, fmt.Sprintf("frame %d at %v lies outside the %dx%d sheet", r.Index, rect, sheetW, sheetH))
		}
		for _, o := range sorted[i+1:] {
			if rect.Overlaps(o.Rect()) {
				problems = append(problems, fmt.Sprintf("frame %d overlaps frame %d", r.Index, o.Index))
			}
		}
	}
	return problems
}
