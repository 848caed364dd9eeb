package importer

import (
	"strings"
	"testing"

	"github.com/piwi3910/spritepack/internal/model"
)

func TestVerifyRecords_Valid(t *testing.T) {
	records := []model.Record{
		{Index: 1, X: 0, Y: 0, Width: 10, Height: 20},
		{Index: 2, X: 10, Y: 0, Width: 15, Height: 15},
		{Index: 3, X: 25, Y: 0, Width: 8, Height: 8},
	}
	if problems := VerifyRecords(records, 33, 20); len(problems) != 0 {
		t.Errorf("expected no problems, got %v", problems)
	}
}

func TestVerifyRecords_OutOfBounds(t *testing.T) {
	records := []model.Record{
		{Index: 1, X: 0, Y: 0, Width: 10, Height: 20},
		{Index: 2, X: 30, Y: 0, Width: 8, Height: 8},
	}
	problems := VerifyRecords(records, 33, 20)
	if len(problems) != 1 {
		t.Fatalf("expected 1 problem, got %v", problems)
	}
	if !strings.Contains(problems[0], "frame 2") || !strings.Contains(problems[0], "outside") {
		t.Errorf("unexpected message %q", problems[0])
	}
}

func TestVerifyRecords_Overlap(t *testing.T) {
	records := []model.Record{
		{Index: 5, X: 4, Y: 4, Width: 10, Height: 10},
		{Index: 2, X: 0, Y: 0, Width: 10, Height: 10},
		{Index: 9, X: 10, Y: 0, Width: 10, Height: 10},
	}
	problems := VerifyRecords(records, 40, 40)
	want := []string{"frame 2 overlaps frame 5", "frame 5 overlaps frame 9"}
	if len(problems) != len(want) {
		t.Fatalf("expected %v, got %v", want, problems)
	}
	for i := range want {
		if problems[i] != want[i] {
			t.Errorf("problem %d: expected %q, got %q", i, want[i], problems[i])
		}
	}
}
