package model

import (
	"errors"
	"math"
	"testing"
)

func TestNewFrame(t *testing.T) {
	f := NewFrame(7, 12, 30, Anchor{X: 6, Y: 15})
	if f.ID == "" {
		t.Error("expected non-empty ID")
	}
	if len(f.ID) != 8 {
		t.Errorf("expected 8-character ID, got %q", f.ID)
	}
	if f.Index != 7 || f.Width != 12 || f.Height != 30 {
		t.Errorf("unexpected frame fields: %+v", f)
	}
	if f.Area() != 360 {
		t.Errorf("expected area 360, got %d", f.Area())
	}

	other := NewFrame(7, 12, 30, Anchor{})
	if other.ID == f.ID {
		t.Error("expected distinct IDs for distinct frames")
	}
}

func TestPackSettingsDefaults(t *testing.T) {
	s := DefaultSettings()
	if s.Step() != 10 {
		t.Errorf("expected default step 10, got %d", s.Step())
	}
	if s.Ceiling() != math.MaxInt {
		t.Errorf("expected unbounded ceiling, got %d", s.Ceiling())
	}

	s.HeightStep = -3
	if s.Step() != DefaultHeightStep {
		t.Errorf("expected non-positive step to fall back to default, got %d", s.Step())
	}
	s.MaxHeight = 512
	if s.Ceiling() != 512 {
		t.Errorf("expected ceiling 512, got %d", s.Ceiling())
	}
}

func TestPlacementOverlaps(t *testing.T) {
	a := Placement{Frame: Frame{Width: 10, Height: 20}, X: 0, Y: 0}
	b := Placement{Frame: Frame{Width: 15, Height: 15}, X: 10, Y: 0}
	c := Placement{Frame: Frame{Width: 5, Height: 5}, X: 9, Y: 19}

	if a.Overlaps(b) {
		t.Error("touching placements must not overlap")
	}
	if !a.Overlaps(c) {
		t.Error("expected overlap at (9,19)")
	}
	if got := b.Rect().Max.X; got != 25 {
		t.Errorf("expected right edge 25, got %d", got)
	}
}

func TestSheetStatistics(t *testing.T) {
	s := Sheet{
		Width:  20,
		Height: 10,
		Placements: []Placement{
			{Frame: Frame{Index: 2, Width: 10, Height: 10}, X: 10},
			{Frame: Frame{Index: 1, Width: 10, Height: 5}},
		},
	}

	if s.Area() != 200 {
		t.Errorf("expected area 200, got %d", s.Area())
	}
	if s.UsedArea() != 150 {
		t.Errorf("expected used area 150, got %d", s.UsedArea())
	}
	if math.Abs(s.Efficiency()-75.0) > 1e-9 {
		t.Errorf("expected efficiency 75%%, got %f", s.Efficiency())
	}

	ordered := s.ByIndex()
	if ordered[0].Frame.Index != 1 || ordered[1].Frame.Index != 2 {
		t.Errorf("expected ascending index order, got %d,%d", ordered[0].Frame.Index, ordered[1].Frame.Index)
	}
	if s.Placements[0].Frame.Index != 2 {
		t.Error("ByIndex must not reorder the sheet's own placements")
	}

	if (Sheet{}).Efficiency() != 0 {
		t.Error("empty sheet should report zero efficiency")
	}
}

func TestTrialArea(t *testing.T) {
	if (Trial{Height: 20, Width: 33}).Area() != 660 {
		t.Error("expected trial area 660")
	}
}

func TestSheetRecords(t *testing.T) {
	s := Sheet{
		Width: 30, Height: 20,
		Placements: []Placement{
			{Frame: Frame{Index: 4, Width: 10, Height: 20, Anchor: Anchor{X: 5, Y: 10}}, X: 0, Y: 0},
			{Frame: Frame{Index: 1, Width: 20, Height: 5, Anchor: Anchor{X: 12.5, Y: -3}}, X: 10, Y: 0},
		},
	}

	recs := s.Records()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	want := Record{Index: 1, X: 10, Y: 0, Width: 20, Height: 5, AnchorX: 12.5, AnchorY: -3}
	if recs[0] != want {
		t.Errorf("expected %+v, got %+v", want, recs[0])
	}
	if recs[1].Index != 4 {
		t.Errorf("expected records ordered by index, got %d second", recs[1].Index)
	}
	if recs[0].Rect().Max.X != 30 {
		t.Errorf("expected record rect to end at x=30, got %v", recs[0].Rect())
	}
}

func TestPackSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings PackSettings
		wantErr  bool
	}{
		{"defaults", DefaultSettings(), false},
		{"zero step uses default", PackSettings{HeightStep: 0}, false},
		{"floor below ceiling", PackSettings{MinHeight: 20, MaxHeight: 30}, false},
		{"floor without ceiling", PackSettings{MinHeight: 500}, false},
		{"floor at ceiling", PackSettings{MinHeight: 30, MaxHeight: 30}, true},
		{"floor above ceiling", PackSettings{MinHeight: 50, MaxHeight: 30}, true},
		{"negative floor", PackSettings{MinHeight: -1}, true},
		{"negative ceiling", PackSettings{MaxHeight: -1}, true},
		{"negative step", PackSettings{HeightStep: -5}, true},
		{"negative workers", PackSettings{Workers: -2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}
