package engine

import (
	"fmt"
	"runtime"

	"github.com/piwi3910/spritepack/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.PackSettings
}

// ComparisonResult holds the packing result and computed statistics
// for a single scenario.
type ComparisonResult struct {
	Scenario     ComparisonScenario
	Sheet        model.Sheet
	Trials       int
	Area         int
	WastePercent float64
	Err          error
}

// CompareScenarios runs the height search for each scenario and returns the
// results in scenario order. This enables side-by-side comparison of
// different search parameters (step size, height bounds, parallelism).
func CompareScenarios(scenarios []ComparisonScenario, frames []model.Frame) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		sheet, err := New(scenario.Settings).Optimize(frames)
		if err != nil {
			results = append(results, ComparisonResult{Scenario: scenario, Err: err})
			continue
		}

		results = append(results, ComparisonResult{
			Scenario:     scenario,
			Sheet:        sheet,
			Trials:       len(sheet.Trials),
			Area:         sheet.Area(),
			WastePercent: 100.0 - sheet.Efficiency(),
		})
	}

	return results
}

// BestComparison returns the index of the successful result with the
// smallest area, preferring earlier scenarios on ties, or -1.
func BestComparison(results []ComparisonResult) int {
	best := -1
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		if best < 0 || r.Area < results[best].Area {
			best = i
		}
	}
	return best
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying key parameters to show what-if alternatives.
func BuildDefaultScenarios(base model.PackSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	// Scenario: Finest possible step
	if base.Step() > 1 {
		fine := base
		fine.HeightStep = 1
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Step 1px",
			Settings: fine,
		})
	}

	// Scenario: Coarser step (fewer trials)
	coarse := base
	coarse.HeightStep = base.Step() * 2
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("Step %dpx (double)", coarse.HeightStep),
		Settings: coarse,
	})

	// Scenario: No height floor
	if base.MinHeight > 0 {
		noFloor := base
		noFloor.MinHeight = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No Height Floor",
			Settings: noFloor,
		})
	}

	// Scenario: No height ceiling
	if base.MaxHeight > 0 {
		noCeiling := base
		noCeiling.MaxHeight = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No Height Ceiling",
			Settings: noCeiling,
		})
	}

	// Scenario: Parallel search
	if base.Workers <= 1 && runtime.NumCPU() > 1 {
		parallel := base
		parallel.Workers = runtime.NumCPU()
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Parallel (%d workers)", parallel.Workers),
			Settings: parallel,
		})
	}

	return scenarios
}
