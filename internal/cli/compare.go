package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/piwi3910/spritepack/internal/engine"
	"github.com/piwi3910/spritepack/internal/importer"
	"github.com/piwi3910/spritepack/internal/pipeline"
	"github.com/piwi3910/spritepack/internal/staging"
)

// compareCommand creates the "compare" command.
func (c *CLI) compareCommand() *cobra.Command {
	var search searchFlags

	cmd := &cobra.Command{
		Use:   "compare <frame>",
		Short: "Compare sheet sizes under alternative search settings",
		Long: `Compare trims the sequence once, then runs the height search with the
current settings and a few alternatives (finer and coarser steps, bounded
heights, parallel search) and prints the resulting sheets side by side.
Nothing is written to disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			custom, err := c.loadPresets()
			if err != nil {
				return fmt.Errorf("load presets: %w", err)
			}
			settings, err := search.resolve(cmd, cfg, custom)
			if err != nil {
				return err
			}

			seq, err := importer.ScanSequence(args[0])
			if err != nil {
				return err
			}
			store := staging.NewMemoryStore()
			defer store.Cleanup()

			frames, skipped, err := pipeline.New(logger).TrimSequence(ctx, seq, store, settings.Workers, nil)
			for _, fe := range skipped {
				printWarning(c.out, "skipped %s: %v", fe.Path, fe.Err)
			}
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			results := engine.CompareScenarios(engine.BuildDefaultScenarios(settings), frames)
			prog.done(fmt.Sprintf("Compared %d scenarios", len(results)))

			printInfo(c.out, "%s · %d frames", StyleTitle.Render(seq.Base), len(frames))
			printComparison(c, results)
			return nil
		},
	}

	search.register(cmd)
	return cmd
}

func printComparison(c *CLI, results []engine.ComparisonResult) {
	best := engine.BestComparison(results)
	rows := make([][]string, len(results))
	for i, r := range results {
		if r.Err != nil {
			rows[i] = []string{r.Scenario.Name, "-", "-", "-", "-", r.Err.Error()}
			continue
		}
		rows[i] = []string{
			r.Scenario.Name,
			fmt.Sprintf("%dx%d", r.Sheet.Width, r.Sheet.Height),
			strconv.Itoa(r.Area),
			fmt.Sprintf("%.1f%%", r.WastePercent),
			strconv.Itoa(r.Trials),
			convergedLabel(r.Sheet.Converged),
		}
	}
	printTable(c.out, []string{"Scenario", "Sheet", "Area", "Waste", "Trials", "Status"}, rows, map[int]bool{best: true})
	if best >= 0 {
		printSuccess(c.out, "Smallest sheet: %s", results[best].Scenario.Name)
	}
}

func convergedLabel(converged bool) string {
	if converged {
		return "converged"
	}
	return "ceiling reached"
}
