package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/spritepack/internal/model"
	"github.com/piwi3910/spritepack/internal/pipeline"
	"github.com/piwi3910/spritepack/internal/project"
)

type packOptions struct {
	search   searchFlags
	output   string
	formats  []string
	stageDir string
	keep     bool
	inMemory bool
	trials   bool
}

// packCommand creates the "pack" command.
func (c *CLI) packCommand() *cobra.Command {
	var opts packOptions

	cmd := &cobra.Command{
		Use:   "pack <frame>",
		Short: "Pack an image sequence into a sprite sheet",
		Long: `Pack finds every file next to <frame> that shares its base name and extension
and ends in a frame number (walk0001.png, walk0002.png, ...), trims each frame
and writes <base>_spritesheet.png with <base>_spritesheet_metadata.csv.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPack(cmd, args[0], &opts)
		},
	}

	opts.search.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "sheet path (default <base>_spritesheet.png)")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", nil, "extra outputs: xlsx, pdf, cards, dxf")
	cmd.Flags().StringVar(&opts.stageDir, "staging-dir", "", "parent directory for cropped frames")
	cmd.Flags().BoolVar(&opts.keep, "keep-staging", false, "leave cropped frames on disk")
	cmd.Flags().BoolVar(&opts.inMemory, "in-memory", false, "keep cropped frames in memory")
	cmd.Flags().BoolVar(&opts.trials, "trials", false, "print every explored height (implied by --verbose)")

	return cmd
}

func (c *CLI) runPack(cmd *cobra.Command, selected string, opts *packOptions) error {
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
	settings, err := opts.search.resolve(cmd, cfg, custom)
	if err != nil {
		return err
	}

	names := cfg.ExtraFormats
	if cmd.Flags().Changed("format") {
		names = opts.formats
	}
	formats, err := parseFormats(names)
	if err != nil {
		return err
	}

	run := pipeline.Options{
		Selected:    selected,
		Output:      opts.output,
		Settings:    settings,
		StagingDir:  cfg.StagingDir,
		KeepStaging: cfg.KeepStaging,
		InMemory:    opts.inMemory,
		Formats:     formats,
		Progress:    logStages(logger),
	}
	if cmd.Flags().Changed("staging-dir") {
		run.StagingDir = opts.stageDir
	}
	if cmd.Flags().Changed("keep-staging") {
		run.KeepStaging = opts.keep
	}

	prog := newProgress(logger)
	res, err := pipeline.New(logger).Run(ctx, run)
	for _, fe := range res.Skipped {
		printWarning(c.out, "skipped %s: %v", fe.Path, fe.Err)
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Packed %d frames", len(res.Sheet.Placements)))

	cfg.AddRecentSource(selected)
	if err := project.SaveAppConfig(c.configPath, cfg); err != nil {
		logger.Warn("could not save recent sequences", "err", err)
	}

	printSheetSummary(c, res)
	if opts.trials || logger.GetLevel() == log.DebugLevel {
		printTrials(c, res.Sheet)
	}
	return nil
}

func printSheetSummary(c *CLI, res pipeline.Result) {
	s := res.Sheet
	printSuccess(c.out, "Sheet %s", StyleNumber.Render(fmt.Sprintf("%dx%d", s.Width, s.Height)))
	printDetail(c.out, "%d frames · %.1f%% used · %d trials", len(s.Placements), s.Efficiency(), len(s.Trials))
	if !s.Converged {
		printWarning(c.out, "height ceiling reached before the sheet narrowed to the widest frame")
	}
	printFile(c.out, res.SheetPath)
	printFile(c.out, res.MetadataPath)
	for _, path := range res.Extras {
		printFile(c.out, path)
	}
}

func printTrials(c *CLI, sheet model.Sheet) {
	rows := make([][]string, len(sheet.Trials))
	highlight := map[int]bool{}
	for i, t := range sheet.Trials {
		rows[i] = []string{strconv.Itoa(t.Height), strconv.Itoa(t.Width), strconv.Itoa(t.Area())}
		if t.Height == sheet.Height {
			highlight[i] = true
		}
	}
	printTable(c.out, []string{"Height", "Width", "Area"}, rows, highlight)
}

func parseFormats(names []string) ([]pipeline.Format, error) {
	formats := make([]pipeline.Format, 0, len(names))
	for _, name := range names {
		f, err := pipeline.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// logStages logs each stage once, when it begins.
func logStages(logger *log.Logger) pipeline.ProgressFunc {
	var last pipeline.Stage
	return func(e pipeline.Event) {
		if e.Stage != last {
			last = e.Stage
			logger.Debug(string(e.Stage))
		}
	}
}
