package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/spritepack/internal/model"
)

// searchFlags are the height search flags shared by pack and compare.
type searchFlags struct {
	minHeight int
	maxHeight int
	step      int
	workers   int
	preset    string
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.minHeight, "min-height", 0, "lowest candidate sheet height (0 = tallest frame)")
	cmd.Flags().IntVar(&f.maxHeight, "max-height", 0, "height ceiling (0 = unbounded)")
	cmd.Flags().IntVar(&f.step, "step", model.DefaultHeightStep, "increment between candidate heights")
	cmd.Flags().IntVar(&f.workers, "workers", 1, "concurrent workers: frames trimmed and heights tried at once")
	cmd.Flags().StringVar(&f.preset, "preset", "", "named settings preset")
}

// resolve layers the settings: config defaults, then the preset, then any
// flag given explicitly on the command line.
func (f *searchFlags) resolve(cmd *cobra.Command, cfg model.AppConfig, custom []model.Preset) (model.PackSettings, error) {
	settings := model.DefaultSettings()
	cfg.ApplyToSettings(&settings)

	if f.preset != "" {
		p, ok := model.FindPreset(f.preset, custom)
		if !ok {
			return settings, fmt.Errorf("unknown preset %q", f.preset)
		}
		settings = p.Settings
	}

	flags := cmd.Flags()
	if flags.Changed("min-height") {
		settings.MinHeight = f.minHeight
	}
	if flags.Changed("max-height") {
		settings.MaxHeight = f.maxHeight
	}
	if flags.Changed("step") {
		settings.HeightStep = f.step
	}
	if flags.Changed("workers") {
		settings.Workers = f.workers
	}

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}
