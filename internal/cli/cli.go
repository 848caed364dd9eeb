// Package cli implements the spritepack command-line interface.
//
// Commands:
//   - pack: trim a numbered image sequence and pack it into a sprite sheet
//   - compare: run the height search under several settings side by side
//   - verify: check a metadata file against its sheet image
//   - config: show, edit, back up and restore preferences and presets
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels through context.Context.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/spritepack/internal/model"
	"github.com/piwi3910/spritepack/internal/project"
)

const appName = "spritepack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Version is reported by --version. It is set at build time.
var Version = "dev"

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out         io.Writer
	configPath  string
	presetsPath string
}

// New creates a CLI that logs to logw and prints results to out.
func New(logw, out io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:      newLogger(logw, level),
		out:         out,
		configPath:  project.DefaultConfigPath(),
		presetsPath: project.DefaultPresetsPath(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Pack animation frames into a sprite sheet",
		Long:         `spritepack trims the transparent border of every frame in a numbered image sequence, packs the frames into the smallest sheet it can find and writes the sheet together with per-frame placement and anchor metadata.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", c.configPath, "preferences file (.json or .toml)")
	root.PersistentFlags().StringVar(&c.presetsPath, "presets", c.presetsPath, "custom presets file")

	root.AddCommand(c.packCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.configCommand())

	return root
}

// loadConfig reads the preferences file, falling back to defaults.
func (c *CLI) loadConfig() (model.AppConfig, error) {
	return project.LoadAppConfig(c.configPath)
}

func (c *CLI) loadPresets() ([]model.Preset, error) {
	return project.LoadCustomPresets(c.presetsPath)
}
