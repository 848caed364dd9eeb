package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/spritepack/internal/model"
	"github.com/piwi3910/spritepack/internal/pipeline"
	"github.com/piwi3910/spritepack/internal/project"
)

// configCommand creates the "config" command tree.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage preferences and presets",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configSetCommand())
	cmd.AddCommand(c.configExportCommand())
	cmd.AddCommand(c.configImportCommand())
	cmd.AddCommand(c.presetsCommand())

	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			printKeyValue(c.out, "file", c.configPath)
			for _, kv := range configValues(cfg) {
				printKeyValue(c.out, kv[0], kv[1])
			}
			return nil
		},
	}
}

// configKeys lists the keys accepted by "config set", in display order.
var configKeys = []string{"min-height", "max-height", "step", "workers", "staging-dir", "keep-staging", "formats", "theme"}

func configValues(cfg model.AppConfig) [][2]string {
	return [][2]string{
		{"min-height", strconv.Itoa(cfg.DefaultMinHeight)},
		{"max-height", strconv.Itoa(cfg.DefaultMaxHeight)},
		{"step", strconv.Itoa(cfg.DefaultHeightStep)},
		{"workers", strconv.Itoa(cfg.DefaultWorkers)},
		{"staging-dir", cfg.StagingDir},
		{"keep-staging", strconv.FormatBool(cfg.KeepStaging)},
		{"formats", strings.Join(cfg.ExtraFormats, ",")},
		{"theme", cfg.Theme},
	}
}

// setConfigValue updates one preference by its "config set" key. The
// config is left untouched unless the result is a valid search setup.
func setConfigValue(cfg *model.AppConfig, key, value string) error {
	next := *cfg
	if err := applyConfigValue(&next, key, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*cfg = next
	return nil
}

func applyConfigValue(cfg *model.AppConfig, key, value string) error {
	intValue := func(dst *int, min int) error {
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", key, value)
		}
		if v < min {
			return fmt.Errorf("%s must be at least %d", key, min)
		}
		*dst = v
		return nil
	}

	switch key {
	case "min-height":
		return intValue(&cfg.DefaultMinHeight, 0)
	case "max-height":
		return intValue(&cfg.DefaultMaxHeight, 0)
	case "step":
		return intValue(&cfg.DefaultHeightStep, 1)
	case "workers":
		return intValue(&cfg.DefaultWorkers, 1)
	case "staging-dir":
		cfg.StagingDir = value
	case "keep-staging":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean", key, value)
		}
		cfg.KeepStaging = v
	case "formats":
		formats := []string{}
		for _, name := range strings.Split(value, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			f, err := pipeline.ParseFormat(name)
			if err != nil {
				return err
			}
			formats = append(formats, string(f))
		}
		cfg.ExtraFormats = formats
	case "theme":
		switch value {
		case "light", "dark", "system":
			cfg.Theme = value
		default:
			return fmt.Errorf("theme must be light, dark or system")
		}
	default:
		return fmt.Errorf("unknown key %q (valid: %s)", key, strings.Join(configKeys, ", "))
	}
	return nil
}

func (c *CLI) configSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change one preference",
		Args:      cobra.ExactArgs(2),
		ValidArgs: configKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := setConfigValue(&cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := project.SaveAppConfig(c.configPath, cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			printSuccess(c.out, "%s = %s", args[0], args[1])
			return nil
		},
	}
}

func (c *CLI) configExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Back up preferences and custom presets to one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			presets, err := c.loadPresets()
			if err != nil {
				return err
			}
			if err := project.ExportAllData(args[0], cfg, presets); err != nil {
				return err
			}
			printSuccess(c.out, "Exported preferences and %d presets", len(presets))
			printFile(c.out, args[0])
			return nil
		},
	}
}

func (c *CLI) configImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore preferences and custom presets from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := project.SaveAppConfig(c.configPath, data.Config); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			if err := project.SaveCustomPresets(c.presetsPath, data.Presets); err != nil {
				return fmt.Errorf("save presets: %w", err)
			}
			for _, d := range data.Dropped {
				printWarning(c.out, "Skipped %s", d)
			}
			printSuccess(c.out, "Restored preferences and %d presets from %s", len(data.Presets), data.CreatedAt)
			return nil
		},
	}
}

func (c *CLI) presetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List, share and import settings presets",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in and custom presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			custom, err := c.loadPresets()
			if err != nil {
				return err
			}
			var rows [][]string
			for _, p := range append(model.BuiltInPresets(), custom...) {
				kind := "custom"
				if p.IsBuiltIn {
					kind = "built-in"
				}
				rows = append(rows, []string{
					p.Name,
					kind,
					strconv.Itoa(p.Settings.Step()),
					heightLabel(p.Settings.MaxHeight),
					strconv.Itoa(max(p.Settings.Workers, 1)),
					p.Description,
				})
			}
			printTable(c.out, []string{"Name", "Kind", "Step", "Max Height", "Workers", "Description"}, rows, nil)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export <name> <file>",
		Short: "Write one preset to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			custom, err := c.loadPresets()
			if err != nil {
				return err
			}
			p, ok := model.FindPreset(args[0], custom)
			if !ok {
				return fmt.Errorf("unknown preset %q", args[0])
			}
			if err := project.ExportPreset(args[1], p); err != nil {
				return err
			}
			printSuccess(c.out, "Exported preset %s", p.Name)
			printFile(c.out, args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Add or replace a custom preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.ImportPreset(args[0])
			if err != nil {
				return err
			}
			custom, err := c.loadPresets()
			if err != nil {
				return err
			}
			if err := project.SaveCustomPresets(c.presetsPath, project.UpsertPreset(custom, p)); err != nil {
				return err
			}
			printSuccess(c.out, "Imported preset %s", p.Name)
			return nil
		},
	})

	return cmd
}

func heightLabel(h int) string {
	if h <= 0 {
		return "unbounded"
	}
	return strconv.Itoa(h)
}
