package ui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/spritepack/internal/model"
	"github.com/piwi3910/spritepack/internal/pipeline"
	"github.com/piwi3910/spritepack/internal/project"
)

// intEntry creates an entry bound to an int; unparsable text is ignored.
func intEntry(val *int) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.Itoa(*val))
	e.OnChanged = func(text string) {
		if v, err := strconv.Atoi(text); err == nil {
			*val = v
		}
	}
	return e
}

// validatePreferences rejects defaults that would make every pack fail.
func validatePreferences(cfg model.AppConfig) error {
	if cfg.DefaultHeightStep <= 0 {
		return fmt.Errorf("the height step must be positive")
	}
	return cfg.Validate()
}

// showPreferencesDialog displays the application preferences editor.
func (a *App) showPreferencesDialog() {
	cfg := a.config

	themeSelect := widget.NewSelect([]string{"system", "light", "dark"}, func(selected string) {
		cfg.Theme = selected
	})
	themeSelect.SetSelected(cfg.Theme)

	stagingEntry := widget.NewEntry()
	stagingEntry.SetPlaceHolder("system temporary directory")
	stagingEntry.SetText(cfg.StagingDir)
	stagingEntry.OnChanged = func(text string) { cfg.StagingDir = text }

	keepCheck := widget.NewCheck("", func(b bool) { cfg.KeepStaging = b })
	keepCheck.Checked = cfg.KeepStaging

	formItems := []*widget.FormItem{
		widget.NewFormItem("Theme", themeSelect),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Default Min Height (px)", intEntry(&cfg.DefaultMinHeight)),
		widget.NewFormItem("Default Max Height (px, 0=none)", intEntry(&cfg.DefaultMaxHeight)),
		widget.NewFormItem("Default Height Step (px)", intEntry(&cfg.DefaultHeightStep)),
		widget.NewFormItem("Default Workers", intEntry(&cfg.DefaultWorkers)),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Staging Directory", stagingEntry),
		widget.NewFormItem("Keep Cropped Frames", keepCheck),
	}

	d := dialog.NewForm("Preferences", "Save", "Cancel", formItems,
		func(ok bool) {
			if !ok {
				return
			}
			if err := validatePreferences(cfg); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.config = cfg
			a.theme.SetVariant(cfg.Theme)
			a.app.Settings().SetTheme(a.theme)
			if err := a.saveConfig(); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save preferences: %w", err), a.window)
			}
		},
		a.window,
	)
	d.Resize(fyne.NewSize(480, 420))
	d.Show()
}

// showImportExportDialog displays the backup and restore dialog.
func (a *App) showImportExportDialog() {
	exportBtn := widget.NewButton("Export All Data...", func() {
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			defer writer.Close()
			path := writer.URI().Path()
			if err := project.ExportAllData(path, a.config, a.presets); err != nil {
				dialog.ShowError(err, a.window)
			} else {
				dialog.ShowInformation("Export Complete",
					fmt.Sprintf("Preferences and %d presets exported to:\n%s", len(a.presets), path), a.window)
			}
		}, a.window)
		d.SetFileName("spritepack-backup.json")
		d.Show()
	})

	importBtn := widget.NewButton("Import All Data...", func() {
		dialog.ShowConfirm("Import Data",
			"Importing data will replace your preferences and custom presets.\n\nAre you sure you want to continue?",
			func(ok bool) {
				if !ok {
					return
				}
				d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
					if err != nil || reader == nil {
						return
					}
					defer reader.Close()
					backup, err := project.ImportAllData(reader.URI().Path())
					if err != nil {
						dialog.ShowError(err, a.window)
						return
					}
					a.config = backup.Config
					a.presets = backup.Presets
					if err := a.saveConfig(); err != nil {
						dialog.ShowError(fmt.Errorf("failed to save imported preferences: %w", err), a.window)
						return
					}
					if err := a.savePresets(); err != nil {
						dialog.ShowError(fmt.Errorf("failed to save imported presets: %w", err), a.window)
						return
					}
					a.resetSettings()
					msg := fmt.Sprintf("Data imported successfully from backup created at %s.", backup.CreatedAt)
					if len(backup.Dropped) > 0 {
						msg += "\n\nSkipped:\n" + strings.Join(backup.Dropped, "\n")
					}
					dialog.ShowInformation("Import Complete", msg, a.window)
				}, a.window)
				d.Show()
			},
			a.window,
		)
	})

	content := container.NewVBox(
		widget.NewLabel("Export preferences and custom presets to a backup file,\nor import from a previously exported backup."),
		widget.NewSeparator(),
		exportBtn,
		widget.NewSeparator(),
		importBtn,
	)

	d := dialog.NewCustom("Import / Export Data", "Close", content, a.window)
	d.Resize(fyne.NewSize(450, 250))
	d.Show()
}

// saveConfig persists the current preferences.
func (a *App) saveConfig() error {
	return project.SaveAppConfig(a.configPath, a.config)
}

func (a *App) savePresets() error {
	return project.SaveCustomPresets(a.presetsPath, a.presets)
}

// extraFormatOptions labels the extra outputs offered in the main window.
var extraFormatOptions = []struct {
	format pipeline.Format
	label  string
}{
	{pipeline.FormatExcel, "Excel workbook"},
	{pipeline.FormatPDF, "PDF report"},
	{pipeline.FormatCards, "Frame cards"},
	{pipeline.FormatDXF, "DXF outline"},
}
