package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/spritepack/internal/model"
	"github.com/piwi3910/spritepack/internal/project"
)

// presetNames lists built-in presets followed by custom ones.
func (a *App) presetNames() []string {
	var names []string
	for _, p := range model.BuiltInPresets() {
		names = append(names, p.Name)
	}
	for _, p := range a.presets {
		names = append(names, p.Name)
	}
	return names
}

// applyPreset replaces the current search settings with a preset's.
func (a *App) applyPreset(name string) {
	p, ok := model.FindPreset(name, a.presets)
	if !ok {
		return
	}
	a.settings = p.Settings
	a.refreshSettingsSummary()
}

// resetSettings restores the search settings from the preferences.
func (a *App) resetSettings() {
	a.settings = model.DefaultSettings()
	a.config.ApplyToSettings(&a.settings)
	if a.presetSelect != nil {
		a.presetSelect.Options = a.presetNames()
		a.presetSelect.ClearSelected()
	}
	a.refreshSettingsSummary()
}

func settingsSummary(s model.PackSettings) string {
	ceiling := "unbounded"
	if s.MaxHeight > 0 {
		ceiling = fmt.Sprintf("%d px", s.MaxHeight)
	}
	return fmt.Sprintf("Heights from %d px, step %d px, ceiling %s, %d worker(s)",
		s.MinHeight, s.Step(), ceiling, max(s.Workers, 1))
}

// showSearchSettingsDialog edits the search settings of the next conversion
// and manages custom presets.
func (a *App) showSearchSettingsDialog() {
	s := a.settings

	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("preset name")

	savePresetBtn := widget.NewButtonWithIcon("Save as Preset", theme.DocumentSaveIcon(), func() {
		if nameEntry.Text == "" {
			dialog.ShowError(fmt.Errorf("enter a preset name"), a.window)
			return
		}
		if _, builtIn := findBuiltIn(nameEntry.Text); builtIn {
			dialog.ShowError(fmt.Errorf("%q is a built-in preset", nameEntry.Text), a.window)
			return
		}
		a.presets = project.UpsertPreset(a.presets, model.Preset{
			Name:        nameEntry.Text,
			Description: settingsSummary(s),
			Settings:    s,
		})
		if err := a.savePresets(); err != nil {
			dialog.ShowError(fmt.Errorf("failed to save presets: %w", err), a.window)
			return
		}
		a.presetSelect.Options = a.presetNames()
		a.presetSelect.Refresh()
	})

	importBtn := widget.NewButtonWithIcon("Import Preset...", theme.FolderOpenIcon(), func() {
		dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			defer reader.Close()
			p, err := project.ImportPreset(reader.URI().Path())
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.presets = project.UpsertPreset(a.presets, p)
			if err := a.savePresets(); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.presetSelect.Options = a.presetNames()
			a.presetSelect.Refresh()
		}, a.window)
	})

	exportBtn := widget.NewButtonWithIcon("Export Preset...", theme.DocumentSaveIcon(), func() {
		name := a.presetSelect.Selected
		p, ok := model.FindPreset(name, a.presets)
		if !ok {
			dialog.ShowInformation("No preset selected", "Choose a preset in the main window first.", a.window)
			return
		}
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			defer writer.Close()
			if err := project.ExportPreset(writer.URI().Path(), p); err != nil {
				dialog.ShowError(err, a.window)
			}
		}, a.window)
		d.SetFileName(p.Name + ".json")
		d.Show()
	})

	content := container.NewVBox(
		widget.NewCard("Height Search", "Candidate heights start at the tallest frame or the minimum, whichever is larger",
			container.NewGridWithColumns(2,
				widget.NewLabel("Min Height (px)"), intEntry(&s.MinHeight),
				widget.NewLabel("Max Height (px, 0=none)"), intEntry(&s.MaxHeight),
				widget.NewLabel("Height Step (px)"), intEntry(&s.HeightStep),
				widget.NewLabel("Workers"), intEntry(&s.Workers),
			)),
		widget.NewCard("Presets", "",
			container.NewVBox(
				container.NewBorder(nil, nil, nil, savePresetBtn, nameEntry),
				container.NewHBox(importBtn, exportBtn),
			)),
	)

	d := dialog.NewCustomConfirm("Search Settings", "Apply", "Cancel", content, func(ok bool) {
		if !ok {
			return
		}
		if err := validateSearchSettings(s); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.settings = s
		a.refreshSettingsSummary()
	}, a.window)
	d.Resize(fyne.NewSize(520, 420))
	d.Show()
}

// validateSearchSettings checks settings entered in the search dialog.
func validateSearchSettings(s model.PackSettings) error {
	if s.HeightStep <= 0 {
		return fmt.Errorf("the height step must be positive")
	}
	return s.Validate()
}

func findBuiltIn(name string) (model.Preset, bool) {
	return model.FindPreset(name, nil)
}
