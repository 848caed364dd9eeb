// Package ui provides the spritesheet desktop application: pick any frame
// of a numbered image sequence, pick the output sheet, convert.
package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	fynetooltip "github.com/dweymouth/fyne-tooltip"

	"github.com/piwi3910/spritepack/internal/export"
	"github.com/piwi3910/spritepack/internal/importer"
	"github.com/piwi3910/spritepack/internal/model"
	"github.com/piwi3910/spritepack/internal/pipeline"
	"github.com/piwi3910/spritepack/internal/project"
	"github.com/piwi3910/spritepack/internal/ui/widgets"
)

// App holds all application state and UI references.
type App struct {
	app    fyne.App
	window fyne.Window
	theme  *SpritepackTheme
	logger *log.Logger
	runner *pipeline.Runner

	config      model.AppConfig
	configPath  string
	presets     []model.Preset
	presetsPath string
	settings    model.PackSettings
	formats     map[pipeline.Format]bool
	busy        bool

	// UI references for dynamic updates
	sourceEntry     *widget.Entry
	outputEntry     *widget.Entry
	presetSelect    *widget.Select
	settingsLabel   *widget.Label
	resultContainer *fyne.Container
}

// NewApp loads the preferences and presets and applies the saved theme.
// Unreadable preference files are logged and replaced by defaults.
func NewApp(application fyne.App, window fyne.Window, logger *log.Logger) *App {
	a := &App{
		app:         application,
		window:      window,
		logger:      logger,
		runner:      pipeline.New(logger),
		configPath:  project.DefaultConfigPath(),
		presetsPath: project.DefaultPresetsPath(),
	}

	cfg, err := project.LoadAppConfig(a.configPath)
	if err != nil {
		logger.Warn("using default preferences", "err", err)
		cfg = model.DefaultAppConfig()
	}
	a.config = cfg

	presets, err := project.LoadCustomPresets(a.presetsPath)
	if err != nil {
		logger.Warn("ignoring custom presets", "err", err)
		presets = []model.Preset{}
	}
	a.presets = presets

	a.formats = formatsFromConfig(cfg.ExtraFormats)
	a.resetSettings()

	a.theme = NewTheme(cfg.Theme)
	application.Settings().SetTheme(a.theme)
	return a
}

// formatsFromConfig turns the saved format names into a selection set.
// Unknown names are dropped.
func formatsFromConfig(names []string) map[pipeline.Format]bool {
	selected := make(map[pipeline.Format]bool)
	for _, name := range names {
		if f, err := pipeline.ParseFormat(name); err == nil {
			selected[f] = true
		}
	}
	return selected
}

// selectedFormats returns the checked extra formats in output order.
func (a *App) selectedFormats() []pipeline.Format {
	var out []pipeline.Format
	for _, f := range pipeline.Formats {
		if a.formats[f] {
			out = append(out, f)
		}
	}
	return out
}

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	recent := fyne.NewMenuItem("Recent Sequences", nil)
	var recentItems []*fyne.MenuItem
	for _, path := range a.config.RecentSources {
		recentItems = append(recentItems, fyne.NewMenuItem(path, func() {
			a.setSource(path)
		}))
	}
	if len(recentItems) == 0 {
		none := fyne.NewMenuItem("(none)", nil)
		none.Disabled = true
		recentItems = append(recentItems, none)
	}
	recent.ChildMenu = fyne.NewMenu("", recentItems...)

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Select Sequence...", a.selectSource),
		fyne.NewMenuItem("Select Sprite Sheet...", a.selectOutput),
		recent,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import / Export Data...", a.showImportExportDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			a.window.Close()
		}),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Convert", a.convert),
		fyne.NewMenuItem("Verify Sprite Sheet...", a.verifySheet),
	)

	settingsMenu := fyne.NewMenu("Settings",
		fyne.NewMenuItem("Search Settings...", a.showSearchSettingsDialog),
		fyne.NewMenuItem("Preferences...", a.showPreferencesDialog),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", a.showAboutDialog),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, toolsMenu, settingsMenu, helpMenu))
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About Sprite Sheet Packer",
		"Sprite Sheet Packer\n\n"+
			"Trims the transparent border of every frame in a numbered\n"+
			"image sequence and packs the frames into one sprite sheet\n"+
			"with per-frame placement and anchor metadata.",
		a.window,
	)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	a.sourceEntry = widget.NewEntry()
	a.sourceEntry.SetPlaceHolder("any frame of the sequence, e.g. walk0001.png")
	a.sourceEntry.OnSubmitted = a.setSource

	a.outputEntry = widget.NewEntry()
	a.outputEntry.SetPlaceHolder("<base>_spritesheet.png")

	sourceBtn := newIconButtonWithTooltip(theme.FolderOpenIcon(), "Select any frame of the sequence", a.selectSource)
	outputBtn := newIconButtonWithTooltip(theme.DocumentSaveIcon(), "Choose where the sprite sheet is written", a.selectOutput)

	files := widget.NewCard("Files", "", container.New(layout.NewFormLayout(),
		widget.NewLabel("Sequence"), container.NewBorder(nil, nil, nil, sourceBtn, a.sourceEntry),
		widget.NewLabel("Sprite Sheet"), container.NewBorder(nil, nil, nil, outputBtn, a.outputEntry),
	))

	a.presetSelect = widget.NewSelect(a.presetNames(), a.applyPreset)
	a.presetSelect.PlaceHolder = "(preferences)"
	a.settingsLabel = widget.NewLabel("")
	a.refreshSettingsSummary()
	settingsBtn := newIconButtonWithTooltip(theme.SettingsIcon(), "Edit the height search", a.showSearchSettingsDialog)

	var checks []fyne.CanvasObject
	for _, opt := range extraFormatOptions {
		check := widget.NewCheck(opt.label, func(on bool) {
			a.formats[opt.format] = on
		})
		check.Checked = a.formats[opt.format]
		checks = append(checks, check)
	}

	search := widget.NewCard("Packing", "", container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel("Preset"), settingsBtn, a.presetSelect),
		a.settingsLabel,
		widget.NewLabel("Also write:"),
		container.NewHBox(checks...),
	))

	convertBtn := newButtonWithTooltip("Convert", theme.MediaPlayIcon(), "Trim and pack the sequence", a.convert)

	a.resultContainer = container.NewStack(widgets.RenderSheetResult(model.Sheet{}, nil, nil))

	content := container.NewBorder(
		container.NewVBox(files, search, container.NewHBox(layout.NewSpacer(), convertBtn)),
		nil, nil, nil,
		a.resultContainer,
	)
	return fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas())
}

func (a *App) refreshSettingsSummary() {
	if a.settingsLabel != nil {
		a.settingsLabel.SetText(settingsSummary(a.settings))
	}
}

// setSource selects the sequence containing path and suggests an output.
func (a *App) setSource(path string) {
	a.sourceEntry.SetText(path)
	if path != "" {
		a.outputEntry.SetText(importer.DefaultSheetName(path))
	}
}

func (a *App) selectSource() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		a.setSource(reader.URI().Path())
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter(importer.SupportedExtensions))
	d.Show()
}

func (a *App) selectOutput() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		sheet, err := sheetPathFromSave(path)
		if err != nil {
			a.logger.Warn("could not remove placeholder file", "path", path, "err", err)
		}
		a.outputEntry.SetText(sheet)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	if current := a.outputEntry.Text; current != "" {
		d.SetFileName(filepath.Base(current))
	}
	d.Show()
}

// sheetPathFromSave returns the sheet path for a name picked in the save
// dialog. The dialog creates the file it returns; when the name lacks the
// .png suffix that file is an empty placeholder and is removed.
func sheetPathFromSave(path string) (string, error) {
	sheet := importer.EnsurePNG(path)
	if sheet == path {
		return sheet, nil
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() > 0 {
		return sheet, nil
	}
	return sheet, os.Remove(path)
}

// ─── Conversion ────────────────────────────────────────────

func (a *App) convert() {
	if a.busy {
		return
	}
	selected := strings.TrimSpace(a.sourceEntry.Text)
	if selected == "" {
		dialog.ShowInformation("Nothing to convert", "Select a frame of the sequence first.", a.window)
		return
	}

	stage := widget.NewLabel("Starting...")
	bar := widget.NewProgressBar()
	ctx, cancel := context.WithCancel(context.Background())
	cancelBtn := widget.NewButton("Cancel", cancel)
	progress := dialog.NewCustomWithoutButtons("Converting", container.NewVBox(stage, bar, cancelBtn), a.window)
	progress.Resize(fyne.NewSize(420, 140))

	opts := pipeline.Options{
		Selected:    selected,
		Output:      strings.TrimSpace(a.outputEntry.Text),
		Settings:    a.settings,
		StagingDir:  a.config.StagingDir,
		KeepStaging: a.config.KeepStaging,
		Formats:     a.selectedFormats(),
		Progress: func(e pipeline.Event) {
			fyne.Do(func() {
				stage.SetText(string(e.Stage))
				bar.SetValue(e.Fraction)
			})
		},
	}

	a.busy = true
	progress.Show()
	go func() {
		res, err := a.runner.Run(ctx, opts)
		var preview image.Image
		if err == nil {
			if img, perr := imaging.Open(res.SheetPath); perr == nil {
				preview = img
			}
		}
		fyne.Do(func() {
			cancel()
			progress.Hide()
			a.busy = false
			a.finishConvert(selected, res, preview, err)
		})
	}()
}

func (a *App) finishConvert(selected string, res pipeline.Result, preview image.Image, err error) {
	if len(res.Skipped) > 0 {
		lines := make([]string, len(res.Skipped))
		for i, fe := range res.Skipped {
			lines[i] = fmt.Sprintf("%s: %v", filepath.Base(fe.Path), fe.Err)
		}
		dialog.ShowInformation("Skipped Frames",
			"These files could not be read and were left out:\n\n"+strings.Join(lines, "\n"), a.window)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			dialog.ShowInformation("Conversion Cancelled", "No sprite sheet was written.", a.window)
			return
		}
		dialog.ShowError(err, a.window)
		return
	}

	a.config.AddRecentSource(selected)
	if err := a.saveConfig(); err != nil {
		a.logger.Warn("could not save recent sequences", "err", err)
	}
	a.SetupMenus()

	files := append([]string{res.SheetPath, res.MetadataPath}, res.Extras...)
	a.resultContainer.RemoveAll()
	a.resultContainer.Add(widgets.RenderSheetResult(res.Sheet, preview, files))
	a.resultContainer.Refresh()
}

// verifySheet checks a sheet's metadata file against the sheet image.
func (a *App) verifySheet() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		sheetPath := reader.URI().Path()

		img, err := imaging.Open(sheetPath)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		metaPath := export.MetadataPath(sheetPath)
		res := importer.ImportMetadata(metaPath)
		if len(res.Errors) > 0 {
			dialog.ShowError(fmt.Errorf("%s:\n\n%s", filepath.Base(metaPath), strings.Join(res.Errors, "\n")), a.window)
			return
		}

		b := img.Bounds()
		problems := importer.VerifyRecords(res.Records, b.Dx(), b.Dy())
		if len(problems) > 0 {
			dialog.ShowError(fmt.Errorf("%s", strings.Join(problems, "\n")), a.window)
			return
		}
		dialog.ShowInformation("Sheet Verified",
			fmt.Sprintf("All %d frames fit the %d x %d sheet without overlapping.", len(res.Records), b.Dx(), b.Dy()), a.window)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	d.Show()
}
