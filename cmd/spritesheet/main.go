// Sprite Sheet Packer: desktop front-end.
//
// Build:
//   go build -o spritesheet ./cmd/spritesheet
//
// Using fyne-cross for packaged builds:
//   go install github.com/fyne-io/fyne-cross@latest
//   fyne-cross windows -arch=amd64
//   fyne-cross darwin  -arch=amd64,arm64

package main

import (
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/charmbracelet/log"

	"github.com/piwi3910/spritepack/internal/ui"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           log.InfoLevel,
	})

	application := app.NewWithID("com.piwi3910.spritepack")
	window := application.NewWindow("Sprite Sheet Packer")

	appUI := ui.NewApp(application, window, logger)
	appUI.SetupMenus()
	window.SetContent(appUI.Build())
	window.Resize(fyne.NewSize(900, 760))
	window.CenterOnScreen()
	window.ShowAndRun()
}
