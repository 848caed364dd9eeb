package cli

import (
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/spritepack/internal/export"
	"github.com/piwi3910/spritepack/internal/importer"
)

// verifyCommand creates the "verify" command.
func (c *CLI) verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <sheet> [metadata]",
		Short: "Check a metadata file against its sprite sheet",
		Long: `Verify reads the metadata (CSV or XLSX, default <sheet>_metadata.csv) and
checks that every frame rectangle lies inside the sheet image and that no two
frames overlap.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheetPath := args[0]
			metaPath := export.MetadataPath(sheetPath)
			if len(args) == 2 {
				metaPath = args[1]
			}

			w, h, err := imageSize(sheetPath)
			if err != nil {
				return err
			}

			res := importer.ImportMetadata(metaPath)
			for _, msg := range res.Warnings {
				loggerFromContext(cmd.Context()).Debug(msg)
			}
			for _, msg := range res.Errors {
				printError(c.out, "%s", msg)
			}
			if len(res.Errors) > 0 {
				return fmt.Errorf("%s: %d unreadable rows", metaPath, len(res.Errors))
			}

			problems := importer.VerifyRecords(res.Records, w, h)
			for _, p := range problems {
				printError(c.out, "%s", p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%s: %d problems", metaPath, len(problems))
			}

			printSuccess(c.out, "%d frames fit the %dx%d sheet", len(res.Records), w, h)
			return nil
		},
	}
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}
