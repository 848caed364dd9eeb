// Package pipeline converts an image sequence on disk into a sprite sheet
// and its metadata: discover, trim, stage, pack, compose, export, clean up.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/spritepack/internal/compose"
	"github.com/piwi3910/spritepack/internal/engine"
	"github.com/piwi3910/spritepack/internal/export"
	"github.com/piwi3910/spritepack/internal/importer"
	"github.com/piwi3910/spritepack/internal/model"
	"github.com/piwi3910/spritepack/internal/staging"
	"github.com/piwi3910/spritepack/internal/trim"
)

// Format is an additional output written next to the sheet.
type Format string

const (
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
	FormatCards Format = "cards"
	FormatDXF   Format = "dxf"
)

// Formats lists every extra format in the order they are written.
var Formats = []Format{FormatExcel, FormatPDF, FormatCards, FormatDXF}

// ParseFormat matches name case-insensitively against the known formats.
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(name, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", name)
}

// ExtraPath returns the file an extra format is written to for sheetPath.
func ExtraPath(sheetPath string, f Format) string {
	base := strings.TrimSuffix(sheetPath, filepath.Ext(sheetPath))
	switch f {
	case FormatExcel:
		return base + "_metadata.xlsx"
	case FormatPDF:
		return base + "_report.pdf"
	case FormatCards:
		return base + "_cards.pdf"
	case FormatDXF:
		return base + "_layout.dxf"
	}
	return base + "." + string(f)
}

// Options configures one conversion.
type Options struct {
	Selected    string // any file of the sequence
	Output      string // sheet path; empty selects the default name
	Settings    model.PackSettings
	StagingDir  string // parent of the temporary directory; empty uses the OS default
	KeepStaging bool
	InMemory    bool // stage trimmed frames in memory instead of on disk
	Formats     []Format
	Progress    ProgressFunc
}

// Result describes the files a conversion produced.
type Result struct {
	Sheet        model.Sheet
	SheetPath    string
	MetadataPath string
	Extras       []string
	Skipped      []*FrameError // undecodable frames, in sequence order
	Warnings     []string
}

// Runner executes conversions and logs their stages.
type Runner struct {
	logger *log.Logger
}

// New returns a Runner logging to logger. A nil logger discards output.
func New(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{logger: logger}
}

// Run converts the sequence containing opts.Selected. Frames that fail to
// decode are skipped and listed in Result.Skipped; every other failure
// aborts the conversion. Temporary files are removed on every path.
func (r *Runner) Run(ctx context.Context, opts Options) (res Result, err error) {
	if err := opts.Settings.Validate(); err != nil {
		return res, err
	}
	seq, err := importer.ScanSequence(opts.Selected)
	if err != nil {
		return res, err
	}
	res.Warnings = append(res.Warnings, seq.Warnings...)
	for _, w := range seq.Warnings {
		r.logger.Warn(w)
	}

	res.SheetPath = opts.Output
	if res.SheetPath == "" {
		res.SheetPath = importer.DefaultSheetName(opts.Selected)
	}
	res.SheetPath = importer.EnsurePNG(res.SheetPath)
	res.MetadataPath = export.MetadataPath(res.SheetPath)

	store, err := r.openStore(opts)
	if err != nil {
		return res, err
	}

	n := newNotifier(opts.Progress)
	defer n.close()
	defer func() {
		n.mark(StageCleanup, 0)
		if cerr := store.Cleanup(); cerr != nil {
			r.logger.Warn("could not delete temporary files", "err", cerr)
			res.Warnings = append(res.Warnings, cerr.Error())
		}
		n.mark(StageCleanup, 1)
	}()

	r.logger.Info("converting sequence", "base", seq.Base, "frames", len(seq.Files))
	frames, skipped, err := r.trimSequence(ctx, seq, store, opts.Settings.Workers, n)
	res.Skipped = skipped
	if err != nil {
		return res, err
	}
	for _, f := range frames {
		if f.Degenerate {
			msg := fmt.Sprintf("frame %d is fully transparent", f.Index)
			r.logger.Warn(msg)
			res.Warnings = append(res.Warnings, msg)
		}
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	sheet, err := r.pack(frames, opts.Settings, n)
	if err != nil {
		return res, err
	}
	res.Sheet = sheet
	if msg := ceilingWarning(sheet, opts.Settings); msg != "" {
		res.Warnings = append(res.Warnings, msg)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	n.mark(StageSheet, 0)
	img, err := compose.Compose(sheet, store)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrStaging, err)
	}
	if err := compose.WriteSheet(res.SheetPath, img); err != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrEncode, res.SheetPath, err)
	}
	n.mark(StageSheet, 1)
	r.logger.Debug("wrote sheet", "path", res.SheetPath)

	n.mark(StageMetadata, 0)
	if err := export.ExportMetadata(res.MetadataPath, sheet); err != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrEncode, res.MetadataPath, err)
	}
	n.mark(StageMetadata, 1)
	r.logger.Debug("wrote metadata", "path", res.MetadataPath)

	if len(opts.Formats) > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n.mark(StageExtras, 0)
		for i, f := range opts.Formats {
			path := ExtraPath(res.SheetPath, f)
			if err := writeExtra(f, path, res.SheetPath, sheet, opts.Settings, img); err != nil {
				return res, fmt.Errorf("%w: %s: %w", ErrEncode, path, err)
			}
			res.Extras = append(res.Extras, path)
			r.logger.Debug("wrote report", "format", f, "path", path)
			n.send(Event{Stage: StageExtras, Fraction: float64(i+1) / float64(len(opts.Formats))})
		}
	}

	return res, nil
}

func (r *Runner) openStore(opts Options) (staging.Store, error) {
	if opts.InMemory {
		return staging.NewMemoryStore(), nil
	}
	store, err := staging.NewDirStore(opts.StagingDir, opts.KeepStaging)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStaging, err)
	}
	r.logger.Debug("staging frames", "dir", store.Dir())
	return store, nil
}

// TrimSequence decodes and trims every file of seq into store without
// packing. Undecodable files are returned as skipped; a sequence with no
// decodable file yields ErrNoFrames.
func (r *Runner) TrimSequence(ctx context.Context, seq importer.Sequence, store staging.Store, workers int, progress ProgressFunc) ([]model.Frame, []*FrameError, error) {
	n := newNotifier(progress)
	defer n.close()
	return r.trimSequence(ctx, seq, store, workers, n)
}

func (r *Runner) trimSequence(ctx context.Context, seq importer.Sequence, store staging.Store, workers int, n *notifier) ([]model.Frame, []*FrameError, error) {
	n.mark(StageCrop, 0)

	frames := make([]model.Frame, len(seq.Files))
	decodeErrs := make([]*FrameError, len(seq.Files))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, file := range seq.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := imaging.Open(file.Path)
			if err != nil {
				decodeErrs[i] = &FrameError{Path: file.Path, Index: file.Index, Kind: ErrDecode, Err: err}
			} else {
				frame, px := trim.Trim(img, file.Index)
				handle, err := store.Put(file.Index, px)
				if err != nil {
					return &FrameError{Path: file.Path, Index: file.Index, Kind: ErrStaging, Err: err}
				}
				frame.Source = handle
				frames[i] = frame
			}
			count := done.Add(1)
			n.send(Event{Stage: StageCrop, Fraction: float64(count) / float64(len(seq.Files))})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		kept    []model.Frame
		skipped []*FrameError
	)
	for i := range seq.Files {
		if fe := decodeErrs[i]; fe != nil {
			r.logger.Warn("skipping frame", "path", fe.Path, "err", fe.Err)
			skipped = append(skipped, fe)
			continue
		}
		kept = append(kept, frames[i])
	}
	n.mark(StageCrop, 1)

	if len(kept) == 0 {
		return nil, skipped, fmt.Errorf("%s: %w", seq.Base, ErrNoFrames)
	}
	return kept, skipped, nil
}

// pack runs the height search. Progress is estimated from how far the used
// width of each trial has shrunk toward the widest frame.
func (r *Runner) pack(frames []model.Frame, settings model.PackSettings, n *notifier) (model.Sheet, error) {
	n.mark(StagePack, 0)

	widest := 0
	for _, f := range frames {
		widest = max(widest, f.Width)
	}
	firstWidth := 0
	opt := engine.New(settings)
	opt.OnTrial = func(t model.Trial) {
		if firstWidth == 0 {
			firstWidth = t.Width
		}
		n.send(Event{Stage: StagePack, Fraction: packProgress(t.Width, widest, firstWidth)})
	}

	sheet, err := opt.Optimize(frames)
	if err != nil {
		return model.Sheet{}, err
	}
	n.mark(StagePack, 1)

	r.logger.Info("optimal sheet size",
		"width", sheet.Width,
		"height", sheet.Height,
		"area", sheet.Area(),
		"trials", len(sheet.Trials),
		"efficiency", fmt.Sprintf("%.1f%%", sheet.Efficiency()))
	if msg := ceilingWarning(sheet, settings); msg != "" {
		r.logger.Warn(msg, "max_height", settings.MaxHeight)
	}
	return sheet, nil
}

// ceilingWarning explains an unconverged sheet, or returns "".
func ceilingWarning(sheet model.Sheet, settings model.PackSettings) string {
	switch {
	case sheet.Converged:
		return ""
	case settings.MaxHeight > 0 && sheet.Height > settings.MaxHeight:
		return fmt.Sprintf("the tallest frame exceeds the %d px height ceiling; the sheet is %d px tall",
			settings.MaxHeight, sheet.Height)
	default:
		return "height ceiling reached before the sheet narrowed to the widest frame"
	}
}

func packProgress(usedWidth, widest, firstWidth int) float64 {
	if firstWidth <= 0 {
		return 0
	}
	return clamp01(1 - float64(usedWidth-widest)/float64(firstWidth))
}

func writeExtra(f Format, path, sheetPath string, sheet model.Sheet, settings model.PackSettings, preview image.Image) error {
	switch f {
	case FormatExcel:
		return export.ExportExcel(path, sheet)
	case FormatPDF:
		return export.ExportPDF(path, sheet, settings, preview)
	case FormatCards:
		return export.ExportFrameCards(path, sheet, filepath.Base(sheetPath))
	case FormatDXF:
		return export.ExportDXF(path, sheet)
	}
	return errors.New("unsupported format")
}
