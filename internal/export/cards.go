package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/spritepack/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// CardInfo holds the data encoded into each frame card's QR code. It is the
// frame's metadata record plus the sheet it belongs to. ID is the frame's
// per-run identifier, so cards printed from different runs of the same
// sequence can be told apart.
type CardInfo struct {
	ID      string  `json:"id"`
	Sheet   string  `json:"sheet"`
	Index   int     `json:"index"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	AnchorX float64 `json:"anchor_x"`
	AnchorY float64 `json:"anchor_y"`
	Empty   bool    `json:"empty,omitempty"`
}

// Card layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each card cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	cardMarginTop  = 12.7 // mm
	cardMarginLeft = 4.8  // mm
	cardWidth      = 66.7 // mm per card
	cardHeight     = 25.4 // mm per card
	cardCols       = 3
	cardRows       = 10
	cardsPerPage   = cardCols * cardRows
	qrSize         = 20.0 // QR code size in mm
	cardPadding    = 2.0  // mm internal padding
)

// ExportFrameCards generates a PDF of QR-coded cards, one per placed frame in
// index order. Each QR code encodes the frame's CardInfo as JSON so a
// scanned card can be checked against the metadata file.
func ExportFrameCards(path string, sheet model.Sheet, sheetName string) error {
	cards := CollectCardInfos(sheet, sheetName)
	if len(cards) == 0 {
		return fmt.Errorf("no frames placed to generate cards for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, card := range cards {
		if i%cardsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % cardsPerPage
		col := posOnPage % cardCols
		row := posOnPage / cardCols

		x := cardMarginLeft + float64(col)*cardWidth
		y := cardMarginTop + float64(row)*cardHeight

		if err := renderCard(pdf, x, y, card); err != nil {
			return fmt.Errorf("failed to render card for frame %d: %w", card.Index, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderCard draws a single frame card at the given position.
func renderCard(pdf *fpdf.Fpdf, x, y float64, info CardInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, cardWidth, cardHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal card info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_frame_%d", info.Index)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + cardWidth - qrSize - cardPadding
	qrY := y + (cardHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + cardPadding
	textW := cardWidth - qrSize - 3*cardPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+cardPadding)
	title := fmt.Sprintf("Frame %d", info.Index)
	if info.ID != "" {
		title += " #" + info.ID
	}
	pdf.CellFormat(textW, 4.5, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+cardPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%d x %d px @ (%d, %d)", info.Width, info.Height, info.X, info.Y), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+cardPadding+9)
	anchor := fmt.Sprintf("Anchor (%s, %s)", FormatAnchor(info.AnchorX), FormatAnchor(info.AnchorY))
	pdf.CellFormat(textW, 3, anchor, "", 1, "L", false, 0, "")

	sheetName := info.Sheet
	if pdf.GetStringWidth(sheetName) > textW {
		for len(sheetName) > 0 && pdf.GetStringWidth(sheetName+"...") > textW {
			sheetName = sheetName[:len(sheetName)-1]
		}
		sheetName += "..."
	}
	pdf.SetXY(textX, y+cardPadding+12.5)
	pdf.CellFormat(textW, 3, sheetName, "", 1, "L", false, 0, "")

	if info.Empty {
		pdf.SetXY(textX, y+cardPadding+16)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Fully transparent", "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// CollectCardInfos extracts card information from a packed sheet in
// ascending frame index order.
func CollectCardInfos(sheet model.Sheet, sheetName string) []CardInfo {
	placements := sheet.ByIndex()
	cards := make([]CardInfo, 0, len(placements))
	for _, p := range placements {
		cards = append(cards, CardInfo{
			ID:      p.Frame.ID,
			Sheet:   sheetName,
			Index:   p.Frame.Index,
			X:       p.X,
			Y:       p.Y,
			Width:   p.Frame.Width,
			Height:  p.Frame.Height,
			AnchorX: p.Frame.Anchor.X,
			AnchorY: p.Frame.Anchor.Y,
			Empty:   p.Frame.Degenerate,
		})
	}
	return cards
}
