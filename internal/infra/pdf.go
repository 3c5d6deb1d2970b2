package infra

// pdf.go renders the shopping list as a printable A4 page using go-pdf/fpdf:
//   - title and generation date
//   - the active filter (show mode and search text)
//   - one row per product: name, unit, stock on hand, minimum, missing
//
// The document is returned in memory; nothing is written to disk.

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/bryan1993-HA/domovra-addons/internal/dto"

	"github.com/go-pdf/fpdf"
)

// GenerateShoppingListPDF renders list into a PDF document.
func GenerateShoppingListPDF(list dto.ShoppingListResponse) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle("Domovra shopping list", true)
	pdf.AddPage()

	// Core fonts are cp1252; accented names need the translator.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Shopping list", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	filter := "Show: " + list.Show
	if list.Q != "" {
		filter += "   Search: " + list.Q
	}
	pdf.CellFormat(contentW, 5, tr(filter), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "As of "+list.AsOf, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Table header ─────────────────────────────────────────────────────────
	colName := contentW * 0.46
	colUnit := contentW * 0.12
	colQty := contentW * 0.14
	colMin := contentW * 0.14
	colMiss := contentW * 0.14

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(colName, 7, "Product", "B", 0, "L", true, 0, "")
	pdf.CellFormat(colUnit, 7, "Unit", "B", 0, "L", true, 0, "")
	pdf.CellFormat(colQty, 7, "In stock", "B", 0, "R", true, 0, "")
	pdf.CellFormat(colMin, 7, "Minimum", "B", 0, "R", true, 0, "")
	pdf.CellFormat(colMiss, 7, "To buy", "B", 1, "R", true, 0, "")

	// ── Rows ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	if len(list.Items) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 7, "Nothing to buy.", "", 1, "L", false, 0, "")
	}
	for _, item := range list.Items {
		name := item.Name
		if r := []rune(name); len(r) > 48 {
			name = string(r[:47]) + "..."
		}
		minQty := "-"
		if item.MinQty != nil {
			minQty = formatQty(*item.MinQty)
		}
		pdf.CellFormat(colName, 6, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(colUnit, 6, tr(item.Unit), "", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 6, formatQty(item.QtyTotal), "", 0, "R", false, 0, "")
		pdf.CellFormat(colMin, 6, minQty, "", 0, "R", false, 0, "")
		pdf.CellFormat(colMiss, 6, formatQty(item.Missing), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("%d item(s)", len(list.Items)), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render shopping list: %w", err)
	}
	return buf.Bytes(), nil
}

func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
