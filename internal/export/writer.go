// Package export renders the reconciled line items of an ingestion as CSV or
// XLSX so the reviewer can keep a copy next to the paper invoice.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"stockingest/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a query value to a Format. An empty value means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", domain.ErrUnsupportedExportFormat
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

const sheetName = "Factura"

var columns = []string{
	"Descripción",
	"Cantidad",
	"Precio unitario",
	"Total",
	"Estado",
	"Producto",
	"Confianza",
}

// Write renders ing in the given format.
func Write(w io.Writer, format Format, ing *domain.Ingestion) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, ing)
	case FormatXLSX:
		return WriteXLSX(w, ing)
	default:
		return domain.ErrUnsupportedExportFormat
	}
}

// WriteCSV writes a BOM, the header, one row per line item and a totals row.
func WriteCSV(w io.Writer, ing *domain.Ingestion) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for i := range ing.LineItems {
		if err := cw.Write(itemToRow(&ing.LineItems[i])); err != nil {
			return err
		}
	}
	if err := cw.Write(totalRow(ing)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same table as WriteCSV to a single-sheet workbook,
// with numeric cells for quantities and amounts.
func WriteXLSX(w io.Writer, ing *domain.Ingestion) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}

	row := 2
	for i := range ing.LineItems {
		item := &ing.LineItems[i]
		values := []interface{}{
			item.Description,
			item.Quantity.InexactFloat64(),
			item.UnitPrice.InexactFloat64(),
			item.Total.InexactFloat64(),
			string(item.State()),
			item.ProductName,
			item.MatchConfidence,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("export.WriteXLSX: %w", err)
		}
		row++
	}

	totalCell, _ := excelize.CoordinatesToCellName(1, row)
	totals := []interface{}{"Total", nil, nil, lineItemsTotal(ing).InexactFloat64()}
	if err := f.SetSheetRow(sheetName, totalCell, &totals); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	lastTotal, _ := excelize.CoordinatesToCellName(len(columns), row)
	if err := f.SetCellStyle(sheetName, totalCell, lastTotal, bold); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}

	return f.Write(w)
}

func itemToRow(item *domain.LineItem) []string {
	return []string{
		item.Description,
		item.Quantity.String(),
		formatMoney(item.UnitPrice),
		formatMoney(item.Total),
		string(item.State()),
		item.ProductName,
		strconv.FormatFloat(item.MatchConfidence, 'f', 2, 64),
	}
}

func totalRow(ing *domain.Ingestion) []string {
	row := make([]string, len(columns))
	row[0] = "Total"
	row[3] = formatMoney(lineItemsTotal(ing))
	return row
}

func lineItemsTotal(ing *domain.Ingestion) decimal.Decimal {
	sum := decimal.Zero
	for i := range ing.LineItems {
		sum = sum.Add(ing.LineItems[i].Total)
	}
	return sum
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns factura_{invoice number or ingestion id}_{YYYY-MM-DD}.{ext}.
func BuildFilename(ing *domain.Ingestion, format Format) string {
	name := SanitizeFilename(ing.Invoice.Number)
	if name == "" {
		name = ing.ID.String()
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("factura_%s_%s.%s", name, date, format)
}
