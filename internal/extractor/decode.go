package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"stockingest/internal/domain"
	"stockingest/internal/port"
)

// flexDecimal accepts JSON numbers, numeric strings in either dot or
// Argentine comma notation, currency-prefixed strings, "" and null.
type flexDecimal struct {
	decimal.Decimal
}

func (f *flexDecimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		f.Decimal = decimal.Zero
		return nil
	}
	if b[0] != '"' {
		d, err := decimal.NewFromString(string(b))
		if err != nil {
			return fmt.Errorf("invalid number %s: %w", b, err)
		}
		f.Decimal = d
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	d, err := ParseAmount(s)
	if err != nil {
		return err
	}
	f.Decimal = d
	return nil
}

// ParseAmount parses a printed amount such as "$ 1.234,50", "1,234.50",
// "$ 1.500" or "850". When both separators appear the last one is the
// decimal separator. A lone comma is decimal. Dots alone are thousands
// separators when repeated or when the only dot groups exactly three digits
// after a non-zero integer part; otherwise the dot is decimal.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "ARS")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, nil
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && lastComma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0 && strings.Count(s, ",") > 1:
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && dotGroupsThousands(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

func dotGroupsThousands(s string) bool {
	if strings.Count(s, ".") > 1 {
		return true
	}
	i := strings.Index(s, ".")
	intPart := strings.TrimPrefix(s[:i], "-")
	if intPart == "" || intPart[0] == '0' || len(intPart) > 3 {
		return false
	}
	return len(s)-i-1 == 3
}

type rawLineItem struct {
	Description string      `json:"description"`
	Quantity    flexDecimal `json:"quantity"`
	UnitPrice   flexDecimal `json:"unit_price"`
	Total       flexDecimal `json:"total"`
}

type rawResult struct {
	Data struct {
		Vendor  domain.OCRVendor  `json:"vendor"`
		Invoice domain.OCRInvoice `json:"invoice"`
		Totals  struct {
			Subtotal flexDecimal `json:"subtotal"`
			Tax      flexDecimal `json:"tax"`
			Total    flexDecimal `json:"total"`
		} `json:"totals"`
		LineItems []rawLineItem `json:"line_items"`
	} `json:"data"`
	Confidence *float64 `json:"confidence"`
	Warnings   []string `json:"warnings"`
}

// DecodeResult turns the model's text answer into an ExtractOutput. It
// tolerates code fences and prose around the JSON object.
func DecodeResult(text, model string) (*port.ExtractOutput, error) {
	body := extractJSONObject(text)
	if body == "" {
		return nil, fmt.Errorf("no JSON object in model output (raw: %s)", Truncate(text, 500))
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("parsing model JSON output: %w (raw: %s)", err, Truncate(text, 500))
	}

	out := &port.ExtractOutput{
		Data: domain.OCRData{
			Vendor:  trimVendor(raw.Data.Vendor),
			Invoice: trimInvoice(raw.Data.Invoice),
			Totals: domain.OCRTotals{
				Subtotal: raw.Data.Totals.Subtotal.Decimal,
				Tax:      raw.Data.Totals.Tax.Decimal,
				Total:    raw.Data.Totals.Total.Decimal,
			},
			LineItems: make([]domain.OCRLineItem, 0, len(raw.Data.LineItems)),
		},
		Warnings:  raw.Warnings,
		ModelUsed: model,
	}

	for _, li := range raw.Data.LineItems {
		desc := strings.TrimSpace(li.Description)
		if desc == "" && li.Quantity.IsZero() && li.UnitPrice.IsZero() && li.Total.IsZero() {
			continue
		}
		out.Data.LineItems = append(out.Data.LineItems, domain.OCRLineItem{
			Description: desc,
			Quantity:    li.Quantity.Decimal,
			UnitPrice:   li.UnitPrice.Decimal,
			Total:       li.Total.Decimal,
		})
	}

	switch {
	case raw.Confidence == nil:
		out.Confidence = 0.5
		out.Warnings = append(out.Warnings, "model did not report a confidence")
	case *raw.Confidence < 0:
		out.Confidence = 0
	case *raw.Confidence > 1:
		out.Confidence = 1
	default:
		out.Confidence = *raw.Confidence
	}

	if len(out.Data.LineItems) == 0 {
		out.Warnings = append(out.Warnings, "no line items found on the invoice")
	}
	return out, nil
}

// extractJSONObject returns the outermost {...} span of text, or "".
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}

func trimVendor(v domain.OCRVendor) domain.OCRVendor {
	v.Name = strings.TrimSpace(v.Name)
	v.TaxID = strings.TrimSpace(v.TaxID)
	v.Address = strings.TrimSpace(v.Address)
	return v
}

func trimInvoice(inv domain.OCRInvoice) domain.OCRInvoice {
	inv.Number = strings.TrimSpace(inv.Number)
	inv.Date = strings.TrimSpace(inv.Date)
	inv.Letter = strings.ToUpper(strings.TrimSpace(inv.Letter))
	inv.Currency = strings.TrimSpace(inv.Currency)
	return inv
}

// Truncate shortens s for inclusion in error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
