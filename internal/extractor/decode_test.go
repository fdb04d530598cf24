package extractor_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockingest/internal/extractor"
)

func TestDecodeResult_StripsCodeFences(t *testing.T) {
	text := "```json\n" + `{
  "data": {
    "vendor": {"name": " Distribuidora Norte ", "tax_id": "30-71111111-1", "address": ""},
    "invoice": {"number": "0001-00001234", "date": "2024-05-02", "letter": "a", "currency": "ARS"},
    "totals": {"subtotal": 8429.75, "tax": "1.770,25", "total": "$ 10.200,00"},
    "line_items": [
      {"description": "COCA COLA 500 ML", "quantity": 12, "unit_price": "850", "total": 10200}
    ]
  },
  "confidence": 0.92,
  "warnings": []
}` + "\n```"

	out, err := extractor.DecodeResult(text, "test-model")

	require.NoError(t, err)
	assert.Equal(t, "test-model", out.ModelUsed)
	assert.Equal(t, 0.92, out.Confidence)
	assert.Equal(t, "Distribuidora Norte", out.Data.Vendor.Name)
	assert.Equal(t, "A", out.Data.Invoice.Letter)
	assert.True(t, out.Data.Totals.Tax.Equal(decimal.RequireFromString("1770.25")))
	assert.True(t, out.Data.Totals.Total.Equal(decimal.NewFromInt(10200)))
	require.Len(t, out.Data.LineItems, 1)
	assert.True(t, out.Data.LineItems[0].UnitPrice.Equal(decimal.NewFromInt(850)))
	assert.Empty(t, out.Warnings)
}

func TestDecodeResult_ClampsConfidenceAndWarnsOnEmptyItems(t *testing.T) {
	out, err := extractor.DecodeResult(`{"data":{"line_items":[]},"confidence":1.7}`, "m")

	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Confidence)
	assert.Empty(t, out.Data.LineItems)
	assert.Contains(t, out.Warnings, "no line items found on the invoice")
}

func TestDecodeResult_MissingConfidence(t *testing.T) {
	out, err := extractor.DecodeResult(`{"data":{"line_items":[{"description":"Agua","quantity":null,"unit_price":"","total":0}]}}`, "m")

	require.NoError(t, err)
	assert.Equal(t, 0.5, out.Confidence)
	require.Len(t, out.Data.LineItems, 1)
	assert.True(t, out.Data.LineItems[0].Quantity.IsZero())
}

func TestDecodeResult_SkipsBlankRows(t *testing.T) {
	out, err := extractor.DecodeResult(`{"data":{"line_items":[{"description":"  "},{"description":"Agua","quantity":1}]},"confidence":0.8}`, "m")

	require.NoError(t, err)
	require.Len(t, out.Data.LineItems, 1)
	assert.Equal(t, "Agua", out.Data.LineItems[0].Description)
}

func TestDecodeResult_NoJSON(t *testing.T) {
	_, err := extractor.DecodeResult("I could not read the invoice.", "m")
	assert.Error(t, err)
}

func TestDecodeResult_InvalidAmount(t *testing.T) {
	_, err := extractor.DecodeResult(`{"data":{"line_items":[{"description":"x","quantity":"doce"}]}}`, "m")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"850":         "850",
		"1.234,50":    "1234.5",
		"$ 1.234,50":  "1234.5",
		"1,234.50":    "1234.5",
		"12,5":        "12.5",
		"ARS 10200":   "10200",
		"":            "0",
		"1.234.567,8": "1234567.8",
		"$ 1.500":     "1500",
		"1.234.567":   "1234567",
		"$ 1.234.567": "1234567",
		"1,234,567":   "1234567",
		"12.5":        "12.5",
		"0.500":       "0.5",
		"1234.567":    "1234.567",
		"-1.500":      "-1500",
	}
	for in, want := range cases {
		got, err := extractor.ParseAmount(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%q -> %s", in, got)
	}
}

func TestDecodeResult_DotThousandsInStrings(t *testing.T) {
	out, err := extractor.DecodeResult(`{"data":{"line_items":[{"description":"Raqueta","quantity":1,"unit_price":"$ 1.234.567","total":"$ 1.500"}]},"confidence":0.9}`, "m")

	require.NoError(t, err)
	require.Len(t, out.Data.LineItems, 1)
	assert.True(t, out.Data.LineItems[0].UnitPrice.Equal(decimal.NewFromInt(1234567)))
	assert.True(t, out.Data.LineItems[0].Total.Equal(decimal.NewFromInt(1500)))
}
