package matcher

import (
	"strings"

	"stockingest/internal/domain"
)

var taxIDStripper = strings.NewReplacer("-", "", ".", "", " ", "", "\t", "", "\n", "")

// NormalizeTaxID strips separators so "30-12345678-9" and "30123456789" compare equal.
func NormalizeTaxID(taxID string) string {
	return taxIDStripper.Replace(strings.TrimSpace(taxID))
}

// ResolveSupplier picks the supplier an invoice was issued by. An exact tax id
// match wins outright at confidence 1; otherwise the vendor name is compared
// against each supplier's name and business name.
func ResolveSupplier(vendorName, vendorTaxID string, suppliers []domain.Supplier) (*domain.Supplier, Match) {
	if taxID := NormalizeTaxID(vendorTaxID); taxID != "" {
		for i := range suppliers {
			if NormalizeTaxID(suppliers[i].TaxID) == taxID {
				return &suppliers[i], Match{Confidence: 1, Type: domain.MatchTaxID}
			}
		}
	}

	if strings.TrimSpace(vendorName) == "" {
		return nil, NoMatch
	}

	idx, m, ok := Best(vendorName, suppliers, func(s domain.Supplier) []string {
		return []string{s.Name, s.BusinessName}
	}, SupplierThreshold)
	if !ok {
		return nil, NoMatch
	}
	return &suppliers[idx], m
}

// ResolveProduct picks the catalog product an invoice line describes.
func ResolveProduct(description string, products []domain.Product) (*domain.Product, Match) {
	if len(products) == 0 || strings.TrimSpace(description) == "" {
		return nil, NoMatch
	}

	idx, m, ok := Best(description, products, func(p domain.Product) []string {
		return []string{p.Name}
	}, ProductThreshold)
	if !ok {
		return nil, NoMatch
	}
	return &products[idx], m
}
