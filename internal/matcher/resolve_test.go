package matcher_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockingest/internal/domain"
	"stockingest/internal/matcher"
)

func testSuppliers() []domain.Supplier {
	return []domain.Supplier{
		{ID: uuid.New(), Name: "Distribuidora Norte", BusinessName: "Norte Bebidas S.R.L.", TaxID: "30-71111111-1", IsActive: true},
		{ID: uuid.New(), Name: "Deportes Sur", BusinessName: "Sur Deportes S.A.", TaxID: "30123456789", IsActive: true},
		{ID: uuid.New(), Name: "Kiosco Central", BusinessName: "", TaxID: "", IsActive: true},
	}
}

func TestNormalizeTaxID(t *testing.T) {
	assert.Equal(t, "30123456789", matcher.NormalizeTaxID("30-12345678-9"))
	assert.Equal(t, "30123456789", matcher.NormalizeTaxID(" 30 12345678 9 "))
	assert.Equal(t, "30123456789", matcher.NormalizeTaxID("30.12345678.9"))
	assert.Equal(t, "", matcher.NormalizeTaxID(" - "))
}

func TestResolveSupplier_TaxIDAfterNormalization(t *testing.T) {
	suppliers := testSuppliers()

	s, m := matcher.ResolveSupplier("", "30-12345678-9", suppliers)

	require.NotNil(t, s)
	assert.Equal(t, suppliers[1].ID, s.ID)
	assert.Equal(t, 1.0, m.Confidence)
	assert.Equal(t, domain.MatchTaxID, m.Type)
}

func TestResolveSupplier_TaxIDWinsRegardlessOfName(t *testing.T) {
	suppliers := testSuppliers()

	s, m := matcher.ResolveSupplier("Distribuidora Norte", "30123456789", suppliers)

	require.NotNil(t, s)
	assert.Equal(t, suppliers[1].ID, s.ID)
	assert.Equal(t, 1.0, m.Confidence)
}

func TestResolveSupplier_ByBusinessName(t *testing.T) {
	suppliers := testSuppliers()

	s, m := matcher.ResolveSupplier("NORTE BEBIDAS S.R.L.", "", suppliers)

	require.NotNil(t, s)
	assert.Equal(t, suppliers[0].ID, s.ID)
	assert.Equal(t, domain.MatchExact, m.Type)
}

func TestResolveSupplier_UnknownTaxIDFallsBackToName(t *testing.T) {
	suppliers := testSuppliers()

	s, m := matcher.ResolveSupplier("Kiosco Central", "20-99999999-9", suppliers)

	require.NotNil(t, s)
	assert.Equal(t, suppliers[2].ID, s.ID)
	assert.Equal(t, 1.0, m.Confidence)
	assert.Equal(t, domain.MatchExact, m.Type)
}

func TestResolveSupplier_NameBelowThreshold(t *testing.T) {
	// "central" alone is a substring of "kiosco central": 7/14*0.8 = 0.4 < 0.5
	s, m := matcher.ResolveSupplier("central", "", testSuppliers())

	assert.Nil(t, s)
	assert.Equal(t, 0.0, m.Confidence)
}

func TestResolveSupplier_NoInput(t *testing.T) {
	s, m := matcher.ResolveSupplier("", "", testSuppliers())

	assert.Nil(t, s)
	assert.Equal(t, matcher.NoMatch, m)
}

func TestResolveSupplier_EmptyCatalog(t *testing.T) {
	s, _ := matcher.ResolveSupplier("Distribuidora Norte", "30-71111111-1", nil)
	assert.Nil(t, s)
}

func TestResolveSupplier_SkipsSuppliersWithoutTaxID(t *testing.T) {
	suppliers := []domain.Supplier{{ID: uuid.New(), Name: "Sin CUIT", TaxID: ""}}

	s, _ := matcher.ResolveSupplier("", "--", suppliers)

	assert.Nil(t, s)
}

func TestResolveProduct_EmptyCatalog(t *testing.T) {
	p, m := matcher.ResolveProduct("Coca Cola", nil)

	assert.Nil(t, p)
	assert.Equal(t, 0.0, m.Confidence)
}

func TestResolveProduct_TokenTierScenario(t *testing.T) {
	p1 := uuid.New()
	products := []domain.Product{
		{ID: uuid.New(), Name: "Gatorade 500ml"},
		{ID: p1, Name: "Coca Cola 500ml"},
	}

	p, m := matcher.ResolveProduct("COCA COLA 500 ML", products)

	require.NotNil(t, p)
	assert.Equal(t, p1, p.ID)
	assert.GreaterOrEqual(t, m.Confidence, matcher.ProductThreshold)
}

func TestResolveProduct_PicksHighest(t *testing.T) {
	products := []domain.Product{
		{ID: uuid.New(), Name: "Agua"},
		{ID: uuid.New(), Name: "Agua Mineral 500ml"},
	}

	p, m := matcher.ResolveProduct("agua mineral 500ml", products)

	require.NotNil(t, p)
	assert.Equal(t, "Agua Mineral 500ml", p.Name)
	assert.Equal(t, 1.0, m.Confidence)
}

func TestResolveProduct_NoCandidateClearsThreshold(t *testing.T) {
	products := []domain.Product{{ID: uuid.New(), Name: "Pelota de futbol N5"}}

	p, m := matcher.ResolveProduct("Grip raqueta", products)

	assert.Nil(t, p)
	assert.Equal(t, matcher.NoMatch, m)
}
