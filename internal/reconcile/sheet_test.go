package reconcile_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockingest/internal/domain"
	"stockingest/internal/reconcile"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func catalog() []domain.Product {
	return []domain.Product{
		{ID: uuid.New(), Name: "Coca Cola 500ml"},
		{ID: uuid.New(), Name: "Gatorade Azul 750ml"},
	}
}

func TestSeed_MatchesAndLeavesOthersUnassociated(t *testing.T) {
	products := catalog()
	raw := []domain.OCRLineItem{
		{Description: "COCA COLA 500 ML", Quantity: dec("12"), UnitPrice: dec("850"), Total: dec("10200")},
		{Description: "Pelota Penn", Quantity: dec("3"), UnitPrice: dec("4000")},
	}

	sheet := reconcile.Seed(raw, products)
	items := sheet.Items()

	require.Len(t, items, 2)
	require.NotNil(t, items[0].ProductID)
	assert.Equal(t, products[0].ID, *items[0].ProductID)
	assert.Equal(t, "Coca Cola 500ml", items[0].ProductName)
	assert.InDelta(t, 0.6, items[0].MatchConfidence, 1e-9)
	assert.Equal(t, domain.MatchToken, items[0].MatchType)
	assert.False(t, items[0].IsNewProduct)
	assert.True(t, items[0].Total.Equal(dec("10200")))

	assert.Nil(t, items[1].ProductID)
	assert.False(t, items[1].IsNewProduct)
	assert.Equal(t, domain.AssociationUnassociated, items[1].State())
	assert.Equal(t, 0.0, items[1].MatchConfidence)
	assert.True(t, items[1].Total.Equal(dec("12000")), "total derived when OCR total is missing")
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestSeed_ZeroQuantityDefaultsToOne(t *testing.T) {
	sheet := reconcile.Seed([]domain.OCRLineItem{{Description: "Agua", UnitPrice: dec("100")}}, nil)

	item := sheet.Items()[0]
	assert.True(t, item.Quantity.Equal(dec("1")))
	assert.True(t, item.Total.Equal(dec("100")))
}

func TestSeed_KeepsPrintedTotalUntilEdited(t *testing.T) {
	sheet := reconcile.Seed([]domain.OCRLineItem{
		{Description: "Agua 500ml", Quantity: dec("10"), UnitPrice: dec("100"), Total: dec("950")},
	}, nil)
	item := sheet.Items()[0]
	assert.True(t, item.Total.Equal(dec("950")), "discounted invoice total kept on seed")

	updated, err := sheet.Update(item.ID, reconcile.LineItemPatch{UnitPrice: decPtr("100")})
	require.NoError(t, err)
	assert.True(t, updated.Total.Equal(dec("1000")))
}

func TestUpdate_RecomputesTotal(t *testing.T) {
	sheet := reconcile.Seed([]domain.OCRLineItem{{Description: "Agua", Quantity: dec("1"), UnitPrice: dec("10")}}, nil)
	id := sheet.Items()[0].ID

	item, err := sheet.Update(id, reconcile.LineItemPatch{Quantity: decPtr("3")})

	require.NoError(t, err)
	assert.True(t, item.Total.Equal(dec("30")))
	assert.True(t, sheet.Items()[0].Total.Equal(dec("30")))
}

func TestUpdate_DescriptionOnlyKeepsTotalAndAssociation(t *testing.T) {
	products := catalog()
	sheet := reconcile.Seed([]domain.OCRLineItem{
		{Description: "Coca Cola 500ml", Quantity: dec("2"), UnitPrice: dec("10"), Total: dec("25")},
	}, products)
	id := sheet.Items()[0].ID

	item, err := sheet.Update(id, reconcile.LineItemPatch{Description: strPtr("Gatorade Azul 750ml")})

	require.NoError(t, err)
	assert.Equal(t, "Gatorade Azul 750ml", item.Description)
	assert.True(t, item.Total.Equal(dec("25")))
	require.NotNil(t, item.ProductID)
	assert.Equal(t, products[0].ID, *item.ProductID, "editing the description does not re-run matching")
}

func TestUpdate_RejectsNegativeValues(t *testing.T) {
	sheet := reconcile.Seed([]domain.OCRLineItem{{Description: "Agua", Quantity: dec("1"), UnitPrice: dec("10")}}, nil)
	id := sheet.Items()[0].ID

	_, err := sheet.Update(id, reconcile.LineItemPatch{UnitPrice: decPtr("-1")})

	assert.ErrorIs(t, err, domain.ErrInvalidLineItem)
	assert.True(t, sheet.Items()[0].UnitPrice.Equal(dec("10")))
}

func TestUpdate_UnknownID(t *testing.T) {
	sheet := reconcile.New(nil)

	_, err := sheet.Update(uuid.New(), reconcile.LineItemPatch{})

	assert.ErrorIs(t, err, domain.ErrLineItemNotFound)
}

func TestAssociateProduct_SetsFullConfidenceAndClearsNewFlag(t *testing.T) {
	products := catalog()
	sheet := reconcile.Seed([]domain.OCRLineItem{{Description: "algo", Quantity: dec("1")}}, nil)
	id := sheet.Items()[0].ID
	_, err := sheet.MarkAsNewProduct(id)
	require.NoError(t, err)

	item, err := sheet.AssociateProduct(id, &products[1])

	require.NoError(t, err)
	require.NotNil(t, item.ProductID)
	assert.Equal(t, products[1].ID, *item.ProductID)
	assert.Equal(t, products[1].Name, item.ProductName)
	assert.Equal(t, 1.0, item.MatchConfidence)
	assert.Equal(t, domain.MatchManual, item.MatchType)
	assert.False(t, item.IsNewProduct)
	assert.Equal(t, domain.AssociationMatched, item.State())
}

func TestAssociateProduct_NilClears(t *testing.T) {
	sheet := reconcile.Seed([]domain.OCRLineItem{{Description: "Coca Cola 500ml"}}, catalog())
	id := sheet.Items()[0].ID

	item, err := sheet.AssociateProduct(id, nil)

	require.NoError(t, err)
	assert.Nil(t, item.ProductID)
	assert.Empty(t, item.ProductName)
	assert.Equal(t, 0.0, item.MatchConfidence)
	assert.False(t, item.IsNewProduct)
	assert.Equal(t, domain.AssociationUnassociated, item.State())
}

func TestMarkAsNewProduct_ClearsAssociation(t *testing.T) {
	sheet := reconcile.Seed([]domain.OCRLineItem{{Description: "Coca Cola 500ml"}}, catalog())
	id := sheet.Items()[0].ID
	require.NotNil(t, sheet.Items()[0].ProductID)

	item, err := sheet.MarkAsNewProduct(id)

	require.NoError(t, err)
	assert.Nil(t, item.ProductID)
	assert.Empty(t, item.ProductName)
	assert.Equal(t, 0.0, item.MatchConfidence)
	assert.True(t, item.IsNewProduct)
	assert.Equal(t, domain.AssociationNewProduct, item.State())
}

func TestRemoveAndAddManual(t *testing.T) {
	sheet := reconcile.Seed([]domain.OCRLineItem{
		{Description: "a", Quantity: dec("1"), UnitPrice: dec("1")},
		{Description: "b", Quantity: dec("1"), UnitPrice: dec("2")},
	}, nil)
	first := sheet.Items()[0].ID

	require.NoError(t, sheet.Remove(first))
	assert.Equal(t, 1, sheet.Len())
	assert.Equal(t, "b", sheet.Items()[0].Description)
	assert.ErrorIs(t, sheet.Remove(first), domain.ErrLineItemNotFound)

	added := sheet.AddManual()
	assert.Equal(t, 2, sheet.Len())
	assert.Equal(t, "", added.Description)
	assert.True(t, added.Quantity.Equal(dec("1")))
	assert.True(t, added.UnitPrice.IsZero())
	assert.True(t, added.IsManual)
	assert.Equal(t, domain.AssociationUnassociated, added.State())
	assert.Equal(t, added.ID, sheet.Items()[1].ID)
}

func TestTotal_SumsLineTotals(t *testing.T) {
	sheet := reconcile.Seed([]domain.OCRLineItem{
		{Description: "a", Quantity: dec("2"), UnitPrice: dec("50")},
		{Description: "b", Quantity: dec("1"), UnitPrice: dec("100")},
	}, nil)
	id := sheet.Items()[1].ID
	_, err := sheet.Update(id, reconcile.LineItemPatch{Quantity: decPtr("1.5")})
	require.NoError(t, err)

	assert.True(t, sheet.Total().Equal(dec("250")), sheet.Total().String())
}

func TestValidate(t *testing.T) {
	sheet := reconcile.Seed([]domain.OCRLineItem{
		{Description: "Coca Cola 500ml"},
		{Description: "Pelota"},
	}, catalog())
	unmatched := sheet.Items()[1].ID

	err := sheet.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnassociatedLineItems)
	var uerr *reconcile.UnassociatedError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, []uuid.UUID{unmatched}, uerr.LineItemIDs)
	assert.Contains(t, err.Error(), unmatched.String())

	_, err = sheet.MarkAsNewProduct(unmatched)
	require.NoError(t, err)
	assert.NoError(t, sheet.Validate())
}

func TestValidate_Empty(t *testing.T) {
	assert.ErrorIs(t, reconcile.New(nil).Validate(), domain.ErrNoLineItems)
}
