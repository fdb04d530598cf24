// Package reconcile holds the editable line items of an ingestion and keeps
// their product associations and totals consistent.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockingest/internal/domain"
	"stockingest/internal/matcher"
)

// LineItemPatch is a partial update of a line item. Nil fields are left untouched.
type LineItemPatch struct {
	Description *string          `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// UnassociatedError lists the line items that block a commit.
type UnassociatedError struct {
	LineItemIDs []uuid.UUID
}

func (e *UnassociatedError) Error() string {
	ids := make([]string, len(e.LineItemIDs))
	for i, id := range e.LineItemIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("%v: %s", domain.ErrUnassociatedLineItems, strings.Join(ids, ", "))
}

func (e *UnassociatedError) Unwrap() error {
	return domain.ErrUnassociatedLineItems
}

// Sheet is the ordered list of line items under review.
type Sheet struct {
	items []domain.LineItem
}

// New wraps existing line items, e.g. ones loaded from storage.
func New(items []domain.LineItem) *Sheet {
	return &Sheet{items: items}
}

// Seed builds line items from raw invoice rows, associating each with the best
// catalog product above matcher.ProductThreshold. Rows are matched once here;
// later description edits do not re-run matching.
func Seed(raw []domain.OCRLineItem, catalog []domain.Product) *Sheet {
	items := make([]domain.LineItem, 0, len(raw))
	for _, r := range raw {
		qty := r.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		total := r.Total
		if total.IsZero() {
			total = qty.Mul(r.UnitPrice)
		}

		item := domain.LineItem{
			ID:          uuid.New(),
			Description: strings.TrimSpace(r.Description),
			Quantity:    qty,
			UnitPrice:   r.UnitPrice,
			Total:       total,
			MatchType:   domain.MatchNone,
		}
		if p, m := matcher.ResolveProduct(item.Description, catalog); p != nil {
			id := p.ID
			item.ProductID = &id
			item.ProductName = p.Name
			item.MatchConfidence = m.Confidence
			item.MatchType = m.Type
		}
		items = append(items, item)
	}
	return &Sheet{items: items}
}

// Items returns the line items in display order.
func (s *Sheet) Items() []domain.LineItem {
	return s.items
}

// Len returns the number of line items.
func (s *Sheet) Len() int {
	return len(s.items)
}

// Get returns a copy of the item with the given id.
func (s *Sheet) Get(id uuid.UUID) (domain.LineItem, error) {
	i, err := s.index(id)
	if err != nil {
		return domain.LineItem{}, err
	}
	return s.items[i], nil
}

// Update merges patch into the item and recomputes its total when quantity or
// unit price changed.
func (s *Sheet) Update(id uuid.UUID, patch LineItemPatch) (domain.LineItem, error) {
	i, err := s.index(id)
	if err != nil {
		return domain.LineItem{}, err
	}
	if patch.Quantity != nil && patch.Quantity.IsNegative() {
		return domain.LineItem{}, fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidLineItem)
	}
	if patch.UnitPrice != nil && patch.UnitPrice.IsNegative() {
		return domain.LineItem{}, fmt.Errorf("%w: unit price must not be negative", domain.ErrInvalidLineItem)
	}

	item := &s.items[i]
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	recompute := false
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
		recompute = true
	}
	if patch.UnitPrice != nil {
		item.UnitPrice = *patch.UnitPrice
		recompute = true
	}
	if recompute {
		item.Total = item.Quantity.Mul(item.UnitPrice)
	}
	return *item, nil
}

// AssociateProduct links the item to product at full confidence, or clears the
// link when product is nil. Either way the item stops being a new product.
func (s *Sheet) AssociateProduct(id uuid.UUID, product *domain.Product) (domain.LineItem, error) {
	i, err := s.index(id)
	if err != nil {
		return domain.LineItem{}, err
	}
	item := &s.items[i]
	item.IsNewProduct = false
	if product == nil {
		item.ProductID = nil
		item.ProductName = ""
		item.MatchConfidence = 0
		item.MatchType = domain.MatchNone
		return *item, nil
	}
	pid := product.ID
	item.ProductID = &pid
	item.ProductName = product.Name
	item.MatchConfidence = 1
	item.MatchType = domain.MatchManual
	return *item, nil
}

// MarkAsNewProduct flags the item so that committing creates a catalog product for it.
func (s *Sheet) MarkAsNewProduct(id uuid.UUID) (domain.LineItem, error) {
	i, err := s.index(id)
	if err != nil {
		return domain.LineItem{}, err
	}
	item := &s.items[i]
	item.ProductID = nil
	item.ProductName = ""
	item.MatchConfidence = 0
	item.MatchType = domain.MatchNone
	item.IsNewProduct = true
	return *item, nil
}

// Remove deletes the item.
func (s *Sheet) Remove(id uuid.UUID) error {
	i, err := s.index(id)
	if err != nil {
		return err
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// AddManual appends an empty, unassociated item for the user to fill in.
func (s *Sheet) AddManual() domain.LineItem {
	item := domain.LineItem{
		ID:        uuid.New(),
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: decimal.Zero,
		Total:     decimal.Zero,
		MatchType: domain.MatchNone,
		IsManual:  true,
	}
	s.items = append(s.items, item)
	return item
}

// Total is the sum of all line totals. It is not compared with the total
// printed on the invoice.
func (s *Sheet) Total() decimal.Decimal {
	sum := decimal.Zero
	for i := range s.items {
		sum = sum.Add(s.items[i].Total)
	}
	return sum
}

// Validate checks that the sheet can be committed: it is not empty and every
// item is either matched or marked as a new product.
func (s *Sheet) Validate() error {
	if len(s.items) == 0 {
		return domain.ErrNoLineItems
	}
	var blocked []uuid.UUID
	for i := range s.items {
		if s.items[i].State() == domain.AssociationUnassociated {
			blocked = append(blocked, s.items[i].ID)
		}
	}
	if len(blocked) > 0 {
		return &UnassociatedError{LineItemIDs: blocked}
	}
	return nil
}

func (s *Sheet) index(id uuid.UUID) (int, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return i, nil
		}
	}
	return -1, domain.ErrLineItemNotFound
}
