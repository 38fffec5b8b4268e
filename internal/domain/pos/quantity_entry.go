package pos

import (
	"errors"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// QuantityEntryState is the state of the quantity prompt shown for
// weighed/measured products.
type QuantityEntryState string

const (
	QuantityAwaitingInput QuantityEntryState = "AWAITING_INPUT"
	QuantitySubmitted     QuantityEntryState = "SUBMITTED"
)

// QuantityEntry is the short-lived sub-flow that collects a quantity for
// one product before it enters the cart. A failed submission keeps the
// entry open with a corrected pre-fill; cancelling it never touches the
// cart.
type QuantityEntry struct {
	state   QuantityEntryState
	product catalog.Product
	prefill decimal.Decimal
}

// NewQuantityEntry opens the prompt for a product, pre-filled with 1
func NewQuantityEntry(p catalog.Product) *QuantityEntry {
	return &QuantityEntry{
		state:   QuantityAwaitingInput,
		product: p,
		prefill: decimal.NewFromInt(1),
	}
}

// State returns the current entry state
func (e *QuantityEntry) State() QuantityEntryState {
	return e.state
}

// Product returns the product the entry was opened for
func (e *QuantityEntry) Product() catalog.Product {
	return e.product
}

// Prefill returns the quantity the prompt should currently suggest
func (e *QuantityEntry) Prefill() decimal.Decimal {
	return e.prefill
}

// Submit validates the typed quantity and pushes it into the cart.
// Counted products snap to the nearest whole number with a floor of 1.
// On a stock rejection the entry stays open and the pre-fill becomes the
// maximum quantity that can still be added.
func (e *QuantityEntry) Submit(cart *Cart, quantity decimal.Decimal) error {
	if e.state != QuantityAwaitingInput {
		return shared.ErrInvalidState
	}
	if quantity.Sign() <= 0 {
		return shared.ErrInvalidQuantity
	}

	if e.product.MeasurementUnit == catalog.UnitCount {
		quantity = quantity.Round(0)
		if quantity.LessThan(decimal.NewFromInt(1)) {
			quantity = decimal.NewFromInt(1)
		}
	}

	err := cart.AddProduct(e.product, quantity)
	if err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			e.prefill = stockErr.MaxAdditional
		}
		return err
	}

	e.state = QuantitySubmitted
	return nil
}
