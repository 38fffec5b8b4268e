package pos

import (
	"fmt"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InsufficientStockError reports a rejected quantity change together with
// how much of the product can still be added. The cart is untouched when
// this error is returned.
type InsufficientStockError struct {
	ProductID     int64
	ProductName   string
	Requested     decimal.Decimal
	Available     decimal.Decimal
	MaxAdditional decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %s, can add at most %s",
		e.ProductName, e.Requested.String(), e.MaxAdditional.String())
}

// CartLine is one product position in the cart. The product is a snapshot
// taken at add time; quantity follows the product's measurement unit rules.
type CartLine struct {
	Product  catalog.Product `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
}

// LineTotal returns quantity * unit price in USD, rounded to cents
func (l CartLine) LineTotal() valueobject.Money {
	return l.Product.UnitPrice().Multiply(l.Quantity).Round(2)
}

// Cart holds the lines and customer of an in-progress sale. It is not
// safe for concurrent use; the owning session serializes access.
type Cart struct {
	lines    []CartLine
	customer *Customer
}

// NewCart returns an empty cart
func NewCart() *Cart {
	return &Cart{}
}

// Lines returns a copy of the cart lines in insertion order
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty returns true when the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// LineCount returns the number of distinct products
func (c *Cart) LineCount() int {
	return len(c.lines)
}

// Quantity returns the current quantity of a product, zero if absent
func (c *Cart) Quantity(productID int64) decimal.Decimal {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return decimal.Zero
}

// Customer returns the selected customer, nil when none is set
func (c *Cart) Customer() *Customer {
	return c.customer
}

// SetCustomer attaches a customer to the sale
func (c *Cart) SetCustomer(customer Customer) {
	cp := customer
	c.customer = &cp
}

// ClearCustomer detaches the customer
func (c *Cart) ClearCustomer() {
	c.customer = nil
}

// AddProduct merges the requested quantity delta into the product's line,
// creating it when absent. The final quantity is normalized to the unit's
// precision; a final quantity of zero or less removes the line. Positive
// deltas on stock-tracked products are checked against availability and
// rejected atomically with an InsufficientStockError.
func (c *Cart) AddProduct(p catalog.Product, requested decimal.Decimal) error {
	if !p.IsActive {
		return shared.ErrProductInactive
	}
	if !p.MeasurementUnit.IsValid() {
		return shared.ErrInvalidInput
	}
	if p.MeasurementUnit == catalog.UnitCount && !requested.IsInteger() {
		return shared.ErrInvalidQuantity
	}

	current := c.Quantity(p.ID)
	final := p.MeasurementUnit.RoundQuantity(current.Add(requested))

	if final.Sign() <= 0 {
		c.RemoveProduct(p.ID)
		return nil
	}

	if requested.Sign() > 0 && p.MeasurementUnit.TracksStock() && final.GreaterThan(p.Stock) {
		max := p.MeasurementUnit.FloorQuantity(p.Stock.Sub(current))
		if max.IsNegative() {
			max = decimal.Zero
		}
		return &InsufficientStockError{
			ProductID:     p.ID,
			ProductName:   p.Name,
			Requested:     requested,
			Available:     p.Stock,
			MaxAdditional: max,
		}
	}

	if i := c.indexOf(p.ID); i >= 0 {
		c.lines[i].Quantity = final
		return nil
	}
	c.lines = append(c.lines, CartLine{Product: p, Quantity: final})
	return nil
}

// SetQuantity sets a line to an absolute quantity by replaying the delta
// through AddProduct, so all unit and stock rules apply identically.
// The product must already be in the cart.
func (c *Cart) SetQuantity(productID int64, quantity decimal.Decimal) error {
	i := c.indexOf(productID)
	if i < 0 {
		return shared.ErrNotFound
	}
	delta := quantity.Sub(c.lines[i].Quantity)
	return c.AddProduct(c.lines[i].Product, delta)
}

// RemoveProduct drops a line unconditionally, no-op when absent
func (c *Cart) RemoveProduct(productID int64) {
	if i := c.indexOf(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Clear empties the cart and detaches the customer
func (c *Cart) Clear() {
	c.lines = nil
	c.customer = nil
}

func (c *Cart) indexOf(productID int64) int {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
