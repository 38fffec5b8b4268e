package catalog

import (
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MeasurementUnit classifies how a product's quantity is expressed and
// whether its stock is tracked.
type MeasurementUnit string

const (
	UnitCount    MeasurementUnit = "UNIT"
	UnitKilogram MeasurementUnit = "KG"
	UnitMeter    MeasurementUnit = "METER"
	UnitLiter    MeasurementUnit = "LITER"
	UnitService  MeasurementUnit = "SERVICE"
)

// FractionalScale is the quantity precision for weighed/measured products.
const FractionalScale = 3

// IsValid returns true for a known measurement unit
func (u MeasurementUnit) IsValid() bool {
	switch u {
	case UnitCount, UnitKilogram, UnitMeter, UnitLiter, UnitService:
		return true
	}
	return false
}

// AllowsFractions returns true when quantities may carry decimals
func (u MeasurementUnit) AllowsFractions() bool {
	return u != UnitCount
}

// TracksStock returns true when availability is enforced at sale time.
// Services are sold without a stock figure.
func (u MeasurementUnit) TracksStock() bool {
	return u != UnitService
}

// RoundQuantity normalizes a requested quantity to the unit's precision:
// whole numbers for counted products, three decimals otherwise.
func (u MeasurementUnit) RoundQuantity(q decimal.Decimal) decimal.Decimal {
	if u == UnitCount {
		return q.Round(0)
	}
	return q.Round(FractionalScale)
}

// FloorQuantity truncates a quantity down to the unit's precision. Used
// when deriving how much can still be sold so availability is never
// overstated by rounding up.
func (u MeasurementUnit) FloorQuantity(q decimal.Decimal) decimal.Decimal {
	if u == UnitCount {
		return q.Floor()
	}
	return q.Truncate(FractionalScale)
}

// Product is a read model of a catalog item as served by the inventory
// collaborator. Prices are USD; stock is a decimal to cover weighed goods.
type Product struct {
	ID              int64           `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Category        string          `json:"category,omitempty"`
	MeasurementUnit MeasurementUnit `json:"measurement_unit"`
	Price           decimal.Decimal `json:"price"`
	Stock           decimal.Decimal `json:"stock"`
	IsActive        bool            `json:"is_active"`
}

// NewProduct builds a validated Product
func NewProduct(id int64, sku, name string, unit MeasurementUnit, price, stock decimal.Decimal) (*Product, error) {
	if id <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "product id must be positive")
	}
	if sku == "" || name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "product sku and name are required")
	}
	if !unit.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "unknown measurement unit: "+string(unit))
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "product price cannot be negative")
	}
	return &Product{
		ID:              id,
		SKU:             sku,
		Name:            name,
		MeasurementUnit: unit,
		Price:           price,
		Stock:           stock,
		IsActive:        true,
	}, nil
}

// UnitPrice returns the USD price as Money
func (p *Product) UnitPrice() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Price)
}
