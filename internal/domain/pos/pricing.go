package pos

import (
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TaxRate is the IVA rate applied to the subtotal (16%).
var TaxRate = decimal.NewFromFloat(0.16)

// Totals are the USD figures derived from the cart. They are never
// stored; callers recompute them after every cart mutation.
type Totals struct {
	Subtotal valueobject.Money `json:"subtotal"`
	Tax      valueobject.Money `json:"tax"`
	Total    valueobject.Money `json:"total"`
}

// CalculateTotals derives subtotal, tax and total from the cart lines.
// Each line total is rounded to cents before summing; tax and total are
// rounded at aggregation so subtotal + tax always equals total.
func CalculateTotals(c *Cart) Totals {
	subtotal := valueobject.ZeroUSD()
	for _, line := range c.Lines() {
		subtotal = subtotal.MustAdd(line.LineTotal())
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Multiply(TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.MustAdd(tax),
	}
}

// ExchangeRate is the USD→VES rate snapshot a terminal session works
// with. It is fetched once when the session opens and reused for every
// conversion within that session.
type ExchangeRate struct {
	Rate       decimal.Decimal `json:"rate"`
	Source     string          `json:"source"`
	AcquiredAt time.Time       `json:"acquired_at"`
}

// Converter converts between the USD pricing currency and the VES
// display currency using a fixed session rate.
type Converter struct {
	rate ExchangeRate
}

// NewConverter validates the rate and returns a Converter
func NewConverter(rate ExchangeRate) (Converter, error) {
	if !rate.Rate.IsPositive() {
		return Converter{}, shared.NewDomainError("INVALID_INPUT", "exchange rate must be positive")
	}
	return Converter{rate: rate}, nil
}

// Rate returns the underlying rate snapshot
func (cv Converter) Rate() ExchangeRate {
	return cv.rate
}

// ToDisplay converts a USD amount into the requested display currency,
// rounded to cents. USD passes through with cent rounding only.
func (cv Converter) ToDisplay(usd valueobject.Money, currency valueobject.Currency) valueobject.Money {
	if currency != valueobject.VES {
		return usd.Round(2)
	}
	return valueobject.NewMoneyVES(usd.Amount().Mul(cv.rate.Rate)).Round(2)
}

// ToUSD converts an amount in any supported currency back to USD,
// rounded to cents. Round trips may drift by up to one cent.
func (cv Converter) ToUSD(m valueobject.Money) valueobject.Money {
	if m.Currency() != valueobject.VES {
		return m.Round(2)
	}
	return valueobject.NewMoneyUSD(m.Amount().Div(cv.rate.Rate)).Round(2)
}
