package pos

import (
	"time"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// LineView is one cart line as rendered by the terminal, with USD and
// display-currency figures side by side.
type LineView struct {
	ProductID        int64  `json:"product_id"`
	SKU              string `json:"sku"`
	Name             string `json:"name"`
	MeasurementUnit  string `json:"measurement_unit"`
	Quantity         string `json:"quantity"`
	UnitPriceUSD     string `json:"unit_price_usd"`
	LineTotalUSD     string `json:"line_total_usd"`
	UnitPriceDisplay string `json:"unit_price_display"`
	LineTotalDisplay string `json:"line_total_display"`
}

// PaymentView reflects the payment workflow for the client
type PaymentView struct {
	State           pos.WorkflowState    `json:"state"`
	Method          pos.PaymentMethod    `json:"method,omitempty"`
	Amount          string               `json:"amount"`
	Currency        valueobject.Currency `json:"currency"`
	Reference       string               `json:"reference,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	Dirty           bool                 `json:"dirty"`
	SuggestedAmount string               `json:"suggested_amount"`
	ChangeDue       string               `json:"change_due"`
	FocusedMethod   pos.PaymentMethod    `json:"focused_method"`
}

// QuantityEntryView reflects the open quantity prompt
type QuantityEntryView struct {
	State     pos.QuantityEntryState `json:"state"`
	ProductID int64                  `json:"product_id"`
	Name      string                 `json:"name"`
	Prefill   string                 `json:"prefill"`
}

// SessionView is the full terminal snapshot returned after every
// mutation, so the client never derives money figures itself.
type SessionView struct {
	ID              uuid.UUID            `json:"id"`
	CreatedAt       time.Time            `json:"created_at"`
	DisplayCurrency valueobject.Currency `json:"display_currency"`
	Rate            pos.ExchangeRate     `json:"rate"`
	Customer        *pos.Customer        `json:"customer,omitempty"`
	Lines           []LineView           `json:"lines"`
	SubtotalUSD     string               `json:"subtotal_usd"`
	TaxUSD          string               `json:"tax_usd"`
	TotalUSD        string               `json:"total_usd"`
	SubtotalDisplay string               `json:"subtotal_display"`
	TaxDisplay      string               `json:"tax_display"`
	TotalDisplay    string               `json:"total_display"`
	Payment         *PaymentView         `json:"payment,omitempty"`
	QuantityEntry   *QuantityEntryView   `json:"quantity_entry,omitempty"`
}

// View renders the session snapshot under the session lock
func (s *TerminalSession) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := pos.CalculateTotals(s.cart)
	view := SessionView{
		ID:              s.id,
		CreatedAt:       s.createdAt,
		DisplayCurrency: s.display,
		Rate:            s.converter.Rate(),
		Customer:        s.cart.Customer(),
		SubtotalUSD:     totals.Subtotal.StringFixed(2),
		TaxUSD:          totals.Tax.StringFixed(2),
		TotalUSD:        totals.Total.StringFixed(2),
		SubtotalDisplay: s.converter.ToDisplay(totals.Subtotal, s.display).Display(),
		TaxDisplay:      s.converter.ToDisplay(totals.Tax, s.display).Display(),
		TotalDisplay:    s.converter.ToDisplay(totals.Total, s.display).Display(),
	}

	lines := s.cart.Lines()
	view.Lines = make([]LineView, 0, len(lines))
	for _, line := range lines {
		unitPrice := line.Product.UnitPrice()
		lineTotal := line.LineTotal()
		view.Lines = append(view.Lines, LineView{
			ProductID:        line.Product.ID,
			SKU:              line.Product.SKU,
			Name:             line.Product.Name,
			MeasurementUnit:  string(line.Product.MeasurementUnit),
			Quantity:         line.Quantity.String(),
			UnitPriceUSD:     unitPrice.StringFixed(2),
			LineTotalUSD:     lineTotal.StringFixed(2),
			UnitPriceDisplay: s.converter.ToDisplay(unitPrice, s.display).Display(),
			LineTotalDisplay: s.converter.ToDisplay(lineTotal, s.display).Display(),
		})
	}

	if s.workflow != nil {
		draft := s.workflow.Draft()
		view.Payment = &PaymentView{
			State:           s.workflow.State(),
			Method:          draft.Method,
			Amount:          draft.Amount.String(),
			Currency:        draft.Currency,
			Reference:       draft.Reference,
			Notes:           draft.Notes,
			Dirty:           draft.Dirty(),
			SuggestedAmount: s.workflow.SuggestedAmount().Display(),
			ChangeDue:       s.workflow.ChangeDue().Display(),
			FocusedMethod:   s.cursor.Current(),
		}
	}

	if s.entry != nil {
		view.QuantityEntry = &QuantityEntryView{
			State:     s.entry.State(),
			ProductID: s.entry.Product().ID,
			Name:      s.entry.Product().Name,
			Prefill:   s.entry.Prefill().String(),
		}
	}

	return view
}
