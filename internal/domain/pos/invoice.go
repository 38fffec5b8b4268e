package pos

import (
	"strconv"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceItem is one billed position, quantities only; the invoicing
// collaborator re-prices from its own catalog.
type InvoiceItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// InvoicePayment is the settled payment attached to the invoice.
// Amount is always USD.
type InvoicePayment struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Reference     string          `json:"reference,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// InvoiceRequest is the write-only payload sent to the invoicing
// collaborator. Nothing from it is read back except the created
// invoice's identifiers.
type InvoiceRequest struct {
	CustomerTaxID string               `json:"customer_tax_id"`
	Currency      valueobject.Currency `json:"currency"`
	Items         []InvoiceItem        `json:"items"`
	Payment       InvoicePayment       `json:"payment"`
}

// referenceClock is swapped in tests to pin generated references
var referenceClock = time.Now

// generateReference builds a fallback reference from the timestamp,
// "POS-" plus the last six digits of the current Unix milliseconds.
func generateReference() string {
	ms := strconv.FormatInt(referenceClock().UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return "POS-" + ms
}

// AssembleInvoice projects the cart and the confirmed payment draft into
// an InvoiceRequest. It validates everything locally so an invalid sale
// never reaches the collaborator: the cart must have items and a
// customer, and the payment must be CONFIRMED. VES amounts are converted
// to USD with the session rate; a blank reference gets a generated one.
func AssembleInvoice(cart *Cart, workflow *PaymentWorkflow) (*InvoiceRequest, error) {
	if cart.IsEmpty() {
		return nil, shared.ErrCartEmpty
	}
	customer := cart.Customer()
	if customer == nil {
		return nil, shared.ErrCustomerRequired
	}
	if workflow == nil || workflow.State() != PaymentConfirmed {
		return nil, shared.ErrInvalidState
	}

	draft := workflow.Draft()
	paid, err := valueobject.NewMoney(draft.Amount, draft.Currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	amountUSD := workflow.converter.ToUSD(paid)

	reference := draft.Reference
	if reference == "" {
		reference = generateReference()
	}

	lines := cart.Lines()
	items := make([]InvoiceItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, InvoiceItem{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}

	return &InvoiceRequest{
		CustomerTaxID: customer.EffectiveTaxID(),
		Currency:      valueobject.USD,
		Items:         items,
		Payment: InvoicePayment{
			Amount:        amountUSD.Amount(),
			PaymentMethod: draft.Method,
			Reference:     reference,
			Notes:         draft.Notes,
		},
	}, nil
}
