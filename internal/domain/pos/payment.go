package pos

import (
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer settles the sale
type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "CASH"
	PaymentDebitCard     PaymentMethod = "DEBIT_CARD"
	PaymentTransfer      PaymentMethod = "TRANSFER"
	PaymentMobilePayment PaymentMethod = "MOBILE_PAYMENT"
	PaymentBioPayment    PaymentMethod = "BIO_PAYMENT"
	PaymentOther         PaymentMethod = "OTHER"
)

// PaymentMethods lists the selectable methods in terminal display order
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentCash,
		PaymentDebitCard,
		PaymentTransfer,
		PaymentMobilePayment,
		PaymentBioPayment,
		PaymentOther,
	}
}

// IsValid returns true for a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentDebitCard, PaymentTransfer, PaymentMobilePayment, PaymentBioPayment, PaymentOther:
		return true
	}
	return false
}

// Channel maps the method onto the drawer channel it reconciles under
func (m PaymentMethod) Channel() string {
	switch m {
	case PaymentCash:
		return "cash"
	case PaymentDebitCard:
		return "card"
	case PaymentTransfer, PaymentMobilePayment, PaymentBioPayment:
		return "transfer"
	default:
		return "other"
	}
}

// WorkflowState is the state of the payment capture flow
type WorkflowState string

const (
	PaymentIdle           WorkflowState = "IDLE"
	PaymentMethodSelected WorkflowState = "METHOD_SELECTED"
	PaymentAmountPending  WorkflowState = "AMOUNT_PENDING"
	PaymentConfirmed      WorkflowState = "CONFIRMED"
	PaymentCancelled      WorkflowState = "CANCELLED"
)

// validPaymentTransitions defines the allowed state machine transitions
var validPaymentTransitions = map[WorkflowState][]WorkflowState{
	PaymentIdle:           {PaymentMethodSelected, PaymentCancelled},
	PaymentMethodSelected: {PaymentAmountPending, PaymentMethodSelected, PaymentCancelled},
	PaymentAmountPending:  {PaymentMethodSelected, PaymentConfirmed, PaymentCancelled},
	PaymentConfirmed:      {},
	PaymentCancelled:      {},
}

// CanTransitionTo checks if transition to target state is allowed
func (s WorkflowState) CanTransitionTo(target WorkflowState) bool {
	for _, allowed := range validPaymentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true for CONFIRMED and CANCELLED
func (s WorkflowState) IsTerminal() bool {
	return s == PaymentConfirmed || s == PaymentCancelled
}

// PaymentDraft is the single payment being captured for the sale. Amount
// is expressed in Currency; a dirty draft keeps operator-typed amounts
// across currency toggles.
type PaymentDraft struct {
	ID        uuid.UUID            `json:"id"`
	Method    PaymentMethod        `json:"method"`
	Amount    decimal.Decimal      `json:"amount"`
	Currency  valueobject.Currency `json:"currency"`
	Reference string               `json:"reference,omitempty"`
	Notes     string               `json:"notes,omitempty"`

	dirty bool
}

// Dirty reports whether the operator has typed over the suggested amount
func (d PaymentDraft) Dirty() bool {
	return d.dirty
}

// PaymentWorkflow drives one payment capture for the current cart. The
// cart total is snapshotted at start; the workflow never mutates the
// cart.
type PaymentWorkflow struct {
	state     WorkflowState
	draft     PaymentDraft
	totalUSD  valueobject.Money
	converter Converter
	display   valueobject.Currency
}

// StartPayment opens the payment flow for a cart. The cart must have
// items and a selected customer; otherwise the flow is never entered.
func StartPayment(cart *Cart, converter Converter, display valueobject.Currency) (*PaymentWorkflow, error) {
	if cart.IsEmpty() {
		return nil, shared.ErrCartEmpty
	}
	if cart.Customer() == nil {
		return nil, shared.ErrCustomerRequired
	}
	if !display.IsValid() {
		display = valueobject.DefaultCurrency
	}
	return &PaymentWorkflow{
		state:     PaymentIdle,
		totalUSD:  CalculateTotals(cart).Total,
		converter: converter,
		display:   display,
		draft: PaymentDraft{
			ID:       uuid.New(),
			Currency: display,
		},
	}, nil
}

// State returns the workflow state
func (w *PaymentWorkflow) State() WorkflowState {
	return w.state
}

// Draft returns a copy of the current draft
func (w *PaymentWorkflow) Draft() PaymentDraft {
	return w.draft
}

// TotalUSD returns the snapshotted cart total
func (w *PaymentWorkflow) TotalUSD() valueobject.Money {
	return w.totalUSD
}

// DisplayCurrency returns the currency amounts are being captured in
func (w *PaymentWorkflow) DisplayCurrency() valueobject.Currency {
	return w.display
}

// SuggestedAmount returns the cart total expressed in the active display
// currency.
func (w *PaymentWorkflow) SuggestedAmount() valueobject.Money {
	return w.converter.ToDisplay(w.totalUSD, w.display)
}

// SelectMethod picks (or re-picks) the payment method and advances to
// amount capture. An untouched draft is pre-filled with the suggested
// amount; an operator-typed amount is preserved.
func (w *PaymentWorkflow) SelectMethod(method PaymentMethod) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "unknown payment method: "+string(method))
	}
	if !w.state.CanTransitionTo(PaymentMethodSelected) {
		return shared.ErrInvalidState
	}
	w.state = PaymentMethodSelected
	w.draft.Method = method
	if !w.draft.dirty {
		w.draft.Amount = w.SuggestedAmount().Amount()
		w.draft.Currency = w.display
	}
	// choosing a method immediately opens amount capture
	w.state = PaymentAmountPending
	return nil
}

// SetAmount records an operator-typed amount and marks the draft dirty
func (w *PaymentWorkflow) SetAmount(amount decimal.Decimal) error {
	if w.state != PaymentAmountPending {
		return shared.ErrInvalidState
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "payment amount cannot be negative")
	}
	w.draft.Amount = amount
	w.draft.dirty = true
	return nil
}

// SetReference records an external payment reference
func (w *PaymentWorkflow) SetReference(ref string) error {
	if w.state != PaymentAmountPending {
		return shared.ErrInvalidState
	}
	w.draft.Reference = ref
	return nil
}

// SetNotes records free-form notes on the draft
func (w *PaymentWorkflow) SetNotes(notes string) error {
	if w.state != PaymentAmountPending {
		return shared.ErrInvalidState
	}
	w.draft.Notes = notes
	return nil
}

// ToggleCurrency flips the display currency. The suggestion is
// recomputed only while the operator has not typed an amount; a dirty
// amount survives the toggle untouched apart from its currency tag.
func (w *PaymentWorkflow) ToggleCurrency() error {
	if w.state.IsTerminal() {
		return shared.ErrInvalidState
	}
	w.display = w.display.Toggle()
	w.draft.Currency = w.display
	if !w.draft.dirty && w.state == PaymentAmountPending {
		w.draft.Amount = w.SuggestedAmount().Amount()
	}
	return nil
}

// ChangeDue returns the cash change owed when the tendered amount
// exceeds the total, zero otherwise. Display only.
func (w *PaymentWorkflow) ChangeDue() valueobject.Money {
	if w.draft.Method != PaymentCash {
		return valueobject.Zero(w.display)
	}
	suggested := w.SuggestedAmount().Amount()
	if w.draft.Amount.GreaterThan(suggested) {
		m, _ := valueobject.NewMoney(w.draft.Amount.Sub(suggested), w.display)
		return m.Round(2)
	}
	return valueobject.Zero(w.display)
}

// Confirm freezes the draft. Requires a chosen method and a positive
// amount; after confirmation no further edits are accepted.
func (w *PaymentWorkflow) Confirm() error {
	if !w.state.CanTransitionTo(PaymentConfirmed) {
		return shared.ErrInvalidState
	}
	if w.draft.Method == "" {
		return shared.NewDomainError("INVALID_INPUT", "a payment method must be selected")
	}
	if !w.draft.Amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "payment amount must be positive")
	}
	w.state = PaymentConfirmed
	return nil
}

// Cancel abandons the flow from any non-terminal state. The draft is
// discarded; the cart is never touched.
func (w *PaymentWorkflow) Cancel() error {
	if w.state.IsTerminal() {
		return shared.ErrInvalidState
	}
	w.state = PaymentCancelled
	w.draft = PaymentDraft{ID: w.draft.ID, Currency: w.display}
	return nil
}
