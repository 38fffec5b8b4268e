package dto

import "github.com/shopspring/decimal"

// AddCartItemRequest merges a quantity delta into the cart
type AddCartItemRequest struct {
	ProductID int64           `json:"product_id" binding:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// UpdateCartItemRequest sets an absolute line quantity
type UpdateCartItemRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// AssignCustomerRequest attaches a customer to the sale. The customer is
// usually picked from a CRM search, so the full record travels with the
// request instead of a second lookup.
type AssignCustomerRequest struct {
	ID    int64  `json:"id"`
	Name  string `json:"name" binding:"required"`
	TaxID string `json:"tax_id" binding:"omitempty,taxid"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

// CreateCustomerRequest registers a new customer in the CRM
type CreateCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	TaxID string `json:"tax_id" binding:"required,taxid"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

// BeginQuantityEntryRequest opens the quantity prompt for a product
type BeginQuantityEntryRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
}

// SubmitQuantityRequest pushes the typed quantity through the prompt
type SubmitQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// SelectMethodRequest picks the payment method
type SelectMethodRequest struct {
	Method string `json:"method" binding:"required,oneof=CASH DEBIT_CARD TRANSFER MOBILE_PAYMENT BIO_PAYMENT OTHER"`
}

// SetAmountRequest records the operator-typed amount
type SetAmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// SetReferenceRequest records a payment reference (card voucher,
// transfer number)
type SetReferenceRequest struct {
	Reference string `json:"reference" binding:"max=64"`
}

// SetNotesRequest records free-form payment notes
type SetNotesRequest struct {
	Notes string `json:"notes" binding:"max=500"`
}

// KeyRequest applies a raw keyboard key to the payment workflow
type KeyRequest struct {
	Key string `json:"key" binding:"required,max=32"`
}

// CashCloseRequest declares the counted drawer for reconciliation
type CashCloseRequest struct {
	DeclaredCashUSD decimal.Decimal `json:"declared_cash_usd"`
	DeclaredCashVES decimal.Decimal `json:"declared_cash_ves"`
	DeclaredCardUSD decimal.Decimal `json:"declared_card_usd"`
	DeclaredCardVES decimal.Decimal `json:"declared_card_ves"`
	Notes           string          `json:"notes" binding:"max=500"`
}
