package pos

import (
	"context"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/pos"
	"github.com/shopspring/decimal"
)

// ProductQuery filters a catalog search
type ProductQuery struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

// ProductPage is one page of catalog search results
type ProductPage struct {
	Products []catalog.Product `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// CatalogProvider reads products from the inventory collaborator
type CatalogProvider interface {
	Search(ctx context.Context, query ProductQuery) (*ProductPage, error)
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
}

// CustomerQuery filters a CRM customer search
type CustomerQuery struct {
	Search string
	Page   int
	Limit  int
}

// CustomerPage is one page of CRM search results
type CustomerPage struct {
	Customers []pos.Customer `json:"customers"`
	Total     int64          `json:"total"`
	Page      int            `json:"page"`
	Limit     int            `json:"limit"`
}

// CustomerProvider reads and creates customers in the CRM collaborator
type CustomerProvider interface {
	Search(ctx context.Context, query CustomerQuery) (*CustomerPage, error)
	Create(ctx context.Context, customer pos.Customer) (*pos.Customer, error)
}

// RateProvider serves the current USD→VES exchange rate
type RateProvider interface {
	CurrentRate(ctx context.Context) (*pos.ExchangeRate, error)
}

// Invoice is the collaborator's record of a created invoice. Only the
// identifiers and echoed totals are surfaced to the terminal.
type Invoice struct {
	ID            int64           `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	Status        string          `json:"status"`
	SubtotalUSD   decimal.Decimal `json:"subtotal_usd"`
	TaxUSD        decimal.Decimal `json:"tax_usd"`
	TotalUSD      decimal.Decimal `json:"total_usd"`
}

// CashCloseRequest asks the collaborator for the period's system totals
type CashCloseRequest struct {
	Declared pos.CashCloseInput
}

// InvoicingGateway creates invoices and closes the drawer against the
// finance collaborator.
type InvoicingGateway interface {
	CreateInvoice(ctx context.Context, req pos.InvoiceRequest) (*Invoice, error)
	CashClose(ctx context.Context, req CashCloseRequest) (*pos.SystemTotals, error)
}
