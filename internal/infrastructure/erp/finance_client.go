package erp

import (
	"context"
	"time"

	posapp "github.com/erp/pos/internal/application/pos"
	"github.com/erp/pos/internal/domain/pos"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FinanceClient talks to the finance service: exchange rate, invoice
// creation and cash close. It implements the application's RateProvider
// and InvoicingGateway ports.
type FinanceClient struct {
	client
}

// NewFinanceClient creates a finance client
func NewFinanceClient(cfg Config, logger *zap.Logger) *FinanceClient {
	return &FinanceClient{client: newClient(cfg, logger)}
}

// CurrentRate fetches the USD→VES rate the finance service is quoting
func (c *FinanceClient) CurrentRate(ctx context.Context) (*pos.ExchangeRate, error) {
	var payload struct {
		Rate       decimal.Decimal `json:"rate"`
		Source     string          `json:"source"`
		AcquiredAt time.Time       `json:"acquired_at"`
	}
	if err := c.getJSON(ctx, "/api/finance/exchange-rate", &payload); err != nil {
		return nil, err
	}
	return &pos.ExchangeRate{
		Rate:       payload.Rate,
		Source:     payload.Source,
		AcquiredAt: payload.AcquiredAt,
	}, nil
}

// CreateInvoice submits the assembled invoice
func (c *FinanceClient) CreateInvoice(ctx context.Context, req pos.InvoiceRequest) (*posapp.Invoice, error) {
	var payload struct {
		ID            int64           `json:"id"`
		InvoiceNumber string          `json:"invoice_number"`
		Status        string          `json:"status"`
		Subtotal      decimal.Decimal `json:"subtotal"`
		Tax           decimal.Decimal `json:"tax"`
		Total         decimal.Decimal `json:"total"`
	}
	if err := c.postJSON(ctx, "/api/finance/invoices", req, &payload); err != nil {
		return nil, err
	}
	return &posapp.Invoice{
		ID:            payload.ID,
		InvoiceNumber: payload.InvoiceNumber,
		Status:        payload.Status,
		SubtotalUSD:   payload.Subtotal,
		TaxUSD:        payload.Tax,
		TotalUSD:      payload.Total,
	}, nil
}

// CashClose sends the declared drawer and returns the system totals the
// finance service computed for the period.
func (c *FinanceClient) CashClose(ctx context.Context, req posapp.CashCloseRequest) (*pos.SystemTotals, error) {
	var payload pos.SystemTotals
	if err := c.postJSON(ctx, "/api/finance/cash-close", req.Declared, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
