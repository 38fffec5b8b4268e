package pos

import (
	"context"

	"go.uber.org/zap"
)

// CheckoutService submits assembled invoices to the invoicing
// collaborator and coordinates the session reset afterwards.
type CheckoutService struct {
	gateway InvoicingGateway
	logger  *zap.Logger
}

// NewCheckoutService creates a checkout service
func NewCheckoutService(gateway InvoicingGateway, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{gateway: gateway, logger: logger}
}

// Submit creates the invoice for the session's confirmed sale.
//
// The invoice is assembled and validated before anything leaves the
// process; a second submit while one is outstanding is rejected. On
// collaborator failure the cart and draft are preserved for a manual
// retry. On success the sale is reset, unless the operator cancelled
// the payment while the call was in flight, in which case the response
// is discarded and the cart stays as the operator left it.
func (s *CheckoutService) Submit(ctx context.Context, session *TerminalSession) (*Invoice, error) {
	req, epoch, err := session.beginCheckout()
	if err != nil {
		return nil, err
	}

	invoice, err := s.gateway.CreateInvoice(ctx, *req)
	if err != nil {
		session.endCheckout(epoch, false)
		s.logger.Warn("invoice creation failed, sale preserved",
			zap.String("session_id", session.ID().String()),
			zap.Error(err))
		return nil, err
	}

	if applied := session.endCheckout(epoch, true); !applied {
		s.logger.Info("invoice response discarded after cancel",
			zap.String("session_id", session.ID().String()),
			zap.Int64("invoice_id", invoice.ID))
		return invoice, nil
	}

	s.logger.Info("invoice created",
		zap.String("session_id", session.ID().String()),
		zap.Int64("invoice_id", invoice.ID),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("total_usd", invoice.TotalUSD.String()))
	return invoice, nil
}
