package pos

import (
	"context"
	"sync"

	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
)

// CashCloseService reconciles the operator's declared drawer against the
// collaborator's system totals. One close at a time per engine.
type CashCloseService struct {
	gateway InvoicingGateway
	logger  *zap.Logger

	mu       sync.Mutex
	inFlight bool
}

// NewCashCloseService creates a cash-close service
func NewCashCloseService(gateway InvoicingGateway, logger *zap.Logger) *CashCloseService {
	return &CashCloseService{gateway: gateway, logger: logger}
}

// Reconcile validates the declared amounts, fetches the period's system
// totals and returns the immutable reconciliation result. A second call
// while one is outstanding is rejected.
func (s *CashCloseService) Reconcile(ctx context.Context, declared pos.CashCloseInput) (*pos.CashCloseResult, error) {
	if err := declared.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, shared.ErrOperationInFlight
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	system, err := s.gateway.CashClose(ctx, CashCloseRequest{Declared: declared})
	if err != nil {
		s.logger.Warn("cash close failed", zap.Error(err))
		return nil, err
	}

	result := pos.Reconcile(*system, declared)
	s.logger.Info("cash close reconciled",
		zap.String("difference_usd", result.DifferenceUSD.String()),
		zap.String("difference_ves", result.DifferenceVES.String()),
		zap.String("verdict_usd", string(result.VerdictUSD)),
		zap.String("verdict_ves", string(result.VerdictVES)))
	return &result, nil
}
