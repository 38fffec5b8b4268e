package pos

import (
	"context"
	"sync"
	"time"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TerminalSession owns the mutable state of one register: cart, payment
// workflow, quantity prompt and the session's exchange-rate snapshot.
// All access goes through its mutex; requests for the same session are
// applied one at a time.
type TerminalSession struct {
	id        uuid.UUID
	createdAt time.Time

	mu        sync.Mutex
	cart      *pos.Cart
	converter pos.Converter
	display   valueobject.Currency
	workflow  *pos.PaymentWorkflow
	entry     *pos.QuantityEntry
	cursor    pos.MethodCursor

	searchSeq uint64

	// checkout coordination: busy blocks a second submit, the epoch
	// lets late collaborator responses be discarded after a cancel
	checkoutBusy  bool
	checkoutEpoch uint64
}

// ID returns the session id
func (s *TerminalSession) ID() uuid.UUID { return s.id }

// CreatedAt returns when the session was opened
func (s *TerminalSession) CreatedAt() time.Time { return s.createdAt }

// Rate returns the exchange-rate snapshot the session was opened with
func (s *TerminalSession) Rate() pos.ExchangeRate {
	return s.converter.Rate()
}

// NextSearchSeq hands out the monotonically increasing sequence stamped
// onto catalog searches so clients can drop stale result sets.
func (s *TerminalSession) NextSearchSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchSeq++
	return s.searchSeq
}

// AddProduct merges a quantity delta into the cart
func (s *TerminalSession) AddProduct(p catalog.Product, quantity decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.AddProduct(p, quantity)
}

// SetQuantity sets an absolute line quantity
func (s *TerminalSession) SetQuantity(productID int64, quantity decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.SetQuantity(productID, quantity)
}

// RemoveProduct drops a cart line
func (s *TerminalSession) RemoveProduct(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.RemoveProduct(productID)
}

// ClearCart empties the cart and abandons any open payment or prompt
func (s *TerminalSession) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	s.workflow = nil
	s.entry = nil
}

// SetCustomer attaches a customer to the sale
func (s *TerminalSession) SetCustomer(c pos.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.SetCustomer(c)
}

// BeginQuantityEntry opens the quantity prompt for a product
func (s *TerminalSession) BeginQuantityEntry(p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry != nil && s.entry.State() == pos.QuantityAwaitingInput {
		return shared.ErrInvalidState
	}
	s.entry = pos.NewQuantityEntry(p)
	return nil
}

// SubmitQuantity pushes the typed quantity through the open prompt
func (s *TerminalSession) SubmitQuantity(quantity decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry == nil {
		return shared.ErrInvalidState
	}
	err := s.entry.Submit(s.cart, quantity)
	if err == nil {
		s.entry = nil
	}
	return err
}

// CancelQuantityEntry discards the prompt, the cart is untouched
func (s *TerminalSession) CancelQuantityEntry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = nil
}

// StartPayment opens the payment workflow for the current cart
func (s *TerminalSession) StartPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workflow != nil && !s.workflow.State().IsTerminal() {
		return shared.ErrInvalidState
	}
	w, err := pos.StartPayment(s.cart, s.converter, s.display)
	if err != nil {
		return err
	}
	s.workflow = w
	s.cursor = pos.MethodCursor{}
	return nil
}

// SelectMethod picks the payment method
func (s *TerminalSession) SelectMethod(m pos.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workflow == nil {
		return shared.ErrInvalidState
	}
	return s.workflow.SelectMethod(m)
}

// SetAmount records the operator-typed amount
func (s *TerminalSession) SetAmount(amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workflow == nil {
		return shared.ErrInvalidState
	}
	return s.workflow.SetAmount(amount)
}

// SetReference records a payment reference
func (s *TerminalSession) SetReference(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workflow == nil {
		return shared.ErrInvalidState
	}
	return s.workflow.SetReference(ref)
}

// SetNotes records payment notes
func (s *TerminalSession) SetNotes(notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workflow == nil {
		return shared.ErrInvalidState
	}
	return s.workflow.SetNotes(notes)
}

// ToggleCurrency flips the session display currency. With an open
// workflow the toggle runs through it so suggestion rules apply.
func (s *TerminalSession) ToggleCurrency() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workflow != nil && !s.workflow.State().IsTerminal() {
		if err := s.workflow.ToggleCurrency(); err != nil {
			return err
		}
		s.display = s.workflow.DisplayCurrency()
		return nil
	}
	s.display = s.display.Toggle()
	return nil
}

// ConfirmPayment freezes the draft
func (s *TerminalSession) ConfirmPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workflow == nil {
		return shared.ErrInvalidState
	}
	return s.workflow.Confirm()
}

// CancelPayment abandons the payment flow. The cart keeps its items.
// Bumping the epoch makes any in-flight checkout response a no-op.
func (s *TerminalSession) CancelPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workflow == nil {
		return shared.ErrInvalidState
	}
	if !s.workflow.State().IsTerminal() {
		if err := s.workflow.Cancel(); err != nil {
			return err
		}
	}
	s.workflow = nil
	s.checkoutEpoch++
	return nil
}

// ApplyKey decodes a raw key and executes the resulting command.
// Unmapped keys are ignored.
func (s *TerminalSession) ApplyKey(key string) (pos.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workflow == nil {
		return "", shared.ErrInvalidState
	}
	cmd, ok := pos.MapKey(key, s.workflow.State())
	if !ok {
		return "", nil
	}
	if cmd == pos.CommandCancel {
		// route through CancelPayment semantics without re-locking
		if !s.workflow.State().IsTerminal() {
			if err := s.workflow.Cancel(); err != nil {
				return cmd, err
			}
		}
		s.workflow = nil
		s.checkoutEpoch++
		return cmd, nil
	}
	return cmd, pos.ApplyCommand(s.workflow, &s.cursor, cmd)
}

// beginCheckout assembles the invoice under the session lock and marks
// the checkout busy. Validation failures leave the session untouched.
func (s *TerminalSession) beginCheckout() (*pos.InvoiceRequest, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkoutBusy {
		return nil, 0, shared.ErrOperationInFlight
	}
	req, err := pos.AssembleInvoice(s.cart, s.workflow)
	if err != nil {
		return nil, 0, err
	}
	s.checkoutBusy = true
	return req, s.checkoutEpoch, nil
}

// endCheckout releases the busy flag. On success the sale state is reset
// only when the epoch still matches, i.e. the operator did not cancel
// while the collaborator call was in flight. Returns whether the reset
// was applied.
func (s *TerminalSession) endCheckout(epoch uint64, success bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkoutBusy = false
	if !success || epoch != s.checkoutEpoch {
		return false
	}
	s.cart.Clear()
	s.workflow = nil
	s.entry = nil
	s.checkoutEpoch++
	return true
}

// Manager is the in-memory registry of open terminal sessions. The
// exchange rate is fetched once per session at open time; sessions never
// share rate state.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*TerminalSession

	rates   RateProvider
	display valueobject.Currency
	logger  *zap.Logger
}

// NewManager creates a session registry
func NewManager(rates RateProvider, display valueobject.Currency, logger *zap.Logger) *Manager {
	if !display.IsValid() {
		display = valueobject.DefaultCurrency
	}
	return &Manager{
		sessions: make(map[uuid.UUID]*TerminalSession),
		rates:    rates,
		display:  display,
		logger:   logger,
	}
}

// Open fetches the current exchange rate and creates a session around it
func (m *Manager) Open(ctx context.Context) (*TerminalSession, error) {
	rate, err := m.rates.CurrentRate(ctx)
	if err != nil {
		return nil, err
	}
	converter, err := pos.NewConverter(*rate)
	if err != nil {
		return nil, err
	}

	session := &TerminalSession{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
		cart:      pos.NewCart(),
		converter: converter,
		display:   m.display,
	}

	m.mu.Lock()
	m.sessions[session.id] = session
	m.mu.Unlock()

	m.logger.Info("terminal session opened",
		zap.String("session_id", session.id.String()),
		zap.String("rate", rate.Rate.String()),
		zap.String("rate_source", rate.Source))
	return session, nil
}

// Get looks up an open session
func (m *Manager) Get(id uuid.UUID) (*TerminalSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return session, nil
}

// Close removes a session from the registry
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Count returns the number of open sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
