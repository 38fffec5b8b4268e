package pos

import (
	"context"
	"testing"
	"time"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRateProvider struct {
	rate  pos.ExchangeRate
	calls int
	err   error
}

func (f *fakeRateProvider) CurrentRate(ctx context.Context) (*pos.ExchangeRate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := f.rate
	return &r, nil
}

func testRate() pos.ExchangeRate {
	return pos.ExchangeRate{
		Rate:       decimal.NewFromInt(40),
		Source:     "BCV",
		AcquiredAt: time.Now().UTC(),
	}
}

func testProduct(id int64, unit catalog.MeasurementUnit, price, stock string) catalog.Product {
	return catalog.Product{
		ID:              id,
		SKU:             "SKU",
		Name:            "Product",
		MeasurementUnit: unit,
		Price:           decimal.RequireFromString(price),
		Stock:           decimal.RequireFromString(stock),
		IsActive:        true,
	}
}

func openSession(t *testing.T) (*Manager, *TerminalSession, *fakeRateProvider) {
	t.Helper()
	rates := &fakeRateProvider{rate: testRate()}
	mgr := NewManager(rates, valueobject.USD, zap.NewNop())
	session, err := mgr.Open(context.Background())
	require.NoError(t, err)
	return mgr, session, rates
}

func TestManagerOpen(t *testing.T) {
	t.Run("fetches the rate exactly once per session", func(t *testing.T) {
		mgr, session, rates := openSession(t)
		assert.Equal(t, 1, rates.calls)
		assert.Equal(t, "40", session.Rate().Rate.String())

		_, err := mgr.Open(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, rates.calls)
		assert.Equal(t, 2, mgr.Count())
	})

	t.Run("rate failure prevents the session", func(t *testing.T) {
		rates := &fakeRateProvider{err: shared.ErrCollaboratorFailure}
		mgr := NewManager(rates, valueobject.USD, zap.NewNop())
		_, err := mgr.Open(context.Background())
		assert.ErrorIs(t, err, shared.ErrCollaboratorFailure)
		assert.Equal(t, 0, mgr.Count())
	})

	t.Run("get and close", func(t *testing.T) {
		mgr, session, _ := openSession(t)
		got, err := mgr.Get(session.ID())
		require.NoError(t, err)
		assert.Same(t, session, got)

		require.NoError(t, mgr.Close(session.ID()))
		_, err = mgr.Get(session.ID())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, mgr.Close(session.ID()), shared.ErrNotFound)
	})
}

func TestSessionCartFlow(t *testing.T) {
	_, session, _ := openSession(t)
	p := testProduct(1, catalog.UnitCount, "2.50", "10")

	require.NoError(t, session.AddProduct(p, decimal.NewFromInt(4)))
	view := session.View()
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "10.00", view.SubtotalUSD)
	assert.Equal(t, "1.60", view.TaxUSD)
	assert.Equal(t, "11.60", view.TotalUSD)
	assert.Equal(t, "$11.60", view.TotalDisplay)

	require.NoError(t, session.ToggleCurrency())
	view = session.View()
	assert.Equal(t, valueobject.VES, view.DisplayCurrency)
	assert.Equal(t, "Bs. 464.00", view.TotalDisplay)
	assert.Equal(t, "Bs. 100.00", view.Lines[0].UnitPriceDisplay)
}

func TestSessionQuantityEntry(t *testing.T) {
	_, session, _ := openSession(t)
	p := testProduct(2, catalog.UnitKilogram, "4.00", "1.5")

	require.NoError(t, session.BeginQuantityEntry(p))
	assert.ErrorIs(t, session.BeginQuantityEntry(p), shared.ErrInvalidState)

	err := session.SubmitQuantity(decimal.NewFromInt(2))
	var stockErr *pos.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	view := session.View()
	require.NotNil(t, view.QuantityEntry)
	assert.Equal(t, "1.5", view.QuantityEntry.Prefill)

	require.NoError(t, session.SubmitQuantity(decimal.RequireFromString("1.5")))
	assert.Nil(t, session.View().QuantityEntry)

	session.CancelQuantityEntry()
	assert.ErrorIs(t, session.SubmitQuantity(decimal.NewFromInt(1)), shared.ErrInvalidState)
}

func TestSessionPaymentFlow(t *testing.T) {
	_, session, _ := openSession(t)
	require.NoError(t, session.AddProduct(testProduct(1, catalog.UnitCount, "2.50", "10"), decimal.NewFromInt(4)))

	t.Run("customer required", func(t *testing.T) {
		assert.ErrorIs(t, session.StartPayment(), shared.ErrCustomerRequired)
	})

	session.SetCustomer(pos.Customer{ID: 1, Name: "Maria", TaxID: "V12345678"})
	require.NoError(t, session.StartPayment())

	t.Run("keyboard drives the flow", func(t *testing.T) {
		cmd, err := session.ApplyKey(pos.KeyEnter)
		require.NoError(t, err)
		assert.Equal(t, pos.CommandSelectMethod, cmd)

		view := session.View()
		require.NotNil(t, view.Payment)
		assert.Equal(t, pos.PaymentAmountPending, view.Payment.State)
		assert.Equal(t, pos.PaymentCash, view.Payment.Method)
		assert.Equal(t, "$11.60", view.Payment.SuggestedAmount)

		cmd, err = session.ApplyKey("F12") // unmapped
		require.NoError(t, err)
		assert.Empty(t, cmd)

		cmd, err = session.ApplyKey(pos.KeyEnter)
		require.NoError(t, err)
		assert.Equal(t, pos.CommandConfirmAmount, cmd)
		assert.Equal(t, pos.PaymentConfirmed, session.View().Payment.State)
	})

	t.Run("cancel drops the workflow, cart survives", func(t *testing.T) {
		require.NoError(t, session.CancelPayment())
		view := session.View()
		assert.Nil(t, view.Payment)
		assert.Len(t, view.Lines, 1)
	})
}

func TestSessionSearchSeq(t *testing.T) {
	_, session, _ := openSession(t)
	assert.Equal(t, uint64(1), session.NextSearchSeq())
	assert.Equal(t, uint64(2), session.NextSearchSeq())
	assert.Equal(t, uint64(3), session.NextSearchSeq())
}
