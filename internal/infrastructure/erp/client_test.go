package erp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	posapp "github.com/erp/pos/internal/application/pos"
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCatalogClientSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/inventory/products", r.URL.Path)
		assert.Equal(t, "harina", r.URL.Query().Get("search"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": 1, "sku": "HP-001", "name": "Harina PAN", "measurement_unit": "UNIT",
				 "price": 1.50, "stock": 24, "is_active": true},
				{"id": 2, "sku": "QB-002", "name": "Queso blanco", "measurement_unit": "KG",
				 "price": 6.80, "stock": 3.250, "is_active": true}
			],
			"meta": {"total": 2, "page": 2, "limit": 20}
		}`))
	}))
	defer server.Close()

	client := NewCatalogClient(Config{BaseURL: server.URL}, zap.NewNop())
	page, err := client.Search(context.Background(), posapp.ProductQuery{Search: "harina", Page: 2, Limit: 20})
	require.NoError(t, err)

	require.Len(t, page.Products, 2)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, catalog.UnitCount, page.Products[0].MeasurementUnit)
	assert.Equal(t, "1.5", page.Products[0].Price.String())
	assert.Equal(t, catalog.UnitKilogram, page.Products[1].MeasurementUnit)
	assert.Equal(t, "3.25", page.Products[1].Stock.String())
}

func TestCatalogClientGetProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/inventory/products/7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"id": 7, "sku": "X", "name": "X", "measurement_unit": "LITER", "price": 2, "stock": 10, "is_active": true}}`))
	}))
	defer server.Close()

	client := NewCatalogClient(Config{BaseURL: server.URL}, zap.NewNop())
	product, err := client.GetProduct(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), product.ID)
	assert.Equal(t, catalog.UnitLiter, product.MeasurementUnit)
}

func TestErrorMapping(t *testing.T) {
	t.Run("fastapi detail surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail": "insufficient stock for product 1"}`))
		}))
		defer server.Close()

		client := NewFinanceClient(Config{BaseURL: server.URL}, zap.NewNop())
		_, err := client.CreateInvoice(context.Background(), pos.InvoiceRequest{})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
		assert.Equal(t, "insufficient stock for product 1", domainErr.Message)
	})

	t.Run("envelope message surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"code": "ERR_INTERNAL", "message": "boom"}}`))
		}))
		defer server.Close()

		client := NewCatalogClient(Config{BaseURL: server.URL}, zap.NewNop())
		_, err := client.GetProduct(context.Background(), 1)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "COLLABORATOR_FAILURE", domainErr.Code)
		assert.Equal(t, "boom", domainErr.Message)
	})

	t.Run("404 maps to not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail": "product not found"}`))
		}))
		defer server.Close()

		client := NewCatalogClient(Config{BaseURL: server.URL}, zap.NewNop())
		_, err := client.GetProduct(context.Background(), 99)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})

	t.Run("unreachable host", func(t *testing.T) {
		client := NewCatalogClient(Config{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
		_, err := client.GetProduct(context.Background(), 1)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "COLLABORATOR_FAILURE", domainErr.Code)
	})
}

func TestFinanceClientCurrentRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/finance/exchange-rate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rate": 40.25, "source": "BCV", "acquired_at": "2026-08-01T09:00:00Z"}`))
	}))
	defer server.Close()

	client := NewFinanceClient(Config{BaseURL: server.URL}, zap.NewNop())
	rate, err := client.CurrentRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "40.25", rate.Rate.String())
	assert.Equal(t, "BCV", rate.Source)
	assert.Equal(t, 2026, rate.AcquiredAt.Year())
}

func TestFinanceClientCreateInvoice(t *testing.T) {
	var received pos.InvoiceRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/finance/invoices", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 31, "invoice_number": "00000031", "status": "PAID", "subtotal": 10.00, "tax": 1.60, "total": 11.60}`))
	}))
	defer server.Close()

	client := NewFinanceClient(Config{BaseURL: server.URL}, zap.NewNop())
	invoice, err := client.CreateInvoice(context.Background(), pos.InvoiceRequest{
		CustomerTaxID: "V12345678",
		Currency:      "USD",
		Items:         []pos.InvoiceItem{{ProductID: 1, Quantity: decimal.NewFromInt(4)}},
		Payment: pos.InvoicePayment{
			Amount:        decimal.RequireFromString("11.60"),
			PaymentMethod: pos.PaymentCash,
			Reference:     "POS-123456",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(31), invoice.ID)
	assert.Equal(t, "00000031", invoice.InvoiceNumber)
	assert.Equal(t, "11.6", invoice.TotalUSD.String())

	assert.Equal(t, "V12345678", received.CustomerTaxID)
	require.Len(t, received.Items, 1)
	assert.Equal(t, pos.PaymentCash, received.Payment.PaymentMethod)
}

func TestFinanceClientCashClose(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/finance/cash-close", r.URL.Path)

		var declared pos.CashCloseInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&declared))
		assert.Equal(t, "295", declared.DeclaredCashUSD.String())

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sales_usd": 580.00, "tax_usd": 80.00, "cash_usd": 300.00, "card_usd": 200.00, "transfer_usd": 80.00}`))
	}))
	defer server.Close()

	client := NewFinanceClient(Config{BaseURL: server.URL}, zap.NewNop())
	totals, err := client.CashClose(context.Background(), posapp.CashCloseRequest{
		Declared: pos.CashCloseInput{DeclaredCashUSD: decimal.NewFromInt(295)},
	})
	require.NoError(t, err)
	assert.Equal(t, "300", totals.CashUSD.String())
	assert.Equal(t, "80", totals.TransferUSD.String())
}

func TestCRMClient(t *testing.T) {
	t.Run("search", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/crm/customers", r.URL.Path)
			assert.Equal(t, "maria", r.URL.Query().Get("search"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data": [{"id": 1, "name": "Maria Perez", "tax_id": "V12345678"}], "meta": {"total": 1, "page": 1, "limit": 20}}`))
		}))
		defer server.Close()

		client := NewCRMClient(Config{BaseURL: server.URL}, zap.NewNop())
		page, err := client.Search(context.Background(), posapp.CustomerQuery{Search: "maria", Page: 1, Limit: 20})
		require.NoError(t, err)
		require.Len(t, page.Customers, 1)
		assert.Equal(t, "V12345678", page.Customers[0].TaxID)
	})

	t.Run("create", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data": {"id": 9, "name": "Pedro", "tax_id": "V99999999"}}`))
		}))
		defer server.Close()

		client := NewCRMClient(Config{BaseURL: server.URL}, zap.NewNop())
		created, err := client.Create(context.Background(), pos.Customer{Name: "Pedro", TaxID: "V99999999"})
		require.NoError(t, err)
		assert.Equal(t, int64(9), created.ID)
	})
}
