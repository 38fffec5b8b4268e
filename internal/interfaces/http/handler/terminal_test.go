package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	posapp "github.com/erp/pos/internal/application/pos"
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/erp/pos/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCatalog struct {
	products map[int64]catalog.Product
}

func (f *fakeCatalog) Search(ctx context.Context, query posapp.ProductQuery) (*posapp.ProductPage, error) {
	page := &posapp.ProductPage{Page: query.Page, Limit: query.Limit}
	for _, p := range f.products {
		page.Products = append(page.Products, p)
	}
	page.Total = int64(len(page.Products))
	return page, nil
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

type fakeRates struct{}

func (fakeRates) CurrentRate(ctx context.Context) (*pos.ExchangeRate, error) {
	return &pos.ExchangeRate{
		Rate:       decimal.NewFromInt(40),
		Source:     "BCV",
		AcquiredAt: time.Now().UTC(),
	}, nil
}

type fakeGateway struct {
	invoices int
}

func (f *fakeGateway) CreateInvoice(ctx context.Context, req pos.InvoiceRequest) (*posapp.Invoice, error) {
	f.invoices++
	return &posapp.Invoice{
		ID:            int64(f.invoices),
		InvoiceNumber: fmt.Sprintf("%08d", f.invoices),
		Status:        "PAID",
		TotalUSD:      req.Payment.Amount,
	}, nil
}

func (f *fakeGateway) CashClose(ctx context.Context, req posapp.CashCloseRequest) (*pos.SystemTotals, error) {
	return &pos.SystemTotals{
		CashUSD: decimal.NewFromInt(300),
		CardUSD: decimal.NewFromInt(200),
	}, nil
}

func setupTerminalAPI(t *testing.T) (*gin.Engine, *fakeGateway) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	logger := zap.NewNop()
	manager := posapp.NewManager(fakeRates{}, "VES", logger)
	gateway := &fakeGateway{}
	checkout := posapp.NewCheckoutService(gateway, logger)
	cashClose := posapp.NewCashCloseService(gateway, logger)

	catalogProvider := &fakeCatalog{products: map[int64]catalog.Product{
		1: {ID: 1, SKU: "HP-001", Name: "Harina PAN", MeasurementUnit: catalog.UnitCount,
			Price: decimal.RequireFromString("1.50"), Stock: decimal.NewFromInt(10), IsActive: true},
		2: {ID: 2, SKU: "QB-002", Name: "Queso blanco", MeasurementUnit: catalog.UnitKilogram,
			Price: decimal.RequireFromString("6.80"), Stock: decimal.RequireFromString("3.250"), IsActive: true},
	}}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).
		Register(NewTerminalHandler(manager, catalogProvider, checkout, 20, "", logger)).
		Register(NewCashCloseHandler(cashClose, logger)).
		Register(NewSystemHandler(manager, "test")).
		Setup()
	return engine, gateway
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success, "response body: %s", w.Body.String())
	return resp.Data
}

func openSession(t *testing.T, engine *gin.Engine) string {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/v1/pos/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	id, _ := data["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestTerminalSaleFlow(t *testing.T) {
	engine, gateway := setupTerminalAPI(t)
	id := openSession(t, engine)
	base := "/api/v1/pos/sessions/" + id

	// two units of product 1: subtotal 3.00, tax 0.48
	w := doJSON(t, engine, http.MethodPost, base+"/cart/items",
		map[string]any{"product_id": 1, "quantity": "2"})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "3.00", data["subtotal_usd"])
	assert.Equal(t, "3.48", data["total_usd"])
	assert.Equal(t, "Bs. 139.20", data["total_display"])

	w = doJSON(t, engine, http.MethodPut, base+"/customer",
		map[string]any{"id": 5, "name": "Maria Perez", "tax_id": "V12345678"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, base+"/payment", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPut, base+"/payment/method",
		map[string]any{"method": "CASH"})
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	payment := data["payment"].(map[string]any)
	assert.Equal(t, "AMOUNT_PENDING", payment["state"])

	w = doJSON(t, engine, http.MethodPost, base+"/payment/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, base+"/checkout", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	data = decodeData(t, w)
	invoice := data["invoice"].(map[string]any)
	assert.Equal(t, "00000001", invoice["invoice_number"])
	session := data["session"].(map[string]any)
	assert.Empty(t, session["lines"])
	assert.Equal(t, 1, gateway.invoices)
}

func TestTerminalStockRejection(t *testing.T) {
	engine, _ := setupTerminalAPI(t)
	id := openSession(t, engine)
	base := "/api/v1/pos/sessions/" + id

	w := doJSON(t, engine, http.MethodPost, base+"/cart/items",
		map[string]any{"product_id": 1, "quantity": "12"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				MaxAdditional string `json:"max_additional"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ERR_INSUFFICIENT_STOCK", resp.Error.Code)
	assert.Equal(t, "10", resp.Error.Details.MaxAdditional)
}

func TestTerminalQuantityPrompt(t *testing.T) {
	engine, _ := setupTerminalAPI(t)
	id := openSession(t, engine)
	base := "/api/v1/pos/sessions/" + id

	w := doJSON(t, engine, http.MethodPost, base+"/quantity-entry",
		map[string]any{"product_id": 2})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	entry := data["quantity_entry"].(map[string]any)
	assert.Equal(t, "1", entry["prefill"])

	w = doJSON(t, engine, http.MethodPost, base+"/quantity-entry/submit",
		map[string]any{"quantity": "1.250"})
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Nil(t, data["quantity_entry"])
	lines := data["lines"].([]any)
	require.Len(t, lines, 1)
}

func TestTerminalUnknownSession(t *testing.T) {
	engine, _ := setupTerminalAPI(t)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/pos/sessions/0e7b54a2-9f2e-4f7a-8df0-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/pos/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTerminalKeyFlow(t *testing.T) {
	engine, _ := setupTerminalAPI(t)
	id := openSession(t, engine)
	base := "/api/v1/pos/sessions/" + id

	w := doJSON(t, engine, http.MethodPost, base+"/cart/items",
		map[string]any{"product_id": 1, "quantity": "1"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, engine, http.MethodPut, base+"/customer",
		map[string]any{"name": "Walk-in"})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	customer := data["customer"].(map[string]any)
	assert.Equal(t, "V00000000", customer["tax_id"])
	w = doJSON(t, engine, http.MethodPost, base+"/payment", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Enter selects the focused method while idle
	w = doJSON(t, engine, http.MethodPost, base+"/payment/key",
		map[string]any{"key": "Enter"})
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Equal(t, "SELECT_METHOD", data["command"])
	session := data["session"].(map[string]any)
	payment := session["payment"].(map[string]any)
	assert.Equal(t, "AMOUNT_PENDING", payment["state"])

	// Escape abandons the flow, the cart survives
	w = doJSON(t, engine, http.MethodPost, base+"/payment/key",
		map[string]any{"key": "Escape"})
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Equal(t, "CANCEL", data["command"])
	session = data["session"].(map[string]any)
	assert.Nil(t, session["payment"])
	assert.Len(t, session["lines"].([]any), 1)
}

func TestCashCloseEndpoint(t *testing.T) {
	engine, _ := setupTerminalAPI(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/pos/cash-close", map[string]any{
		"declared_cash_usd": "295",
		"declared_card_usd": "200",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "-5", data["difference_usd"])
	assert.Equal(t, "SHORTFALL", data["verdict_usd"])
}

func TestHealthEndpoint(t *testing.T) {
	engine, _ := setupTerminalAPI(t)
	openSession(t, engine)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/system/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, float64(1), data["open_sessions"])
}
