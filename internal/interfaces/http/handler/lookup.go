package handler

import (
	posapp "github.com/erp/pos/internal/application/pos"
	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LookupHandler proxies the reference lookups the terminal needs that
// are not tied to a session: CRM customers and the current exchange rate.
type LookupHandler struct {
	BaseHandler
	customers posapp.CustomerProvider
	rates     posapp.RateProvider
	pageSize  int
	logger    *zap.Logger
}

// NewLookupHandler creates a lookup handler
func NewLookupHandler(
	customers posapp.CustomerProvider,
	rates posapp.RateProvider,
	pageSize int,
	logger *zap.Logger,
) *LookupHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &LookupHandler{
		customers: customers,
		rates:     rates,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// RegisterRoutes registers lookup routes
func (h *LookupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/pos")
	{
		group.GET("/customers", h.SearchCustomers)
		group.POST("/customers", h.CreateCustomer)
		group.GET("/exchange-rate", h.ExchangeRate)
	}
}

// SearchCustomers proxies a CRM customer search
func (h *LookupHandler) SearchCustomers(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = h.pageSize
	}

	page, err := h.customers.Search(c.Request.Context(), posapp.CustomerQuery{
		Search: req.Search,
		Page:   req.Page,
		Limit:  req.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Customers, page.Total, page.Page, page.Limit)
}

// CreateCustomer registers a walk-up customer in the CRM
func (h *LookupHandler) CreateCustomer(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	created, err := h.customers.Create(c.Request.Context(), pos.Customer{
		Name:  req.Name,
		TaxID: req.TaxID,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// ExchangeRate returns the rate the finance service is currently quoting.
// Sessions snapshot their own rate at open time; this endpoint is for
// display before a session exists.
func (h *LookupHandler) ExchangeRate(c *gin.Context) {
	rate, err := h.rates.CurrentRate(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}
