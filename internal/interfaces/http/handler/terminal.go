package handler

import (
	"strconv"

	posapp "github.com/erp/pos/internal/application/pos"
	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TerminalHandler serves the per-session terminal API: cart edits,
// customer assignment, the quantity prompt, the payment workflow and
// checkout. Every mutation answers with the full session snapshot.
type TerminalHandler struct {
	BaseHandler
	sessions    *posapp.Manager
	catalog     posapp.CatalogProvider
	checkout    *posapp.CheckoutService
	pageSize    int
	walkInTaxID string
	logger      *zap.Logger
}

// NewTerminalHandler creates a terminal handler
func NewTerminalHandler(
	sessions *posapp.Manager,
	catalog posapp.CatalogProvider,
	checkout *posapp.CheckoutService,
	pageSize int,
	walkInTaxID string,
	logger *zap.Logger,
) *TerminalHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	if walkInTaxID == "" {
		walkInTaxID = pos.WalkInTaxID
	}
	return &TerminalHandler{
		sessions:    sessions,
		catalog:     catalog,
		checkout:    checkout,
		pageSize:    pageSize,
		walkInTaxID: walkInTaxID,
		logger:      logger,
	}
}

// RegisterRoutes registers terminal session routes
func (h *TerminalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/pos/sessions")
	{
		sessions.POST("", h.OpenSession)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.CloseSession)

		sessions.GET("/:id/products", h.SearchProducts)

		sessions.POST("/:id/cart/items", h.AddCartItem)
		sessions.PUT("/:id/cart/items/:productId", h.UpdateCartItem)
		sessions.DELETE("/:id/cart/items/:productId", h.RemoveCartItem)
		sessions.DELETE("/:id/cart", h.ClearCart)
		sessions.PUT("/:id/customer", h.AssignCustomer)

		sessions.POST("/:id/quantity-entry", h.BeginQuantityEntry)
		sessions.POST("/:id/quantity-entry/submit", h.SubmitQuantity)
		sessions.DELETE("/:id/quantity-entry", h.CancelQuantityEntry)

		sessions.POST("/:id/payment", h.StartPayment)
		sessions.PUT("/:id/payment/method", h.SelectMethod)
		sessions.PUT("/:id/payment/amount", h.SetAmount)
		sessions.PUT("/:id/payment/reference", h.SetReference)
		sessions.PUT("/:id/payment/notes", h.SetNotes)
		sessions.POST("/:id/payment/currency-toggle", h.ToggleCurrency)
		sessions.POST("/:id/payment/key", h.ApplyKey)
		sessions.POST("/:id/payment/confirm", h.ConfirmPayment)
		sessions.DELETE("/:id/payment", h.CancelPayment)

		sessions.POST("/:id/checkout", h.Checkout)
	}
}

// session resolves the :id path parameter to an open session
func (h *TerminalHandler) session(c *gin.Context) (*posapp.TerminalSession, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid session id")
		return nil, false
	}
	session, err := h.sessions.Get(id)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return session, true
}

// OpenSession creates a terminal session around a fresh exchange rate
func (h *TerminalHandler) OpenSession(c *gin.Context) {
	session, err := h.sessions.Open(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session.View())
}

// GetSession returns the session snapshot
func (h *TerminalHandler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.Success(c, session.View())
}

// CloseSession removes the session from the registry
func (h *TerminalHandler) CloseSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid session id")
		return
	}
	if err := h.sessions.Close(id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// searchResult wraps a catalog page with the session's search sequence
// so clients can drop stale result sets arriving out of order
type searchResult struct {
	Seq int64 `json:"seq"`
	*posapp.ProductPage
}

// SearchProducts proxies a catalog search, stamped with the session's
// monotonically increasing sequence number
func (h *TerminalHandler) SearchProducts(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

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

	seq := session.NextSearchSeq()
	page, err := h.catalog.Search(c.Request.Context(), posapp.ProductQuery{
		Search:   req.Search,
		Category: c.Query("category"),
		Page:     req.Page,
		Limit:    req.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, searchResult{Seq: int64(seq), ProductPage: page})
}

// AddCartItem fetches the product and merges the quantity delta
func (h *TerminalHandler) AddCartItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := session.AddProduct(*product, req.Quantity); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session.View())
}

// UpdateCartItem sets an absolute line quantity
func (h *TerminalHandler) UpdateCartItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		h.BadRequest(c, "invalid product id")
		return
	}

	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := session.SetQuantity(productID, req.Quantity); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session.View())
}

// RemoveCartItem drops a cart line; removing an absent line is a no-op
func (h *TerminalHandler) RemoveCartItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		h.BadRequest(c, "invalid product id")
		return
	}

	session.RemoveProduct(productID)
	h.Success(c, session.View())
}

// ClearCart empties the cart and abandons any open payment or prompt
func (h *TerminalHandler) ClearCart(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.ClearCart()
	h.Success(c, session.View())
}

// AssignCustomer attaches a customer to the sale
func (h *TerminalHandler) AssignCustomer(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.AssignCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	taxID := req.TaxID
	if taxID == "" {
		taxID = h.walkInTaxID
	}
	session.SetCustomer(pos.Customer{
		ID:    req.ID,
		Name:  req.Name,
		TaxID: taxID,
		Email: req.Email,
		Phone: req.Phone,
	})
	h.Success(c, session.View())
}

// BeginQuantityEntry opens the quantity prompt for a product
func (h *TerminalHandler) BeginQuantityEntry(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.BeginQuantityEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := session.BeginQuantityEntry(*product); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session.View())
}

// SubmitQuantity pushes the typed quantity through the prompt. On a
// stock rejection the prompt stays open with the best addable quantity
// prefilled; the 422 response carries the same figure.
func (h *TerminalHandler) SubmitQuantity(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.SubmitQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := session.SubmitQuantity(req.Quantity); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session.View())
}

// CancelQuantityEntry discards the prompt
func (h *TerminalHandler) CancelQuantityEntry(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.CancelQuantityEntry()
	h.Success(c, session.View())
}

// StartPayment opens the payment workflow
func (h *TerminalHandler) StartPayment(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.StartPayment(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session.View())
}

// SelectMethod picks the payment method
func (h *TerminalHandler) SelectMethod(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.SelectMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := session.SelectMethod(pos.PaymentMethod(req.Method)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session.View())
}

// SetAmount records the operator-typed amount
func (h *TerminalHandler) SetAmount(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.SetAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := session.SetAmount(req.Amount); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session.View())
}

// SetReference records a payment reference
func (h *TerminalHandler) SetReference(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.SetReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := session.SetReference(req.Reference); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session.View())
}

// SetNotes records payment notes
func (h *TerminalHandler) SetNotes(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.SetNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := session.SetNotes(req.Notes); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session.View())
}

// ToggleCurrency flips the display currency
func (h *TerminalHandler) ToggleCurrency(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.ToggleCurrency(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session.View())
}

// keyResult reports which command a key decoded to, if any
type keyResult struct {
	Command pos.Command        `json:"command,omitempty"`
	Session posapp.SessionView `json:"session"`
}

// ApplyKey decodes a raw keyboard key against the payment workflow
func (h *TerminalHandler) ApplyKey(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.KeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	cmd, err := session.ApplyKey(req.Key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, keyResult{Command: cmd, Session: session.View()})
}

// ConfirmPayment freezes the payment draft
func (h *TerminalHandler) ConfirmPayment(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.ConfirmPayment(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session.View())
}

// CancelPayment abandons the payment flow, the cart keeps its items
func (h *TerminalHandler) CancelPayment(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.CancelPayment(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session.View())
}

// checkoutResult pairs the collaborator's invoice with the session
// snapshot after the reset (or non-reset, if the sale was cancelled
// mid-flight)
type checkoutResult struct {
	Invoice *posapp.Invoice    `json:"invoice"`
	Session posapp.SessionView `json:"session"`
}

// Checkout submits the confirmed sale to the invoicing collaborator
func (h *TerminalHandler) Checkout(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	invoice, err := h.checkout.Submit(c.Request.Context(), session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, checkoutResult{Invoice: invoice, Session: session.View()})
}
