package handler

import (
	posapp "github.com/erp/pos/internal/application/pos"
	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CashCloseHandler reconciles the operator's declared drawer against the
// finance service's system totals.
type CashCloseHandler struct {
	BaseHandler
	service *posapp.CashCloseService
	logger  *zap.Logger
}

// NewCashCloseHandler creates a cash-close handler
func NewCashCloseHandler(service *posapp.CashCloseService, logger *zap.Logger) *CashCloseHandler {
	return &CashCloseHandler{service: service, logger: logger}
}

// RegisterRoutes registers cash-close routes
func (h *CashCloseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/pos/cash-close", h.Close)
}

// Close runs the drawer reconciliation
func (h *CashCloseHandler) Close(c *gin.Context) {
	var req dto.CashCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.Reconcile(c.Request.Context(), pos.CashCloseInput{
		DeclaredCashUSD: req.DeclaredCashUSD,
		DeclaredCashVES: req.DeclaredCashVES,
		DeclaredCardUSD: req.DeclaredCardUSD,
		DeclaredCardVES: req.DeclaredCardVES,
		Notes:           req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
