package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	printingapp "github.com/tn-gestion/backend/internal/application/printing"
)

// ToolsHandler exposes the fiscal helpers used by clients while a document
// is being typed
type ToolsHandler struct {
	BaseHandler
	printService *printingapp.PrintService
}

// NewToolsHandler creates a new ToolsHandler
func NewToolsHandler(printService *printingapp.PrintService) *ToolsHandler {
	return &ToolsHandler{
		printService: printService,
	}
}

// AmountInWords spells an amount in French dinars and millimes
// GET /tools/amount-in-words?amount=1234.560
func (h *ToolsHandler) AmountInWords(c *gin.Context) {
	raw := c.Query("amount")
	if raw == "" {
		h.BadRequest(c, "amount is required")
		return
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil || amount.IsNegative() {
		h.BadRequest(c, "amount must be a positive decimal number")
		return
	}
	h.Success(c, h.printService.AmountInWords(amount))
}

// Totals computes document totals without saving anything
// POST /tools/totals
func (h *ToolsHandler) Totals(c *gin.Context) {
	var req printingapp.TotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	totals, err := h.printService.PreviewTotals(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}
