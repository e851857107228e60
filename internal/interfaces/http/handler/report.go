package handler

import (
	"github.com/gin-gonic/gin"
	reportapp "github.com/tn-gestion/backend/internal/application/report"
)

// ReportHandler handles report endpoints. Periods are given as
// ?from=YYYY-MM-DD&to=YYYY-MM-DD, both days included.
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// SalesSummary returns invoiced revenue over a period
// GET /reports/sales-summary
func (h *ReportHandler) SalesSummary(c *gin.Context) {
	var req reportapp.PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	summary, err := h.reportService.SalesSummary(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// TVADeclaration returns collected and deductible TVA per rate
// GET /reports/tva
func (h *ReportHandler) TVADeclaration(c *gin.Context) {
	var req reportapp.PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	declaration, err := h.reportService.TVADeclaration(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, declaration)
}

// ProfitAndLoss returns revenue against expenses and payroll
// GET /reports/profit-loss
func (h *ReportHandler) ProfitAndLoss(c *gin.Context) {
	var req reportapp.PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	pnl, err := h.reportService.ProfitAndLoss(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pnl)
}

// ProjectProfitability returns the margin of one project
// GET /reports/projects/:id/profitability
func (h *ReportHandler) ProjectProfitability(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	profitability, err := h.reportService.ProjectProfitability(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profitability)
}
