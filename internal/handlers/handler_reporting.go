package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
)

const reportDateLayout = "2006-01-02"

// reportingHandler handles the derived-report endpoints. Reports are pure reads.
type reportingHandler struct {
	reportingService portssvc.ReportingSvc
}

func newReportingHandler(reportingService portssvc.ReportingSvc) *reportingHandler {
	return &reportingHandler{reportingService: reportingService}
}

// profitAndLoss godoc
// @Summary Profit and loss statement for a date range
// @Tags reports
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Param businessID query string false "Filter by business"
// @Success 200 {object} dto.PAndLResponse
// @Router /reports/profit-and-loss [get]
func (h *reportingHandler) profitAndLoss(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}
	from, _ := time.Parse(reportDateLayout, params.From)
	to, _ := time.Parse(reportDateLayout, params.To)

	rpt, err := h.reportingService.ProfitAndLoss(c.Request.Context(), userID, from, to, params.BusinessID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPAndLResponse(from, to, rpt))
}

// balanceSheet godoc
// @Summary Balance sheet as of a date
// @Tags reports
// @Produce json
// @Param asOf query string true "Report date (YYYY-MM-DD)"
// @Param businessID query string false "Filter by business"
// @Success 200 {object} dto.BalanceSheetResponse
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) balanceSheet(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}
	asOf, _ := time.Parse(reportDateLayout, params.AsOf)

	rpt, err := h.reportingService.BalanceSheet(c.Request.Context(), userID, asOf, params.BusinessID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(rpt))
}

// cashFlow godoc
// @Summary Monthly cash flow for a cash account
// @Tags reports
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Param cashAccountID query string true "Cash account"
// @Param businessID query string false "Filter by business"
// @Success 200 {object} dto.CashFlowResponse
// @Router /reports/cash-flow [get]
func (h *reportingHandler) cashFlow(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.CashFlowParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}
	from, _ := time.Parse(reportDateLayout, params.From)
	to, _ := time.Parse(reportDateLayout, params.To)

	rpt, err := h.reportingService.CashFlow(c.Request.Context(), userID, from, to, params.CashAccountID, params.BusinessID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCashFlowResponse(rpt))
}

// arAging godoc
// @Summary Accounts-receivable aging buckets
// @Tags reports
// @Produce json
// @Success 200 {object} dto.ARAgingResponse
// @Router /reports/ar-aging [get]
func (h *reportingHandler) arAging(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rpt, err := h.reportingService.ARAging(c.Request.Context(), userID, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToARAgingResponse(rpt))
}

// dashboard godoc
// @Summary Landing-page financial summary
// @Tags reports
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Router /reports/dashboard [get]
func (h *reportingHandler) dashboard(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	summary, err := h.reportingService.Dashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDashboardResponse(summary))
}

func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvc) {
	h := newReportingHandler(reportingService)
	reports := rg.Group("/reports")
	reports.GET("/profit-and-loss", h.profitAndLoss)
	reports.GET("/balance-sheet", h.balanceSheet)
	reports.GET("/cash-flow", h.cashFlow)
	reports.GET("/ar-aging", h.arAging)
	reports.GET("/dashboard", h.dashboard)
}
