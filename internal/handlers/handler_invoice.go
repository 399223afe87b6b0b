package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
)

// invoiceHandler handles accounts-receivable invoice requests.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
}

func newInvoiceHandler(invoiceService portssvc.InvoiceSvcFacade) *invoiceHandler {
	return &invoiceHandler{invoiceService: invoiceService}
}

// createInvoice godoc
// @Summary Create an invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.InvoiceResponse
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	inv, err := h.invoiceService.CreateInvoice(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(inv))
}

// listInvoices godoc
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param businessID query string false "Filter by business"
// @Success 200 {object} dto.ListInvoicesResponse
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	invoices, err := h.invoiceService.ListInvoices(c.Request.Context(), userID, c.Query("businessID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListInvoicesResponse(invoices))
}

// getInvoice godoc
// @Summary Get one invoice
// @Tags invoices
// @Produce json
// @Param invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Router /invoices/{invoiceID} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	inv, err := h.invoiceService.GetInvoiceByID(c.Request.Context(), userID, c.Param("invoiceID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv))
}

// markInvoiceSent godoc
// @Summary Mark a draft invoice as sent
// @Tags invoices
// @Produce json
// @Param invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 409 {object} map[string]string "Invoice is not a draft"
// @Router /invoices/{invoiceID}/send [post]
func (h *invoiceHandler) markInvoiceSent(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	inv, err := h.invoiceService.MarkInvoiceSent(c.Request.Context(), userID, c.Param("invoiceID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv))
}

// recordPayment godoc
// @Summary Record a payment against an invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoiceID path string true "Invoice ID"
// @Param payment body dto.RecordPaymentRequest true "Payment amount and date"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 409 {object} map[string]string "Invoice is still a draft"
// @Router /invoices/{invoiceID}/payments [post]
func (h *invoiceHandler) recordPayment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	inv, err := h.invoiceService.RecordPayment(c.Request.Context(), userID, c.Param("invoiceID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv))
}

func registerInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade) {
	h := newInvoiceHandler(invoiceService)
	invoices := rg.Group("/invoices")
	invoices.POST("", h.createInvoice)
	invoices.GET("", h.listInvoices)
	invoices.GET("/:invoiceID", h.getInvoice)
	invoices.POST("/:invoiceID/send", h.markInvoiceSent)
	invoices.POST("/:invoiceID/payments", h.recordPayment)
}
