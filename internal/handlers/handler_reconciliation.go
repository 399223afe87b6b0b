package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
)

// reconciliationHandler handles statement reconciliation requests.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

func newReconciliationHandler(reconciliationService portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{reconciliationService: reconciliationService}
}

// finalizeReconciliation godoc
// @Summary Finalize a statement reconciliation
// @Description Verifies the cleared lines sum to the statement balance, marks them
// @Description cleared, and locks the period through the statement end date.
// @Tags reconciliations
// @Accept json
// @Produce json
// @Param reconciliation body dto.FinalizeReconciliationRequest true "Statement and cleared lines"
// @Success 201 {object} dto.ReconciliationResponse
// @Failure 400 {object} map[string]string "Cleared lines do not match the statement balance"
// @Failure 409 {object} map[string]string "Statement end date does not advance, or a line is already cleared"
// @Router /reconciliations [post]
func (h *reconciliationHandler) finalizeReconciliation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.FinalizeReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rec, err := h.reconciliationService.FinalizeReconciliation(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToReconciliationResponse(rec))
}

// getLockStatus godoc
// @Summary Get an account's locked-through date
// @Tags reconciliations
// @Produce json
// @Param accountID path string true "Account ID"
// @Success 200 {object} dto.LockStatusResponse
// @Router /accounts/{accountID}/lock-status [get]
func (h *reconciliationHandler) getLockStatus(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	accountID := c.Param("accountID")
	lockedThrough, err := h.reconciliationService.LockedThrough(c.Request.Context(), userID, accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LockStatusResponse{AccountID: accountID, LockedThrough: lockedThrough})
}

// listReconciliations godoc
// @Summary List an account's reconciliation history, newest first
// @Tags reconciliations
// @Produce json
// @Param accountID path string true "Account ID"
// @Success 200 {object} dto.ListReconciliationsResponse
// @Router /accounts/{accountID}/reconciliations [get]
func (h *reconciliationHandler) listReconciliations(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	recs, err := h.reconciliationService.ListReconciliations(c.Request.Context(), userID, c.Param("accountID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListReconciliationsResponse(recs))
}

func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconciliationService)
	rg.POST("/reconciliations", h.finalizeReconciliation)
	rg.GET("/accounts/:accountID/lock-status", h.getLockStatus)
	rg.GET("/accounts/:accountID/reconciliations", h.listReconciliations)
}
