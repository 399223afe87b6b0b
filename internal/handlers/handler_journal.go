package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
)

// journalHandler handles journal entry requests, including the append-only
// reversal and adjustment workflows.
type journalHandler struct {
	ledgerService     portssvc.LedgerSvcFacade
	adjustmentService portssvc.AdjustmentSvc
}

func newJournalHandler(ledgerService portssvc.LedgerSvcFacade, adjustmentService portssvc.AdjustmentSvc) *journalHandler {
	return &journalHandler{ledgerService: ledgerService, adjustmentService: adjustmentService}
}

// postEntry godoc
// @Summary Post a balanced journal entry
// @Tags journal
// @Accept json
// @Produce json
// @Param entry body dto.CreateEntryRequest true "Entry details"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Unbalanced or otherwise invalid entry"
// @Failure 409 {object} map[string]string "Entry dated inside a locked period"
// @Router /journal-entries [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	entry, err := h.ledgerService.PostEntry(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// getEntry godoc
// @Summary Get one journal entry with its lines
// @Tags journal
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /journal-entries/{entryID} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	entry, err := h.ledgerService.GetEntryByID(c.Request.Context(), userID, c.Param("entryID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries, newest first
// @Tags journal
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Keyset token from a previous page"
// @Success 200 {object} dto.ListEntriesResponse
// @Router /journal-entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	page, err := h.ledgerService.ListEntries(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// reverseEntryRequest carries the mandatory reason for a reversal.
type reverseEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// reverseEntry godoc
// @Summary Reverse a posted journal entry
// @Description Posts a mirror-image entry. The reversal keeps the original's date
// @Description unless that period is locked, in which case it lands in the earliest
// @Description open month.
// @Tags journal
// @Accept json
// @Produce json
// @Param entryID path string true "Entry ID"
// @Param reversal body reverseEntryRequest true "Reversal reason"
// @Success 201 {object} dto.EntryResponse
// @Failure 409 {object} map[string]string "Entry has reconciled lines"
// @Router /journal-entries/{entryID}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req reverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	reversal, err := h.ledgerService.ReverseEntry(c.Request.Context(), userID, c.Param("entryID"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(reversal))
}

// adjustEntry godoc
// @Summary Correct a posted journal entry
// @Description Append-only edit: the original stays untouched; a reversal and a
// @Description corrected replacement are posted atomically.
// @Tags journal
// @Accept json
// @Produce json
// @Param entryID path string true "Entry ID"
// @Param adjustment body dto.EditPostedEntryRequest true "Corrected entry and reason"
// @Success 201 {object} dto.AdjustmentResponse
// @Failure 409 {object} map[string]string "Entry has reconciled lines"
// @Router /journal-entries/{entryID}/adjust [post]
func (h *journalHandler) adjustEntry(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.EditPostedEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	reversal, replacement, err := h.adjustmentService.EditPostedEntry(c.Request.Context(), userID, c.Param("entryID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.AdjustmentResponse{
		Reversal:    dto.ToEntryResponse(reversal),
		Replacement: dto.ToEntryResponse(replacement),
	})
}

func registerJournalRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, adjustmentService portssvc.AdjustmentSvc) {
	h := newJournalHandler(ledgerService, adjustmentService)
	entries := rg.Group("/journal-entries")
	entries.POST("", h.postEntry)
	entries.GET("", h.listEntries)
	entries.GET("/:entryID", h.getEntry)
	entries.POST("/:entryID/reverse", h.reverseEntry)
	entries.POST("/:entryID/adjust", h.adjustEntry)
}
