package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
)

// transactionHandler handles the bank-feed staging area: ingest, categorize,
// and post into the journal.
type transactionHandler struct {
	stagingService portssvc.StagingSvcFacade
}

func newTransactionHandler(stagingService portssvc.StagingSvcFacade) *transactionHandler {
	return &transactionHandler{stagingService: stagingService}
}

// ingestBankTransactions godoc
// @Summary Ingest a batch of bank-feed transactions
// @Description Stages each transaction with the bank sign convention flipped to
// @Description ledger convention. Transactions whose vendor id was seen before are
// @Description skipped, so replaying a feed batch is safe.
// @Tags transactions
// @Accept json
// @Produce json
// @Param batch body dto.IngestBankTransactionsRequest true "Bank feed batch"
// @Success 200 {object} dto.IngestBankTransactionsResponse
// @Failure 400 {object} map[string]string "Target account is not a bank account"
// @Router /transactions/ingest [post]
func (h *transactionHandler) ingestBankTransactions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.IngestBankTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	staged, skipped, err := h.stagingService.IngestBankTransactions(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.IngestBankTransactionsResponse{Staged: staged, Skipped: skipped})
}

// createManualTransaction godoc
// @Summary Stage a hand-entered transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body dto.CreateManualTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Router /transactions [post]
func (h *transactionHandler) createManualTransaction(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateManualTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	txn, err := h.stagingService.CreateManualTransaction(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List staged transactions, newest first
// @Tags transactions
// @Produce json
// @Param status query string false "Filter by status" Enums(imported, posted, needs_repost)
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Keyset token from a previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	page, err := h.stagingService.ListTransactions(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// getTransaction godoc
// @Summary Get one staged transaction
// @Tags transactions
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	txn, err := h.stagingService.GetTransactionByID(c.Request.Context(), userID, c.Param("transactionID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// categorizeTransaction godoc
// @Summary Categorize a staged transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Param categorization body dto.CategorizeTransactionRequest true "Kind, account, tags"
// @Success 200 {object} dto.TransactionResponse
// @Failure 409 {object} map[string]string "Transaction already posted"
// @Router /transactions/{transactionID}/categorize [put]
func (h *transactionHandler) categorizeTransaction(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CategorizeTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	txn, err := h.stagingService.CategorizeTransaction(c.Request.Context(), userID, c.Param("transactionID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// postTransaction godoc
// @Summary Post a categorized transaction to the journal
// @Description Builds the double-entry lines from the categorization and posts them
// @Description atomically with the status flip to posted.
// @Tags transactions
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Success 201 {object} dto.PostTransactionResponse
// @Failure 409 {object} map[string]string "Transaction already posted"
// @Failure 422 {object} map[string]string "Transaction is still pending at the bank"
// @Router /transactions/{transactionID}/post [post]
func (h *transactionHandler) postTransaction(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	txn, entry, err := h.stagingService.PostTransaction(c.Request.Context(), userID, c.Param("transactionID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PostTransactionResponse{
		Transaction: dto.ToTransactionResponse(txn),
		Entry:       dto.ToEntryResponse(entry),
	})
}

func registerTransactionRoutes(rg *gin.RouterGroup, stagingService portssvc.StagingSvcFacade) {
	h := newTransactionHandler(stagingService)
	txns := rg.Group("/transactions")
	txns.POST("/ingest", h.ingestBankTransactions)
	txns.POST("", h.createManualTransaction)
	txns.GET("", h.listTransactions)
	txns.GET("/:transactionID", h.getTransaction)
	txns.PUT("/:transactionID/categorize", h.categorizeTransaction)
	txns.POST("/:transactionID/post", h.postTransaction)
}
