package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
)

// accountHandler handles chart-of-accounts requests.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	ledgerService  portssvc.LedgerCalculatorSvc
}

func newAccountHandler(accountService portssvc.AccountSvcFacade, ledgerService portssvc.LedgerCalculatorSvc) *accountHandler {
	return &accountHandler{accountService: accountService, ledgerService: ledgerService}
}

// createAccount godoc
// @Summary Create an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List the chart of accounts
// @Tags accounts
// @Produce json
// @Param includeArchived query bool false "Include archived accounts"
// @Success 200 {object} dto.ListAccountsResponse
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), userID, params.IncludeArchived)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}

// getAccount godoc
// @Summary Get one account
// @Tags accounts
// @Produce json
// @Param accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	account, err := h.accountService.GetAccountByID(c.Request.Context(), userID, c.Param("accountID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateAccount godoc
// @Summary Update an account's mutable details
// @Tags accounts
// @Accept json
// @Produce json
// @Param accountID path string true "Account ID"
// @Param account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Router /accounts/{accountID} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), userID, c.Param("accountID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// archiveAccount godoc
// @Summary Archive an account
// @Description Hides the account from pickers; posted history keeps referencing it.
// @Tags accounts
// @Param accountID path string true "Account ID"
// @Success 204
// @Router /accounts/{accountID} [delete]
func (h *accountHandler) archiveAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.accountService.ArchiveAccount(c.Request.Context(), userID, c.Param("accountID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// getAccountBalance godoc
// @Summary Get an account's derived balance
// @Tags accounts
// @Produce json
// @Param accountID path string true "Account ID"
// @Success 200 {object} dto.AccountBalanceResponse
// @Router /accounts/{accountID}/balance [get]
func (h *accountHandler) getAccountBalance(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	accountID := c.Param("accountID")
	balance, err := h.ledgerService.CalculateAccountBalance(c.Request.Context(), userID, accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceResponse(accountID, balance))
}

func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, ledgerService portssvc.LedgerSvcFacade) {
	h := newAccountHandler(accountService, ledgerService)
	accounts := rg.Group("/accounts")
	accounts.POST("", h.createAccount)
	accounts.GET("", h.listAccounts)
	accounts.GET("/:accountID", h.getAccount)
	accounts.PUT("/:accountID", h.updateAccount)
	accounts.DELETE("/:accountID", h.archiveAccount)
	accounts.GET("/:accountID/balance", h.getAccountBalance)
}
