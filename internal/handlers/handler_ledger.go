package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agridane/erp_backend/internal/core/domain"
	portssvc "github.com/agridane/erp_backend/internal/core/ports/services"
	"github.com/agridane/erp_backend/internal/dto"
	"github.com/agridane/erp_backend/internal/middleware"
)

// ledgerHandler handles header lifecycle and detail mutation endpoints for
// every journal module.
type ledgerHandler struct {
	ledgerService  portssvc.LedgerSvcFacade
	balanceService portssvc.BalanceSvcFacade
}

func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade, balanceService portssvc.BalanceSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService, balanceService: balanceService}
}

// parseModule resolves the :module URL segment, answering 404 on an unknown one.
func parseModule(c *gin.Context, logger *slog.Logger) (domain.ModuleType, bool) {
	module, err := domain.ParseModuleType(c.Param("module"))
	if err != nil {
		logger.Warn("Unknown module", slog.String("module", c.Param("module")))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", false
	}
	return module, true
}

// createHeader godoc
// @Summary Create a transaction header
// @Description Creates a header-only transaction with zero totals and allocates its document number
// @Tags ledger
// @Accept json
// @Produce json
// @Param module path string true "Journal module" Enums(CR, CD, CS, CP, GA)
// @Param request body dto.CreateHeaderRequest true "Header fields"
// @Success 201 {object} dto.HeaderResponse "Created header"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /ledger/{module} [post]
func (h *ledgerHandler) createHeader(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	module, ok := parseModule(c, logger)
	if !ok {
		return
	}

	var req dto.CreateHeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind create header request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	header, err := h.ledgerService.CreateHeader(c.Request.Context(), module, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create header")
		return
	}

	logger.Info("Header created",
		slog.String("module", string(module)),
		slog.String("transaction_id", header.TransactionID))
	c.JSON(http.StatusCreated, dto.ToHeaderResponse(header))
}

// getHeader godoc
// @Summary Get a transaction with its detail rows
// @Tags ledger
// @Produce json
// @Param module path string true "Journal module"
// @Param transactionID path string true "Transaction ID"
// @Param companyID query string true "Company ID"
// @Success 200 {object} dto.GetHeaderResponse "Header and details"
// @Failure 404 {object} map[string]string "Not found"
// @Router /ledger/{module}/{transactionID} [get]
func (h *ledgerHandler) getHeader(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	module, ok := parseModule(c, logger)
	if !ok {
		return
	}
	companyID, ok := requireCompanyID(c, logger)
	if !ok {
		return
	}

	resp, err := h.ledgerService.GetHeader(c.Request.Context(), module, c.Param("transactionID"), companyID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get header")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listHeaders godoc
// @Summary List transaction headers
// @Description Lists the company's headers newest first; deleted ones are hidden
// @Tags ledger
// @Produce json
// @Param module path string true "Journal module"
// @Param companyID query string true "Company ID"
// @Param limit query int false "Page size (default 20)"
// @Param nextToken query string false "Opaque page token"
// @Success 200 {object} dto.ListHeadersResponse "One page of headers"
// @Failure 422 {object} map[string]string "Missing companyID"
// @Router /ledger/{module} [get]
func (h *ledgerHandler) listHeaders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	module, ok := parseModule(c, logger)
	if !ok {
		return
	}
	companyID, ok := requireCompanyID(c, logger)
	if !ok {
		return
	}

	params := dto.ListHeadersParams{CompanyID: companyID}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		params.Limit = limit
	}
	if token := c.Query("nextToken"); token != "" {
		params.NextToken = &token
	}

	resp, err := h.ledgerService.ListHeaders(c.Request.Context(), module, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list headers")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// cancelHeader godoc
// @Summary Cancel a transaction
// @Description Soft-cancels the transaction; detail rows are retained
// @Tags ledger
// @Produce json
// @Param module path string true "Journal module"
// @Param transactionID path string true "Transaction ID"
// @Param companyID query string true "Company ID"
// @Success 200 {object} map[string]string "Cancelled"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 409 {object} map[string]string "Already cancelled or deleted"
// @Router /ledger/{module}/{transactionID}/cancel [post]
func (h *ledgerHandler) cancelHeader(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	module, ok := parseModule(c, logger)
	if !ok {
		return
	}
	companyID, ok := requireCompanyID(c, logger)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	transactionID := c.Param("transactionID")
	if err := h.ledgerService.CancelHeader(c.Request.Context(), module, transactionID, companyID, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to cancel transaction")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// addDetail godoc
// @Summary Add a detail row
// @Description Adds a GL posting line and returns the recomputed balance triple
// @Tags ledger
// @Accept json
// @Produce json
// @Param module path string true "Journal module"
// @Param transactionID path string true "Transaction ID"
// @Param companyID query string true "Company ID"
// @Param request body dto.DetailRequest true "Detail fields"
// @Success 200 {object} dto.BalanceResponse "Recomputed balance"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 409 {object} map[string]string "Transaction not active"
// @Failure 422 {object} map[string]string "Validation failed"
// @Router /ledger/{module}/{transactionID}/details [post]
func (h *ledgerHandler) addDetail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	module, ok := parseModule(c, logger)
	if !ok {
		return
	}
	companyID, ok := requireCompanyID(c, logger)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.DetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind detail request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	balance, err := h.balanceService.AddDetail(c.Request.Context(), module, c.Param("transactionID"), req, companyID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to add detail")
		return
	}
	c.JSON(http.StatusOK, balance)
}

// updateDetail godoc
// @Summary Update a detail row
// @Description Updates a GL posting line; requires an active edit approval
// @Tags ledger
// @Accept json
// @Produce json
// @Param module path string true "Journal module"
// @Param transactionID path string true "Transaction ID"
// @Param detailID path string true "Detail ID"
// @Param companyID query string true "Company ID"
// @Param request body dto.DetailRequest true "Detail fields"
// @Success 200 {object} dto.BalanceResponse "Recomputed balance"
// @Failure 403 {object} map[string]string "No active edit approval"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 422 {object} map[string]string "Validation failed"
// @Router /ledger/{module}/{transactionID}/details/{detailID} [put]
func (h *ledgerHandler) updateDetail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	module, ok := parseModule(c, logger)
	if !ok {
		return
	}
	companyID, ok := requireCompanyID(c, logger)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.DetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind detail request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	balance, err := h.balanceService.UpdateDetail(c.Request.Context(), module, c.Param("transactionID"), c.Param("detailID"), req, companyID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update detail")
		return
	}
	c.JSON(http.StatusOK, balance)
}

// removeDetail godoc
// @Summary Remove a detail row
// @Description Removes a GL posting line; requires an active edit approval
// @Tags ledger
// @Produce json
// @Param module path string true "Journal module"
// @Param transactionID path string true "Transaction ID"
// @Param detailID path string true "Detail ID"
// @Param companyID query string true "Company ID"
// @Success 200 {object} dto.BalanceResponse "Recomputed balance"
// @Failure 403 {object} map[string]string "No active edit approval"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 422 {object} map[string]string "Bank row is protected"
// @Router /ledger/{module}/{transactionID}/details/{detailID} [delete]
func (h *ledgerHandler) removeDetail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	module, ok := parseModule(c, logger)
	if !ok {
		return
	}
	companyID, ok := requireCompanyID(c, logger)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	balance, err := h.balanceService.RemoveDetail(c.Request.Context(), module, c.Param("transactionID"), c.Param("detailID"), companyID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to remove detail")
		return
	}
	c.JSON(http.StatusOK, balance)
}

// recalcTotals godoc
// @Summary Recalculate cached header totals
// @Description Recomputes sums, the bank offset row and the balanced flag from the stored rows
// @Tags ledger
// @Produce json
// @Param module path string true "Journal module"
// @Param transactionID path string true "Transaction ID"
// @Param companyID query string true "Company ID"
// @Success 200 {object} dto.BalanceResponse "Recomputed balance"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 422 {object} map[string]string "Missing company ID"
// @Router /ledger/{module}/{transactionID}/recalc [post]
func (h *ledgerHandler) recalcTotals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	module, ok := parseModule(c, logger)
	if !ok {
		return
	}
	companyID, ok := requireCompanyID(c, logger)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	balance, err := h.balanceService.RecalcTotals(c.Request.Context(), module, c.Param("transactionID"), companyID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to recalculate totals")
		return
	}
	c.JSON(http.StatusOK, balance)
}

// RegisterLedgerRoutes registers the journal module routes.
func RegisterLedgerRoutes(group *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, balanceService portssvc.BalanceSvcFacade) {
	h := newLedgerHandler(ledgerService, balanceService)

	ledger := group.Group("/ledger/:module")
	{
		ledger.POST("", h.createHeader)
		ledger.GET("", h.listHeaders)
		ledger.GET("/:transactionID", h.getHeader)
		ledger.POST("/:transactionID/cancel", h.cancelHeader)
		ledger.POST("/:transactionID/recalc", h.recalcTotals)
		ledger.POST("/:transactionID/details", h.addDetail)
		ledger.PUT("/:transactionID/details/:detailID", h.updateDetail)
		ledger.DELETE("/:transactionID/details/:detailID", h.removeDetail)
	}
}
