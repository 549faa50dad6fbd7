package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agridane/erp_backend/internal/core/domain"
	portssvc "github.com/agridane/erp_backend/internal/core/ports/services"
	"github.com/agridane/erp_backend/internal/dto"
	"github.com/agridane/erp_backend/internal/middleware"
)

// approvalHandler handles the approval workflow endpoints.
type approvalHandler struct {
	approvalService portssvc.ApprovalSvcFacade
}

func newApprovalHandler(approvalService portssvc.ApprovalSvcFacade) *approvalHandler {
	return &approvalHandler{approvalService: approvalService}
}

// requestApproval godoc
// @Summary Request an approval
// @Description Opens a pending approval cycle for a record mutation
// @Tags approvals
// @Accept json
// @Produce json
// @Param request body dto.RequestApprovalRequest true "Approval request"
// @Success 201 {object} dto.ApprovalResponse "Created approval"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /approvals [post]
func (h *approvalHandler) requestApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RequestApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind approval request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	approval, err := h.approvalService.RequestApproval(c.Request.Context(), req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to request approval")
		return
	}
	c.JSON(http.StatusCreated, dto.ToApprovalResponse(approval))
}

// decideApproval godoc
// @Summary Decide an approval
// @Description Approves or rejects a pending approval; approval starts the edit window
// @Tags approvals
// @Accept json
// @Produce json
// @Param approvalID path string true "Approval ID"
// @Param request body dto.DecideApprovalRequest true "Decision"
// @Success 200 {object} dto.ApprovalResponse "Decided approval"
// @Failure 404 {object} map[string]string "Unknown approval"
// @Failure 409 {object} map[string]string "Already decided"
// @Router /approvals/{approvalID}/decide [post]
func (h *approvalHandler) decideApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.DecideApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind decision request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	approval, err := h.approvalService.Decide(c.Request.Context(), c.Param("approvalID"), req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to decide approval")
		return
	}
	c.JSON(http.StatusOK, dto.ToApprovalResponse(approval))
}

// releaseApproval godoc
// @Summary Release an edit approval
// @Description Consumes the active edit approval, ending the edit session
// @Tags approvals
// @Accept json
// @Produce json
// @Param request body dto.ReleaseApprovalRequest true "Record to release"
// @Success 200 {object} map[string]string "Released"
// @Failure 404 {object} map[string]string "No usable approval"
// @Router /approvals/release [post]
func (h *approvalHandler) releaseApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ReleaseApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind release request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	module, err := domain.ParseModuleType(req.Module)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.approvalService.ReleaseApproval(c.Request.Context(), module, req.RecordID, req.CompanyID); err != nil {
		respondServiceError(c, logger, err, "Failed to release approval")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "released"})
}

// RegisterApprovalRoutes registers the approval workflow routes.
func RegisterApprovalRoutes(group *gin.RouterGroup, approvalService portssvc.ApprovalSvcFacade) {
	h := newApprovalHandler(approvalService)

	approvals := group.Group("/approvals")
	{
		approvals.POST("", h.requestApproval)
		approvals.POST("/:approvalID/decide", h.decideApproval)
		approvals.POST("/release", h.releaseApproval)
	}
}
