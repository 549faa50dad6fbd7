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

// reportHandler handles the ticket-based report endpoints.
type reportHandler struct {
	reportService portssvc.ReportSvcFacade
}

func newReportHandler(reportService portssvc.ReportSvcFacade) *reportHandler {
	return &reportHandler{reportService: reportService}
}

// parseReportType resolves the :reportType URL segment, answering 404 on an
// unknown segment.
func (h *reportHandler) parseReportType(c *gin.Context, logger *slog.Logger) (domain.ReportType, bool) {
	reportType, err := domain.ParseReportType(c.Param("reportType"))
	if err != nil {
		logger.Warn("Unknown report type", slog.String("report_type", c.Param("reportType")))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", false
	}
	return reportType, true
}

// requireCompanyID reads the mandatory companyID query parameter.
func requireCompanyID(c *gin.Context, logger *slog.Logger) (string, bool) {
	companyID := c.Query("companyID")
	if companyID == "" {
		logger.Warn("Missing companyID query parameter")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "companyID is required"})
		return "", false
	}
	return companyID, true
}

// startReport godoc
// @Summary Start a report build
// @Description Validates the request, queues the report build and returns the ticket to poll
// @Tags reports
// @Accept json
// @Produce json
// @Param reportType path string true "Report type" Enums(general-ledger, trial-balance, check-register, cash-receipt-book, cash-disbursement-book, general-journal-book, ap-journal, ar-journal)
// @Param request body dto.StartReportRequest true "Report parameters"
// @Success 201 {object} dto.StartReportResponse "Ticket to poll"
// @Failure 404 {object} map[string]string "Unknown report type"
// @Failure 422 {object} map[string]string "Invalid parameters"
// @Failure 500 {object} map[string]string "Failed to queue the report"
// @Router /reports/{reportType} [post]
func (h *reportHandler) startReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	reportType, ok := h.parseReportType(c, logger)
	if !ok {
		return
	}

	var req dto.StartReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind report request", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.reportService.StartReport(c.Request.Context(), reportType, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to start report")
		return
	}

	logger.Info("Report queued",
		slog.String("report_type", string(reportType)),
		slog.String("ticket", ticket))
	c.JSON(http.StatusCreated, dto.StartReportResponse{Ticket: ticket})
}

// reportStatus godoc
// @Summary Poll a report job
// @Description Returns the current job state for a ticket
// @Tags reports
// @Produce json
// @Param reportType path string true "Report type"
// @Param ticket path string true "Ticket"
// @Param companyID query string true "Company ID"
// @Success 200 {object} dto.JobStatusResponse "Job state"
// @Failure 403 {object} map[string]string "Ticket belongs to another company"
// @Failure 404 {object} map[string]string "Unknown or expired ticket"
// @Failure 422 {object} map[string]string "Missing companyID"
// @Router /reports/{reportType}/{ticket}/status [get]
func (h *reportHandler) reportStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	reportType, ok := h.parseReportType(c, logger)
	if !ok {
		return
	}
	companyID, ok := requireCompanyID(c, logger)
	if !ok {
		return
	}

	job, err := h.reportService.Status(c.Request.Context(), reportType, c.Param("ticket"), companyID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to fetch report status")
		return
	}
	c.JSON(http.StatusOK, dto.ToJobStatusResponse(job))
}

// downloadReport godoc
// @Summary Download a finished report
// @Description Streams the rendered artifact as an attachment
// @Tags reports
// @Produce application/pdf
// @Param reportType path string true "Report type"
// @Param ticket path string true "Ticket"
// @Param companyID query string true "Company ID"
// @Success 200 {file} binary "Report artifact"
// @Failure 403 {object} map[string]string "Ticket belongs to another company"
// @Failure 404 {object} map[string]string "Unknown or expired ticket"
// @Failure 409 {object} map[string]string "Report not finished"
// @Failure 410 {object} map[string]string "Artifact evicted"
// @Router /reports/{reportType}/{ticket}/download [get]
func (h *reportHandler) downloadReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	reportType, ok := h.parseReportType(c, logger)
	if !ok {
		return
	}
	companyID, ok := requireCompanyID(c, logger)
	if !ok {
		return
	}

	artifact, err := h.reportService.Download(c.Request.Context(), reportType, c.Param("ticket"), companyID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to download report")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+artifact.FileName+`"`)
	c.Data(http.StatusOK, artifact.MIMEType, artifact.Data)
}

// viewReport godoc
// @Summary View a finished PDF report inline
// @Description Streams the rendered artifact for inline display; PDF only
// @Tags reports
// @Produce application/pdf
// @Param reportType path string true "Report type"
// @Param ticket path string true "Ticket"
// @Param companyID query string true "Company ID"
// @Success 200 {file} binary "Report artifact"
// @Failure 403 {object} map[string]string "Ticket belongs to another company"
// @Failure 404 {object} map[string]string "Unknown or expired ticket"
// @Failure 409 {object} map[string]string "Report not finished"
// @Failure 410 {object} map[string]string "Artifact evicted"
// @Failure 415 {object} map[string]string "Not a PDF report"
// @Router /reports/{reportType}/{ticket}/view [get]
func (h *reportHandler) viewReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	reportType, ok := h.parseReportType(c, logger)
	if !ok {
		return
	}
	companyID, ok := requireCompanyID(c, logger)
	if !ok {
		return
	}

	artifact, err := h.reportService.View(c.Request.Context(), reportType, c.Param("ticket"), companyID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to view report")
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+artifact.FileName+`"`)
	c.Data(http.StatusOK, artifact.MIMEType, artifact.Data)
}

// RegisterReportRoutes registers the report pipeline routes.
func RegisterReportRoutes(group *gin.RouterGroup, reportService portssvc.ReportSvcFacade, rateLimit gin.HandlerFunc) {
	h := newReportHandler(reportService)

	reports := group.Group("/reports")
	{
		reports.POST("/:reportType", rateLimit, h.startReport)
		reports.GET("/:reportType/:ticket/status", h.reportStatus)
		reports.GET("/:reportType/:ticket/download", h.downloadReport)
		reports.GET("/:reportType/:ticket/view", h.viewReport)
	}
}
