package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orghealth/ascent/internal/dto"
	"github.com/orghealth/ascent/internal/middleware"
	"github.com/orghealth/ascent/internal/service"
	"github.com/rs/zerolog/log"
)

type ReportController struct {
	reportService service.ReportService
}

func NewReportController(reportService service.ReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

// ReportStatus godoc
// @Summary Poll report render progress
// @Description Returns the render pipeline state. When the renderer reports completion, the PDF is fetched and stored before the completed status is returned.
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Success 200 {object} dto.ReportStatusDTO
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{assessment_id}/report/status [get]
func (c *ReportController) ReportStatus(ctx *gin.Context) {
	assessmentID, ok := pathID(ctx, "assessment_id")
	if !ok {
		return
	}

	status, err := c.reportService.PollStatus(ctx.Request.Context(), assessmentID, middleware.UserID(ctx))
	if err != nil {
		c.writeReportError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, status)
}

// DownloadReport godoc
// @Summary Get a time-limited report download link
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Success 200 {object} dto.ReportDownloadDTO
// @Failure 402 {object} dto.ErrorResponse "Report not purchased"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Failure 409 {object} dto.ErrorResponse "Report not ready yet"
// @Router /assessments/{assessment_id}/report/download [get]
func (c *ReportController) DownloadReport(ctx *gin.Context) {
	assessmentID, ok := pathID(ctx, "assessment_id")
	if !ok {
		return
	}

	download, err := c.reportService.Download(ctx.Request.Context(), assessmentID, middleware.UserID(ctx))
	if err != nil {
		c.writeReportError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, download)
}

// ListReports godoc
// @Summary List all stored reports for the admin
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.ReportSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports [get]
func (c *ReportController) ListReports(ctx *gin.Context) {
	reports, err := c.reportService.ListReports(middleware.UserID(ctx))
	if err != nil {
		log.Error().Err(err).Msg("ListReports: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve reports"})
		return
	}
	ctx.JSON(http.StatusOK, reports)
}

func (c *ReportController) writeReportError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReportNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrReportNotPaid):
		ctx.JSON(http.StatusPaymentRequired, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrReportNotReady):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
	default:
		log.Error().Err(err).Msg("Report: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to process report request"})
	}
}
