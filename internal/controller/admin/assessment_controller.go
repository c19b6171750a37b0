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

type AssessmentController struct {
	assessmentService service.AssessmentService
}

func NewAssessmentController(assessmentService service.AssessmentService) *AssessmentController {
	return &AssessmentController{assessmentService: assessmentService}
}

// CreateDraft godoc
// @Summary Stage a new assessment
// @Description Validates the team and deadline and stages a draft. Nothing is persisted or emailed until the draft is launched.
// @Tags Assessments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param draft body dto.AssessmentDraftDTO true "Team and deadline (YYYY-MM-DD)"
// @Success 200 {object} dto.AssessmentDraftResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid deadline or empty team"
// @Failure 404 {object} dto.ErrorResponse "Team not found"
// @Router /assessments/drafts [post]
func (c *AssessmentController) CreateDraft(ctx *gin.Context) {
	var req dto.AssessmentDraftDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	draft, err := c.assessmentService.CreateDraft(ctx.Request.Context(), middleware.UserID(ctx), req)
	if err != nil {
		if errors.Is(err, service.ErrDeadlineInPast) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
			return
		}
		writeNotFoundOr500(ctx, err, "Team not found", "CreateDraft")
		return
	}
	ctx.JSON(http.StatusOK, draft)
}

// Launch godoc
// @Summary Launch a staged assessment
// @Description Persists the assessment, snapshots the roster into participants and sends each an invitation link. Launching the same draft twice returns the existing assessment.
// @Tags Assessments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param launch body dto.AssessmentLaunchDTO true "Draft token from the staging step"
// @Success 201 {object} dto.AssessmentResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Draft not found or expired"
// @Router /assessments [post]
func (c *AssessmentController) Launch(ctx *gin.Context) {
	var req dto.AssessmentLaunchDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	assessment, err := c.assessmentService.Launch(ctx.Request.Context(), middleware.UserID(ctx), req)
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Msg("Launch: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to launch assessment"})
		return
	}
	ctx.JSON(http.StatusCreated, assessment)
}

// Overview godoc
// @Summary Dashboard overview of all assessments
// @Description Lists every assessment with submission progress and report status.
// @Tags Assessments
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.AssessmentSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /assessments [get]
func (c *AssessmentController) Overview(ctx *gin.Context) {
	summaries, err := c.assessmentService.Overview(middleware.UserID(ctx))
	if err != nil {
		log.Error().Err(err).Msg("Overview: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve assessments"})
		return
	}
	ctx.JSON(http.StatusOK, summaries)
}

// GetAssessment godoc
// @Summary Get one assessment with its participants
// @Tags Assessments
// @Security BearerAuth
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Success 200 {object} dto.AssessmentResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{assessment_id} [get]
func (c *AssessmentController) GetAssessment(ctx *gin.Context) {
	assessmentID, ok := pathID(ctx, "assessment_id")
	if !ok {
		return
	}

	assessment, err := c.assessmentService.Get(middleware.UserID(ctx), assessmentID)
	if err != nil {
		writeNotFoundOr500(ctx, err, "Assessment not found", "GetAssessment")
		return
	}
	ctx.JSON(http.StatusOK, assessment)
}

// DeleteAssessment godoc
// @Summary Delete an assessment
// @Description Removes the assessment and cascades to participants, answers and the report record.
// @Tags Assessments
// @Security BearerAuth
// @Param assessment_id path int true "Assessment ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{assessment_id} [delete]
func (c *AssessmentController) DeleteAssessment(ctx *gin.Context) {
	assessmentID, ok := pathID(ctx, "assessment_id")
	if !ok {
		return
	}

	if err := c.assessmentService.Delete(middleware.UserID(ctx), assessmentID); err != nil {
		writeNotFoundOr500(ctx, err, "Assessment not found", "DeleteAssessment")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ResendInvite godoc
// @Summary Resend one participant's invitation email
// @Tags Assessments
// @Security BearerAuth
// @Produce json
// @Param participant_id path int true "Participant ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse "Participant not found"
// @Router /participants/{participant_id}/resend [post]
func (c *AssessmentController) ResendInvite(ctx *gin.Context) {
	participantID, ok := pathID(ctx, "participant_id")
	if !ok {
		return
	}

	if err := c.assessmentService.ResendInvite(ctx.Request.Context(), middleware.UserID(ctx), participantID); err != nil {
		writeNotFoundOr500(ctx, err, "Participant not found", "ResendInvite")
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Invitation resent"})
}
