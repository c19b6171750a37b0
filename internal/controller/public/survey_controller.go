package public

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orghealth/ascent/internal/dto"
	"github.com/orghealth/ascent/internal/service"
	"github.com/rs/zerolog/log"
)

type SurveyController struct {
	surveyService service.SurveyService
}

func NewSurveyController(surveyService service.SurveyService) *SurveyController {
	return &SurveyController{surveyService: surveyService}
}

// GetSurvey godoc
// @Summary Fetch a participant's survey
// @Description Returns the question list for the participant identified by the access token. Already-submitted participants get a thank-you view without questions.
// @Tags Survey
// @Produce json
// @Param token path string true "Participant access token"
// @Success 200 {object} dto.SurveyViewDTO
// @Failure 404 {object} dto.ErrorResponse "Unknown token"
// @Failure 410 {object} dto.ErrorResponse "Deadline passed"
// @Router /surveys/{token} [get]
func (c *SurveyController) GetSurvey(ctx *gin.Context) {
	view, err := c.surveyService.GetSurvey(ctx.Param("token"))
	if err != nil {
		c.writeSurveyError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// SubmitSurvey godoc
// @Summary Submit survey answers
// @Description Records the participant's ratings. Repeat submissions are acknowledged without changing stored answers.
// @Tags Survey
// @Accept json
// @Produce json
// @Param token path string true "Participant access token"
// @Param answers body dto.SurveySubmitDTO true "Ratings keyed by question id"
// @Success 200 {object} dto.SurveySubmitResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid or empty submission"
// @Failure 404 {object} dto.ErrorResponse "Unknown token"
// @Failure 410 {object} dto.ErrorResponse "Deadline passed"
// @Router /surveys/{token} [post]
func (c *SurveyController) SubmitSurvey(ctx *gin.Context) {
	var req dto.SurveySubmitDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.surveyService.Submit(ctx.Param("token"), req)
	if err != nil {
		c.writeSurveyError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func (c *SurveyController) writeSurveyError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSurveyNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrSurveyClosed):
		ctx.JSON(http.StatusGone, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrNoAnswers):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
	default:
		log.Error().Err(err).Msg("Survey: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to process survey request"})
	}
}
