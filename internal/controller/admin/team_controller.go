package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/orghealth/ascent/internal/dto"
	"github.com/orghealth/ascent/internal/middleware"
	"github.com/orghealth/ascent/internal/service"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type TeamController struct {
	teamService service.TeamService
}

func NewTeamController(teamService service.TeamService) *TeamController {
	return &TeamController{teamService: teamService}
}

// CreateTeam godoc
// @Summary Create a team
// @Tags Teams
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param team body dto.TeamCreateDTO true "Team name"
// @Success 201 {object} dto.TeamResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Router /teams [post]
func (c *TeamController) CreateTeam(ctx *gin.Context) {
	var req dto.TeamCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	team, err := c.teamService.CreateTeam(middleware.UserID(ctx), req)
	if err != nil {
		log.Error().Err(err).Msg("CreateTeam: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create team"})
		return
	}
	ctx.JSON(http.StatusCreated, team)
}

// ListTeams godoc
// @Summary List the admin's teams with member counts
// @Tags Teams
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.TeamSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /teams [get]
func (c *TeamController) ListTeams(ctx *gin.Context) {
	teams, err := c.teamService.ListTeams(middleware.UserID(ctx))
	if err != nil {
		log.Error().Err(err).Msg("ListTeams: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve teams"})
		return
	}
	ctx.JSON(http.StatusOK, teams)
}

// GetTeam godoc
// @Summary Get one team with its members
// @Tags Teams
// @Security BearerAuth
// @Produce json
// @Param team_id path int true "Team ID"
// @Success 200 {object} dto.TeamResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Team not found"
// @Router /teams/{team_id} [get]
func (c *TeamController) GetTeam(ctx *gin.Context) {
	teamID, ok := pathID(ctx, "team_id")
	if !ok {
		return
	}

	team, err := c.teamService.GetTeam(middleware.UserID(ctx), teamID)
	if err != nil {
		writeNotFoundOr500(ctx, err, "Team not found", "GetTeam")
		return
	}
	ctx.JSON(http.StatusOK, team)
}

// RenameTeam godoc
// @Summary Rename a team
// @Tags Teams
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param team_id path int true "Team ID"
// @Param team body dto.TeamRenameDTO true "New name"
// @Success 200 {object} dto.TeamResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Team not found"
// @Router /teams/{team_id} [put]
func (c *TeamController) RenameTeam(ctx *gin.Context) {
	teamID, ok := pathID(ctx, "team_id")
	if !ok {
		return
	}

	var req dto.TeamRenameDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	team, err := c.teamService.RenameTeam(middleware.UserID(ctx), teamID, req)
	if err != nil {
		writeNotFoundOr500(ctx, err, "Team not found", "RenameTeam")
		return
	}
	ctx.JSON(http.StatusOK, team)
}

// DeleteTeam godoc
// @Summary Delete a team
// @Description Removes the team and cascades to members, assessments and reports.
// @Tags Teams
// @Security BearerAuth
// @Param team_id path int true "Team ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse "Team not found"
// @Router /teams/{team_id} [delete]
func (c *TeamController) DeleteTeam(ctx *gin.Context) {
	teamID, ok := pathID(ctx, "team_id")
	if !ok {
		return
	}

	if err := c.teamService.DeleteTeam(middleware.UserID(ctx), teamID); err != nil {
		writeNotFoundOr500(ctx, err, "Team not found", "DeleteTeam")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddMember godoc
// @Summary Add a member to a team
// @Tags Teams
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param team_id path int true "Team ID"
// @Param member body dto.TeamMemberDTO true "Member name and email"
// @Success 201 {object} dto.TeamMemberResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Team not found"
// @Router /teams/{team_id}/members [post]
func (c *TeamController) AddMember(ctx *gin.Context) {
	teamID, ok := pathID(ctx, "team_id")
	if !ok {
		return
	}

	var req dto.TeamMemberDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	member, err := c.teamService.AddMember(middleware.UserID(ctx), teamID, req)
	if err != nil {
		writeNotFoundOr500(ctx, err, "Team not found", "AddMember")
		return
	}
	ctx.JSON(http.StatusCreated, member)
}

// UpdateMember godoc
// @Summary Update a team member's name or email
// @Description Editing a member never alters participant snapshots on past assessments.
// @Tags Teams
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param member_id path int true "Member ID"
// @Param member body dto.TeamMemberDTO true "Updated name and email"
// @Success 200 {object} dto.TeamMemberResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Member not found"
// @Router /members/{member_id} [put]
func (c *TeamController) UpdateMember(ctx *gin.Context) {
	memberID, ok := pathID(ctx, "member_id")
	if !ok {
		return
	}

	var req dto.TeamMemberDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	member, err := c.teamService.UpdateMember(middleware.UserID(ctx), memberID, req)
	if err != nil {
		writeNotFoundOr500(ctx, err, "Member not found", "UpdateMember")
		return
	}
	ctx.JSON(http.StatusOK, member)
}

// DeleteMember godoc
// @Summary Remove a member from a team
// @Description Participant rows on past assessments keep their snapshot; only the live roster entry is removed.
// @Tags Teams
// @Security BearerAuth
// @Param member_id path int true "Member ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse "Member not found"
// @Router /members/{member_id} [delete]
func (c *TeamController) DeleteMember(ctx *gin.Context) {
	memberID, ok := pathID(ctx, "member_id")
	if !ok {
		return
	}

	if err := c.teamService.DeleteMember(middleware.UserID(ctx), memberID); err != nil {
		writeNotFoundOr500(ctx, err, "Member not found", "DeleteMember")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// pathID parses a uint path parameter, writing the 400 itself on failure.
func pathID(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

func writeNotFoundOr500(ctx *gin.Context, err error, notFoundMsg, op string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: notFoundMsg})
		return
	}
	log.Error().Err(err).Str("op", op).Msg("Admin controller: service error")
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Request failed", Details: []string{err.Error()}})
}
