package public

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orghealth/ascent/internal/dto"
	"github.com/orghealth/ascent/internal/middleware"
	"github.com/orghealth/ascent/internal/service"
	"github.com/rs/zerolog/log"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Signup godoc
// @Summary Register a new admin account
// @Description Creates an account for a team administrator and returns a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param signup_data body dto.SignupDTO true "Username, email and password"
// @Success 201 {object} dto.AuthResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input or username taken"
// @Router /auth/signup [post]
func (c *AuthController) Signup(ctx *gin.Context) {
	var req dto.SignupDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Signup: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.authService.Signup(req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in
// @Description Exchanges username and password for a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param login_data body dto.LoginDTO true "Credentials"
// @Success 200 {object} dto.AuthResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.authService.Login(req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid username or password"})
			return
		}
		log.Error().Err(err).Str("username", req.Username).Msg("Login: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Login failed"})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteAccount godoc
// @Summary Delete the authenticated account
// @Description Removes the account and cascades to its teams, assessments and reports.
// @Tags Auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/account [delete]
func (c *AuthController) DeleteAccount(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	if err := c.authService.DeleteAccount(userID); err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("DeleteAccount: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to delete account"})
		return
	}
	ctx.Status(http.StatusNoContent)
}
