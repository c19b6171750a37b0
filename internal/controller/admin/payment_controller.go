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

type PaymentController struct {
	paymentService service.PaymentService
}

func NewPaymentController(paymentService service.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentService}
}

// StartCheckout godoc
// @Summary Start the Final Report purchase
// @Description Prices the report with any promo code and billing-address tax, then creates a Stripe PaymentIntent. Fully-comped orders skip Stripe and return status "paid" immediately.
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Param checkout body dto.CheckoutRequestDTO true "Optional promo code and billing address"
// @Success 200 {object} dto.CheckoutResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input or rejected promo code"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Failure 409 {object} dto.ErrorResponse "Report already purchased"
// @Router /assessments/{assessment_id}/checkout [post]
func (c *PaymentController) StartCheckout(ctx *gin.Context) {
	assessmentID, ok := pathID(ctx, "assessment_id")
	if !ok {
		return
	}

	var req dto.CheckoutRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.paymentService.StartCheckout(ctx.Request.Context(), assessmentID, middleware.UserID(ctx), req)
	if err != nil {
		c.writeCheckoutError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// PreviewPromo godoc
// @Summary Preview a promo code against the report price
// @Description Validates the code and returns the discounted total without creating any payment.
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Param promo body dto.PromoPreviewDTO true "Promo code to check"
// @Success 200 {object} dto.PromoPreviewDTO
// @Failure 400 {object} dto.ErrorResponse "Rejected promo code"
// @Router /assessments/{assessment_id}/promo-preview [post]
func (c *PaymentController) PreviewPromo(ctx *gin.Context) {
	assessmentID, ok := pathID(ctx, "assessment_id")
	if !ok {
		return
	}

	var req dto.PromoPreviewDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	preview, err := c.paymentService.PreviewPromo(middleware.UserID(ctx), assessmentID, req.Code)
	if err != nil {
		c.writeCheckoutError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, preview)
}

// ConfirmPayment godoc
// @Summary Confirm a completed payment
// @Description Checks the PaymentIntent with Stripe, marks the report paid and starts rendering. Safe to call repeatedly and concurrently with the webhook.
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param payment_intent_id path string true "Stripe PaymentIntent ID"
// @Success 200 {object} dto.ConfirmResponseDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments/{payment_intent_id}/confirm [post]
func (c *PaymentController) ConfirmPayment(ctx *gin.Context) {
	resp, err := c.paymentService.Confirm(ctx.Request.Context(), ctx.Param("payment_intent_id"))
	if err != nil {
		log.Error().Err(err).Msg("ConfirmPayment: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to confirm payment"})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func (c *PaymentController) writeCheckoutError(ctx *gin.Context, err error) {
	var promoErr *service.PromoInvalidError
	switch {
	case errors.As(err, &promoErr):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: promoErr.Reason})
	case errors.Is(err, service.ErrAssessmentNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrAlreadyPurchased):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
	default:
		log.Error().Err(err).Msg("Checkout: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to process checkout"})
	}
}
