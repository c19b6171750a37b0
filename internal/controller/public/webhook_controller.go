package public

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orghealth/ascent/internal/dto"
	"github.com/orghealth/ascent/internal/service"
	"github.com/rs/zerolog/log"
)

// Stripe recommends capping webhook bodies well below this; 64 KiB covers any
// event we subscribe to.
const maxWebhookBody = 64 << 10

type WebhookController struct {
	paymentService service.PaymentService
}

func NewWebhookController(paymentService service.PaymentService) *WebhookController {
	return &WebhookController{paymentService: paymentService}
}

// StripeWebhook godoc
// @Summary Stripe event sink
// @Description Verifies the Stripe signature and settles succeeded payments. Only signature failures are rejected; processing errors are logged and acknowledged so Stripe does not retry indefinitely.
// @Tags Webhooks
// @Accept json
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Bad signature or unreadable body"
// @Router /webhooks/stripe [post]
func (c *WebhookController) StripeWebhook(ctx *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWebhookBody))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to read request body"})
		return
	}

	signature := ctx.GetHeader("Stripe-Signature")
	if err := c.paymentService.HandleWebhook(ctx.Request.Context(), payload, signature); err != nil {
		if errors.Is(err, service.ErrBadWebhookPayload) {
			log.Warn().Err(err).Msg("Stripe webhook signature verification failed")
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid webhook signature"})
			return
		}
		log.Error().Err(err).Msg("Stripe webhook processing error")
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "received"})
}
