package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/orghealth/ascent/config"
	"github.com/orghealth/ascent/internal/dto"
	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/tax/calculation"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"
)

// placeholderTaxCode is Stripe's general tangible-goods fallback; when the
// configured product tax code is this placeholder the tax step is skipped.
const placeholderTaxCode = "txcd_99999999"

var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrAlreadyPurchased   = errors.New("report already purchased")
	ErrBadWebhookPayload  = errors.New("invalid webhook payload")
)

// PaymentService handles the one-time Final Report purchase: pricing with
// promo codes and tax, the Stripe PaymentIntent flow, the zero-total bypass
// for full-comp codes, and payment confirmation from both client polling and
// the Stripe webhook.
type PaymentService interface {
	StartCheckout(ctx context.Context, assessmentID, userID uint, req dto.CheckoutRequestDTO) (*dto.CheckoutResponseDTO, error)
	PreviewPromo(userID, assessmentID uint, code string) (*dto.PromoPreviewDTO, error)
	Confirm(ctx context.Context, paymentIntentID string) (*dto.ConfirmResponseDTO, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	cfg            *config.Config
	assessmentRepo repository.AssessmentRepository
	reportRepo     repository.FinalReportRepository
	promoRepo      repository.PromoRepository
	userRepo       repository.UserRepository
	promoService   PromoService
	reportService  ReportService
	mailer         Mailer
}

func NewPaymentService(
	cfg *config.Config,
	assessmentRepo repository.AssessmentRepository,
	reportRepo repository.FinalReportRepository,
	promoRepo repository.PromoRepository,
	userRepo repository.UserRepository,
	promoService PromoService,
	reportService ReportService,
	mailer Mailer,
) PaymentService {
	stripe.Key = cfg.Stripe.SecretKey
	return &paymentService{
		cfg:            cfg,
		assessmentRepo: assessmentRepo,
		reportRepo:     reportRepo,
		promoRepo:      promoRepo,
		userRepo:       userRepo,
		promoService:   promoService,
		reportService:  reportService,
		mailer:         mailer,
	}
}

func (s *paymentService) StartCheckout(ctx context.Context, assessmentID, userID uint, req dto.CheckoutRequestDTO) (*dto.CheckoutResponseDTO, error) {
	assessment, err := s.assessmentRepo.FindByIDForAdmin(assessmentID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}

	report, err := s.reportRepo.GetOrCreate(assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load final report: %w", err)
	}
	if report.Ready() || report.PaidAt != nil {
		return nil, ErrAlreadyPurchased
	}

	subtotal := s.cfg.Stripe.ReportPriceMinor
	currency := s.cfg.Stripe.Currency
	resp := &dto.CheckoutResponseDTO{
		SubtotalMinor: subtotal,
		TotalMinor:    subtotal,
		Currency:      currency,
	}

	var priced *PricedPromo
	if req.PromoCode != "" {
		priced, err = s.promoService.ValidateAndPrice(req.PromoCode, userID, assessmentID, subtotal, currency)
		if err != nil {
			return nil, err
		}
		resp.DiscountMinor = priced.DiscountMinor
		resp.TotalMinor = priced.FinalMinor
	}

	// Full-comp codes skip Stripe entirely: no PaymentIntent exists, so the
	// report is marked paid and the render starts right here.
	if priced != nil && priced.Promo.IsFullComp() {
		if err := s.markPaid(report, "", time.Now()); err != nil {
			return nil, err
		}
		s.recordRedemption(priced, userID, assessmentID, "", subtotal)
		if err := s.reportService.Kickoff(ctx, assessmentID); err != nil {
			log.Error().Err(err).Uint("assessment_id", assessmentID).Msg("Render kickoff failed after comped purchase")
		}
		s.sendReceipt(userID, assessment.Team.Name, 0, currency)
		resp.Status = "paid"
		resp.DiscountMinor = subtotal
		resp.TotalMinor = 0
		return resp, nil
	}

	tax := s.calculateTax(resp.TotalMinor, currency, req.BillingAddress)
	resp.TaxMinor = tax
	resp.TotalMinor += tax

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(resp.TotalMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("assessment_id", strconv.FormatUint(uint64(assessmentID), 10))
	params.AddMetadata("user_id", strconv.FormatUint(uint64(userID), 10))
	if priced != nil {
		params.AddMetadata("promo_code", priced.Promo.Code)
		params.AddMetadata("promo_id", strconv.FormatUint(uint64(priced.Promo.ID), 10))
		params.AddMetadata("subtotal_minor", strconv.FormatInt(subtotal, 10))
		params.AddMetadata("discount_minor", strconv.FormatInt(priced.DiscountMinor, 10))
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	report.PaymentIntentID = intent.ID
	if err := s.reportRepo.Update(report); err != nil {
		return nil, fmt.Errorf("failed to persist payment intent: %w", err)
	}

	resp.Status = "requires_payment"
	resp.ClientSecret = intent.ClientSecret
	resp.PaymentIntentID = intent.ID
	return resp, nil
}

// calculateTax runs Stripe Tax for the billing address. Tax degrades to zero
// rather than blocking checkout: no address, the placeholder tax code, or a
// calculation error all yield zero tax.
func (s *paymentService) calculateTax(amountMinor int64, currency string, addr *dto.BillingAddressDTO) int64 {
	if addr == nil || addr.Country == "" {
		return 0
	}
	taxCode := s.cfg.Stripe.TaxCodeFinalReport
	if taxCode == "" || taxCode == placeholderTaxCode {
		return 0
	}

	params := &stripe.TaxCalculationParams{
		Currency: stripe.String(currency),
		LineItems: []*stripe.TaxCalculationLineItemParams{
			{
				Amount:    stripe.Int64(amountMinor),
				Reference: stripe.String("final-report"),
				TaxCode:   stripe.String(taxCode),
			},
		},
		CustomerDetails: &stripe.TaxCalculationCustomerDetailsParams{
			Address: &stripe.AddressParams{
				Country:    stripe.String(addr.Country),
				State:      stripe.String(addr.State),
				City:       stripe.String(addr.City),
				PostalCode: stripe.String(addr.PostalCode),
				Line1:      stripe.String(addr.Line1),
			},
			AddressSource: stripe.String("billing"),
		},
	}

	calc, err := calculation.New(params)
	if err != nil {
		log.Warn().Err(err).Msg("Tax calculation failed, proceeding without tax")
		return 0
	}
	return calc.TaxAmountExclusive
}

func (s *paymentService) PreviewPromo(userID, assessmentID uint, code string) (*dto.PromoPreviewDTO, error) {
	subtotal := s.cfg.Stripe.ReportPriceMinor
	priced, err := s.promoService.ValidateAndPrice(code, userID, assessmentID, subtotal, s.cfg.Stripe.Currency)
	if err != nil {
		return nil, err
	}
	final := priced.FinalMinor
	discount := priced.DiscountMinor
	if priced.Promo.IsFullComp() {
		discount = subtotal
		final = 0
	}
	return &dto.PromoPreviewDTO{
		Code:          priced.Promo.Code,
		SubtotalMinor: subtotal,
		DiscountMinor: discount,
		FinalMinor:    final,
	}, nil
}

// Confirm marks the report paid for a succeeded PaymentIntent and kicks off
// the render. It is idempotent: a report already stamped PaidAt is left
// untouched, so the client confirm call and the webhook can race freely.
func (s *paymentService) Confirm(ctx context.Context, paymentIntentID string) (*dto.ConfirmResponseDTO, error) {
	intent, err := paymentintent.Get(paymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment intent: %w", err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return &dto.ConfirmResponseDTO{Paid: false, Message: "Payment has not completed."}, nil
	}
	return s.settleIntent(ctx, intent)
}

func (s *paymentService) settleIntent(ctx context.Context, intent *stripe.PaymentIntent) (*dto.ConfirmResponseDTO, error) {
	assessmentID, err := metadataUint(intent.Metadata, "assessment_id")
	if err != nil {
		return nil, fmt.Errorf("payment intent %s: %w", intent.ID, err)
	}

	report, err := s.reportRepo.FindByAssessmentID(assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load final report: %w", err)
	}
	if report.PaidAt != nil {
		return &dto.ConfirmResponseDTO{Paid: true, ReportStatus: report.Status}, nil
	}

	if err := s.markPaid(report, intent.ID, time.Now()); err != nil {
		return nil, err
	}

	if userID, uerr := metadataUint(intent.Metadata, "user_id"); uerr == nil {
		s.settlePromo(intent, userID, assessmentID)
		s.sendReceipt(userID, "", intent.Amount, string(intent.Currency))
	}

	if err := s.reportService.Kickoff(ctx, assessmentID); err != nil {
		// Paid state is already persisted; the next status poll can retry.
		log.Error().Err(err).Uint("assessment_id", assessmentID).Msg("Render kickoff failed after payment")
	}

	updated, err := s.reportRepo.FindByAssessmentID(assessmentID)
	if err != nil {
		return &dto.ConfirmResponseDTO{Paid: true, ReportStatus: model.ReportStatusQueued}, nil
	}
	return &dto.ConfirmResponseDTO{Paid: true, ReportStatus: updated.Status}, nil
}

// settlePromo records the redemption named in the intent metadata, once.
func (s *paymentService) settlePromo(intent *stripe.PaymentIntent, userID, assessmentID uint) {
	promoID, err := metadataUint(intent.Metadata, "promo_id")
	if err != nil {
		return
	}

	if _, err := s.promoRepo.FindRedemption(promoID, userID, assessmentID); err == nil {
		return
	}

	subtotal, _ := strconv.ParseInt(intent.Metadata["subtotal_minor"], 10, 64)
	discount, _ := strconv.ParseInt(intent.Metadata["discount_minor"], 10, 64)
	redemption := &model.Redemption{
		PromoCodeID:     promoID,
		UserID:          userID,
		AssessmentID:    assessmentID,
		PaymentIntentID: intent.ID,
		AmountBefore:    subtotal,
		DiscountApplied: discount,
		AmountAfter:     subtotal - discount,
	}
	if err := s.promoRepo.CreateRedemption(redemption); err != nil {
		log.Error().Err(err).Uint("promo_id", promoID).Uint("assessment_id", assessmentID).Msg("Failed to record promo redemption")
	}
}

// recordRedemption persists a redemption for the zero-total bypass path.
func (s *paymentService) recordRedemption(priced *PricedPromo, userID, assessmentID uint, paymentIntentID string, subtotal int64) {
	if _, err := s.promoRepo.FindRedemption(priced.Promo.ID, userID, assessmentID); err == nil {
		return
	}
	redemption := &model.Redemption{
		PromoCodeID:     priced.Promo.ID,
		UserID:          userID,
		AssessmentID:    assessmentID,
		PaymentIntentID: paymentIntentID,
		AmountBefore:    subtotal,
		DiscountApplied: subtotal,
		AmountAfter:     0,
	}
	if err := s.promoRepo.CreateRedemption(redemption); err != nil {
		log.Error().Err(err).Uint("promo_id", priced.Promo.ID).Uint("assessment_id", assessmentID).Msg("Failed to record promo redemption")
	}
}

func (s *paymentService) markPaid(report *model.FinalReport, paymentIntentID string, at time.Time) error {
	report.PaidAt = &at
	if paymentIntentID != "" {
		report.PaymentIntentID = paymentIntentID
	}
	if report.Status == model.ReportStatusNotStarted {
		report.Status = model.ReportStatusQueued
	}
	if err := s.reportRepo.Update(report); err != nil {
		return fmt.Errorf("failed to mark report paid: %w", err)
	}
	return nil
}

func (s *paymentService) sendReceipt(userID uint, teamName string, amountMinor int64, currency string) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Msg("Skipping receipt, user lookup failed")
		return
	}
	if err := s.mailer.SendReceipt(user.Email, teamName, amountMinor, currency); err != nil {
		log.Warn().Err(err).Str("email", user.Email).Msg("Failed to send receipt email")
	}
}

// HandleWebhook verifies and dispatches Stripe events. Signature failures are
// the only input rejected with an error; unhandled event types are accepted
// and ignored so Stripe does not retry them.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.Stripe.WebhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadWebhookPayload, err)
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to decode payment intent event")
			return nil
		}
		if _, err := s.settleIntent(ctx, &intent); err != nil {
			log.Error().Err(err).Str("payment_intent", intent.ID).Msg("Failed to settle payment from webhook")
		}
	default:
		log.Debug().Str("type", string(event.Type)).Msg("Ignoring webhook event")
	}
	return nil
}

func metadataUint(metadata map[string]string, key string) (uint, error) {
	raw, ok := metadata[key]
	if !ok {
		return 0, fmt.Errorf("metadata missing %s", key)
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("metadata %s is not a valid id: %w", key, err)
	}
	return uint(v), nil
}
