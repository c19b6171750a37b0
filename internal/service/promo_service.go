package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
	"gorm.io/gorm"
)

// PromoInvalidError carries a user-facing reason; controllers surface it
// inline as a validation error, nothing is persisted.
type PromoInvalidError struct {
	Reason string
}

func (e *PromoInvalidError) Error() string {
	return e.Reason
}

func promoInvalid(reason string) error {
	return &PromoInvalidError{Reason: reason}
}

// PricedPromo is the result of validating and pricing a promo code against a
// subtotal.
type PricedPromo struct {
	Promo         *model.PromoCode
	DiscountMinor int64
	FinalMinor    int64
}

// PromoService validates discount codes against their usage rules and prices
// the order.
type PromoService interface {
	ValidateAndPrice(code string, userID, assessmentID uint, subtotalMinor int64, currency string) (*PricedPromo, error)
}

type promoService struct {
	promoRepo repository.PromoRepository
}

func NewPromoService(promoRepo repository.PromoRepository) PromoService {
	return &promoService{promoRepo: promoRepo}
}

func (s *promoService) ValidateAndPrice(code string, userID, assessmentID uint, subtotalMinor int64, currency string) (*PricedPromo, error) {
	normalized := model.NormalizePromoCode(code)
	if normalized == "" {
		return nil, promoInvalid("Enter a code.")
	}

	promo, err := s.promoRepo.FindByCode(normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, promoInvalid("That code isn't valid.")
		}
		return nil, fmt.Errorf("error looking up promo code: %w", err)
	}

	if !promo.IsActiveNow(time.Now()) {
		return nil, promoInvalid("That code isn't active right now.")
	}
	if promo.MinSubtotal != nil && subtotalMinor < *promo.MinSubtotal {
		return nil, promoInvalid("Order total is too low for this code.")
	}

	if promo.MaxRedemptions != nil {
		total, err := s.promoRepo.CountRedemptions(promo.ID)
		if err != nil {
			return nil, fmt.Errorf("error counting redemptions: %w", err)
		}
		if total >= int64(*promo.MaxRedemptions) {
			return nil, promoInvalid("This code has reached its limit.")
		}
	}

	userCount, err := s.promoRepo.CountRedemptionsByUser(promo.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("error counting user redemptions: %w", err)
	}
	if userCount >= int64(promo.PerUserLimit) {
		return nil, promoInvalid("You've already used this code.")
	}

	if promo.FirstPurchaseOnly {
		// First purchase means no successful redemptions by this user at all.
		has, err := s.promoRepo.UserHasAnyRedemption(userID)
		if err != nil {
			return nil, fmt.Errorf("error checking purchase history: %w", err)
		}
		if has {
			return nil, promoInvalid("This code is for first-time purchases only.")
		}
	}

	discount, final := promo.ComputeDiscount(subtotalMinor, currency)
	return &PricedPromo{
		Promo:         promo,
		DiscountMinor: discount,
		FinalMinor:    final,
	}, nil
}
