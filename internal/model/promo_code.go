package model

import (
	"math"
	"strings"
	"time"
)

// StripeMinChargeMinor is the smallest amount Stripe will charge, in minor
// units. Discounts are clamped so the final amount never drops below it.
const StripeMinChargeMinor int64 = 50

// PromoCode is an admin-managed discount. Exactly one of PercentOff or
// AmountOff is set; AmountOff requires Currency.
type PromoCode struct {
	ID         uint     `gorm:"primarykey" json:"id"`
	Code       string   `json:"code" gorm:"not null;uniqueIndex;size:64"`
	PercentOff *float64 `json:"percent_off,omitempty"`
	AmountOff  *int64   `json:"amount_off,omitempty"`
	Currency   string   `json:"currency,omitempty" gorm:"size:10"`

	Active   bool       `json:"active" gorm:"not null;default:true"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	MaxRedemptions    *int   `json:"max_redemptions,omitempty"`
	PerUserLimit      int    `json:"per_user_limit" gorm:"not null;default:1"`
	MinSubtotal       *int64 `json:"min_subtotal,omitempty"`
	FirstPurchaseOnly bool   `json:"first_purchase_only" gorm:"not null;default:false"`

	Notes     string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Redemptions []Redemption `json:"-" gorm:"foreignKey:PromoCodeID"`
}

// NormalizePromoCode uppercases and trims a user-entered code.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsActiveNow checks the active flag and the start/end window.
func (p *PromoCode) IsActiveNow(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && !now.Before(*p.EndsAt) {
		return false
	}
	return true
}

// IsFullComp reports whether the code discounts the entire subtotal, which
// routes checkout through the zero-total bypass instead of Stripe.
func (p *PromoCode) IsFullComp() bool {
	return p.PercentOff != nil && *p.PercentOff >= 100
}

// ComputeDiscount returns (discountMinor, finalMinor) for a subtotal. The
// final amount is clamped to the Stripe minimum charge; when clamped, the
// discount is reduced rather than the floor.
func (p *PromoCode) ComputeDiscount(subtotalMinor int64, currency string) (int64, int64) {
	var discount int64
	if p.AmountOff != nil {
		if !strings.EqualFold(p.Currency, currency) {
			// incompatible currency; no discount
			return 0, subtotalMinor
		}
		discount = *p.AmountOff
		if discount > subtotalMinor {
			discount = subtotalMinor
		}
	} else if p.PercentOff != nil {
		discount = int64(math.Round(float64(subtotalMinor) * (*p.PercentOff / 100.0)))
	}

	final := subtotalMinor - discount
	if final < StripeMinChargeMinor {
		final = StripeMinChargeMinor
		discount = subtotalMinor - final
		if discount < 0 {
			discount = 0
			final = subtotalMinor
		}
	}
	return discount, final
}

// Redemption records one successful use of a promo code. The unique index on
// (promo, user, assessment) guards against duplicate rows when a payment
// confirmation is retried.
type Redemption struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	PromoCodeID  uint       `json:"promo_code_id" gorm:"not null;uniqueIndex:idx_promo_user_assessment"`
	PromoCode    PromoCode  `json:"-" gorm:"foreignKey:PromoCodeID"`
	UserID       uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_promo_user_assessment;index:idx_redemption_user"`
	AssessmentID uint       `json:"assessment_id" gorm:"not null;uniqueIndex:idx_promo_user_assessment"`
	Assessment   Assessment `json:"-" gorm:"foreignKey:AssessmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	PaymentIntentID string `json:"payment_intent_id" gorm:"size:64;index"`
	AmountBefore    int64  `json:"amount_before" gorm:"not null"`
	DiscountApplied int64  `json:"discount_applied" gorm:"not null"`
	AmountAfter     int64  `json:"amount_after" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}
