package dto

// BillingAddressDTO feeds the tax calculation. Country is the only field the
// calculation strictly needs; without it tax degrades to zero.
type BillingAddressDTO struct {
	Country    string `json:"country,omitempty"`
	State      string `json:"state,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Line1      string `json:"line1,omitempty"`
}

type CheckoutRequestDTO struct {
	PromoCode      string             `json:"promo_code,omitempty"`
	BillingAddress *BillingAddressDTO `json:"billing_address,omitempty"`
}

// CheckoutResponseDTO carries either a Stripe client secret for the created
// PaymentIntent or, for zero-total orders, the immediate paid state.
type CheckoutResponseDTO struct {
	Status          string `json:"status"` // "requires_payment" | "paid"
	ClientSecret    string `json:"client_secret,omitempty"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	SubtotalMinor   int64  `json:"subtotal_minor"`
	DiscountMinor   int64  `json:"discount_minor"`
	TaxMinor        int64  `json:"tax_minor"`
	TotalMinor      int64  `json:"total_minor"`
	Currency        string `json:"currency"`
}

type ConfirmResponseDTO struct {
	Paid         bool   `json:"paid"`
	ReportStatus string `json:"report_status"`
	Message      string `json:"message,omitempty"`
}

type PromoPreviewDTO struct {
	Code          string `json:"code" binding:"required"`
	SubtotalMinor int64  `json:"subtotal_minor"`
	DiscountMinor int64  `json:"discount_minor"`
	FinalMinor    int64  `json:"final_minor"`
}
