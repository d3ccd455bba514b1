package usecase

import (
	"context"
)

// BeginCheckoutOutput returns the hosted payment session for a checkout.
type BeginCheckoutOutput struct {
	PaymentSessionID string  `json:"payment_session_id"`
	RedirectURL      string  `json:"redirect_url"`
	Total            float64 `json:"total"`
	QRCode           []byte  `json:"qr_code,omitempty"` // PNG of the redirect URL, for cross-device handoff.
}

// ConfirmCheckoutInput reports the gateway's final verdict for a payment
// session.
type ConfirmCheckoutInput struct {
	PaymentSessionID string `json:"payment_session_id" validate:"required"`
	OrderID          string `json:"order_id,omitempty"`
	Succeeded        bool   `json:"succeeded"`
}

// CheckoutUsecase initiates checkout against the payment gateway and settles
// the profile on confirmation. On failure the cart is left untouched.
type CheckoutUsecase interface {
	// BeginCheckout snapshots the cart projection plus customer info and
	// opens a payment session with the gateway.
	BeginCheckout(ctx context.Context, manager ProfileUsecase) (*BeginCheckoutOutput, error)

	// ConfirmCheckout records the purchase on success; a failed payment
	// leaves the cart as it was.
	ConfirmCheckout(ctx context.Context, manager ProfileUsecase, input *ConfirmCheckoutInput) error
}
