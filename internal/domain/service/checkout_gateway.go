package service

import (
	"context"

	"storefront/internal/domain/entity"
)

// CheckoutRequest is the consistent snapshot handed to the payment processor:
// the denormalized cart plus whatever customer info the profile holds.
type CheckoutRequest struct {
	ProfileID string              `json:"profile_id"`
	SessionID string              `json:"session_id"`
	Lines     []entity.CartLine   `json:"lines"`
	Total     float64             `json:"total"`
	Customer  entity.PersonalInfo `json:"customer"`
}

// PaymentSession is the hosted payment session the gateway hands back.
type PaymentSession struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

// CheckoutGateway is the hosted payment processor. The engine's only
// obligations are to hand it a consistent snapshot and to learn
// success/failure; protocol details are out of scope.
type CheckoutGateway interface {
	CreatePaymentSession(ctx context.Context, req *CheckoutRequest) (*PaymentSession, error)
}
