package impl

import (
	"context"
	"log/slog"

	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// CheckoutServiceParams holds dependencies for checkoutService.
type CheckoutServiceParams struct {
	fx.In

	Gateway service.CheckoutGateway
	QRCode  service.QRCodeService
	Logger  *slog.Logger
}

type checkoutService struct {
	gateway service.CheckoutGateway
	qrcode  service.QRCodeService
	logger  *slog.Logger
}

// NewCheckoutService is the constructor for checkoutService.
func NewCheckoutService(params CheckoutServiceParams) usecase.CheckoutUsecase {
	return &checkoutService{
		gateway: params.Gateway,
		qrcode:  params.QRCode,
		logger:  params.Logger,
	}
}

// BeginCheckout snapshots the current cart projection and opens a payment
// session with the gateway. The cart itself is not mutated; it only empties
// after a confirmed successful payment.
func (s *checkoutService) BeginCheckout(ctx context.Context, manager usecase.ProfileUsecase) (*usecase.BeginCheckoutOutput, error) {
	lines, err := manager.CartView(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to project cart for checkout")
	}
	if len(lines) == 0 {
		return nil, errors.Wrap(domainerrors.ErrEmptyCart, "nothing to check out")
	}

	profile := manager.CurrentProfile()
	if profile == nil {
		return nil, errors.Wrap(domainerrors.ErrProfileNotFound, "profile manager not initialized")
	}

	total := 0.0
	for _, line := range lines {
		total += line.LineTotal
	}

	session, err := s.gateway.CreatePaymentSession(ctx, &service.CheckoutRequest{
		ProfileID: profile.ID,
		SessionID: profile.SessionID,
		Lines:     lines,
		Total:     total,
		Customer:  profile.PersonalInfo,
	})
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrCheckoutFailed, "payment gateway rejected the session")
	}

	manager.TrackAction(ctx, "checkout_started", map[string]any{
		"payment_session_id": session.ID,
		"items":              len(lines),
		"total":              total,
	})

	output := &usecase.BeginCheckoutOutput{
		PaymentSessionID: session.ID,
		RedirectURL:      session.RedirectURL,
		Total:            total,
	}

	if s.qrcode != nil {
		png, err := s.qrcode.GeneratePaymentQR(session.RedirectURL)
		if err != nil {
			s.logger.Warn("Failed to render payment QR code",
				slog.String("paymentSessionID", session.ID), slog.Any("error", err))
		} else {
			output.QRCode = png
		}
	}

	return output, nil
}

// ConfirmCheckout settles the profile after the gateway's verdict. A
// successful payment records the order and empties the cart; a failed one
// leaves the cart untouched so the customer can retry.
func (s *checkoutService) ConfirmCheckout(ctx context.Context, manager usecase.ProfileUsecase, input *usecase.ConfirmCheckoutInput) error {
	if !input.Succeeded {
		manager.TrackAction(ctx, "checkout_failed", map[string]any{
			"payment_session_id": input.PaymentSessionID,
		})

		return nil
	}

	orderID := input.OrderID
	if orderID == "" {
		orderID = input.PaymentSessionID
	}

	if err := manager.AddPurchase(ctx, &usecase.PurchaseInput{
		OrderID:    orderID,
		PaymentRef: input.PaymentSessionID,
	}); err != nil {
		return errors.Wrap(err, "failed to record confirmed purchase")
	}

	return nil
}
