package impl

import (
	"context"
	"log/slog"
	"testing"

	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	lastRequest *service.CheckoutRequest
	err         error
}

func (g *fakeGateway) CreatePaymentSession(_ context.Context, req *service.CheckoutRequest) (*service.PaymentSession, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.lastRequest = req

	return &service.PaymentSession{ID: "pay-1", RedirectURL: "https://pay.example.com/pay-1"}, nil
}

type fakeQRCode struct{}

func (fakeQRCode) GeneratePaymentQR(string) ([]byte, error) {
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func newCheckoutService(gateway service.CheckoutGateway) usecase.CheckoutUsecase {
	return &checkoutService{
		gateway: gateway,
		qrcode:  fakeQRCode{},
		logger:  slog.Default(),
	}
}

func TestBeginCheckout_EmptyCart(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())

	svc := newCheckoutService(&fakeGateway{})
	_, err := svc.BeginCheckout(context.Background(), manager)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrEmptyCart))
}

func TestBeginCheckout_SnapshotsCartAndCustomer(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	ctx := context.Background()
	manager.InitializeProfile(ctx)

	email := "ada@example.com"
	_, err := manager.UpdateProfile(ctx, &usecase.UpdateProfileInput{Email: &email})
	require.NoError(t, err)
	require.NoError(t, manager.AddToCart(ctx, "sku-1", 2))
	require.NoError(t, manager.AddToCart(ctx, "sku-2", 1))

	gateway := &fakeGateway{}
	output, err := newCheckoutService(gateway).BeginCheckout(ctx, manager)
	require.NoError(t, err)

	assert.Equal(t, "pay-1", output.PaymentSessionID)
	assert.Equal(t, "https://pay.example.com/pay-1", output.RedirectURL)
	assert.InDelta(t, 59.48, output.Total, 0.001)
	assert.NotEmpty(t, output.QRCode)

	require.NotNil(t, gateway.lastRequest)
	assert.Equal(t, email, gateway.lastRequest.Customer.Email)
	assert.Len(t, gateway.lastRequest.Lines, 2)

	// Opening a payment session leaves the cart intact.
	assert.Len(t, manager.CurrentProfile().Shopping.Cart.Items, 2)

	events := manager.CurrentProfile().Analytics.Events
	require.NotEmpty(t, events)
	assert.Equal(t, "checkout_started", events[len(events)-1].Action)
}

func TestBeginCheckout_GatewayFailure(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	ctx := context.Background()
	manager.InitializeProfile(ctx)
	require.NoError(t, manager.AddToCart(ctx, "sku-1", 1))

	_, err := newCheckoutService(&fakeGateway{err: errors.New("gateway down")}).BeginCheckout(ctx, manager)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrCheckoutFailed))
	assert.Len(t, manager.CurrentProfile().Shopping.Cart.Items, 1)
}

func TestConfirmCheckout_SuccessRecordsPurchase(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	ctx := context.Background()
	manager.InitializeProfile(ctx)
	require.NoError(t, manager.AddToCart(ctx, "sku-1", 2))

	svc := newCheckoutService(&fakeGateway{})
	err := svc.ConfirmCheckout(ctx, manager, &usecase.ConfirmCheckoutInput{
		PaymentSessionID: "pay-1",
		OrderID:          "order-1",
		Succeeded:        true,
	})
	require.NoError(t, err)

	profile := manager.CurrentProfile()
	require.Len(t, profile.Shopping.PurchaseHistory, 1)
	assert.Equal(t, "order-1", profile.Shopping.PurchaseHistory[0].OrderID)
	assert.Equal(t, "pay-1", profile.Shopping.PurchaseHistory[0].PaymentRef)
	assert.Empty(t, profile.Shopping.Cart.Items)
	assert.Empty(t, profile.Shopping.AbandonedCarts)
}

func TestConfirmCheckout_FailureLeavesCartUntouched(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	ctx := context.Background()
	manager.InitializeProfile(ctx)
	require.NoError(t, manager.AddToCart(ctx, "sku-1", 2))

	svc := newCheckoutService(&fakeGateway{})
	err := svc.ConfirmCheckout(ctx, manager, &usecase.ConfirmCheckoutInput{
		PaymentSessionID: "pay-1",
		Succeeded:        false,
	})
	require.NoError(t, err)

	profile := manager.CurrentProfile()
	assert.Empty(t, profile.Shopping.PurchaseHistory)
	assert.Len(t, profile.Shopping.Cart.Items, 1, "a failed payment must leave the cart for retry")

	events := profile.Analytics.Events
	require.NotEmpty(t, events)
	assert.Equal(t, "checkout_failed", events[len(events)-1].Action)
}
