// Package checkout contains the HTTP client for the hosted payment gateway.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"storefront/config"
	"storefront/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultTimeout = 15 * time.Second

// Params defines the required parameters
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// httpGateway implements service.CheckoutGateway against the hosted payment
// processor's session-creation endpoint.
type httpGateway struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New is the constructor for httpGateway.
func New(params Params) (service.CheckoutGateway, error) {
	if params.Config.Checkout == nil || params.Config.Checkout.Endpoint == "" {
		return nil, errors.New("checkout endpoint must be configured")
	}

	timeout := params.Config.Checkout.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &httpGateway{
		endpoint: params.Config.Checkout.Endpoint,
		apiKey:   params.Config.Checkout.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: params.Logger,
	}, nil
}

// CreatePaymentSession opens a hosted payment session for the cart snapshot.
func (g *httpGateway) CreatePaymentSession(ctx context.Context, req *service.CheckoutRequest) (*service.PaymentSession, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "payment gateway request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		g.logger.Warn("Payment gateway rejected session creation",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(payload)))

		return nil, errors.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var session service.PaymentSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, errors.Wrap(err, "failed to decode payment session")
	}
	if session.ID == "" || session.RedirectURL == "" {
		return nil, errors.New("payment gateway returned incomplete session")
	}

	return &session, nil
}
