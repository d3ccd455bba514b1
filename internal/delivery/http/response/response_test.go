package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	deliverycontext "storefront/internal/delivery/context"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var envelope Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	return envelope
}

func TestSuccess_DefaultMessage(t *testing.T) {
	c, rec := newTestContext()

	require.NoError(t, Success(c, http.StatusOK, map[string]any{"total": 19.98}, ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
	assert.Equal(t, "Success", envelope.Message)
	assert.Empty(t, envelope.RequestID)
	assert.Nil(t, envelope.Error)
}

func TestError_CarriesRequestID(t *testing.T) {
	c, rec := newTestContext()
	deliverycontext.SetRequestID(c, "req-42")

	require.NoError(t, NotFound(c, "PRODUCT_NOT_FOUND", "No such product"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.False(t, envelope.Success)
	assert.Equal(t, "req-42", envelope.RequestID)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "PRODUCT_NOT_FOUND", envelope.Error.Code)
}

func TestError_WithoutRequestID(t *testing.T) {
	c, rec := newTestContext()

	require.NoError(t, Error(c, http.StatusBadGateway, "GATEWAY_DOWN", "", "payment gateway unreachable"))

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), envelope.Message)
	assert.Empty(t, envelope.RequestID)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "payment gateway unreachable", envelope.Error.Details)
}
