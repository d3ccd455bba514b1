package qrcode

import (
	"bytes"
	"testing"

	"storefront/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePaymentQR(t *testing.T) {
	cfg := &config.Config{QRCode: &config.QRCodeConfig{Size: 128, ErrorCorrectionLevel: "M"}}
	svc := NewQRCodeService(cfg)

	png, err := svc.GeneratePaymentQR("https://pay.example.com/session/abc123")

	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "output should be a PNG image")
}

func TestGeneratePaymentQR_DefaultsWithoutConfig(t *testing.T) {
	svc := NewQRCodeService(&config.Config{})

	png, err := svc.GeneratePaymentQR("https://pay.example.com/session/abc123")

	require.NoError(t, err)
	assert.NotEmpty(t, png)
}
