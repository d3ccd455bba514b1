package service

// QRCodeService renders payment-session redirect URLs as QR codes so a
// checkout started on one device can be finished on another.
type QRCodeService interface {
	// GeneratePaymentQR renders the redirect URL as a PNG QR code.
	GeneratePaymentQR(redirectURL string) ([]byte, error)
}
