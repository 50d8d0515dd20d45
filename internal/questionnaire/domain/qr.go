package domain

import (
	"net/url"
	"strings"
)

// DefaultQRBaseURL points at the public QR image generator used by the
// mobile app to render access passes.
const DefaultQRBaseURL = "https://api.qrserver.com/v1/create-qr-code/"

const qrSize = "300x300"

// QR foreground colors in the R-G-B format the generator expects.
const (
	qrColorDenied   = "255-0-0"
	qrColorInternal = "0-128-0"
	qrColorExternal = "0-0-255"
)

// BuildQRURL returns the QR image URL encoding the user id, color-coded by
// verdict and residence: red when access is denied, green for internal
// students, blue otherwise. URL construction cannot fail.
func BuildQRURL(baseURL, userID string, allowAccess bool, residence Residence) string {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultQRBaseURL
	}

	color := qrColorExternal
	switch {
	case !allowAccess:
		color = qrColorDenied
	case residence == ResidenceInternal:
		color = qrColorInternal
	}

	query := url.Values{}
	query.Set("size", qrSize)
	query.Set("color", color)
	query.Set("data", userID)
	return strings.TrimRight(baseURL, "?") + "?" + query.Encode()
}
