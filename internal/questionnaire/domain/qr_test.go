package domain

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQRURLColors(t *testing.T) {
	tests := []struct {
		name        string
		allowAccess bool
		residence   Residence
		color       string
	}{
		{"denied is red", false, ResidenceInternal, "255-0-0"},
		{"allowed internal is green", true, ResidenceInternal, "0-128-0"},
		{"allowed external is blue", true, ResidenceExternal, "0-0-255"},
		{"allowed unknown is blue", true, ResidenceUnknown, "0-0-255"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := BuildQRURL("", "1130745", tt.allowAccess, tt.residence)

			parsed, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "api.qrserver.com", parsed.Host)
			assert.Equal(t, "1130745", parsed.Query().Get("data"))
			assert.Equal(t, "300x300", parsed.Query().Get("size"))
			assert.Equal(t, tt.color, parsed.Query().Get("color"))
		})
	}
}

func TestBuildQRURLCustomBase(t *testing.T) {
	raw := BuildQRURL("https://qr.example.test/generate", "0441129", true, ResidenceInternal)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "qr.example.test", parsed.Host)
	assert.Equal(t, "/generate", parsed.Path)
	assert.Equal(t, "0441129", parsed.Query().Get("data"))
}
