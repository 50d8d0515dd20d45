package server

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ummobile/ummobile-services/api/internal/config"
	"github.com/ummobile/ummobile-services/api/internal/interfaces/http/common"
)

func signedToken(t *testing.T, secret []byte, claims jwt.RegisteredClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func testServer() *Server {
	return &Server{
		logger: log.New(io.Discard, "", 0),
		jwtConfigs: []config.JWTConfig{
			{Issuer: "ummobile-auth", Secret: []byte("primary-secret")},
			{Issuer: "ummobile-identity", Secret: []byte("legacy-secret")},
		},
	}
}

func freshClaims(subject, issuer string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestParseAuthTokenAcceptsEitherConfig(t *testing.T) {
	srv := testServer()

	primary := signedToken(t, []byte("primary-secret"), freshClaims("1130745@ummobile", "ummobile-auth"))
	claims, err := srv.parseAuthToken(primary)
	require.NoError(t, err)
	assert.Equal(t, "1130745@ummobile", claims.Subject)

	legacy := signedToken(t, []byte("legacy-secret"), freshClaims("0441129@ummobile", "ummobile-identity"))
	claims, err = srv.parseAuthToken(legacy)
	require.NoError(t, err)
	assert.Equal(t, "0441129@ummobile", claims.Subject)
}

func TestParseAuthTokenAcceptsRecentlyExpiredWithinLeeway(t *testing.T) {
	srv := testServer()

	claims := freshClaims("1130745@ummobile", "ummobile-auth")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-10 * time.Second))

	parsed, err := srv.parseAuthToken(signedToken(t, []byte("primary-secret"), claims))
	require.NoError(t, err)
	assert.Equal(t, "1130745@ummobile", parsed.Subject)
}

func TestParseAuthTokenRejections(t *testing.T) {
	srv := testServer()

	expired := freshClaims("1130745@ummobile", "ummobile-auth")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Minute))

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signedToken(t, []byte("other-secret"), freshClaims("1130745@ummobile", "ummobile-auth"))},
		{"wrong issuer", signedToken(t, []byte("primary-secret"), freshClaims("1130745@ummobile", "someone-else"))},
		{"empty subject", signedToken(t, []byte("primary-secret"), freshClaims("", "ummobile-auth"))},
		{"expired beyond leeway", signedToken(t, []byte("primary-secret"), expired)},
		{"garbage", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.parseAuthToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestAuthMiddlewareDerivesPrincipal(t *testing.T) {
	srv := testServer()

	var captured common.AuthenticatedUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = common.UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	token := signedToken(t, []byte("primary-secret"), freshClaims("1130745@ummobile", "ummobile-auth"))
	req := httptest.NewRequest(http.MethodGet, "/questionnaire/covid", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	srv.authMiddleware(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "1130745", captured.ID)
	assert.Equal(t, common.RoleStudent, captured.Role)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	srv := testServer()

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without credentials")
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"empty bearer", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/questionnaire/covid", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.authMiddleware(next).ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
