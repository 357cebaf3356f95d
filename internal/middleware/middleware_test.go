package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastapi1403/building-management/internal/utils"
)

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func echoActor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFromContext(r.Context())
		_, _ = w.Write([]byte(actor))
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var body utils.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	handler := AuthMiddleware(&key.PublicKey, DefaultTokenIssuer)(echoActor())
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
		wantActor  string
	}{
		{
			name:       "valid token",
			header:     "Bearer " + signToken(t, key, jwt.MapClaims{"sub": "manager-7", "iss": DefaultTokenIssuer, "exp": future}),
			wantStatus: http.StatusOK,
			wantActor:  "manager-7",
		},
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
			wantCode:   utils.ErrCodeUnauthorized,
		},
		{
			name:       "expired",
			header:     "Bearer " + signToken(t, key, jwt.MapClaims{"sub": "a", "iss": DefaultTokenIssuer, "exp": time.Now().Add(-time.Hour).Unix()}),
			wantStatus: http.StatusUnauthorized,
			wantCode:   utils.ErrCodeTokenExpired,
		},
		{
			name:       "wrong issuer",
			header:     "Bearer " + signToken(t, key, jwt.MapClaims{"sub": "a", "iss": "someone-else", "exp": future}),
			wantStatus: http.StatusUnauthorized,
			wantCode:   utils.ErrCodeUnauthorized,
		},
		{
			name:       "foreign key",
			header:     "Bearer " + signToken(t, other, jwt.MapClaims{"sub": "a", "iss": DefaultTokenIssuer, "exp": future}),
			wantStatus: http.StatusUnauthorized,
			wantCode:   utils.ErrCodeUnauthorized,
		},
		{
			name:       "no subject",
			header:     "Bearer " + signToken(t, key, jwt.MapClaims{"iss": DefaultTokenIssuer, "exp": future}),
			wantStatus: http.StatusUnauthorized,
			wantCode:   utils.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/buildings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
				return
			}
			assert.Equal(t, tt.wantActor, rec.Body.String())
		})
	}
}

func TestStaticActorMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	StaticActorMiddleware("admin")(echoActor()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "admin", rec.Body.String())
}

func TestCSRFMiddleware(t *testing.T) {
	handler := CSRFMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		method     string
		cookie     string
		header     string
		wantStatus int
	}{
		{"safe method passes", http.MethodGet, "", "", http.StatusNoContent},
		{"matching pair", http.MethodDelete, "tok", "tok", http.StatusNoContent},
		{"missing header", http.MethodPost, "tok", "", http.StatusForbidden},
		{"missing cookie", http.MethodPut, "", "tok", http.StatusForbidden},
		{"mismatch", http.MethodDelete, "tok", "other", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/floors", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.Equal(t, utils.ErrCodeCSRFFailed, decodeError(t, rec).Code)
			}
		})
	}
}

func TestMetricsMiddleware_PassesStatusThrough(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware)
	r.HandleFunc("/api/v1/units/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/units/123", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
