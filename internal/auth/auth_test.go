package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTVerifier_Verify(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name          string
		token         string
		expectedRole  string
		expectedError error
	}{
		{
			name: "valid_token",
			token: signToken(t, testSecret, jwt.MapClaims{
				"id":   userID.String(),
				"role": RoleBuyer,
				"exp":  time.Now().Add(time.Hour).Unix(),
			}),
			expectedRole: RoleBuyer,
		},
		{
			name: "expired_token",
			token: signToken(t, testSecret, jwt.MapClaims{
				"id":   userID.String(),
				"role": RoleBuyer,
				"exp":  time.Now().Add(-time.Hour).Unix(),
			}),
			expectedError: ErrInvalidToken,
		},
		{
			name: "wrong_secret",
			token: signToken(t, "other-secret", jwt.MapClaims{
				"id":   userID.String(),
				"role": RoleBuyer,
			}),
			expectedError: ErrInvalidToken,
		},
		{
			name: "missing_user_id",
			token: signToken(t, testSecret, jwt.MapClaims{
				"role": RoleBuyer,
			}),
			expectedError: ErrInvalidToken,
		},
		{
			name: "missing_role",
			token: signToken(t, testSecret, jwt.MapClaims{
				"id": userID.String(),
			}),
			expectedError: ErrInvalidToken,
		},
		{
			name:          "garbage_token",
			token:         "not.a.jwt",
			expectedError: ErrInvalidToken,
		},
	}

	v := NewJWTVerifier(testSecret)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := v.Verify(tt.token)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, claims)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
			assert.Equal(t, tt.expectedRole, claims.Role)
		})
	}
}

func TestMiddleware(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	v := NewJWTVerifier(testSecret)

	buyerToken := signToken(t, testSecret, jwt.MapClaims{
		"id":   userID.String(),
		"role": RoleBuyer,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	adminToken := signToken(t, testSecret, jwt.MapClaims{
		"id":   userID.String(),
		"role": RoleAdmin,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, userID, claims.UserID)
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		allowedRoles   []string
		authorization  string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "no_header",
			allowedRoles:   []string{RoleBuyer},
			authorization:  "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Access denied. No token provided."}`,
		},
		{
			name:           "malformed_header",
			allowedRoles:   []string{RoleBuyer},
			authorization:  "Bearer",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Access denied. No token provided."}`,
		},
		{
			name:           "invalid_token",
			allowedRoles:   []string{RoleBuyer},
			authorization:  "Bearer not.a.jwt",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Invalid or expired token."}`,
		},
		{
			name:           "role_not_allowed",
			allowedRoles:   []string{RoleAdmin},
			authorization:  "Bearer " + buyerToken,
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"error":"Forbidden. Not authorized."}`,
		},
		{
			name:           "buyer_allowed",
			allowedRoles:   []string{RoleBuyer, RoleAdmin},
			authorization:  "Bearer " + buyerToken,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "admin_allowed",
			allowedRoles:   []string{RoleAdmin},
			authorization:  "Bearer " + adminToken,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "no_role_restriction",
			allowedRoles:   nil,
			authorization:  "Bearer " + buyerToken,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Middleware(v, tt.allowedRoles...)(next)

			req := httptest.NewRequest(http.MethodGet, "/api/orders/checkout", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestClaimsFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	claims, ok := ClaimsFromContext(req.Context())
	assert.False(t, ok)
	assert.Nil(t, claims)
}
