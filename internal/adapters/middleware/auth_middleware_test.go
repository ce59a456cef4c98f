package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func generateTestKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return privateKey, &privateKey.PublicKey
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func adminClaims(exp time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  "admin-1",
		"role": RoleAdmin,
		"exp":  exp.Unix(),
	}
}

func TestRequireRole(t *testing.T) {
	privateKey, publicKey := generateTestKeys(t)
	otherKey, _ := generateTestKeys(t)
	mw := NewAuthMiddleware(publicKey, zap.NewNop())

	var gotUser string
	protected := mw.RequireRole([]string{RoleAdmin}, func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer invalid.token.here", http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, privateKey, adminClaims(time.Now().Add(-time.Hour))), http.StatusUnauthorized},
		{"foreign key", "Bearer " + signToken(t, otherKey, adminClaims(time.Now().Add(time.Hour))), http.StatusUnauthorized},
		{"missing role", "Bearer " + signToken(t, privateKey, jwt.MapClaims{
			"sub": "admin-1", "exp": time.Now().Add(time.Hour).Unix(),
		}), http.StatusUnauthorized},
		{"missing subject", "Bearer " + signToken(t, privateKey, jwt.MapClaims{
			"role": RoleAdmin, "exp": time.Now().Add(time.Hour).Unix(),
		}), http.StatusUnauthorized},
		{"wrong role", "Bearer " + signToken(t, privateKey, jwt.MapClaims{
			"sub": "u-1", "role": "DONOR", "exp": time.Now().Add(time.Hour).Unix(),
		}), http.StatusForbidden},
		{"admin", "Bearer " + signToken(t, privateKey, adminClaims(time.Now().Add(time.Hour))), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = ""
			req := httptest.NewRequest(http.MethodGet, "/donors", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "admin-1", gotUser)
			} else {
				assert.Empty(t, gotUser)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := CORSMiddleware([]string{"https://admin.example.org"})(next)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/donors", nil)
		req.Header.Set("Origin", "https://admin.example.org")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "https://admin.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/donors", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/donors/d1/status", nil)
		req.Header.Set("Origin", "https://admin.example.org")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}
