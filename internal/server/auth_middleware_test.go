package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"salonms-backend/internal/server/authctx"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, tokenType string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":        "42",
		"email":      "staff@example.com",
		"role":       "staff",
		"token_type": tokenType,
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func captureUserHandler() (*int64, http.Handler) {
	var gotID int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := authctx.FromContext(r.Context()); u != nil {
			gotID = u.ID
		}
		w.WriteHeader(http.StatusOK)
	})
	return &gotID, AuthMiddleware(testSecret)(next)
}

func TestAuthMiddlewareBearerHeader(t *testing.T) {
	gotID, h := captureUserHandler()
	req := httptest.NewRequest("GET", "/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "access"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *gotID != 42 {
		t.Fatalf("user id = %d, want 42", *gotID)
	}
}

// Browser websocket clients cannot set the Authorization header on the
// upgrade request, so the same access token must work as ?token=.
func TestAuthMiddlewareQueryToken(t *testing.T) {
	gotID, h := captureUserHandler()
	req := httptest.NewRequest("GET", "/notifications/stream?token="+signedToken(t, "access"), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for query-token auth", rec.Code)
	}
	if *gotID != 42 {
		t.Fatalf("user id = %d, want 42", *gotID)
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(t *testing.T, req *http.Request)
	}{
		{"missing token", func(t *testing.T, req *http.Request) {}},
		{"garbage header token", func(t *testing.T, req *http.Request) {
			req.Header.Set("Authorization", "Bearer not-a-jwt")
		}},
		{"refresh token in header", func(t *testing.T, req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+signedToken(t, "refresh"))
		}},
		{"refresh token in query", func(t *testing.T, req *http.Request) {
			q := req.URL.Query()
			q.Set("token", signedToken(t, "refresh"))
			req.URL.RawQuery = q.Encode()
		}},
		{"wrong secret", func(t *testing.T, req *http.Request) {
			claims := jwt.MapClaims{"sub": "42", "token_type": "access", "exp": time.Now().Add(time.Hour).Unix()}
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
			if err != nil {
				t.Fatalf("sign token: %v", err)
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, h := captureUserHandler()
			req := httptest.NewRequest("GET", "/notifications", nil)
			tc.prepare(t, req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("%s: status = %d, want 401", tc.name, rec.Code)
			}
		})
	}
}
