package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("user-123", "client", "Maria Santos", "maria@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q", claims.UserID)
	}
	if claims.Role != "client" {
		t.Errorf("Role = %q", claims.Role)
	}
	if claims.Email != "maria@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Scope != ScopeFull {
		t.Errorf("Scope = %q, expected %q", claims.Scope, ScopeFull)
	}
}

func TestTwoFactorTokenScope(t *testing.T) {
	token, err := GenerateTwoFactorToken("user-123")
	if err != nil {
		t.Fatalf("GenerateTwoFactorToken: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Scope != ScopeTwoFactorPending {
		t.Errorf("Scope = %q, expected %q", claims.Scope, ScopeTwoFactorPending)
	}

	// A pending token must not pass the normal auth gate
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran with a pending 2FA token")
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	JWTMiddleware(next).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected 401", w.Code)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran without a token")
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
	w := httptest.NewRecorder()
	JWTMiddleware(next).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected 401", w.Code)
	}
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	token, err := GenerateToken("user-456", "admin", "Portal Admin", "admin@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	var gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = GetRole(r)
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	JWTMiddleware(next).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if gotRole != "admin" {
		t.Errorf("role in context = %q, expected admin", gotRole)
	}
}

func TestOptionalJWT(t *testing.T) {
	t.Run("no token still passes", func(t *testing.T) {
		var sawClaims bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawClaims = GetClaims(r) != nil
		})
		req := httptest.NewRequest(http.MethodPost, "/donations", nil)
		w := httptest.NewRecorder()
		OptionalJWT(next).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d", w.Code)
		}
		if sawClaims {
			t.Error("claims should be absent without a token")
		}
	})

	t.Run("valid token attaches claims", func(t *testing.T) {
		token, _ := GenerateToken("user-789", "client", "Jose Cruz", "jose@example.com")

		var gotUserID string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID = GetUserID(r)
		})
		req := httptest.NewRequest(http.MethodPost, "/donations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		OptionalJWT(next).ServeHTTP(w, req)

		if gotUserID != "user-789" {
			t.Errorf("user in context = %q, expected user-789", gotUserID)
		}
	})
}
