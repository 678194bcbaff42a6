package jwtmiddleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	security "github.com/Studentcuchd/sweet-treats-manager/internal/jwt-new"
	"github.com/Studentcuchd/sweet-treats-manager/internal/jwt-new/jwtmiddleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

const testSecret = "testsecret"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTMiddleware_MissingAuthorization(t *testing.T) {
	handler := jwtmiddleware.NewJWTMiddleware(testSecret)(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status when no token provided")
	assert.True(t, strings.Contains(rr.Body.String(), "missing token"))
}

func TestJWTMiddleware_InvalidAuthorizationFormat(t *testing.T) {
	handler := jwtmiddleware.NewJWTMiddleware(testSecret)(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "InvalidFormat")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status for invalid token format")
	assert.True(t, strings.Contains(rr.Body.String(), "invalid token format"))
}

func TestJWTMiddleware_InvalidToken(t *testing.T) {
	handler := jwtmiddleware.NewJWTMiddleware(testSecret)(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer invalid.token.value")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status for invalid token")
	assert.True(t, strings.Contains(rr.Body.String(), "invalid token"))
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "late@example.com"}
	tokenStr, err := security.NewToken(context.Background(), user, testSecret, -time.Minute)
	assert.NoError(t, err)

	handler := jwtmiddleware.NewJWTMiddleware(testSecret)(okHandler())
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestJWTMiddleware_NonUUIDSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "123"})
	tokenStr, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)

	handler := jwtmiddleware.NewJWTMiddleware(testSecret)(okHandler())
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid user id")
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "admin@sweets.local", IsAdmin: true}
	tokenStr, err := security.NewToken(context.Background(), user, testSecret, time.Hour)
	assert.NoError(t, err)

	var got models.Identity
	handler := jwtmiddleware.NewJWTMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			http.Error(w, "identity not found", http.StatusInternalServerError)
			return
		}
		got = identity
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "Expected OK status for valid token")
	assert.Equal(t, models.Identity{UserID: user.ID, Email: user.Email, IsAdmin: true}, got)
}

func TestRequireAdmin(t *testing.T) {
	handler := jwtmiddleware.RequireAdmin(okHandler())

	tests := []struct {
		name     string
		ctx      context.Context
		wantCode int
	}{
		{"no identity", context.Background(), http.StatusUnauthorized},
		{"customer", jwtmiddleware.WithIdentity(context.Background(), models.Identity{UserID: uuid.New()}), http.StatusForbidden},
		{"admin", jwtmiddleware.WithIdentity(context.Background(), models.Identity{UserID: uuid.New(), IsAdmin: true}), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil).WithContext(tt.ctx)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.wantCode, rr.Code)
		})
	}
}

func TestFromContext(t *testing.T) {
	id := uuid.New()
	ctx := jwtmiddleware.WithIdentity(context.Background(), models.Identity{UserID: id})
	identity, ok := jwtmiddleware.FromContext(ctx)
	assert.True(t, ok, "Expected to retrieve identity from context")
	assert.Equal(t, id, identity.UserID)

	_, ok = jwtmiddleware.FromContext(context.Background())
	assert.False(t, ok)
}

func TestNewToken_EmptySecret(t *testing.T) {
	_, err := security.NewToken(context.Background(), &models.User{ID: uuid.New()}, "", time.Hour)
	assert.Error(t, err)
}
