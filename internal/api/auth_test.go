package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agromarket/internal/models"
	"agromarket/internal/policy"
	"agromarket/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeResolver struct {
	profiles map[uuid.UUID]*models.Profile
}

func (f *fakeResolver) GetProfileByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, store.ErrNotFound
}

func signToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newAuthRouter(resolver ProfileResolver) (*gin.Engine, *policy.Requester) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	var captured policy.Requester
	router.GET("/whoami", AuthMiddleware(resolver, testSecret), func(c *gin.Context) {
		captured = requesterFrom(c)
		c.Status(http.StatusOK)
	})
	return router, &captured
}

func TestAuthMiddlewareResolvesRole(t *testing.T) {
	principalID := uuid.New()
	resolver := &fakeResolver{profiles: map[uuid.UUID]*models.Profile{
		principalID: {ID: principalID, Role: models.RoleFarmer, FullName: "Test Farmer"},
	}}
	router, captured := newAuthRouter(resolver)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, principalID.String()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, principalID, captured.ID)
	assert.Equal(t, models.RoleFarmer, captured.Role)
}

func TestAuthMiddlewareMissingProfile(t *testing.T) {
	principalID := uuid.New()
	router, captured := newAuthRouter(&fakeResolver{profiles: map[uuid.UUID]*models.Profile{}})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, principalID.String()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Fresh signup: authenticated, but no role yet.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, principalID, captured.ID)
	assert.Empty(t, captured.Role)
}

func TestAuthMiddlewareRejections(t *testing.T) {
	router, _ := newAuthRouter(&fakeResolver{profiles: map[uuid.UUID]*models.Profile{}})

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"non-uuid subject", "Bearer " + signToken(t, "user-42")},
		{"wrong secret", "Bearer " + signWithSecret(t, uuid.NewString(), "other-secret")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func signWithSecret(t *testing.T, sub, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}
