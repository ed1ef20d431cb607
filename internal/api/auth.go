package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"agromarket/internal/models"
	"agromarket/internal/policy"
	"agromarket/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const requesterKey = "requester"

// ProfileResolver looks up the profile behind a principal id. Satisfied by
// *store.Store.
type ProfileResolver interface {
	GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// AuthMiddleware validates the bearer token, resolves the principal's
// profile and stores a policy.Requester in the request context. A principal
// without a profile gets an empty role, which the predicates treat as
// "may only self-insert a profile".
func AuthMiddleware(profiles ProfileResolver, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token format is invalid"})
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has no subject"})
			return
		}

		principalID, err := uuid.Parse(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token subject is not a principal id"})
			return
		}

		requester := policy.Requester{ID: principalID}
		profile, err := profiles.GetProfileByID(c.Request.Context(), principalID)
		if err == nil {
			requester.Role = profile.Role
		} else if !errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve principal"})
			return
		}

		c.Set(requesterKey, requester)
		c.Next()
	}
}

// requesterFrom pulls the authenticated requester set by AuthMiddleware.
func requesterFrom(c *gin.Context) policy.Requester {
	v, _ := c.Get(requesterKey)
	r, _ := v.(policy.Requester)
	return r
}
