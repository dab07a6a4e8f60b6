package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
	"github.com/noah-isme/step-challenge-api/pkg/response"
)

// ContextAdminKey is the gin context key holding the authenticated advisor's claims.
const ContextAdminKey = "currentAdmin"

const bearerChallenge = `Bearer realm="step-challenge-admin"`

type tokenValidator interface {
	ValidateToken(tokenString string) (*models.AdminClaims, error)
}

// JWT guards the admin audit routes with a bearer access token from /admin/login.
// Rejections carry a WWW-Authenticate challenge.
func JWT(validator tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var claims *models.AdminClaims
			if claims, err = validator.ValidateToken(token); err == nil {
				c.Set(ContextAdminKey, claims)
				c.Next()
				return
			}
		}

		c.Header("WWW-Authenticate", bearerChallenge)
		response.Error(c, err)
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return token, nil
}

// AdminFromContext returns the claims stored by JWT, or nil.
func AdminFromContext(c *gin.Context) *models.AdminClaims {
	value, exists := c.Get(ContextAdminKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.AdminClaims)
	return claims
}
