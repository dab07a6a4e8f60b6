package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/step-challenge-api/internal/middleware"
	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
	"github.com/noah-isme/step-challenge-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, credentials models.AdminCredentials) (*models.AdminSession, error)
}

// AuthHandler signs the advisor in to the audit view.
type AuthHandler struct {
	service authService
}

func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Admin sign-in
// @Description Exchange the audit account credentials for a bearer token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.AdminCredentials true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var credentials models.AdminCredentials
	if err := c.ShouldBindJSON(&credentials); err != nil {
		response.Error(c, bindError(err, "invalid login payload"))
		return
	}

	session, err := h.service.Login(c.Request.Context(), credentials)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Session godoc
// @Summary Current admin session
// @Description Report who the bearer token belongs to and when it expires
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	claims := middleware.AdminFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	identity := models.AdminIdentity{Username: claims.Username, Role: claims.Role}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	response.JSON(c, http.StatusOK, identity, nil)
}
