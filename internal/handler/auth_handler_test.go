package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/step-challenge-api/internal/middleware"
	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
)

type fakeAuthSrv struct {
	err error
}

func (f *fakeAuthSrv) Login(_ context.Context, credentials models.AdminCredentials) (*models.AdminSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.AdminSession{AccessToken: "token", ExpiresIn: 3600, Username: credentials.Username}, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"Student Advisory","password":"pw"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"token"`)
}

func TestAuthHandlerLoginDenied(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{err: appErrors.ErrInvalidCredentials})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"x","password":"y"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Incorrect username or password.")
}

func TestAuthHandlerSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{})
	expires := time.Date(2026, 3, 4, 13, 0, 0, 0, time.UTC)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/session", nil)
	c.Set(middleware.ContextAdminKey, &models.AdminClaims{
		Username:         "Student Advisory",
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expires)},
	})

	handler.Session(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"username":"Student Advisory","role":"ADMIN","expiresAt":"2026-03-04T13:00:00Z"}}`, rec.Body.String())
}

func TestAuthHandlerSessionWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/session", nil)

	handler.Session(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
