package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
)

type stubValidator struct {
	claims *models.AdminClaims
	err    error
	token  string
}

func (s *stubValidator) ValidateToken(tokenString string) (*models.AdminClaims, error) {
	s.token = tokenString
	return s.claims, s.err
}

func newJWTRouter(validator tokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin", JWT(validator), func(c *gin.Context) {
		claims := AdminFromContext(c)
		if claims == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, claims.Username)
	})
	return router
}

func TestJWTAcceptsBearerToken(t *testing.T) {
	validator := &stubValidator{claims: &models.AdminClaims{Username: "advisor", Role: models.RoleAdmin}}
	router := newJWTRouter(validator)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "bearer abc.def")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	if recorder.Body.String() != "advisor" {
		t.Fatalf("unexpected body: %s", recorder.Body.String())
	}
	if validator.token != "abc.def" {
		t.Fatalf("unexpected token forwarded: %s", validator.token)
	}
}

func TestJWTRejectsMissingOrInvalidTokens(t *testing.T) {
	cases := map[string]struct {
		header string
		err    error
	}{
		"missing header": {},
		"wrong scheme":   {header: "Basic abc"},
		"empty token":    {header: "Bearer  "},
		"invalid token":  {header: "Bearer abc", err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			router := newJWTRouter(&stubValidator{err: tc.err, claims: &models.AdminClaims{}})
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			if recorder.Code != http.StatusUnauthorized {
				t.Fatalf("unexpected status: %d", recorder.Code)
			}
			if !strings.Contains(recorder.Body.String(), appErrors.ErrUnauthorized.Code) {
				t.Fatalf("expected unauthorized code in body: %s", recorder.Body.String())
			}
			if recorder.Header().Get("WWW-Authenticate") == "" {
				t.Fatalf("expected bearer challenge header")
			}
		})
	}
}

func TestBodyLimitRejectsOversizedBodies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BodyLimit(8))
	router.POST("/", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusNoContent)
	})

	small := httptest.NewRecorder()
	router.ServeHTTP(small, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	if small.Code != http.StatusNoContent {
		t.Fatalf("unexpected status for small body: %d", small.Code)
	}

	large := httptest.NewRecorder()
	router.ServeHTTP(large, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too large")))
	if large.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("unexpected status for large body: %d", large.Code)
	}
}

func TestResponseMetaRecordsFlags(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	SetCacheHit(c, true)
	SetPersisted(c, false)

	meta := ExtractMeta(c)
	if meta[cacheHitKey] != true {
		t.Fatalf("expected cache hit flag, got %v", meta[cacheHitKey])
	}
	if meta[persistedKey] != false {
		t.Fatalf("expected persisted=false, got %v", meta[persistedKey])
	}
	if _, ok := meta[processingTimeKey]; !ok {
		t.Fatalf("expected processing time in meta: %v", meta)
	}
}

func TestResponseMetaOmitsUnsetFlags(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	meta := ExtractMeta(c)
	if _, ok := meta[cacheHitKey]; ok {
		t.Fatalf("unexpected cache hit flag: %v", meta)
	}
	if _, ok := meta[persistedKey]; ok {
		t.Fatalf("unexpected persisted flag: %v", meta)
	}
}

type recordedRequest struct {
	method string
	route  string
	status int
}

type stubObserver struct {
	requests []recordedRequest
}

func (s *stubObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	s.requests = append(s.requests, recordedRequest{method: method, route: path, status: status})
}

func TestMetricsLabelsRouteTemplates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &stubObserver{}
	router := gin.New()
	router.Use(Metrics(observer, "/metrics"))
	router.GET("/students/:id/profile", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/students/S1/profile", "/metrics", "/wp-admin"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if len(observer.requests) != 2 {
		t.Fatalf("expected 2 observed requests, got %d", len(observer.requests))
	}
	if observer.requests[0].route != "/students/:id/profile" || observer.requests[0].status != http.StatusOK {
		t.Fatalf("unexpected first observation: %+v", observer.requests[0])
	}
	if observer.requests[1].route != unmatchedRoute || observer.requests[1].status != http.StatusNotFound {
		t.Fatalf("unexpected second observation: %+v", observer.requests[1])
	}
}
