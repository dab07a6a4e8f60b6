package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/step-challenge-api/internal/dto"
	"github.com/noah-isme/step-challenge-api/internal/middleware"
	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
)

type fakeSubmissionSrv struct {
	result  *dto.SubmissionResult
	err     error
	lastReq dto.SubmitStepsRequest
	profile *dto.StudentProfile
}

func (f *fakeSubmissionSrv) Submit(_ context.Context, req dto.SubmitStepsRequest) (*dto.SubmissionResult, error) {
	f.lastReq = req
	return f.result, f.err
}

func (f *fakeSubmissionSrv) Profile(_ context.Context, studentID string) (*dto.StudentProfile, error) {
	if f.profile == nil || f.profile.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return f.profile, nil
}

func (f *fakeSubmissionSrv) Catalog() dto.Catalog {
	return dto.Catalog{Campuses: []string{"Owasso"}, Sessions: models.Sessions, MinSteps: 1000}
}

const submissionBody = `{"studentId":"S1","name":"Ada","date":"2026-03-01","steps":5000,"session":"AM","campus":"Owasso","screenshot":"data:image/png;base64,AAAA"}`

func TestSubmissionHandlerCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeSubmissionSrv{result: &dto.SubmissionResult{StudentID: "S1", Persisted: false, Message: "ok"}}
	handler := NewSubmissionHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(submissionBody))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Submit(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, dto.StepCount(5000), srv.lastReq.Steps)
	assert.Equal(t, "data:image/png;base64,AAAA", srv.lastReq.Screenshot)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "S1", envelope.Data["studentId"])
	assert.Equal(t, false, envelope.Meta["persisted"])
}

func TestSubmissionHandlerMapsServiceErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]struct {
		err    error
		status int
	}{
		"duplicate":   {err: appErrors.ErrDuplicateSubmission, status: http.StatusConflict},
		"validation":  {err: appErrors.WithDetails(appErrors.ErrValidation, "fix", map[string]string{"steps": "Minimum 1,000 steps required to submit"}), status: http.StatusBadRequest},
		"unavailable": {err: appErrors.ErrStoreUnavailable, status: http.StatusServiceUnavailable},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			handler := NewSubmissionHandler(&fakeSubmissionSrv{err: tc.err})
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(submissionBody))
			c.Request.Header.Set("Content-Type", "application/json")

			handler.Submit(c)

			assert.Equal(t, tc.status, rec.Code)
			var envelope responseEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			require.NotNil(t, envelope.Error)
			assert.Equal(t, appErrors.FromError(tc.err).Code, envelope.Error.Code)
		})
	}
}

func TestSubmissionHandlerRejectsMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeSubmissionSrv{}
	handler := NewSubmissionHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(`{"steps":"many"`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Submit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, srv.lastReq.StudentID)
}

func TestSubmissionHandlerOversizedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.BodyLimit(32))
	router.POST("/submissions", NewSubmissionHandler(&fakeSubmissionSrv{}).Submit)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(submissionBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSubmissionHandlerProfileAndCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewSubmissionHandler(&fakeSubmissionSrv{profile: &dto.StudentProfile{StudentID: "S1", Name: "Ada"}})
	router.GET("/students/:id/profile", handler.Profile)
	router.GET("/catalog", handler.Catalog)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students/S1/profile", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Ada"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students/S2/profile", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"All Day"`)
}

func TestSubmissionHandlerAcceptsLooseStepNumbers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]string{
		"quoted":     `"5000"`,
		"fractional": `5000.0`,
	}

	for name, steps := range cases {
		t.Run(name, func(t *testing.T) {
			srv := &fakeSubmissionSrv{result: &dto.SubmissionResult{StudentID: "S1", Persisted: true}}
			body := strings.Replace(submissionBody, `"steps":5000`, `"steps":`+steps, 1)

			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(body))
			c.Request.Header.Set("Content-Type", "application/json")

			NewSubmissionHandler(srv).Submit(c)

			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.Equal(t, dto.StepCount(5000), srv.lastReq.Steps)
		})
	}
}

func TestSubmissionHandlerReportsMistypedField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]struct {
		body  string
		field string
	}{
		"name":  {body: strings.Replace(submissionBody, `"name":"Ada"`, `"name":5`, 1), field: "name"},
		"steps": {body: strings.Replace(submissionBody, `"steps":5000`, `"steps":true`, 1), field: "steps"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := &fakeSubmissionSrv{}
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(tc.body))
			c.Request.Header.Set("Content-Type", "application/json")

			NewSubmissionHandler(srv).Submit(c)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var envelope responseEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			require.NotNil(t, envelope.Error)
			assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
			assert.Contains(t, envelope.Error.Details, tc.field)
			assert.Empty(t, srv.lastReq.StudentID)
		})
	}
}
