package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/step-challenge-api/internal/dto"
	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
)

type fakeAdminSrv struct {
	lastFilter  models.AdminFilter
	retractErr  error
	retracted   []string
	deleted     []string
	screenshots map[string]dto.Screenshot
}

func (f *fakeAdminSrv) List(_ context.Context, filter models.AdminFilter) ([]models.AdminStudent, *models.Pagination) {
	f.lastFilter = filter
	return []models.AdminStudent{{StudentID: "S1", Name: "Ada"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}
}

func (f *fakeAdminSrv) Screenshot(_ context.Context, studentID, date string) (*dto.Screenshot, error) {
	shot, ok := f.screenshots[studentID+"/"+date]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no submission")
	}
	return &shot, nil
}

func (f *fakeAdminSrv) RetractDay(_ context.Context, studentID, date string) (*dto.RetractDayResult, error) {
	if f.retractErr != nil {
		return nil, f.retractErr
	}
	f.retracted = append(f.retracted, studentID+"/"+date)
	return &dto.RetractDayResult{StudentID: studentID, Date: date, Removed: true, StepsRemoved: 5000, Persisted: true,
		Message: "Day 2026-03-01 (5,000 steps) removed. Total updated."}, nil
}

func (f *fakeAdminSrv) DeleteStudent(_ context.Context, studentID string) (*dto.DeleteStudentResult, error) {
	f.deleted = append(f.deleted, studentID)
	return &dto.DeleteStudentResult{StudentID: studentID, Removed: false, Persisted: true, Message: "Student S9 not found."}, nil
}

func (f *fakeAdminSrv) Drift(context.Context) []models.LedgerDrift {
	return []models.LedgerDrift{{StudentID: "S2", TotalSteps: 10, EntrySum: 20}}
}

type fakeExportSrv struct {
	lastFormat string
}

func (f *fakeExportSrv) ExportStudents(_ context.Context, format string) (*dto.ExportFile, error) {
	f.lastFormat = format
	return &dto.ExportFile{Filename: "students.csv", ContentType: "text/csv", Body: []byte("Student ID\nS1\n")}, nil
}

func (f *fakeExportSrv) ExportCampuses(_ context.Context, format string) (*dto.ExportFile, error) {
	f.lastFormat = format
	return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
}

func newAdminRouter(srv *fakeAdminSrv, exports *fakeExportSrv) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewAdminHandler(srv, exports)
	router := gin.New()
	router.GET("/admin/students", handler.List)
	router.GET("/admin/students/:id/days/:date", handler.Screenshot)
	router.DELETE("/admin/students/:id/days/:date", handler.RetractDay)
	router.DELETE("/admin/students/:id", handler.DeleteStudent)
	router.GET("/admin/ledger/drift", handler.Drift)
	router.GET("/admin/exports/students", handler.ExportStudents)
	router.GET("/admin/exports/campuses", handler.ExportCampuses)
	return router
}

func TestAdminHandlerListParsesFilter(t *testing.T) {
	srv := &fakeAdminSrv{}
	router := newAdminRouter(srv, &fakeExportSrv{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/students?search=ada&date=2026-03-01&page=2&limit=5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.AdminFilter{Search: "ada", Date: "2026-03-01", Page: 2, PageSize: 5}, srv.lastFilter)
	var envelope struct {
		Data       []map[string]interface{} `json:"data"`
		Pagination map[string]interface{}   `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 1)
	assert.Equal(t, float64(1), envelope.Pagination["total_count"])
}

func TestAdminHandlerListRejectsBadQuery(t *testing.T) {
	router := newAdminRouter(&fakeAdminSrv{}, &fakeExportSrv{})

	for _, target := range []string{"/admin/students?date=03/01/2026", "/admin/students?page=two", "/admin/students?limit=-1"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestAdminHandlerRetractDay(t *testing.T) {
	srv := &fakeAdminSrv{}
	router := newAdminRouter(srv, &fakeExportSrv{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/students/S1/days/2026-03-01", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"S1/2026-03-01"}, srv.retracted)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "Day 2026-03-01 (5,000 steps) removed. Total updated.", envelope.Data["message"])
	assert.Equal(t, true, envelope.Meta["persisted"])
}

func TestAdminHandlerRetractDayStoreUnavailable(t *testing.T) {
	router := newAdminRouter(&fakeAdminSrv{retractErr: appErrors.ErrStoreUnavailable}, &fakeExportSrv{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/students/S1/days/2026-03-01", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminHandlerDeleteMissingStudentIsOK(t *testing.T) {
	srv := &fakeAdminSrv{}
	router := newAdminRouter(srv, &fakeExportSrv{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/students/S9", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"S9"}, srv.deleted)
	assert.Contains(t, rec.Body.String(), `"removed":false`)
}

func TestAdminHandlerScreenshot(t *testing.T) {
	srv := &fakeAdminSrv{screenshots: map[string]dto.Screenshot{
		"S1/2026-03-01": {StudentID: "S1", Date: "2026-03-01", Steps: 5000, Img: "data:image/png;base64,AAAA"},
	}}
	router := newAdminRouter(srv, &fakeExportSrv{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/students/S1/days/2026-03-01", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "base64,AAAA")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/students/S1/days/2026-03-09", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminHandlerDrift(t *testing.T) {
	router := newAdminRouter(&fakeAdminSrv{}, &fakeExportSrv{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/ledger/drift", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"entrySum":20`)
}

func TestAdminHandlerExports(t *testing.T) {
	exports := &fakeExportSrv{}
	router := newAdminRouter(&fakeAdminSrv{}, exports)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/exports/students", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", exports.lastFormat)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="students.csv"`, rec.Header().Get("Content-Disposition"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/exports/campuses?format=xlsx", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "xlsx", exports.lastFormat)
}
