package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/step-challenge-api/internal/dto"
	"github.com/noah-isme/step-challenge-api/internal/middleware"
	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
	"github.com/noah-isme/step-challenge-api/pkg/response"
)

type adminService interface {
	List(ctx context.Context, filter models.AdminFilter) ([]models.AdminStudent, *models.Pagination)
	Screenshot(ctx context.Context, studentID, date string) (*dto.Screenshot, error)
	RetractDay(ctx context.Context, studentID, date string) (*dto.RetractDayResult, error)
	DeleteStudent(ctx context.Context, studentID string) (*dto.DeleteStudentResult, error)
	Drift(ctx context.Context) []models.LedgerDrift
}

type exportService interface {
	ExportStudents(ctx context.Context, format string) (*dto.ExportFile, error)
	ExportCampuses(ctx context.Context, format string) (*dto.ExportFile, error)
}

// AdminHandler serves the audit endpoints. Every route requires an admin token.
type AdminHandler struct {
	service adminService
	exports exportService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(service adminService, exports exportService) *AdminHandler {
	return &AdminHandler{service: service, exports: exports}
}

// List godoc
// @Summary List students for audit
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param search query string false "Substring of name, student ID or campus"
// @Param date query string false "Only students who logged this date (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/students [get]
func (h *AdminHandler) List(c *gin.Context) {
	filter := models.AdminFilter{
		Search: c.Query("search"),
		Date:   strings.TrimSpace(c.Query("date")),
	}
	if filter.Date != "" {
		if _, err := time.Parse("2006-01-02", filter.Date); err != nil {
			response.Error(c, appErrors.WithDetails(appErrors.ErrValidation, "invalid date filter",
				map[string]string{"date": "date must be YYYY-MM-DD"}))
			return
		}
	}
	var err error
	if filter.Page, err = queryInt(c, "page"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.PageSize, err = queryInt(c, "limit"); err != nil {
		response.Error(c, err)
		return
	}

	rows, pagination := h.service.List(c.Request.Context(), filter)
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Screenshot godoc
// @Summary Show the proof image of one day
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Student ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{id}/days/{date} [get]
func (h *AdminHandler) Screenshot(c *gin.Context) {
	shot, err := h.service.Screenshot(c.Request.Context(), c.Param("id"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shot, nil)
}

// RetractDay godoc
// @Summary Delete one logged day
// @Description Removes the day and its steps. Deleting the last day removes the student. Unknown days report removed=false.
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Student ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /admin/students/{id}/days/{date} [delete]
func (h *AdminHandler) RetractDay(c *gin.Context) {
	result, err := h.service.RetractDay(c.Request.Context(), c.Param("id"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetPersisted(c, result.Persisted)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// DeleteStudent godoc
// @Summary Delete a student and every logged day
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /admin/students/{id} [delete]
func (h *AdminHandler) DeleteStudent(c *gin.Context) {
	result, err := h.service.DeleteStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetPersisted(c, result.Persisted)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Drift godoc
// @Summary Records whose running total disagrees with their days
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/ledger/drift [get]
func (h *AdminHandler) Drift(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Drift(c.Request.Context()), nil)
}

// ExportStudents godoc
// @Summary Download the audit list
// @Tags Admin
// @Security BearerAuth
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/exports/students [get]
func (h *AdminHandler) ExportStudents(c *gin.Context) {
	h.sendExport(c, h.exports.ExportStudents)
}

// ExportCampuses godoc
// @Summary Download the campus ranking
// @Tags Admin
// @Security BearerAuth
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/exports/campuses [get]
func (h *AdminHandler) ExportCampuses(c *gin.Context) {
	h.sendExport(c, h.exports.ExportCampuses)
}

func (h *AdminHandler) sendExport(c *gin.Context, render func(context.Context, string) (*dto.ExportFile, error)) {
	file, err := render(c.Request.Context(), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, appErrors.WithDetails(appErrors.ErrValidation, "invalid pagination",
			map[string]string{key: key + " must be a non-negative integer"})
	}
	return value, nil
}
