package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/step-challenge-api/internal/dto"
	"github.com/noah-isme/step-challenge-api/internal/middleware"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
	"github.com/noah-isme/step-challenge-api/pkg/response"
)

type submissionService interface {
	Submit(ctx context.Context, req dto.SubmitStepsRequest) (*dto.SubmissionResult, error)
	Profile(ctx context.Context, studentID string) (*dto.StudentProfile, error)
	Catalog() dto.Catalog
}

// SubmissionHandler serves the student facing submission endpoints.
type SubmissionHandler struct {
	service submissionService
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service submissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// Submit godoc
// @Summary Submit a day's steps
// @Description Records one day of steps with a screenshot as proof. One submission per student per date.
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.SubmitStepsRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req dto.SubmitStepsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid submission payload"))
		return
	}

	result, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetPersisted(c, result.Persisted)
	response.Created(c, result, middleware.ExtractMeta(c))
}

// Profile godoc
// @Summary Look up a returning student
// @Description Returns the stored name, campus and session so the form can be prefilled.
// @Tags Submissions
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/profile [get]
func (h *SubmissionHandler) Profile(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student id is required"))
		return
	}
	profile, err := h.service.Profile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Catalog godoc
// @Summary Submission form options
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog [get]
func (h *SubmissionHandler) Catalog(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Catalog(), nil)
}

func bindError(err error, message string) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return appErrors.Wrap(err, appErrors.ErrPayloadTooLarge.Code, appErrors.ErrPayloadTooLarge.Status, "Screenshot is too large. Please upload a smaller image.")
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "payload"
		}
		return appErrors.WithDetails(appErrors.ErrValidation, message, map[string]string{field: field + " has an invalid value"})
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}
