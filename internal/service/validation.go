package service

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/noah-isme/step-challenge-api/internal/dto"
	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
)

const isoDate = "2006-01-02"

// SubmissionRules are the configurable limits of the running challenge.
type SubmissionRules struct {
	StartDate string
	EndDate   string
	MinSteps  int
	Campuses  []string
}

// SubmissionValidator enforces submission preconditions. Every failing field is
// reported together; the duplicate-day rule is reported separately.
type SubmissionValidator struct {
	validate *validator.Validate
	rules    SubmissionRules
	start    time.Time
	end      time.Time
	campuses map[string]struct{}
	printer  *message.Printer
}

// NewSubmissionValidator registers the challenge specific tags on validate and
// switches its reported field names to JSON tag names. Both changes apply to
// every later use of validate, so callers should not share it with other services.
func NewSubmissionValidator(validate *validator.Validate, rules SubmissionRules) (*SubmissionValidator, error) {
	if validate == nil {
		validate = validator.New()
	}
	if rules.MinSteps <= 0 {
		rules.MinSteps = 1000
	}
	start, err := time.Parse(isoDate, rules.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid challenge start date %q: %w", rules.StartDate, err)
	}
	end, err := time.Parse(isoDate, rules.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid challenge end date %q: %w", rules.EndDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("challenge end date %s precedes start date %s", rules.EndDate, rules.StartDate)
	}
	if len(rules.Campuses) == 0 {
		return nil, fmt.Errorf("at least one campus is required")
	}

	v := &SubmissionValidator{
		validate: validate,
		rules:    rules,
		start:    start,
		end:      end,
		campuses: make(map[string]struct{}, len(rules.Campuses)),
		printer:  message.NewPrinter(language.English),
	}
	for _, campus := range rules.Campuses {
		v.campuses[campus] = struct{}{}
	}

	validate.RegisterTagNameFunc(jsonFieldName)
	registrations := map[string]validator.Func{
		"challenge_date": func(fl validator.FieldLevel) bool { return v.inWindow(fl.Field().String()) },
		"min_steps":      func(fl validator.FieldLevel) bool { return fl.Field().Int() >= int64(v.rules.MinSteps) },
		"session": func(fl validator.FieldLevel) bool {
			_, ok := models.ParseSession(fl.Field().String())
			return ok
		},
		"campus": func(fl validator.FieldLevel) bool { return v.IsCampus(fl.Field().String()) },
	}
	for tag, fn := range registrations {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return v, nil
}

// Rules exposes the configured limits.
func (v *SubmissionValidator) Rules() SubmissionRules {
	return v.rules
}

// IsCampus reports whether campus is one of the configured campuses.
func (v *SubmissionValidator) IsCampus(campus string) bool {
	_, ok := v.campuses[campus]
	return ok
}

// Normalize trims free-text fields and canonicalises the session spelling.
func (v *SubmissionValidator) Normalize(req dto.SubmitStepsRequest) dto.SubmitStepsRequest {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Name = strings.TrimSpace(req.Name)
	req.Date = strings.TrimSpace(req.Date)
	req.Campus = strings.TrimSpace(req.Campus)
	if session, ok := models.ParseSession(req.Session); ok {
		req.Session = string(session)
	}
	return req
}

// Validate checks req against the field rules and, when existing is not nil, the
// one-submission-per-day rule.
func (v *SubmissionValidator) Validate(req dto.SubmitStepsRequest, existing *models.StudentRecord) error {
	if err := v.validate.Struct(req); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
		}
		details := make(map[string]string, len(validationErrs))
		for _, fieldErr := range validationErrs {
			if _, seen := details[fieldErr.Field()]; seen {
				continue
			}
			details[fieldErr.Field()] = v.fieldMessage(fieldErr)
		}
		return appErrors.WithDetails(appErrors.ErrValidation, "please fix the highlighted fields", details)
	}
	if existing != nil && existing.HasDate(req.Date) {
		return duplicateSubmission(req.Date)
	}
	return nil
}

func (v *SubmissionValidator) inWindow(raw string) bool {
	date, err := time.Parse(isoDate, raw)
	if err != nil {
		return false
	}
	return !date.Before(v.start) && !date.After(v.end)
}

func (v *SubmissionValidator) fieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Field() {
	case "studentId":
		return "Student ID is required"
	case "name":
		return "Name is required"
	case "date":
		if fieldErr.Tag() == "required" {
			return "Date is required"
		}
		return fmt.Sprintf("Date must be between %s and %s", v.rules.StartDate, v.rules.EndDate)
	case "steps":
		return v.printer.Sprintf("Minimum %d steps required to submit", v.rules.MinSteps)
	case "session":
		return "Please select a session"
	case "campus":
		return "Please select a campus"
	case "screenshot":
		return "Screenshot proof is required"
	}
	return fmt.Sprintf("%s is invalid", fieldErr.Field())
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
