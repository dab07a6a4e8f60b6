package dto

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/noah-isme/step-challenge-api/internal/models"
)

// StepCount is a step total as posted by a form. It decodes from a JSON number
// or from numeric text, truncating any fraction. Text that is not a number
// decodes as 0 so the minimum-steps rule reports it with the other fields.
type StepCount int

// UnmarshalJSON implements json.Unmarshaler.
func (s *StepCount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*s = 0
		return nil
	case strings.HasPrefix(raw, `"`):
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil || !inStepRange(n) {
			*s = 0
			return nil
		}
		*s = StepCount(math.Trunc(n))
		return nil
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || !inStepRange(n) {
		return &json.UnmarshalTypeError{Value: "value " + raw, Type: reflect.TypeOf(0), Field: "steps"}
	}
	*s = StepCount(math.Trunc(n))
	return nil
}

func inStepRange(n float64) bool {
	return !math.IsNaN(n) && n >= math.MinInt32 && n <= math.MaxInt32
}

// SubmitStepsRequest is a student's daily step submission. Screenshot carries the
// proof image as an opaque encoded payload such as a data URI.
type SubmitStepsRequest struct {
	StudentID  string    `json:"studentId" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	Date       string    `json:"date" validate:"required,challenge_date"`
	Steps      StepCount `json:"steps" validate:"min_steps" swaggertype:"integer"`
	Session    string    `json:"session" validate:"required,session"`
	Campus     string    `json:"campus" validate:"required,campus"`
	Screenshot string    `json:"screenshot" validate:"required"`
}

// SubmissionResult reports the committed record. Persisted is false when the
// store write failed after the submission was accepted.
type SubmissionResult struct {
	StudentID string               `json:"studentId"`
	Record    models.StudentRecord `json:"record"`
	Persisted bool                 `json:"-"`
	Message   string               `json:"message"`
}

// StudentProfile is the public prefill view of an existing student.
type StudentProfile struct {
	StudentID  string         `json:"studentId"`
	Name       string         `json:"name"`
	Campus     string         `json:"campus"`
	Session    models.Session `json:"session"`
	TotalSteps int            `json:"totalSteps"`
	DaysLogged int            `json:"daysLogged"`
}

// Catalog lists the choices and limits a client needs to render the submission form.
type Catalog struct {
	Campuses  []string         `json:"campuses"`
	Sessions  []models.Session `json:"sessions"`
	StartDate string           `json:"startDate"`
	EndDate   string           `json:"endDate"`
	MinSteps  int              `json:"minSteps"`
}
