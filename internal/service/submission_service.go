package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/step-challenge-api/internal/dto"
	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
)

const submissionAcceptedMessage = "Steps submitted! Your running total has been updated. Check the leaderboards!"

// SubmissionService accepts daily step submissions and serves the public profile lookup.
type SubmissionService struct {
	ledger    *LedgerService
	validator *SubmissionValidator
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(ledger *LedgerService, validator *SubmissionValidator, metrics *MetricsService, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{ledger: ledger, validator: validator, metrics: metrics, logger: logger}
}

// Submit validates req and records the day. The duplicate-day rule is evaluated
// against the snapshot loaded inside the commit so concurrent submissions in this
// process cannot both land on the same date.
func (s *SubmissionService) Submit(ctx context.Context, req dto.SubmitStepsRequest) (*dto.SubmissionResult, error) {
	req = s.validator.Normalize(req)
	if err := s.validator.Validate(req, nil); err != nil {
		s.metrics.RecordSubmission(SubmissionInvalid)
		return nil, err
	}

	session, _ := models.ParseSession(req.Session)
	submission := DaySubmission{
		StudentID: req.StudentID,
		Name:      req.Name,
		Campus:    req.Campus,
		Session:   session,
		Date:      req.Date,
		Steps:     int(req.Steps),
		Img:       req.Screenshot,
	}

	var record models.StudentRecord
	result, err := s.ledger.Commit(ctx, "submit", func(dataset models.Dataset) (bool, error) {
		if existing, ok := dataset[req.StudentID]; ok {
			if err := s.validator.Validate(req, &existing); err != nil {
				return false, err
			}
		}
		applied, err := ApplySubmission(dataset, submission)
		if err != nil {
			return false, err
		}
		record = applied
		return true, nil
	})
	if err != nil {
		s.metrics.RecordSubmission(submissionOutcome(err))
		return nil, err
	}

	s.metrics.RecordSubmission(SubmissionAccepted)
	s.logger.Info("steps submitted",
		zap.String("student_id", req.StudentID),
		zap.String("date", req.Date),
		zap.Int("steps", int(req.Steps)),
		zap.Int("total_steps", record.TotalSteps),
		zap.Bool("persisted", result.Persisted),
	)
	return &dto.SubmissionResult{
		StudentID: req.StudentID,
		Record:    record,
		Persisted: result.Persisted,
		Message:   submissionAcceptedMessage,
	}, nil
}

// Profile returns the stored name, campus and session of a student so a returning
// student's form can be prefilled. Images are never included.
func (s *SubmissionService) Profile(ctx context.Context, studentID string) (*dto.StudentProfile, error) {
	studentID = strings.TrimSpace(studentID)
	record, ok := s.ledger.Snapshot(ctx)[studentID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return &dto.StudentProfile{
		StudentID:  studentID,
		Name:       record.Name,
		Campus:     record.Campus,
		Session:    record.Session,
		TotalSteps: record.TotalSteps,
		DaysLogged: len(record.SubmittedDates),
	}, nil
}

// Catalog describes the configured campuses, sessions and limits.
func (s *SubmissionService) Catalog() dto.Catalog {
	rules := s.validator.Rules()
	return dto.Catalog{
		Campuses:  append([]string(nil), rules.Campuses...),
		Sessions:  append([]models.Session(nil), models.Sessions...),
		StartDate: rules.StartDate,
		EndDate:   rules.EndDate,
		MinSteps:  rules.MinSteps,
	}
}

func submissionOutcome(err error) string {
	switch {
	case errors.Is(err, appErrors.ErrDuplicateSubmission):
		return SubmissionDuplicate
	case errors.Is(err, appErrors.ErrStoreUnavailable):
		return SubmissionStoreError
	default:
		return SubmissionInvalid
	}
}
