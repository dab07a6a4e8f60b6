package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/noah-isme/step-challenge-api/internal/dto"
	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
)

// AdminService implements the audit view: listing, inspecting and retracting submissions.
type AdminService struct {
	ledger  *LedgerService
	logger  *zap.Logger
	printer *message.Printer
}

// NewAdminService constructs an AdminService.
func NewAdminService(ledger *LedgerService, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{ledger: ledger, logger: logger, printer: message.NewPrinter(language.English)}
}

// List returns the filtered, paginated audit rows.
func (s *AdminService) List(ctx context.Context, filter models.AdminFilter) ([]models.AdminStudent, *models.Pagination) {
	rows, total := QueryStudents(s.ledger.Snapshot(ctx), filter)
	page, size := normalizePage(filter.Page, filter.PageSize)
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

// Screenshot returns the stored proof for one logged day.
func (s *AdminService) Screenshot(ctx context.Context, studentID, date string) (*dto.Screenshot, error) {
	record, ok := s.ledger.Snapshot(ctx)[studentID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	entry, ok := record.DailyScreenshots[date]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no submission on %s", date))
	}
	return &dto.Screenshot{StudentID: studentID, Date: date, Steps: entry.Steps, Img: entry.Img}, nil
}

// RetractDay removes one day from a student. Unknown students or days are a no-op
// reported with Removed=false.
func (s *AdminService) RetractDay(ctx context.Context, studentID, date string) (*dto.RetractDayResult, error) {
	studentID = strings.TrimSpace(studentID)
	result := &dto.RetractDayResult{StudentID: studentID, Date: date}

	commit, err := s.ledger.Commit(ctx, "retract_day", func(dataset models.Dataset) (bool, error) {
		outcome, ok := RetractDay(dataset, studentID, date)
		if !ok {
			return false, nil
		}
		if outcome.Clamped {
			s.logger.Warn("running total smaller than retracted day, clamped to zero",
				zap.String("student_id", studentID),
				zap.String("date", date),
				zap.Int("steps_removed", outcome.StepsRemoved),
			)
		}
		result.Removed = true
		result.StepsRemoved = outcome.StepsRemoved
		result.TotalSteps = outcome.TotalSteps
		result.StudentRemoved = outcome.StudentRemoved
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	result.Persisted = commit.Persisted
	if !result.Removed {
		result.Message = fmt.Sprintf("No submission on %s for %s.", date, studentID)
		return result, nil
	}
	result.Message = s.printer.Sprintf("Day %s (%d steps) removed. Total updated.", date, result.StepsRemoved)
	s.logger.Info("day retracted",
		zap.String("student_id", studentID),
		zap.String("date", date),
		zap.Int("steps_removed", result.StepsRemoved),
		zap.Bool("student_removed", result.StudentRemoved),
	)
	return result, nil
}

// DeleteStudent removes a student and every logged day.
func (s *AdminService) DeleteStudent(ctx context.Context, studentID string) (*dto.DeleteStudentResult, error) {
	studentID = strings.TrimSpace(studentID)
	result := &dto.DeleteStudentResult{StudentID: studentID}

	var removed models.StudentRecord
	commit, err := s.ledger.Commit(ctx, "delete_student", func(dataset models.Dataset) (bool, error) {
		record, ok := RemoveStudent(dataset, studentID)
		removed = record
		result.Removed = ok
		return ok, nil
	})
	if err != nil {
		return nil, err
	}

	result.Persisted = commit.Persisted
	if !result.Removed {
		result.Message = fmt.Sprintf("Student %s not found.", studentID)
		return result, nil
	}
	name := removed.Name
	if name == "" {
		name = studentID
	}
	result.Message = fmt.Sprintf("\"%s\" has been removed successfully.", name)
	s.logger.Info("student removed", zap.String("student_id", studentID), zap.Int("total_steps", removed.TotalSteps))
	return result, nil
}

// Drift lists records whose running totals disagree with their day entries.
func (s *AdminService) Drift(ctx context.Context) []models.LedgerDrift {
	return s.ledger.Audit(ctx)
}
