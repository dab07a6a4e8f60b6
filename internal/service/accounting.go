package service

import (
	"fmt"
	"sort"

	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
)

// DaySubmission is an accepted submission ready to be applied to the dataset.
type DaySubmission struct {
	StudentID string
	Name      string
	Campus    string
	Session   models.Session
	Date      string
	Steps     int
	Img       string
}

// RetractOutcome describes what a day retraction changed.
type RetractOutcome struct {
	StepsRemoved   int
	TotalSteps     int
	StudentRemoved bool
	// Clamped is set when the running total was smaller than the removed steps.
	Clamped bool
}

// ApplySubmission adds a day entry to the student's record, creating the record on
// first submission. Profile fields take the latest submitted values.
func ApplySubmission(dataset models.Dataset, sub DaySubmission) (models.StudentRecord, error) {
	if sub.Steps <= 0 {
		return models.StudentRecord{}, appErrors.Clone(appErrors.ErrValidation, "steps must be positive")
	}
	entry := models.DayEntry{Steps: sub.Steps, Img: sub.Img}

	record, exists := dataset[sub.StudentID]
	if !exists {
		record = models.StudentRecord{
			TotalSteps:       sub.Steps,
			SubmittedDates:   []string{sub.Date},
			DailyScreenshots: map[string]models.DayEntry{sub.Date: entry},
		}
	} else {
		if record.HasDate(sub.Date) {
			return models.StudentRecord{}, duplicateSubmission(sub.Date)
		}
		record = record.Clone()
		record.TotalSteps += sub.Steps
		record.SubmittedDates = append(record.SubmittedDates, sub.Date)
		record.DailyScreenshots[sub.Date] = entry
	}
	record.Name = sub.Name
	record.Campus = sub.Campus
	record.Session = sub.Session

	dataset[sub.StudentID] = record
	return record, nil
}

func duplicateSubmission(date string) error {
	return appErrors.Clone(appErrors.ErrDuplicateSubmission,
		fmt.Sprintf("You have already submitted steps for %s. Only one submission per day is allowed.", date))
}

// RetractDay removes one day entry and its steps. It reports false when the student
// or the day does not exist, leaving the dataset untouched. A record left without
// dates is deleted.
func RetractDay(dataset models.Dataset, studentID, date string) (RetractOutcome, bool) {
	record, exists := dataset[studentID]
	if !exists {
		return RetractOutcome{}, false
	}
	entry, hasEntry := record.DailyScreenshots[date]
	if !hasEntry && !record.HasDate(date) {
		return RetractOutcome{}, false
	}

	record = record.Clone()
	outcome := RetractOutcome{StepsRemoved: entry.Steps}
	record.TotalSteps -= entry.Steps
	if record.TotalSteps < 0 {
		record.TotalSteps = 0
		outcome.Clamped = true
	}

	remaining := record.SubmittedDates[:0]
	for _, d := range record.SubmittedDates {
		if d != date {
			remaining = append(remaining, d)
		}
	}
	record.SubmittedDates = remaining
	delete(record.DailyScreenshots, date)
	outcome.TotalSteps = record.TotalSteps

	if len(record.SubmittedDates) == 0 {
		delete(dataset, studentID)
		outcome.StudentRemoved = true
		outcome.TotalSteps = 0
		return outcome, true
	}
	dataset[studentID] = record
	return outcome, true
}

// RemoveStudent deletes a student record regardless of content.
func RemoveStudent(dataset models.Dataset, studentID string) (models.StudentRecord, bool) {
	record, exists := dataset[studentID]
	if !exists {
		return models.StudentRecord{}, false
	}
	delete(dataset, studentID)
	return record, true
}

// CheckLedger compares a record's running total and date list against its day
// entries. It returns nil when the record is consistent.
func CheckLedger(studentID string, record models.StudentRecord) *models.LedgerDrift {
	drift := models.LedgerDrift{StudentID: studentID, TotalSteps: record.TotalSteps}
	listed := make(map[string]struct{}, len(record.SubmittedDates))
	for _, date := range record.SubmittedDates {
		listed[date] = struct{}{}
		entry, ok := record.DailyScreenshots[date]
		if !ok {
			drift.MissingEntries = append(drift.MissingEntries, date)
			continue
		}
		drift.EntrySum += entry.Steps
	}
	for date := range record.DailyScreenshots {
		if _, ok := listed[date]; !ok {
			drift.OrphanEntries = append(drift.OrphanEntries, date)
		}
	}
	sort.Strings(drift.OrphanEntries)

	duplicateDates := len(listed) != len(record.SubmittedDates)
	if drift.EntrySum == record.TotalSteps && len(drift.MissingEntries) == 0 && len(drift.OrphanEntries) == 0 && !duplicateDates {
		return nil
	}
	return &drift
}
