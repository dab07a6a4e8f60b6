package service

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/noah-isme/step-challenge-api/internal/models"
)

const (
	defaultAdminPageSize = 20
	maxAdminPageSize     = 100
)

// QueryStudents filters the dataset for the audit view. Search is a case-insensitive
// substring match over name, student ID and campus; Date keeps only students who
// logged that exact day. Results are ordered by latest logged date, newest first,
// with students lacking dates last. The second return value is the unpaginated count.
func QueryStudents(dataset models.Dataset, filter models.AdminFilter) ([]models.AdminStudent, int) {
	rows := filterStudents(dataset, filter)
	total := len(rows)
	page, size := normalizePage(filter.Page, filter.PageSize)
	start := (page - 1) * size
	if start >= total {
		return []models.AdminStudent{}, total
	}
	end := start + size
	if end > total {
		end = total
	}
	return rows[start:end], total
}

func filterStudents(dataset models.Dataset, filter models.AdminFilter) []models.AdminStudent {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(filter.Search))
	date := strings.TrimSpace(filter.Date)

	rows := make([]models.AdminStudent, 0, len(dataset))
	for _, id := range dataset.IDs() {
		record := dataset[id]
		if needle != "" && !matchesSearch(fold, needle, id, record) {
			continue
		}
		if date != "" && !record.HasDate(date) {
			continue
		}
		rows = append(rows, adminRow(id, record))
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].LatestDate > rows[j].LatestDate })
	return rows
}

func matchesSearch(fold cases.Caser, needle, id string, record models.StudentRecord) bool {
	for _, field := range []string{record.Name, id, record.Campus} {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}

func adminRow(id string, record models.StudentRecord) models.AdminStudent {
	days := make([]models.AdminDay, 0, len(record.SubmittedDates))
	for _, date := range record.SubmittedDates {
		entry := record.DailyScreenshots[date]
		days = append(days, models.AdminDay{Date: date, Steps: entry.Steps, HasImage: entry.Img != ""})
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date > days[j].Date })

	return models.AdminStudent{
		StudentID:  id,
		Name:       record.Name,
		Campus:     record.Campus,
		Session:    record.Session,
		TotalSteps: record.TotalSteps,
		DaysLogged: len(record.SubmittedDates),
		LatestDate: record.LatestDate(),
		Days:       days,
	}
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultAdminPageSize
	}
	if size > maxAdminPageSize {
		size = maxAdminPageSize
	}
	return page, size
}
