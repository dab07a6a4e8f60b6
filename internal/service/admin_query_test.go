package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/step-challenge-api/internal/models"
)

func auditDataset() models.Dataset {
	return models.Dataset{
		"S1": {
			Name: "Zoë Ramírez", Campus: "Owasso", Session: models.SessionAM, TotalSteps: 9000,
			SubmittedDates: []string{"2026-03-01", "2026-03-05"},
			DailyScreenshots: map[string]models.DayEntry{
				"2026-03-01": {Steps: 4000, Img: "img"},
				"2026-03-05": {Steps: 5000},
			},
		},
		"S2": {
			Name: "Bo Chen", Campus: "Peoria", Session: models.SessionPM, TotalSteps: 2000,
			SubmittedDates:   []string{"2026-03-07"},
			DailyScreenshots: map[string]models.DayEntry{"2026-03-07": {Steps: 2000, Img: "img"}},
		},
		"S3": {
			Name: "Cy Park", Campus: "Owasso", Session: models.SessionAllDay,
			SubmittedDates:   []string{},
			DailyScreenshots: map[string]models.DayEntry{},
		},
	}
}

func TestQueryStudentsOrdersByLatestDate(t *testing.T) {
	rows, total := QueryStudents(auditDataset(), models.AdminFilter{})

	assert.Equal(t, 3, total)
	require.Len(t, rows, 3)
	assert.Equal(t, "S2", rows[0].StudentID)
	assert.Equal(t, "S1", rows[1].StudentID)
	assert.Equal(t, "S3", rows[2].StudentID)
	assert.Equal(t, "2026-03-05", rows[1].LatestDate)
	assert.Equal(t, []models.AdminDay{
		{Date: "2026-03-05", Steps: 5000, HasImage: false},
		{Date: "2026-03-01", Steps: 4000, HasImage: true},
	}, rows[1].Days)
	assert.Equal(t, 2, rows[1].DaysLogged)
}

func TestQueryStudentsSearchIsCaseInsensitive(t *testing.T) {
	dataset := auditDataset()

	rows, _ := QueryStudents(dataset, models.AdminFilter{Search: "ZOË"})
	require.Len(t, rows, 1)
	assert.Equal(t, "S1", rows[0].StudentID)

	rows, _ = QueryStudents(dataset, models.AdminFilter{Search: "owasso"})
	assert.Len(t, rows, 2)

	rows, _ = QueryStudents(dataset, models.AdminFilter{Search: "s2"})
	require.Len(t, rows, 1)
	assert.Equal(t, "Bo Chen", rows[0].Name)

	rows, total := QueryStudents(dataset, models.AdminFilter{Search: "nobody"})
	assert.Empty(t, rows)
	assert.Zero(t, total)
}

func TestQueryStudentsDateFilterIsAndedWithSearch(t *testing.T) {
	dataset := auditDataset()

	rows, _ := QueryStudents(dataset, models.AdminFilter{Date: "2026-03-01"})
	require.Len(t, rows, 1)
	assert.Equal(t, "S1", rows[0].StudentID)

	rows, _ = QueryStudents(dataset, models.AdminFilter{Search: "peoria", Date: "2026-03-01"})
	assert.Empty(t, rows)
}

func TestQueryStudentsPaginates(t *testing.T) {
	dataset := models.Dataset{}
	for i := 1; i <= 25; i++ {
		date := fmt.Sprintf("2026-04-%02d", i)
		dataset[fmt.Sprintf("S%02d", i)] = models.StudentRecord{
			Name: "n", Campus: "Owasso", TotalSteps: 1000,
			SubmittedDates:   []string{date},
			DailyScreenshots: map[string]models.DayEntry{date: {Steps: 1000}},
		}
	}

	rows, total := QueryStudents(dataset, models.AdminFilter{Page: 2, PageSize: 10})
	assert.Equal(t, 25, total)
	require.Len(t, rows, 10)
	assert.Equal(t, "S15", rows[0].StudentID)

	rows, _ = QueryStudents(dataset, models.AdminFilter{})
	assert.Len(t, rows, defaultAdminPageSize)

	rows, total = QueryStudents(dataset, models.AdminFilter{Page: 9, PageSize: 10})
	assert.Empty(t, rows)
	assert.Equal(t, 25, total)
}
