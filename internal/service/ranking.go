package service

import (
	"math"
	"sort"

	"github.com/noah-isme/step-challenge-api/internal/models"
)

// DefaultLeaderboardSize is the number of rows on a student leaderboard.
const DefaultLeaderboardSize = 10

// TopStudents ranks students by total steps, optionally restricted to one session.
// Equal totals keep ascending student ID order.
func TopStudents(dataset models.Dataset, session models.Session, limit int) models.StudentLeaderboard {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	board := models.StudentLeaderboard{Title: leaderboardTitle(session), Session: session, Entries: []models.StudentStanding{}}

	rows := make([]models.StudentStanding, 0, len(dataset))
	for _, id := range dataset.IDs() {
		record := dataset[id]
		if session != "" && record.Session != session {
			continue
		}
		rows = append(rows, models.StudentStanding{
			StudentID:  id,
			Name:       record.Name,
			Campus:     record.Campus,
			Session:    record.Session,
			TotalSteps: record.TotalSteps,
		})
	}
	if len(rows) == 0 {
		board.NoData = true
		return board
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalSteps > rows[j].TotalSteps })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	board.Entries = rows
	return board
}

type campusTally struct {
	campus string
	total  int
	count  int
}

// RankCampuses orders campuses by a Bayesian average that shrinks each campus
// toward the global per-student mean. The prior weight C is the rounded average
// campus size, so campuses smaller than C lean on the global mean and larger ones
// converge to their own average.
func RankCampuses(dataset models.Dataset) models.CampusLeaderboard {
	board := models.CampusLeaderboard{Title: "Campus Average", Entries: []models.CampusStanding{}}

	tallies := make([]*campusTally, 0)
	byCampus := make(map[string]*campusTally)
	grandTotal := 0
	for _, id := range dataset.IDs() {
		record := dataset[id]
		tally, ok := byCampus[record.Campus]
		if !ok {
			tally = &campusTally{campus: record.Campus}
			byCampus[record.Campus] = tally
			tallies = append(tallies, tally)
		}
		tally.total += record.TotalSteps
		tally.count++
		grandTotal += record.TotalSteps
	}
	if len(tallies) == 0 {
		board.NoData = true
		board.Smoothing = 1
		return board
	}

	globalMean := float64(grandTotal) / float64(len(dataset))
	avgCampusSize := float64(len(dataset)) / float64(len(tallies))
	smoothing := int(math.Max(1, math.Round(avgCampusSize)))

	rows := make([]models.CampusStanding, 0, len(tallies))
	for _, tally := range tallies {
		rows = append(rows, models.CampusStanding{
			Campus:       tally.campus,
			Score:        bayesianScore(tally.total, tally.count, globalMean, smoothing),
			RawAverage:   int(math.Round(float64(tally.total) / float64(tally.count))),
			StudentCount: tally.count,
			TotalSteps:   tally.total,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score > rows[j].Score })
	for i := range rows {
		rows[i].Rank = i + 1
	}

	board.Entries = rows
	board.GlobalMean = globalMean
	board.Smoothing = smoothing
	return board
}

func bayesianScore(total, count int, globalMean float64, smoothing int) int {
	c := float64(smoothing)
	return int(math.Round((c*globalMean + float64(total)) / (c + float64(count))))
}

// SummarizeDataset computes the headline numbers: participants, best total and mean total.
func SummarizeDataset(dataset models.Dataset) models.ChallengeStats {
	stats := models.ChallengeStats{TotalStudents: len(dataset)}
	if len(dataset) == 0 {
		return stats
	}
	sum := 0
	for _, record := range dataset {
		sum += record.TotalSteps
		if record.TotalSteps > stats.HighestSteps {
			stats.HighestSteps = record.TotalSteps
		}
	}
	stats.AverageSteps = int(math.Round(float64(sum) / float64(len(dataset))))
	return stats
}

func leaderboardTitle(session models.Session) string {
	if session == "" {
		return "Highest Steps"
	}
	return "Highest Steps " + string(session)
}
