package models

// StudentStanding is one row of a student leaderboard.
type StudentStanding struct {
	Rank       int     `json:"rank"`
	StudentID  string  `json:"studentId"`
	Name       string  `json:"name"`
	Campus     string  `json:"campus"`
	Session    Session `json:"session"`
	TotalSteps int     `json:"totalSteps"`
}

// StudentLeaderboard is a top-N student ranking. NoData is set when nothing was eligible.
type StudentLeaderboard struct {
	Title   string            `json:"title"`
	Session Session           `json:"session,omitempty"`
	Entries []StudentStanding `json:"entries"`
	NoData  bool              `json:"noData"`
}

// CampusStanding is one row of the Bayesian campus ranking.
type CampusStanding struct {
	Rank         int    `json:"rank"`
	Campus       string `json:"campus"`
	Score        int    `json:"score"`
	RawAverage   int    `json:"rawAverage"`
	StudentCount int    `json:"studentCount"`
	TotalSteps   int    `json:"totalSteps"`
}

// CampusLeaderboard is the campus ranking plus the smoothing parameters used to produce it.
type CampusLeaderboard struct {
	Title      string           `json:"title"`
	Entries    []CampusStanding `json:"entries"`
	GlobalMean float64          `json:"globalMean"`
	Smoothing  int              `json:"smoothing"`
	NoData     bool             `json:"noData"`
}

// ChallengeStats is the headline summary shown above the leaderboards.
type ChallengeStats struct {
	TotalStudents int `json:"totalStudents"`
	HighestSteps  int `json:"highestSteps"`
	AverageSteps  int `json:"averageSteps"`
}
