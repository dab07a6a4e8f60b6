package models

// AdminFilter narrows the audit list. Search and Date are ANDed.
type AdminFilter struct {
	Search   string
	Date     string
	Page     int
	PageSize int
}

// AdminDay is a single logged day as shown in the audit view.
type AdminDay struct {
	Date     string `json:"date"`
	Steps    int    `json:"steps"`
	HasImage bool   `json:"hasImage"`
}

// AdminStudent is a student row in the audit view with days newest first.
type AdminStudent struct {
	StudentID  string     `json:"studentId"`
	Name       string     `json:"name"`
	Campus     string     `json:"campus"`
	Session    Session    `json:"session"`
	TotalSteps int        `json:"totalSteps"`
	DaysLogged int        `json:"daysLogged"`
	LatestDate string     `json:"latestDate,omitempty"`
	Days       []AdminDay `json:"days"`
}

// LedgerDrift describes a record whose running total disagrees with its day entries.
type LedgerDrift struct {
	StudentID      string   `json:"studentId"`
	TotalSteps     int      `json:"totalSteps"`
	EntrySum       int      `json:"entrySum"`
	MissingEntries []string `json:"missingEntries,omitempty"`
	OrphanEntries  []string `json:"orphanEntries,omitempty"`
}
