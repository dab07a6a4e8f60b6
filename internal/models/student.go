package models

import (
	"sort"
	"strings"
)

// Session is the time-of-day cohort a student belongs to.
type Session string

const (
	SessionAM     Session = "AM"
	SessionPM     Session = "PM"
	SessionAllDay Session = "All Day"
)

// Sessions lists the recognised cohorts in display order.
var Sessions = []Session{SessionAM, SessionPM, SessionAllDay}

// ParseSession accepts the canonical names plus URL friendly spellings such as "all-day".
func ParseSession(raw string) (Session, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "", "_", "", " ", "").Replace(normalized)
	switch normalized {
	case "am":
		return SessionAM, true
	case "pm":
		return SessionPM, true
	case "allday":
		return SessionAllDay, true
	}
	return "", false
}

// DayEntry is one calendar day's reported step count and proof image.
type DayEntry struct {
	Steps int    `json:"steps"`
	Img   string `json:"img"`
}

// StudentRecord is the full per-student state stored in the challenge document.
// TotalSteps always equals the sum of DailyScreenshots steps and SubmittedDates
// mirrors the key set of DailyScreenshots.
type StudentRecord struct {
	Name             string              `json:"name"`
	Campus           string              `json:"campus"`
	Session          Session             `json:"session"`
	TotalSteps       int                 `json:"totalSteps"`
	SubmittedDates   []string            `json:"submittedDates"`
	DailyScreenshots map[string]DayEntry `json:"dailyScreenshots"`
}

// HasDate reports whether the student already logged the given date.
func (r *StudentRecord) HasDate(date string) bool {
	for _, d := range r.SubmittedDates {
		if d == date {
			return true
		}
	}
	return false
}

// LatestDate returns the most recent submitted date or "" when none exist.
// ISO dates are zero padded so lexical order is chronological.
func (r *StudentRecord) LatestDate() string {
	latest := ""
	for _, d := range r.SubmittedDates {
		if d > latest {
			latest = d
		}
	}
	return latest
}

// Clone returns a deep copy of the record.
func (r StudentRecord) Clone() StudentRecord {
	out := r
	out.SubmittedDates = append([]string(nil), r.SubmittedDates...)
	out.DailyScreenshots = make(map[string]DayEntry, len(r.DailyScreenshots))
	for date, entry := range r.DailyScreenshots {
		out.DailyScreenshots[date] = entry
	}
	return out
}

// Dataset is the whole challenge document keyed by student ID.
type Dataset map[string]StudentRecord

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	out := make(Dataset, len(d))
	for id, record := range d {
		out[id] = record.Clone()
	}
	return out
}

// IDs returns the student IDs in ascending order, the base iteration order for rankings.
func (d Dataset) IDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
