package dto

// RetractDayResult reports the outcome of an admin day deletion. Removed is false
// when the student or day did not exist, which is not an error.
type RetractDayResult struct {
	StudentID      string `json:"studentId"`
	Date           string `json:"date"`
	Removed        bool   `json:"removed"`
	StepsRemoved   int    `json:"stepsRemoved"`
	TotalSteps     int    `json:"totalSteps"`
	StudentRemoved bool   `json:"studentRemoved"`
	Persisted      bool   `json:"-"`
	Message        string `json:"message"`
}

// DeleteStudentResult reports the outcome of an admin student deletion.
type DeleteStudentResult struct {
	StudentID string `json:"studentId"`
	Removed   bool   `json:"removed"`
	Persisted bool   `json:"-"`
	Message   string `json:"message"`
}

// Screenshot is the stored proof image of one logged day.
type Screenshot struct {
	StudentID string `json:"studentId"`
	Date      string `json:"date"`
	Steps     int    `json:"steps"`
	Img       string `json:"img"`
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
