package domain

import "time"

type Progress struct {
	CurrentPhase string
	Details      string
}

// Job is the client-side record of one outstanding or finished analysis.
// Exactly one Job exists at a time; starting a new analysis discards it.
type Job struct {
	ID           string
	StartedAt    time.Time
	Status       State
	Progress     Progress
	Percent      int
	ErrorMessage string
}

// ReportName derives the filename the downloaded artifact is persisted under.
func (j *Job) ReportName() string {
	return "compliance_report_" + j.ID + ".pdf"
}

// StatusUpdate is one status-poll result as reported by the analysis service.
// Status is the server's free-form value, not restricted to known states.
type StatusUpdate struct {
	Status   string
	Progress *Progress
	Error    string
}
