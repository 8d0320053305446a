package domain

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is a non-fatal, user-facing message describing a recoverable condition.
type Notice struct {
	Severity Severity
	Message  string
}
