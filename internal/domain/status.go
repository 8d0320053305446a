package domain

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StatePending    State = "pending"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

// Terminal reports whether no further automatic transitions occur
// without an explicit reset.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateError
}
