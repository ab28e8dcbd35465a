package progress

// State is the derived completion state of a composite entity.
// Values are persisted as-is, so the numbering is fixed.
type State int

const (
	StateNotStarted State = 0
	StateInProgress State = 1
	StateCompleted  State = 2
)

// Label returns the display label for a state.
func (s State) Label() string {
	switch s {
	case StateNotStarted:
		return "Not started"
	case StateInProgress:
		return "In progress"
	case StateCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Icon returns the display icon for a state.
func (s State) Icon() string {
	switch s {
	case StateNotStarted:
		return "○"
	case StateInProgress:
		return "◐"
	case StateCompleted:
		return "●"
	default:
		return "?"
	}
}

// Student identifies whose progress is being tracked. Transient students
// (previews, anonymous visitors) have no durable record.
type Student struct {
	ID        string
	Transient bool
}
