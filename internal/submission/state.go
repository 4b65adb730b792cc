package submission

// Phase is the controller's position in the submission state machine:
// Idle -> Submitting -> {Answered | Errored}, and back to Submitting only
// through Submit.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseAnswered
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseAnswered:
		return "answered"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// State is a snapshot of the form state owned by the controller.
type State struct {
	SelectedFile *File
	Question     string
	Answer       string
	IsSubmitting bool
	Phase        Phase
	LastError    error
}

// Ready reports whether the required fields are filled in.
func (s State) Ready() bool {
	return s.SelectedFile != nil && trimmed(s.Question) != ""
}

// CanSubmit reports whether Submit would start a request.
func (s State) CanSubmit() bool {
	return s.Ready() && !s.IsSubmitting
}
