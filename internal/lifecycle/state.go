package lifecycle

import "etf-advisor/internal/domain"

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitted
	PhaseInProgress
	PhaseCompleted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitted:
		return "submitted"
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// IsTerminal reports whether no further transition can occur within the run.
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// State is an immutable snapshot of the controller. Progress is in [0, 100]
// and is 100 only when Phase is Completed.
type State struct {
	Phase    Phase
	Progress float64
	RunID    string
	// Err is set only when Phase is Failed.
	Err error

	result *domain.AdvisorResult
	run    *run
}

// Result returns a copy of the completed result.
func (s State) Result() (domain.AdvisorResult, bool) {
	if s.Phase != PhaseCompleted || s.result == nil {
		return domain.AdvisorResult{}, false
	}
	return s.result.Clone(), true
}

// Cancelled reports whether the run ended through Cancel or context cancellation.
func (s State) Cancelled() bool {
	return s.Phase == PhaseFailed && isCancelled(s.Err)
}

func (s *State) acceptsSubmit() bool {
	return s.Phase == PhaseIdle || s.Phase.IsTerminal()
}
