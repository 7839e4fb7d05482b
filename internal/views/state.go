package views

// Phase is the lifecycle of an async view: loading, then success or error.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// ViewState is embedded in every page model. The submitting sub-state lives
// in the browser: forms marked data-submitting disable their button on submit.
type ViewState struct {
	Phase Phase
	Error string
}

func Loading() ViewState { return ViewState{Phase: PhaseLoading} }

func Success() ViewState { return ViewState{Phase: PhaseSuccess} }

// Failed moves to the error phase with a user-facing message.
func Failed(message string) ViewState {
	return ViewState{Phase: PhaseError, Error: message}
}

func (s ViewState) IsLoading() bool { return s.Phase == PhaseLoading }

func (s ViewState) IsError() bool { return s.Phase == PhaseError }
