package capture

import (
	"errors"
	"fmt"

	"github.com/patrickjm/apicap/internal/browser"
)

var (
	ErrLaunch      = errors.New("browser launch failed")
	ErrSetup       = errors.New("page setup failed")
	ErrNavigate    = errors.New("navigation failed")
	ErrInterrupted = errors.New("capture interrupted")
	ErrWrite       = errors.New("artifact write failed")
	ErrPanic       = errors.New("unexpected panic")
)

type State int

const (
	StateNotStarted State = iota
	StateNavigating
	StateFailed
	StateCapturing
	StateFinalizing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateNavigating:
		return "navigating"
	case StateFailed:
		return "failed"
	case StateCapturing:
		return "capturing"
	case StateFinalizing:
		return "finalizing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Outcome string

const (
	OutcomeCaptured Outcome = "captured"
	OutcomeNotOK    Outcome = "not_ok"
	OutcomeFailed   Outcome = "failed"
)

// Result describes one finished session. State is always StateClosed once
// Run returns.
type Result struct {
	ID         string             `json:"id"`
	Outcome    Outcome            `json:"outcome"`
	State      State              `json:"state"`
	States     []State            `json:"states"`
	Navigation browser.Navigation `json:"navigation"`
	Responses  int                `json:"responses"`
	ModelLists int                `json:"model_lists"`
	Dropped    int                `json:"dropped"`
	Files      []string           `json:"files"`
	Err        error              `json:"-"`
	Error      string             `json:"error,omitempty"`
}

func (r *Result) enter(s State) {
	r.State = s
	r.States = append(r.States, s)
}

func (r *Result) fail(err error) {
	r.Outcome = OutcomeFailed
	r.setErr(err)
	r.enter(StateFailed)
}

func (r *Result) setErr(err error) {
	if r.Err == nil {
		r.Err = err
		r.Error = err.Error()
	}
}
