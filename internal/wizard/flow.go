// Package wizard drives the multi-step booking flow: step ordering per flow
// type, forward/backward navigation, and the invalidation rules that keep a
// draft consistent with live availability.
package wizard

import "errors"

type Step string

const (
	StepDate     Step = "date"
	StepCourt    Step = "court"
	StepTime     Step = "time"
	StepDuration Step = "duration"
	StepPayment  Step = "payment"
)

func (s Step) Label() string {
	switch s {
	case StepDate:
		return "Date"
	case StepCourt:
		return "Court"
	case StepTime:
		return "Time"
	case StepDuration:
		return "Duration"
	case StepPayment:
		return "Payment"
	}
	return string(s)
}

// FlowType selects the step ordering for a venue. It is fixed per venue and
// read-only while a wizard session runs.
type FlowType string

const (
	// FlowCourtFirst: pick the court, then the time.
	FlowCourtFirst FlowType = "court_first"
	// FlowTimeFirst: pick the time, then the court.
	FlowTimeFirst FlowType = "time_first"
)

func (f FlowType) Steps() []Step {
	switch f {
	case FlowTimeFirst:
		return []Step{StepDate, StepTime, StepDuration, StepCourt, StepPayment}
	default:
		return []Step{StepDate, StepCourt, StepTime, StepDuration, StepPayment}
	}
}

var (
	ErrUnknownStep     = errors.New("step not in active flow")
	ErrStepOutOfRange  = errors.New("step position out of range")
	ErrStepNotExpanded = errors.New("step not yet expanded")
	ErrFlowComplete    = errors.New("flow already complete")
)

// Progress is the wizard's navigation state. All transitions are pure: they
// return a new Progress and never mutate the receiver, so a caller can apply
// a transition and a draft change as one atomic assignment.
type Progress struct {
	Steps    []Step
	Current  int
	Expanded []int
	Notice   string
}

func NewProgress(flow FlowType) Progress {
	return Progress{
		Steps:    flow.Steps(),
		Current:  0,
		Expanded: []int{0},
	}
}

// Terminal reports whether the flow advanced past its last step.
func (p Progress) Terminal() bool {
	return p.Current >= len(p.Steps)
}

func (p Progress) PositionOf(step Step) int {
	for i, s := range p.Steps {
		if s == step {
			return i
		}
	}
	return -1
}

func (p Progress) StepAt(pos int) (Step, bool) {
	if pos < 0 || pos >= len(p.Steps) {
		return "", false
	}
	return p.Steps[pos], true
}

func (p Progress) IsExpanded(pos int) bool {
	for _, e := range p.Expanded {
		if e == pos {
			return true
		}
	}
	return false
}

// TransitionToNext moves to the step after the one just completed, expanding
// it if this is the first visit. Completing the final step makes the flow
// terminal. Expanded positions only ever grow here.
func (p Progress) TransitionToNext(completed Step) (Progress, error) {
	if p.Terminal() {
		return p, ErrFlowComplete
	}
	pos := p.PositionOf(completed)
	if pos < 0 {
		return p, ErrUnknownStep
	}

	next := pos + 1
	out := p.clone()
	out.Current = next
	if next < len(out.Steps) && !out.IsExpanded(next) {
		out.Expanded = append(out.Expanded, next)
	}
	return out, nil
}

// SetActive jumps to an already-expanded step without touching Expanded.
// Used when the user clicks a previously visited step header.
func (p Progress) SetActive(pos int) (Progress, error) {
	if pos < 0 || pos >= len(p.Steps) {
		return p, ErrStepOutOfRange
	}
	if !p.IsExpanded(pos) {
		return p, ErrStepNotExpanded
	}
	out := p.clone()
	out.Current = pos
	return out, nil
}

// WithNotice attaches a user-visible notice to the progress.
func (p Progress) WithNotice(msg string) Progress {
	out := p.clone()
	out.Notice = msg
	return out
}

func (p Progress) clone() Progress {
	out := p
	out.Steps = append([]Step(nil), p.Steps...)
	out.Expanded = append([]int(nil), p.Expanded...)
	return out
}
