package form

// First and last steps of the admission form.
const (
	FirstStep = 1
	LastStep  = 4
)

// Navigator tracks which step of the form is shown. Moves are one step at a
// time; stepping past either end is a no-op.
type Navigator struct {
	step int
}

// NewNavigator starts at the first step.
func NewNavigator() Navigator {
	return Navigator{step: FirstStep}
}

// Step returns the current step.
func (n *Navigator) Step() int {
	if n.step < FirstStep {
		return FirstStep
	}
	return n.step
}

// Next advances one step and reports whether it moved.
func (n *Navigator) Next() bool {
	if n.Step() >= LastStep {
		return false
	}
	n.step = n.Step() + 1
	return true
}

// Previous goes back one step and reports whether it moved.
func (n *Navigator) Previous() bool {
	if n.Step() <= FirstStep {
		return false
	}
	n.step = n.Step() - 1
	return true
}

// CanSubmit is true on the last step, where submit replaces next.
func (n *Navigator) CanSubmit() bool {
	return n.Step() == LastStep
}

// Reset returns to the first step.
func (n *Navigator) Reset() {
	n.step = FirstStep
}
