package domain

// RunState is the phase of the current audit run.
type RunState string

const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StateSucceeded RunState = "succeeded"
	StateFailed    RunState = "failed"
)

// Settled reports whether a run has finished, successfully or not.
func (s RunState) Settled() bool {
	return s == StateSucceeded || s == StateFailed
}
