// FILE: logfeeder/src/internal/input/state.go
package input

// State is the lifecycle position of an input
type State int32

const (
	// Initialized, waiting for the source to become ready
	StateConfigured State = iota
	// Source reported ready, execution context about to start
	StateReady
	StateRunning
	// Drain requested or execution context exited
	StateDraining
	StateClosed
	// Source failed with an unrecoverable error. Absorbing.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConfigured:
		return "configured"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
