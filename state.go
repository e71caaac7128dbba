package polyevo

// State is the lifecycle phase of an Engine.
type State int32

const (
	// StateInitializing is the state of a new Engine until its loop starts.
	StateInitializing State = iota

	// StateRunning means generations are being evaluated and bred.
	StateRunning

	// StateStopping means the loop has left its last generation and is
	// draining the worker pool and checkpoint saver.
	StateStopping

	// StateTerminated is final. AwaitTermination returns once it is reached.
	StateTerminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "Initializing"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}
