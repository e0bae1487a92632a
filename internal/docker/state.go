package docker

// State is the class a container's reported state falls into.
type State int

const (
	// StateOther covers every state that isn't exactly "running" or
	// "exited": created, paused, restarting, removing, dead, and any
	// unrecognized or malformed text.
	StateOther State = iota
	StateRunning
	StateExited
)

// String returns the docker state word for the class.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	default:
		return "other"
	}
}

// ParseState classifies one line of `docker ps --format '{{.State}}'`
// output. Matching is exact: no trimming, no case folding.
func ParseState(line string) State {
	switch line {
	case "running":
		return StateRunning
	case "exited":
		return StateExited
	default:
		return StateOther
	}
}
