package docker

import (
	"bufio"
	"bytes"
	"fmt"
)

// Tally summarizes container states on one host.
// Total always equals Up + Down + Failed.
type Tally struct {
	Total  int
	Up     int // running
	Down   int // exited
	Failed int // anything else
}

// Add counts one container in the given state.
func (t *Tally) Add(s State) {
	t.Total++
	switch s {
	case StateRunning:
		t.Up++
	case StateExited:
		t.Down++
	default: // StateOther
		t.Failed++
	}
}

// Validate checks the counters are consistent.
func (t Tally) Validate() error {
	if t.Total < 0 || t.Up < 0 || t.Down < 0 || t.Failed < 0 {
		return fmt.Errorf("negative container count in %+v", t)
	}
	if t.Total != t.Up+t.Down+t.Failed {
		return fmt.Errorf("container total %d != up %d + down %d + failed %d",
			t.Total, t.Up, t.Down, t.Failed)
	}
	return nil
}

// Reduce counts one container per non-empty output line. Empty lines,
// including trailing ones, are ignored; a trailing \r is stripped.
func Reduce(output []byte) Tally {
	var t Tally

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), len(output)+1)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		t.Add(ParseState(line))
	}

	return t
}
