package status

import (
	"fmt"

	"github.com/boulder-sim/boulder/internal/simulation"
)

// Tone is the colour family a session state is drawn with.
type Tone int

const (
	ToneIdle Tone = iota
	ToneRunning
	ToneSuccess
	ToneFailure
)

// ToneOf maps a session state to its tone.
func ToneOf(s simulation.State) Tone {
	switch s {
	case simulation.Running:
		return ToneRunning
	case simulation.Completed:
		return ToneSuccess
	case simulation.Failed:
		return ToneFailure
	default:
		return ToneIdle
	}
}

// Label is the footer text of a session state. pct is only shown while
// running.
func Label(s simulation.State, pct float64) string {
	switch s {
	case simulation.Running:
		return fmt.Sprintf("running %3.0f%%", pct*100)
	case simulation.Completed:
		return "completed"
	case simulation.Failed:
		return "failed"
	default:
		return "idle"
	}
}
