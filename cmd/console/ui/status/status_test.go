package status

import (
	"testing"

	"github.com/boulder-sim/boulder/internal/simulation"
)

func TestLabel(t *testing.T) {
	got := Label(simulation.Running, 0.42)
	if got != "running  42%" {
		t.Fatalf("Label()=%q, want %q", got, "running  42%")
	}
}

func TestToneOf(t *testing.T) {
	tests := []struct {
		name string
		in   simulation.State
		want Tone
	}{
		{name: "idle", in: simulation.Idle, want: ToneIdle},
		{name: "running", in: simulation.Running, want: ToneRunning},
		{name: "completed", in: simulation.Completed, want: ToneSuccess},
		{name: "failed", in: simulation.Failed, want: ToneFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToneOf(tt.in); got != tt.want {
				t.Fatalf("ToneOf(%v)=%d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
