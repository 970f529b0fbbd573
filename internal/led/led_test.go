package led

import (
	"errors"
	"testing"

	"github.com/sweeney/motor-sensor/internal/logic"
)

func TestForState(t *testing.T) {
	tests := []struct {
		state logic.MotorState
		want  Color
	}{
		{logic.StateOff, Dark},
		{logic.StateMoving, Green},
		{logic.StateStopped, Yellow},
		{logic.StateIdle, Red},
		{logic.MotorState(""), Dark},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := ForState(tt.state); got != tt.want {
				t.Errorf("ForState(%q): got %+v, want %+v", tt.state, got, tt.want)
			}
		})
	}
}

func TestBlueNeverUsed(t *testing.T) {
	for _, s := range []logic.MotorState{logic.StateOff, logic.StateMoving, logic.StateStopped, logic.StateIdle} {
		if ForState(s).B {
			t.Errorf("%s: blue should be off", s)
		}
	}
}

func TestFakeRecords(t *testing.T) {
	f := &Fake{}

	if f.Last() != Dark {
		t.Error("expected Dark before any Set")
	}

	f.Set(Green)
	f.Set(Red)

	if got := f.Colors(); len(got) != 2 || got[0] != Green || got[1] != Red {
		t.Errorf("Colors: got %+v", got)
	}
	if f.Last() != Red {
		t.Errorf("Last: got %+v, want Red", f.Last())
	}
}

func TestFakeError(t *testing.T) {
	f := &Fake{SetError: errors.New("simulated error")}

	if err := f.Set(Green); err == nil {
		t.Error("expected error to be returned")
	}
	if len(f.Colors()) != 0 {
		t.Error("failed Set should not be recorded")
	}
}
