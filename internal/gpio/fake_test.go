package gpio

import (
	"strings"
	"testing"
	"time"

	"github.com/sweeney/motor-sensor/internal/logic"
)

func TestFakeButtonsPress(t *testing.T) {
	var got []logic.ButtonEdge
	f := NewFakeButtons(func(e logic.ButtonEdge) { got = append(got, e) })

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.Press(logic.ButtonPower, now)
	f.Press(logic.ButtonTripClose, now.Add(time.Second))

	if len(got) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(got))
	}
	if got[0].Button != logic.ButtonPower || !got[0].Time.Equal(now) {
		t.Errorf("edge 0: got %+v", got[0])
	}
	if got[1].Button != logic.ButtonTripClose {
		t.Errorf("edge 1: got %+v", got[1])
	}
	if len(f.Delivered()) != 2 {
		t.Errorf("Delivered: got %d, want 2", len(f.Delivered()))
	}
}

func TestFakeButtonsBounceThroughMachine(t *testing.T) {
	m := logic.NewMachine(logic.DefaultConfig())
	f := NewFakeButtons(func(e logic.ButtonEdge) { m.Press(e) })

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	// Five edges 20ms apart: one press as far as the machine is concerned.
	f.Bounce(logic.ButtonPower, now, 5, 20*time.Millisecond)

	if len(f.Delivered()) != 5 {
		t.Errorf("Delivered: got %d, want 5", len(f.Delivered()))
	}
	if m.Snapshot().State != logic.StateStopped {
		t.Errorf("State: got %s, want STOPPED", m.Snapshot().State)
	}
}

func TestDefaultPinsValid(t *testing.T) {
	if err := DefaultPins().Validate(); err != nil {
		t.Errorf("default pins should be valid: %v", err)
	}
}

func TestPinsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(p *Pins)
		wantErr string
	}{
		{"negative", func(p *Pins) { p.LEDB = -1 }, "invalid number"},
		{"duplicate", func(p *Pins) { p.Trip = p.Power }, "used for both power and trip"},
		{"buzzer clash", func(p *Pins) { p.Buzzer = p.LEDR }, "used for both buzzer and led-r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPins()
			tt.modify(&p)
			err := p.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}
