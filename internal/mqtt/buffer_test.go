package mqtt

import (
	"errors"
	"testing"
)

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(10)
	got := rb.drainAll()
	if got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestRingBufferPushAndDrain(t *testing.T) {
	rb := newRingBuffer(10)
	for i := 0; i < 5; i++ {
		rb.push(bufferedMsg{topic: "t", payload: []byte{byte(i)}})
	}

	got := rb.drainAll()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}

	// Second drain should be empty
	got2 := rb.drainAll()
	if got2 != nil {
		t.Errorf("expected nil from second drain, got %d items", len(got2))
	}
}

func TestRingBufferOverflow(t *testing.T) {
	size := 5
	rb := newRingBuffer(size)

	// 0..7 in, the most recent 5 (3..7) survive
	for i := 0; i < size+3; i++ {
		rb.push(bufferedMsg{topic: "t", payload: []byte{byte(i)}})
	}
	if rb.dropped != 3 {
		t.Errorf("dropped: got %d, want 3", rb.dropped)
	}

	got := rb.drainAll()
	if len(got) != size {
		t.Fatalf("expected %d items, got %d", size, len(got))
	}
	for i := 0; i < size; i++ {
		want := byte(i + 3) // oldest 3 were dropped
		if got[i].payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, got[i].payload[0])
		}
	}
}

func TestRingBufferMultipleCycles(t *testing.T) {
	rb := newRingBuffer(5)

	// Cycle 1: push 3, drain
	for i := 0; i < 3; i++ {
		rb.push(bufferedMsg{topic: "t", payload: []byte{byte(i)}})
	}
	got := rb.drainAll()
	if len(got) != 3 {
		t.Fatalf("cycle 1: expected 3 items, got %d", len(got))
	}

	// Cycle 2: push 4, drain
	for i := 10; i < 14; i++ {
		rb.push(bufferedMsg{topic: "t", payload: []byte{byte(i)}})
	}
	got = rb.drainAll()
	if len(got) != 4 {
		t.Fatalf("cycle 2: expected 4 items, got %d", len(got))
	}
	for i, msg := range got {
		want := byte(10 + i)
		if msg.payload[0] != want {
			t.Errorf("cycle 2 item %d: expected %d, got %d", i, want, msg.payload[0])
		}
	}
}

func TestRingBufferLen(t *testing.T) {
	rb := newRingBuffer(10)
	if rb.len() != 0 {
		t.Errorf("expected len 0, got %d", rb.len())
	}

	rb.push(bufferedMsg{topic: "t"})
	rb.push(bufferedMsg{topic: "t"})
	if rb.len() != 2 {
		t.Errorf("expected len 2, got %d", rb.len())
	}

	rb.drainAll()
	if rb.len() != 0 {
		t.Errorf("expected len 0 after drain, got %d", rb.len())
	}
}

func TestRingBufferPreservesFields(t *testing.T) {
	rb := newRingBuffer(10)
	rb.push(bufferedMsg{
		topic:    "vehicle/test",
		payload:  []byte(`{"test":true}`),
		qos:      1,
		retained: true,
	})

	got := rb.drainAll()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].topic != "vehicle/test" {
		t.Errorf("topic: got %s, want vehicle/test", got[0].topic)
	}
	if string(got[0].payload) != `{"test":true}` {
		t.Errorf("payload: got %s", got[0].payload)
	}
	if got[0].qos != 1 {
		t.Errorf("qos: got %d, want 1", got[0].qos)
	}
	if !got[0].retained {
		t.Error("retained: got false, want true")
	}
}

// link is a scripted connection for outbox tests.
type link struct {
	up     bool
	failAt int // 1-based send index that fails; 0 never fails
	sends  int
	sent   []byte

	// during, if set, runs inside every send before it completes.
	during func(n int)
}

func (l *link) connected() bool { return l.up }

func (l *link) send(msg bufferedMsg) error {
	l.sends++
	if l.during != nil {
		l.during(l.sends)
	}
	if l.sends == l.failAt {
		return errors.New("broker went away")
	}
	l.sent = append(l.sent, msg.payload[0])
	return nil
}

func TestOutboxSendsWhenConnected(t *testing.T) {
	l := &link{up: true}
	o := newOutbox(4, l.connected, l.send)

	if err := o.deliver(bufferedMsg{payload: []byte{1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l.sent) != 1 {
		t.Fatalf("expected 1 sent, got %d", len(l.sent))
	}
	if n, _ := o.pending(); n != 0 {
		t.Errorf("expected nothing buffered, got %d", n)
	}
}

func TestOutboxBuffersWhileDisconnected(t *testing.T) {
	l := &link{}
	o := newOutbox(4, l.connected, l.send)

	for i := 1; i <= 3; i++ {
		if err := o.deliver(bufferedMsg{payload: []byte{byte(i)}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if l.sends != 0 {
		t.Errorf("expected no sends while down, got %d", l.sends)
	}
	if n, _ := o.pending(); n != 3 {
		t.Fatalf("expected 3 buffered, got %d", n)
	}

	l.up = true
	n, err := o.flush()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 replayed, got %d", n)
	}
	want := []byte{1, 2, 3}
	if string(l.sent) != string(want) {
		t.Errorf("replay order: got %v, want %v", l.sent, want)
	}
}

func TestOutboxFailedSendIsBuffered(t *testing.T) {
	l := &link{up: true, failAt: 1}
	o := newOutbox(4, l.connected, l.send)

	if err := o.deliver(bufferedMsg{payload: []byte{7}}); err == nil {
		t.Fatal("expected error")
	}
	if n, _ := o.pending(); n != 1 {
		t.Errorf("expected failed message buffered, got %d", n)
	}
}

func TestOutboxFlushKeepsRemainderOnFailure(t *testing.T) {
	l := &link{}
	o := newOutbox(8, l.connected, l.send)
	for i := 1; i <= 4; i++ {
		o.deliver(bufferedMsg{payload: []byte{byte(i)}})
	}

	l.up = true
	l.failAt = 3
	n, err := o.flush()
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 2 {
		t.Errorf("expected 2 replayed before failure, got %d", n)
	}
	if left, _ := o.pending(); left != 2 {
		t.Fatalf("expected 2 left, got %d", left)
	}

	if _, err := o.flush(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{1, 2, 3, 4}
	if string(l.sent) != string(want) {
		t.Errorf("replay order: got %v, want %v", l.sent, want)
	}
}

func TestOutboxReportsDropped(t *testing.T) {
	l := &link{}
	o := newOutbox(2, l.connected, l.send)
	for i := 0; i < 5; i++ {
		o.deliver(bufferedMsg{payload: []byte{byte(i)}})
	}

	n, dropped := o.pending()
	if n != 2 || dropped != 3 {
		t.Errorf("pending: got (%d, %d), want (2, 3)", n, dropped)
	}
}

func TestOutboxParksNewMessagesDuringFlush(t *testing.T) {
	l := &link{}
	o := newOutbox(8, l.connected, l.send)
	for i := 1; i <= 3; i++ {
		o.deliver(bufferedMsg{payload: []byte{byte(i)}})
	}

	// A publish that lands while the replay is on its first message.
	l.up = true
	l.during = func(n int) {
		if n == 1 {
			if err := o.deliver(bufferedMsg{payload: []byte{9}}); err != nil {
				t.Errorf("deliver during flush: %v", err)
			}
		}
	}

	n, err := o.flush()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 replayed, got %d", n)
	}
	want := []byte{1, 2, 3, 9}
	if string(l.sent) != string(want) {
		t.Errorf("send order: got %v, want %v", l.sent, want)
	}
}

func TestOutboxNewMessageWaitsBehindParked(t *testing.T) {
	l := &link{up: true, failAt: 1}
	o := newOutbox(4, l.connected, l.send)

	if err := o.deliver(bufferedMsg{payload: []byte{1}}); err == nil {
		t.Fatal("expected error")
	}
	if err := o.deliver(bufferedMsg{payload: []byte{2}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{1, 2}
	if string(l.sent) != string(want) {
		t.Errorf("send order: got %v, want %v", l.sent, want)
	}
	if left, _ := o.pending(); left != 0 {
		t.Errorf("expected nothing buffered, got %d", left)
	}
}

func TestOutboxFailedFlushKeepsNewerBehindOlder(t *testing.T) {
	l := &link{}
	o := newOutbox(8, l.connected, l.send)
	for i := 1; i <= 3; i++ {
		o.deliver(bufferedMsg{payload: []byte{byte(i)}})
	}

	l.up = true
	l.failAt = 2
	l.during = func(n int) {
		if n == 1 {
			o.deliver(bufferedMsg{payload: []byte{9}})
		}
	}
	if _, err := o.flush(); err == nil {
		t.Fatal("expected error")
	}

	l.during = nil
	if _, err := o.flush(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{1, 2, 3, 9}
	if string(l.sent) != string(want) {
		t.Errorf("send order: got %v, want %v", l.sent, want)
	}
}
