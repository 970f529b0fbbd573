package mqtt

import (
	"log"
	"sync"
)

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO that stores messages while disconnected.
// When full, the oldest message is overwritten.
// Not safe for concurrent use; the caller must synchronize.
type ringBuffer struct {
	buf      []bufferedMsg
	capacity int
	head     int // next write position
	count    int
	dropped  int  // messages overwritten since creation
	overflow bool // true if any message was dropped since last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{
		buf:      make([]bufferedMsg, capacity),
		capacity: capacity,
	}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	if r.count == r.capacity {
		if !r.overflow {
			log.Printf("mqtt: buffer full (%d messages), dropping oldest", r.capacity)
			r.overflow = true
		}
		r.dropped++
		// head already points at the oldest entry
		r.buf[r.head] = msg
		r.head = (r.head + 1) % r.capacity
		return
	}
	r.buf[r.head] = msg
	r.head = (r.head + 1) % r.capacity
	r.count++
}

// drainAll returns buffered messages oldest first and empties the buffer.
func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}

	result := make([]bufferedMsg, r.count)
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}

	r.count = 0
	r.head = 0
	r.overflow = false
	return result
}

func (r *ringBuffer) len() int {
	return r.count
}

// outbox sends messages while the connection is up and parks them in a
// ring buffer while it is down. flush replays parked messages in order.
// Messages never overtake older parked ones: while a flush is running, or
// while anything is still parked, new messages join the back of the buffer.
type outbox struct {
	mu        sync.Mutex
	buf       *ringBuffer
	flushing  bool
	connected func() bool
	send      func(bufferedMsg) error
}

func newOutbox(capacity int, connected func() bool, send func(bufferedMsg) error) *outbox {
	return &outbox{
		buf:       newRingBuffer(capacity),
		connected: connected,
		send:      send,
	}
}

// deliver sends msg now, or buffers it if disconnected or if the send fails.
func (o *outbox) deliver(msg bufferedMsg) error {
	o.mu.Lock()
	if !o.connected() || o.flushing {
		o.buf.push(msg)
		o.mu.Unlock()
		return nil
	}
	if o.buf.len() > 0 {
		o.buf.push(msg)
		o.mu.Unlock()
		_, err := o.flush()
		return err
	}
	o.mu.Unlock()

	if err := o.send(msg); err != nil {
		o.park(msg)
		return err
	}
	return nil
}

func (o *outbox) park(msg bufferedMsg) {
	o.mu.Lock()
	o.buf.push(msg)
	o.mu.Unlock()
}

// flush replays buffered messages oldest first, including any parked while
// it runs. On the first failure the unsent remainder goes back into the
// buffer ahead of newer messages. A flush already in progress makes this
// call a no-op.
func (o *outbox) flush() (int, error) {
	o.mu.Lock()
	if o.flushing {
		o.mu.Unlock()
		return 0, nil
	}
	o.flushing = true
	o.mu.Unlock()

	sent := 0
	for {
		o.mu.Lock()
		msgs := o.buf.drainAll()
		if len(msgs) == 0 {
			o.flushing = false
			o.mu.Unlock()
			return sent, nil
		}
		o.mu.Unlock()

		for i, msg := range msgs {
			if err := o.send(msg); err != nil {
				o.mu.Lock()
				newer := o.buf.drainAll()
				for _, rest := range msgs[i:] {
					o.buf.push(rest)
				}
				for _, m := range newer {
					o.buf.push(m)
				}
				o.flushing = false
				o.mu.Unlock()
				return sent, err
			}
			sent++
		}
	}
}

// pending returns the number of buffered messages and how many were dropped.
func (o *outbox) pending() (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.len(), o.buf.dropped
}
