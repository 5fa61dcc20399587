package buffer

import (
	"sync"

	"github.com/smallnest/ringbuffer"
)

// Tail is an io.Writer that keeps only the most recent bytes written to it.
type Tail struct {
	mu   sync.Mutex
	ring *ringbuffer.RingBuffer
}

// NewTail creates a tail holding at most size bytes.
func NewTail(size int) *Tail {
	return &Tail{ring: ringbuffer.New(size)}
}

// Write appends p, discarding the oldest bytes when full. It never fails.
func (t *Tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(p)
	capacity := t.ring.Capacity()
	if len(p) > capacity {
		p = p[len(p)-capacity:]
	}

	if over := len(p) - t.ring.Free(); over > 0 {
		discard := make([]byte, over)
		_, _ = t.ring.Read(discard)
	}

	if len(p) > 0 {
		_, _ = t.ring.Write(p)
	}
	return n, nil
}

// Bytes returns a copy of the retained bytes.
func (t *Tail) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	length := t.ring.Length()
	if length == 0 {
		return nil
	}

	out := make([]byte, length)
	n, _ := t.ring.Read(out)
	out = out[:n]
	_, _ = t.ring.Write(out)
	return out
}

// String returns the retained bytes as text.
func (t *Tail) String() string {
	return string(t.Bytes())
}
