// Package buffer provides pooled chunk buffers and a bounded tail for transcoder diagnostics.
package buffer

import (
	"github.com/valyala/bytebufferpool"
)

// Manager hands out read buffers for stream chunks.
type Manager struct {
	// Buffer pool for memory efficiency
	BufferPool *bytebufferpool.Pool

	// TailSize is the capacity of tails created by NewTail.
	TailSize int
}

// DefaultTailSize keeps the last 8KB of transcoder stderr.
const DefaultTailSize = 8 * 1024

// NewManager creates a new buffer manager.
func NewManager(tailSize int) *Manager {
	if tailSize <= 0 {
		tailSize = DefaultTailSize
	}
	return &Manager{
		BufferPool: &bytebufferpool.Pool{},
		TailSize:   tailSize,
	}
}

// GetReadBuffer gets a buffer of exactly size bytes from the pool.
func (m *Manager) GetReadBuffer(size int) *bytebufferpool.ByteBuffer {
	buf := m.BufferPool.Get()
	if cap(buf.B) < size {
		buf.B = make([]byte, size)
	} else {
		buf.B = buf.B[:size]
	}
	return buf
}

// ReleaseBuffer returns a buffer to the pool.
func (m *Manager) ReleaseBuffer(buf *bytebufferpool.ByteBuffer) {
	if buf == nil {
		return
	}
	buf.Reset()
	m.BufferPool.Put(buf)
}

// NewTail creates a tail with the manager's capacity.
func (m *Manager) NewTail() *Tail {
	return NewTail(m.TailSize)
}
