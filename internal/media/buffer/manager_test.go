package buffer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferManager(t *testing.T) {
	manager := NewManager(0)
	assert.Equal(t, DefaultTailSize, manager.TailSize)

	buf := manager.GetReadBuffer(64)
	require.Len(t, buf.B, 64)
	manager.ReleaseBuffer(buf)

	// A recycled buffer is resized to the requested length.
	buf = manager.GetReadBuffer(16)
	assert.Len(t, buf.B, 16)
	manager.ReleaseBuffer(buf)

	buf = manager.GetReadBuffer(1024)
	assert.Len(t, buf.B, 1024)
	manager.ReleaseBuffer(buf)

	manager.ReleaseBuffer(nil)
}

func TestTailKeepsMostRecentBytes(t *testing.T) {
	tail := NewTail(10)

	n, err := tail.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", tail.String())

	_, _ = tail.Write([]byte(" world"))
	assert.Equal(t, "ello world", tail.String())

	// Reading does not consume.
	assert.Equal(t, "ello world", tail.String())

	n, _ = tail.Write([]byte(strings.Repeat("x", 25) + "0123456789"))
	assert.Equal(t, 35, n)
	assert.Equal(t, "0123456789", tail.String())
}

func TestTailEmpty(t *testing.T) {
	tail := NewManager(32).NewTail()
	assert.Nil(t, tail.Bytes())
	assert.Equal(t, "", tail.String())
}
