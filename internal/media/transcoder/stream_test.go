package transcoder

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamNaturalEnd(t *testing.T) {
	h := newHarness(t, "printf 'abcdefghij'")

	s := h.start(t, request("", 4))
	chunks, err := collect(t, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, chunks)
	requireReaped(t, s)

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamStopsWhenLockReleased(t *testing.T) {
	h := newHarness(t, "exec yes")
	s := h.start(t, request("", 64))

	for range 3 {
		chunk, err := s.Next()
		require.NoError(t, err)
		assert.Len(t, chunk, 64)
	}

	h.lock.held.Store(false)
	chunk, err := s.Next()
	assert.Nil(t, chunk)
	assert.ErrorIs(t, err, io.EOF)
	requireReaped(t, s)

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamLockReleasedBeforeFirstRead(t *testing.T) {
	h := newHarness(t, "exec yes")
	s := h.start(t, request("", 64))

	h.lock.held.Store(false)
	chunks, err := collect(t, s)
	require.NoError(t, err)
	assert.Empty(t, chunks)
	requireReaped(t, s)
}

func TestStreamExitError(t *testing.T) {
	h := newHarness(t, "printf 'x'; echo 'Invalid data found when processing input' >&2; exit 3")
	s := h.start(t, request("", 64))

	chunk, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "x", string(chunk))

	_, err = s.Next()
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Contains(t, exitErr.Stderr, "Invalid data found")
	assert.ErrorIs(t, err, ErrTranscoderFailed)
	assert.Equal(t, "ffmpeg exited with status 3: Invalid data found when processing input", err.Error())

	_, again := s.Next()
	assert.Equal(t, err, again)
}

func TestChunksYieldsExitError(t *testing.T) {
	h := newHarness(t, "exit 1")

	chunks, err := collect(t, h.start(t, request("", 64)))
	assert.Empty(t, chunks)
	assert.ErrorIs(t, err, ErrTranscoderFailed)
}

func TestStreamStopIgnoresExitStatus(t *testing.T) {
	h := newHarness(t, "trap 'exit 9' TERM; while :; do printf 'y'; sleep 0.01; done")
	s := h.start(t, request("", 1))

	_, err := s.Next()
	require.NoError(t, err)

	h.lock.held.Store(false)
	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamCloseUnblocksPendingRead(t *testing.T) {
	h := newHarness(t, "exec sleep 30")
	s := h.start(t, request("", 64))

	result := make(chan error, 1)
	go func() {
		_, err := s.Next()
		result <- err
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, s.Close())

	select {
	case err := <-result:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(5 * time.Second):
		t.Fatal("Next did not return after Close")
	}
	requireReaped(t, s)
	assert.NoError(t, s.Close())
}

func TestChunksBreakTerminatesProcess(t *testing.T) {
	h := newHarness(t, "exec yes")
	s := h.start(t, request("", 32))

	n := 0
	for chunk, err := range s.Chunks() {
		require.NoError(t, err)
		assert.Len(t, chunk, 32)
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
	requireReaped(t, s)
}

func TestStreamContextCancel(t *testing.T) {
	h := newHarness(t, "exec yes")
	a, err := New(h.deps, request("", 64), h.lock)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := a.Get(ctx)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Next()
	require.NoError(t, err)
	cancel()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("stream did not end after cancel")
		default:
		}
		if _, err = s.Next(); err != nil {
			break
		}
	}
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	requireReaped(t, s)
}
