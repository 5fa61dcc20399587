package transcoder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/bytebufferpool"

	"github.com/attaebra/tuner-ffmpeg/internal/interfaces"
	"github.com/attaebra/tuner-ffmpeg/internal/logger"
	"github.com/attaebra/tuner-ffmpeg/internal/media/buffer"
	"github.com/attaebra/tuner-ffmpeg/internal/metrics"
	"github.com/attaebra/tuner-ffmpeg/internal/procgroup"
)

// ErrTranscoderFailed is wrapped by errors from an ffmpeg that could not start or
// that exited with a failure status on its own.
var ErrTranscoderFailed = errors.New("transcoder failed")

// ExitError reports an ffmpeg that ended its output and exited non-zero without
// being stopped by the stream.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("ffmpeg exited with status %d", e.Code)
	if line := lastLine(e.Stderr); line != "" {
		msg += ": " + line
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return ErrTranscoderFailed
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\r\n")
	if i := strings.LastIndexAny(s, "\r\n"); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

var _ interfaces.ChunkSource = (*Stream)(nil)

type streamConfig struct {
	proc         *process
	lock         interfaces.LockSource
	buffers      *buffer.Manager
	tail         *buffer.Tail
	bytesPerRead int
	bufferSize   int
	grace        time.Duration
}

// Stream is the output of one ffmpeg process. Next must not be called
// concurrently; Close may be called from any goroutine.
type Stream struct {
	ctx     context.Context
	proc    *process
	lock    interfaces.LockSource
	reader  *bufio.Reader
	buffers *buffer.Manager
	tail    *buffer.Tail
	grace   time.Duration
	log     zerolog.Logger

	stopCtx func() bool

	mu           sync.Mutex
	buf          *bytebufferpool.ByteBuffer
	bytesPerRead int
	done         bool
	err          error

	teardownOnce sync.Once
	stopped      chan struct{}
	reason       string
	waitErr      error
	signalled    bool
}

func newStream(ctx context.Context, cfg streamConfig) *Stream {
	s := &Stream{
		ctx:          ctx,
		proc:         cfg.proc,
		lock:         cfg.lock,
		reader:       bufio.NewReaderSize(cfg.proc.stdout, cfg.bufferSize),
		buffers:      cfg.buffers,
		tail:         cfg.tail,
		grace:        cfg.grace,
		buf:          cfg.buffers.GetReadBuffer(cfg.bytesPerRead),
		bytesPerRead: cfg.bytesPerRead,
		stopped:      make(chan struct{}),
		log:          logger.WithComponent("transcoder").With().Int("pid", cfg.proc.cmd.Process.Pid).Logger(),
	}
	s.stopCtx = context.AfterFunc(ctx, func() {
		s.teardown(metrics.ExitCanceled)
	})
	return s
}

// Pid returns the ffmpeg process id.
func (s *Stream) Pid() int {
	return s.proc.cmd.Process.Pid
}

// Next returns the next chunk of at most bytes_per_read bytes. The slice is only
// valid until the following call to Next or Close. At the end of the stream it
// returns io.EOF, the context's error if the context ended it, or an *ExitError
// if ffmpeg failed on its own.
func (s *Stream) Next() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return nil, s.err
	}

	if !s.lock.IsHeld() {
		s.log.Info().Msg("Tuner lock released, stopping ffmpeg")
		s.teardown(metrics.ExitLockReleased)
		return nil, s.finishLocked(nil)
	}
	if s.ctx.Err() != nil {
		s.teardown(metrics.ExitCanceled)
		return nil, s.finishLocked(nil)
	}

	n, err := io.ReadFull(s.reader, s.buf.B[:s.bytesPerRead])
	if n > 0 {
		metrics.AddBytes(n)
		return s.buf.B[:n], nil
	}

	s.teardown(metrics.ExitEOF)
	return nil, s.finishLocked(err)
}

// Close stops ffmpeg if it is still running and releases the stream's buffer.
// It unblocks a pending Next and is safe to call more than once.
func (s *Stream) Close() error {
	s.teardown(metrics.ExitClosed)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.done {
		s.finishLocked(nil)
	}
	return nil
}

// Chunks returns the stream as a sequence. A non-EOF error is yielded once as the
// final element. The stream is closed when the sequence ends or the loop breaks.
func (s *Stream) Chunks() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		defer s.Close()
		for {
			chunk, err := s.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(nil, err)
				}
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// teardown stops ffmpeg exactly once. reason is recorded by the first caller;
// later callers block until the first has finished.
func (s *Stream) teardown(reason string) {
	s.teardownOnce.Do(func() {
		s.reason = reason
		_ = s.proc.stdout.Close()

		if reason == metrics.ExitEOF {
			timer := time.NewTimer(s.grace)
			select {
			case s.waitErr = <-s.proc.waitCh:
			case <-timer.C:
				s.log.Warn().Msg("ffmpeg closed its output but did not exit, terminating")
				s.signalled = true
				s.waitErr = procgroup.Terminate(s.proc.cmd, s.proc.waitCh, s.grace)
			}
			timer.Stop()
		} else {
			s.signalled = true
			s.waitErr = procgroup.Terminate(s.proc.cmd, s.proc.waitCh, s.grace)
		}

		recorded := reason
		if reason == metrics.ExitEOF && !s.signalled && s.waitErr != nil {
			recorded = metrics.ExitFailed
		}
		metrics.IncExit(recorded)
		s.log.Debug().Str("reason", recorded).Err(s.waitErr).Msg("ffmpeg stopped")
		close(s.stopped)
	})
	<-s.stopped
}

// finishLocked marks the stream done, releases its buffer and records the
// terminal error. readErr is the read failure that ended a natural stream.
func (s *Stream) finishLocked(readErr error) error {
	s.stopCtx()
	s.done = true
	s.buffers.ReleaseBuffer(s.buf)
	s.buf = nil
	s.err = s.result(readErr)
	return s.err
}

func (s *Stream) result(readErr error) error {
	switch s.reason {
	case metrics.ExitCanceled:
		return s.ctx.Err()
	case metrics.ExitEOF:
	default:
		return io.EOF
	}

	if !s.signalled && s.waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(s.waitErr, &exitErr) {
			err := &ExitError{Code: exitErr.ExitCode(), Stderr: s.tail.String()}
			s.log.Error().Int("code", err.Code).Str("stderr", lastLine(err.Stderr)).Msg("ffmpeg failed")
			return err
		}
		return fmt.Errorf("%w: %w", ErrTranscoderFailed, s.waitErr)
	}

	if readErr != nil && !errors.Is(readErr, io.EOF) && !errors.Is(readErr, io.ErrUnexpectedEOF) {
		return fmt.Errorf("read ffmpeg output: %w", readErr)
	}
	return io.EOF
}
