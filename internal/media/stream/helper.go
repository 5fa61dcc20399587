// Package stream copies chunked transcoder output to clients.
package stream

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/attaebra/tuner-ffmpeg/internal/interfaces"
)

// Helper copies chunk sources to writers.
type Helper struct{}

// NewHelper creates a new stream helper.
func NewHelper() *Helper {
	return &Helper{}
}

// CopyChunks writes every chunk from src to dst until src is exhausted, a write
// fails or ctx ends. dst is flushed after each chunk when it is an http.Flusher.
// activity, if non-nil, is called with the size of each chunk written. A source
// ending with io.EOF is not an error. Cancellation is only observed between
// chunks; sources that block should watch ctx themselves.
func (h *Helper) CopyChunks(ctx context.Context, dst io.Writer, src interfaces.ChunkSource, activity func(n int)) (int64, error) {
	flusher, _ := dst.(http.Flusher)

	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		chunk, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return written, nil
			}
			return written, err
		}

		n, err := dst.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}
		if flusher != nil {
			flusher.Flush()
		}
		if activity != nil {
			activity(n)
		}
	}
}
