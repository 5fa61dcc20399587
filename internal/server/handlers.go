package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/attaebra/tuner-ffmpeg/internal/constants"
	"github.com/attaebra/tuner-ffmpeg/internal/logger"
	"github.com/attaebra/tuner-ffmpeg/internal/media/ffmpeg"
	"github.com/attaebra/tuner-ffmpeg/internal/media/transcoder"
	"github.com/attaebra/tuner-ffmpeg/internal/tuner"
	"github.com/attaebra/tuner-ffmpeg/internal/utils"
)

// parseStreamRequest builds a stream request from the query string:
// url (required), transcode, duration (seconds) and repeated header=Name:Value.
func (s *Server) parseStreamRequest(r *http.Request) (*ffmpeg.StreamRequest, error) {
	q := r.URL.Query()

	req := &ffmpeg.StreamRequest{
		StreamInfo:       ffmpeg.StreamInfo{URL: q.Get("url")},
		TranscodeQuality: q.Get("transcode"),
		BytesPerRead:     s.opts.BytesPerRead,
	}
	if req.StreamInfo.URL == "" {
		return nil, errors.New("missing url")
	}

	if d := q.Get("duration"); d != "" {
		seconds, err := strconv.ParseFloat(d, 64)
		if err != nil || seconds < 0 {
			return nil, fmt.Errorf("invalid duration %q", d)
		}
		req.Duration = seconds
	}

	for _, h := range q["header"] {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q", h)
		}
		req.StreamInfo.Headers = append(req.StreamInfo.Headers, ffmpeg.Header{Name: name, Value: strings.TrimSpace(value)})
	}

	return req, nil
}

// writeTuneError reports err to the client, using the HDHomeRun error header for tune failures.
func writeTuneError(w http.ResponseWriter, err error) {
	var te *tuner.Error
	if errors.As(err, &te) {
		w.Header().Set(constants.HeaderHDHomeRunError, te.Error())
		http.Error(w, te.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Error(w, "Tune failed", http.StatusInternalServerError)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseStreamRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session := uuid.New().String()
	log := logger.WithComponent("server").With().Str("session", session).Str("remote", r.RemoteAddr).Logger()

	lease, err := s.opts.Pool.Acquire(session, req.StreamInfo.URL)
	if err != nil {
		log.Warn().Err(err).Msg("No tuner available")
		writeTuneError(w, err)
		return
	}
	defer lease.Release()
	log = log.With().Int("tuner", lease.Number()).Logger()

	adapter, err := transcoder.New(s.opts.Transcoder, req, lease)
	if err != nil {
		writeTuneError(w, err)
		return
	}

	st, err := adapter.Get(r.Context())
	if err != nil {
		writeTuneError(w, err)
		return
	}
	defer utils.CloseWithLogging(st, "ffmpeg stream")

	log.Info().Str("url", req.StreamInfo.URL).Str("quality", req.TranscodeQuality).Int("pid", st.Pid()).Msg("Streaming")
	start := time.Now()

	w.Header().Set("Content-Type", constants.ContentTypeStream)
	w.WriteHeader(http.StatusOK)

	n, err := s.helper.CopyChunks(r.Context(), w, st, lease.AddBytes)
	switch {
	case err == nil:
	case utils.IsClientDisconnect(err), errors.Is(err, context.Canceled):
		log.Debug().Err(err).Msg("Client went away")
	default:
		log.Error().Err(err).Msg("Stream ended with error")
	}

	log.Info().Int64("bytes", n).Dur("duration", time.Since(start)).Msg("Stream finished")
}

func (s *Server) handleReleaseTuner(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		http.Error(w, "invalid tuner number", http.StatusBadRequest)
		return
	}

	t := s.opts.Pool.Get(n)
	if t == nil {
		http.NotFound(w, r)
		return
	}

	logger.Info("Releasing tuner %d on request from %s", n, r.RemoteAddr)
	t.Release()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	statuses := s.opts.Pool.Statuses()
	active := 0
	for _, st := range statuses {
		if st.Held {
			active++
		}
	}

	var b strings.Builder
	b.WriteString("Tuner Status\n")
	b.WriteString("============\n")
	fmt.Fprintf(&b, "FFmpeg Version: %s\n", s.opts.Versions.Version(constants.TranscoderName))
	fmt.Fprintf(&b, "Active Streams: %d/%d\n", active, len(statuses))
	fmt.Fprintf(&b, "Uptime: %s\n\n", time.Since(s.started).Truncate(time.Second))

	b.WriteString("Tuner  Duration (s)  Bytes        Session                               URL\n")
	b.WriteString("---------------------------------------------------------------------------------------\n")
	for _, st := range statuses {
		if !st.Held {
			fmt.Fprintf(&b, "%-6d %-13s %s\n", st.Number, "-", "idle")
			continue
		}
		fmt.Fprintf(&b, "%-6d %-13.2f %-12d %-37s %s\n", st.Number, time.Since(st.Since).Seconds(), st.Bytes, st.Session, st.URL)
	}

	w.Header().Set("Content-Type", constants.ContentTypeText)
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) handleVersions(w http.ResponseWriter, _ *http.Request) {
	_ = utils.WriteJSONResponse(w, s.opts.Versions.All())
}

type discovery struct {
	FriendlyName string `json:"FriendlyName"`
	DeviceID     string `json:"DeviceID"`
	TunerCount   int    `json:"TunerCount"`
	BaseURL      string `json:"BaseURL"`
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSONResponse(w, discovery{
		FriendlyName: "tuner-ffmpeg",
		DeviceID:     s.opts.DeviceID,
		TunerCount:   len(s.opts.Pool.Statuses()),
		BaseURL:      "http://" + r.Host,
	})
}
