package ffmpeg

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Header is one HTTP header forwarded to the stream source.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered header list. In JSON it is an object; key order is preserved.
type Headers []Header

// UnmarshalJSON decodes a JSON object, keeping its key order.
func (h *Headers) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*h = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("headers: expected object, got %v", tok)
	}

	out := Headers{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("headers: value for %v: %w", keyTok, err)
		}
		value, err := headerValue(raw)
		if err != nil {
			return fmt.Errorf("headers: value for %v: %w", keyTok, err)
		}
		out = append(out, Header{Name: keyTok.(string), Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*h = out
	return nil
}

// headerValue formats a scalar JSON value as header text. Numbers and booleans
// keep their JSON spelling and null becomes empty.
func headerValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case '{', '[':
		return "", fmt.Errorf("expected a scalar, got %s", raw)
	}
	if string(raw) == "null" {
		return "", nil
	}
	return string(raw), nil
}

// MarshalJSON encodes the headers as a JSON object in list order.
func (h Headers) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, header := range h {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(header.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(header.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// StreamInfo describes the upstream source.
type StreamInfo struct {
	URL     string  `json:"url"`
	Headers Headers `json:"headers,omitempty"`
}

// StreamRequest is one client's request for a stream.
type StreamRequest struct {
	StreamInfo StreamInfo `json:"stream_info"`
	// Duration limits the stream to this many seconds. Zero means unlimited.
	Duration float64 `json:"duration,omitempty"`
	// TranscodeQuality names the profile to use.
	TranscodeQuality string `json:"transcode_quality,omitempty"`
	// BytesPerRead is the maximum chunk size read from ffmpeg.
	BytesPerRead int `json:"bytes_per_read"`
}
