package osometweet

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tidwall/gjson"
)

// maxStreamLine bounds a single stream message. Longer lines are dropped.
const maxStreamLine = 4 << 20

// Stream is a lazy, in-order, non-restartable sequence of newline-delimited
// JSON messages. Empty keep-alive lines, lines that are not JSON and lines
// over 4 MiB are skipped. The caller must Close it.
type Stream struct {
	endpoint string
	body     io.ReadCloser
	r        *bufio.Reader
	buf      []byte
	line     []byte
	err      error
	logger   *slog.Logger

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

func newStream(endpoint string, body io.ReadCloser, logger *slog.Logger) *Stream {
	return &Stream{
		endpoint: endpoint,
		body:     body,
		r:        bufio.NewReaderSize(body, 64<<10),
		logger:   logger,
	}
}

// Next advances to the next JSON message. It returns false once the body is
// exhausted or closed.
func (s *Stream) Next() bool {
	s.line = nil
	for s.err == nil {
		raw, tooLong, err := s.readLine()
		if err != nil {
			if s.closed.Load() {
				err = io.EOF
			}
			s.err = err
		}
		if tooLong {
			s.logger.Warn("skipping oversized stream line",
				slog.String("endpoint", s.endpoint),
				slog.Int("limit", maxStreamLine))
			continue
		}
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			s.logger.Debug("skipping non-JSON stream line",
				slog.String("endpoint", s.endpoint),
				slog.String("line", truncateBytes(line, 100)))
			continue
		}
		s.line = line
		return true
	}
	return false
}

// readLine reads up to the next newline into s.buf. A line longer than
// maxStreamLine is drained without being kept and reported as tooLong.
func (s *Stream) readLine() ([]byte, bool, error) {
	s.buf = s.buf[:0]
	tooLong := false
	for {
		chunk, err := s.r.ReadSlice('\n')
		if !tooLong {
			if len(s.buf)+len(chunk) > maxStreamLine {
				tooLong = true
				s.buf = s.buf[:0]
			} else {
				s.buf = append(s.buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return s.buf, tooLong, err
	}
}

// Bytes returns the current raw message. It is only valid until the next
// call to Next.
func (s *Stream) Bytes() []byte { return s.line }

// Data returns the message's "data" member, or nil if it has none.
func (s *Stream) Data() json.RawMessage {
	r := gjson.GetBytes(s.line, "data")
	if !r.Exists() {
		return nil
	}
	return json.RawMessage(r.Raw)
}

// Envelope decodes the current message.
func (s *Stream) Envelope() (*Envelope, error) {
	return parseEnvelope(s.endpoint, bytes.Clone(s.line))
}

// Err returns the first read error. Errors caused by Close are not reported.
func (s *Stream) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}

// Close releases the connection. It is safe to call more than once.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}
