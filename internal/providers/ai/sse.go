package ai

import (
	"bufio"
	"io"
	"strings"
)

// sseEvent is one server-sent event. Data holds the joined data lines,
// Name the optional "event:" field.
type sseEvent struct {
	Name string
	Data string
}

// sseReader reads server-sent events off a response body. Lines that
// are not part of the protocol are skipped rather than failing the
// whole stream.
type sseReader struct {
	scanner *bufio.Scanner
}

func newSSEReader(r io.Reader) *sseReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseReader{scanner: sc}
}

// Next returns the next event, or io.EOF when the stream ends.
func (r *sseReader) Next() (sseEvent, error) {
	var ev sseEvent
	var data []string
	for r.scanner.Scan() {
		line := strings.TrimRight(r.scanner.Text(), "\r")
		switch {
		case line == "":
			if len(data) > 0 || ev.Name != "" {
				ev.Data = strings.Join(data, "\n")
				return ev, nil
			}
		case strings.HasPrefix(line, "event:"):
			ev.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if err := r.scanner.Err(); err != nil {
		return sseEvent{}, err
	}
	if len(data) > 0 || ev.Name != "" {
		ev.Data = strings.Join(data, "\n")
		return ev, nil
	}
	return sseEvent{}, io.EOF
}
