// Package progress tracks how far a streaming run got by keeping a marker
// line at the end of the output artifact itself.
package progress

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Status of the segment named by a marker.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

const markerPrefix = "<!-- PROCESSING: segment="

// markers are short, so only the tail of the artifact is inspected
const tailSize = 1024

var markerPattern = regexp.MustCompile(
	`^<!-- PROCESSING: segment=(\d+)/(\d+), status=(processing|complete|failed) -->$`,
)

// Marker is the progress line kept at the end of an artifact.
// Segment is 1-based; every segment before it is complete.
type Marker struct {
	Segment int
	Total   int
	Status  Status
}

func (m Marker) String() string {
	return fmt.Sprintf("%s%d/%d, status=%s -->", markerPrefix, m.Segment, m.Total, m.Status)
}

// ParseMarker parses a single marker line.
func ParseMarker(line string) (Marker, bool) {
	match := markerPattern.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil {
		return Marker{}, false
	}
	segment, err := strconv.Atoi(match[1])
	if err != nil {
		return Marker{}, false
	}
	total, err := strconv.Atoi(match[2])
	if err != nil {
		return Marker{}, false
	}
	return Marker{Segment: segment, Total: total, Status: Status(match[3])}, true
}

// ReadMarker returns the trailing marker of the artifact at path, or nil if
// the file does not exist or ends without one.
func ReadMarker(path string) (*Marker, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat artifact: %w", err)
	}
	offset := info.Size() - tailSize
	if offset < 0 {
		offset = 0
	}
	tail := make([]byte, info.Size()-offset)
	if _, err := f.ReadAt(tail, offset); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read artifact tail: %w", err)
	}

	_, marker := splitMarker(string(tail))
	return marker, nil
}

// WriteMarker replaces any trailing marker of the artifact with m.
// The artifact is created if it does not exist.
func WriteMarker(path string, m Marker) error {
	content, err := readContent(path)
	if err != nil {
		return err
	}
	body, _ := splitMarker(content)
	return writeAtomic(path, withMarker(body, m))
}

// splitMarker separates a trailing marker line from the rest of content.
// The returned body has the newline that preceded the marker removed.
func splitMarker(content string) (string, *Marker) {
	trimmed := strings.TrimRight(content, " \t\n")
	idx := strings.LastIndex(trimmed, "\n")
	last := trimmed[idx+1:]
	marker, ok := ParseMarker(last)
	if !ok {
		return content, nil
	}
	if idx < 0 {
		return "", &marker
	}
	return trimmed[:idx+1], &marker
}

func withMarker(body string, m Marker) string {
	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return body + m.String() + "\n"
}
