package progress

import (
	"fmt"
	"strings"
)

// State of an artifact as found at the start of a run.
type State string

const (
	StateNew        State = "new"
	StateProcessing State = "processing"
	StateFailed     State = "failed"
	StateComplete   State = "complete"
	// content without a marker; Next is an estimate
	StateLegacy State = "legacy"
)

// Resume says where a run should continue.
type Resume struct {
	State State
	// Next is the 1-based segment to process; Total+1 when nothing is left.
	Next int
	// Blocks is the number of blocks already in the artifact.
	Blocks int
}

// Done reports whether every segment is already in the artifact.
func (r Resume) Done(total int) bool {
	return r.Next > total
}

// MismatchError means the artifact was produced with a different segment
// count than the current run computed.
type MismatchError struct {
	Path        string
	MarkerTotal int
	Total       int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf(
		"%s was written for %d segments but the input now has %d; segment bounds changed, remove the file or use the original bounds",
		e.Path,
		e.MarkerTotal,
		e.Total,
	)
}

// InvalidMarkerError means the marker names a segment outside 1..Total, or
// claims completion before the last segment.
type InvalidMarkerError struct {
	Path   string
	Marker Marker
}

func (e *InvalidMarkerError) Error() string {
	return fmt.Sprintf(
		"%s has an unusable progress marker %q; remove the marker line or the file to start over",
		e.Path,
		e.Marker.String(),
	)
}

// ResumePoint inspects the artifact at path for a run of total segments.
func ResumePoint(path string, total int) (Resume, error) {
	content, err := readContent(path)
	if err != nil {
		return Resume{}, err
	}
	if strings.TrimSpace(content) == "" {
		return Resume{State: StateNew, Next: 1}, nil
	}

	body, marker := splitMarker(content)
	blocks := len(blockHeaderPattern.FindAllStringIndex(body, -1))

	if marker == nil {
		next := blocks + 1
		if blocks == 0 {
			// paragraph count, as artifacts without block headers were written
			next = strings.Count(strings.TrimSpace(body), "\n\n") + 2
		}
		if next > total+1 {
			next = total + 1
		}
		return Resume{State: StateLegacy, Next: next, Blocks: blocks}, nil
	}

	if marker.Total != total {
		return Resume{}, &MismatchError{Path: path, MarkerTotal: marker.Total, Total: total}
	}
	if marker.Segment < 1 || marker.Segment > marker.Total ||
		(marker.Status == StatusComplete && marker.Segment != marker.Total) {
		return Resume{}, &InvalidMarkerError{Path: path, Marker: *marker}
	}

	switch marker.Status {
	case StatusComplete:
		return Resume{State: StateComplete, Next: total + 1, Blocks: blocks}, nil
	case StatusFailed:
		return Resume{State: StateFailed, Next: marker.Segment, Blocks: blocks}, nil
	default:
		return Resume{State: StateProcessing, Next: marker.Segment, Blocks: blocks}, nil
	}
}
