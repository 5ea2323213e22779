package pipeline

import "fmt"

// SegmentFailedError is returned when a segment's transform still fails after
// every attempt. The artifact is left with a failed marker for that segment.
type SegmentFailedError struct {
	Index    int
	Total    int
	Attempts int
	Err      error
}

func (e *SegmentFailedError) Error() string {
	return fmt.Sprintf("segment %d/%d failed after %d attempts: %v", e.Index, e.Total, e.Attempts, e.Err)
}

func (e *SegmentFailedError) Unwrap() error {
	return e.Err
}

// MergeFailedError is returned when the final merge transform fails after
// every attempt. Per-segment output is kept.
type MergeFailedError struct {
	Attempts int
	Err      error
}

func (e *MergeFailedError) Error() string {
	return fmt.Sprintf("merge failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *MergeFailedError) Unwrap() error {
	return e.Err
}
