package transcript

import (
	"errors"
	"fmt"
)

// ConfigError reports invalid segmentation bounds.
type ConfigError struct {
	MinSpaces int
	MaxSpaces int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf(
		"invalid segment bounds min=%d max=%d: both must be positive and min <= max",
		e.MinSpaces,
		e.MaxSpaces,
	)
}

// ErrUnsupportedOperation is returned for operations the input format cannot
// support, such as slicing untimed text.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// ValidateBounds checks segmentation bounds before any work starts.
func ValidateBounds(minSpaces, maxSpaces int) error {
	if minSpaces <= 0 || maxSpaces <= 0 || minSpaces > maxSpaces {
		return &ConfigError{MinSpaces: minSpaces, MaxSpaces: maxSpaces}
	}
	return nil
}

// Split groups units greedily by the space count of their joined text.
//
// A segment is closed as soon as its count lands in [minSpaces, maxSpaces],
// or early when the next unit would push it past maxSpaces. Units are never
// split: a unit that alone exceeds maxSpaces becomes its own segment, and
// the final segment may fall short of minSpaces.
func Split(units []Unit, minSpaces, maxSpaces int) ([]Segment, error) {
	if err := ValidateBounds(minSpaces, maxSpaces); err != nil {
		return nil, err
	}

	var (
		groups  [][]Unit
		current []Unit
		tokens  int
	)

	closeCurrent := func() {
		if len(current) == 0 {
			return
		}
		groups = append(groups, current)
		current = nil
		tokens = 0
	}

	for i, u := range units {
		current = append(current, u)
		tokens += tokenCount(u.Text)
		spaces := spacesFor(tokens)

		if spaces >= minSpaces && spaces <= maxSpaces {
			closeCurrent()
			continue
		}
		if spaces > maxSpaces {
			closeCurrent()
			continue
		}
		if i+1 < len(units) && spacesFor(tokens+tokenCount(units[i+1].Text)) > maxSpaces {
			closeCurrent()
		}
	}
	closeCurrent()

	segments := make([]Segment, len(groups))
	for i, group := range groups {
		segments[i] = newSegment(i+1, len(groups), group)
	}
	return segments, nil
}

func newSegment(index, total int, units []Unit) Segment {
	seg := Segment{
		Index: index,
		Total: total,
		Units: units,
		Timed: len(units) > 0,
	}
	for i, u := range units {
		if !u.Timed {
			seg.Timed = false
		}
		if i == 0 || u.Start < seg.Start {
			seg.Start = u.Start
		}
		if i == 0 || u.End > seg.End {
			seg.End = u.End
		}
	}
	if !seg.Timed {
		seg.Start, seg.End = 0, 0
	}
	return seg
}

func spacesFor(tokens int) int {
	if tokens == 0 {
		return 0
	}
	return tokens - 1
}

// Slice returns the units overlapping [start, end], boundaries inclusive,
// in their original order. Every unit must carry time information.
func Slice(units []Unit, start, end float64) ([]Unit, error) {
	if start > end {
		return nil, fmt.Errorf("slice window start %.3fs is after end %.3fs", start, end)
	}
	for _, u := range units {
		if !u.Timed {
			return nil, fmt.Errorf("%w: slicing requires timed input (srt or timestamped)", ErrUnsupportedOperation)
		}
	}

	var out []Unit
	for _, u := range units {
		if u.End >= start && u.Start <= end {
			out = append(out, u)
		}
	}
	return out, nil
}
