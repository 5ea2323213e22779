package transcript

import (
	"fmt"
	"strings"
)

// input format, decided by Detect
type Format string

const (
	FormatSRT         Format = "srt"
	FormatTimestamped Format = "timestamped"
	FormatPlain       Format = "plain"
)

// Timed reports whether units parsed from this format carry time bounds.
func (f Format) Timed() bool {
	return f == FormatSRT || f == FormatTimestamped
}

// Unit is one atomic timed span of source text: a subtitle cue, a bracketed
// transcript line, or a plain-text paragraph (untimed).
type Unit struct {
	Start float64
	End   float64
	Timed bool
	Text  string
}

// Segment is a contiguous run of units processed as one piece of work.
// Index is 1-based; Total is the same on every segment of one run.
type Segment struct {
	Index int
	Total int
	Units []Unit
	Start float64
	End   float64
	Timed bool
}

// Text joins the segment's unit texts with single spaces.
func (s Segment) Text() string {
	return JoinText(s.Units)
}

// Spaces is the space count of the segment's joined text.
func (s Segment) Spaces() int {
	return SpaceCount(s.Units)
}

// Warning describes input that was skipped without aborting the parse.
type Warning struct {
	Line   int
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Reason)
}

// NormalizeWhitespace trims and collapses every whitespace run to one space.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// JoinText concatenates unit texts separated by single spaces.
func JoinText(units []Unit) string {
	parts := make([]string, 0, len(units))
	for _, u := range units {
		if u.Text != "" {
			parts = append(parts, u.Text)
		}
	}
	return strings.Join(parts, " ")
}

// SpaceCount is the number of separating spaces in the joined text of units,
// i.e. whitespace-delimited tokens minus one.
func SpaceCount(units []Unit) int {
	tokens := 0
	for _, u := range units {
		tokens += tokenCount(u.Text)
	}
	if tokens == 0 {
		return 0
	}
	return tokens - 1
}

func tokenCount(s string) int {
	return len(strings.Fields(s))
}
