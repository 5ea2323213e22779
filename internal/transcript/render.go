package transcript

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/streamscribe-ai/streamscribe/internal/timecode"
)

var banner = strings.Repeat("=", 60)

// PlainText is the whitespace-normalised text of all units, time stripped.
func PlainText(units []Unit) string {
	return JoinText(units)
}

// RenderPlain writes the plain-text preprocess artifact.
func RenderPlain(w io.Writer, text, sourceName string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nPlain text\n%s\n\n", banner, banner)
	b.WriteString(text)
	fmt.Fprintf(&b, "\n\n%s\nDone\n%s\n", banner, banner)
	fmt.Fprintf(&b, "Characters: %d\n", utf8.RuneCountInString(text))
	fmt.Fprintf(&b, "Source: %s\n", sourceName)
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSegments writes one banner-headed block per segment, each starting
// with the segment's time range.
func RenderSegments(w io.Writer, segments []Segment) error {
	var b strings.Builder
	for _, seg := range segments {
		fmt.Fprintf(&b, "%s\nSegment %d/%d\n%s\n", banner, seg.Index, seg.Total, banner)
		fmt.Fprintf(&b, "%s\n%s\n\n", timecode.FormatSpan(seg.Start, seg.End, seg.Timed), seg.Text())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSlice writes the slice artifact: the normalised window, the window as
// the user typed it, then one line per unit.
func RenderSlice(w io.Writer, units []Unit, start, end float64, rawStart, rawEnd string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nSlice\n%s\n", banner, banner)
	fmt.Fprintf(&b, "Range: %s\n", timecode.FormatRange(start, end))
	fmt.Fprintf(&b, "Requested: %s --> %s\n", rawStart, rawEnd)
	fmt.Fprintf(&b, "\n%s\nContent\n%s\n\n", banner, banner)
	for _, u := range units {
		fmt.Fprintf(&b, "%s %s\n\n", timecode.FormatRange(u.Start, u.End), u.Text)
	}
	fmt.Fprintf(&b, "%s\nDone\n%s\n", banner, banner)
	fmt.Fprintf(&b, "Units: %d\n", len(units))
	_, err := io.WriteString(w, b.String())
	return err
}
