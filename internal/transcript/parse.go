package transcript

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/streamscribe-ai/streamscribe/internal/timecode"
)

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// Parse converts raw content of the given format into ordered units.
// Malformed cues and stray lines are reported as warnings and skipped.
func Parse(raw string, format Format) ([]Unit, []Warning) {
	raw = strings.TrimPrefix(raw, "\ufeff")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	switch format {
	case FormatSRT:
		return parseSRT(raw)
	case FormatTimestamped:
		return parseTimestamped(raw)
	default:
		return parsePlain(raw), nil
	}
}

type block struct {
	line  int
	lines []string
}

func parseSRT(raw string) ([]Unit, []Warning) {
	var (
		units    []Unit
		warnings []Warning
		current  *block
	)

	flush := func() {
		if current == nil {
			return
		}
		unit, warn := parseCue(*current)
		if warn != nil {
			warnings = append(warnings, *warn)
		} else {
			units = append(units, unit)
		}
		current = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current == nil {
			current = &block{line: lineNum}
		}
		current.lines = append(current.lines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		warnings = append(warnings, Warning{Line: lineNum, Reason: fmt.Sprintf("read stopped early: %v", err)})
	}

	return units, warnings
}

func parseCue(b block) (Unit, *Warning) {
	lines := b.lines
	timeLine := b.line

	if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err == nil {
		lines = lines[1:]
		timeLine++
	}
	if len(lines) == 0 || !strings.Contains(lines[0], "-->") {
		return Unit{}, &Warning{Line: b.line, Reason: "cue has no time line"}
	}

	parts := strings.SplitN(lines[0], "-->", 2)
	startToken := strings.TrimSpace(parts[0])
	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return Unit{}, &Warning{Line: timeLine, Reason: "cue has no end time"}
	}

	start, err := timecode.Parse(startToken)
	if err != nil {
		return Unit{}, &Warning{Line: timeLine, Reason: err.Error()}
	}
	end, err := timecode.Parse(endFields[0])
	if err != nil {
		return Unit{}, &Warning{Line: timeLine, Reason: err.Error()}
	}
	if start > end {
		return Unit{}, &Warning{
			Line:   timeLine,
			Reason: fmt.Sprintf("cue starts after it ends (%s > %s)", startToken, endFields[0]),
		}
	}

	text := NormalizeWhitespace(strings.Join(lines[1:], " "))
	if text == "" {
		return Unit{}, &Warning{Line: timeLine, Reason: "cue has no text"}
	}

	return Unit{Start: start, End: end, Timed: true, Text: text}, nil
}

func parseTimestamped(raw string) ([]Unit, []Warning) {
	var (
		units    []Unit
		warnings []Warning
		current  *Unit
		text     []string
		// text after an inverted timestamp has no unit to join
		rejected bool
	)

	flush := func(lineNum int) {
		if current == nil {
			return
		}
		current.Text = NormalizeWhitespace(strings.Join(text, " "))
		if current.Text == "" {
			warnings = append(warnings, Warning{Line: lineNum, Reason: "timestamp has no text"})
		} else {
			units = append(units, *current)
		}
		current = nil
		text = nil
	}

	appendText := func(lineNum int, s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if current == nil {
			reason := "text before the first timestamp dropped"
			if rejected {
				reason = "text of a rejected timestamp dropped"
			}
			warnings = append(warnings, Warning{Line: lineNum, Reason: reason})
			return
		}
		text = append(text, s)
	}

	for i, line := range strings.Split(raw, "\n") {
		lineNum := i + 1
		pos := 0
		for _, m := range bracketPattern.FindAllStringSubmatchIndex(line, -1) {
			appendText(lineNum, line[pos:m[0]])
			pos = m[1]

			startToken, endToken := line[m[2]:m[3]], line[m[4]:m[5]]
			start, errStart := timecode.Parse(startToken)
			end, errEnd := timecode.Parse(endToken)
			switch {
			case errStart != nil:
				warnings = append(warnings, Warning{Line: lineNum, Reason: errStart.Error()})
				continue
			case errEnd != nil:
				warnings = append(warnings, Warning{Line: lineNum, Reason: errEnd.Error()})
				continue
			}

			flush(lineNum)
			if start > end {
				warnings = append(warnings, Warning{
					Line:   lineNum,
					Reason: fmt.Sprintf("timestamp starts after it ends (%s > %s)", startToken, endToken),
				})
				rejected = true
				continue
			}
			rejected = false
			current = &Unit{Start: start, End: end, Timed: true}
		}
		appendText(lineNum, line[pos:])
	}
	flush(strings.Count(raw, "\n") + 1)

	return units, warnings
}

func parsePlain(raw string) []Unit {
	var units []Unit
	for _, chunk := range paragraphBreak.Split(raw, -1) {
		text := NormalizeWhitespace(chunk)
		if text == "" {
			continue
		}
		units = append(units, Unit{Text: text})
	}
	return units
}
