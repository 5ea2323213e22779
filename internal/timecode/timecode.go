package timecode

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParseError reports a time token that no grammar accepts or whose
// components are out of range.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time %q: %s", e.Input, e.Reason)
}

var (
	// HH:MM:SS,mmm; bracketed transcripts use '.' before the millis
	clockPattern   = regexp.MustCompile(`^(\d+):(\d{1,2}):(\d{1,2})[,.](\d{1,3})$`)
	minSecPattern  = regexp.MustCompile(`^(\d+):(\d{1,2})$`)
	barePattern    = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	compoundSuffix = regexp.MustCompile(`^(\d+)m(\d+(?:\.\d+)?)s$`)
	minuteSuffix   = regexp.MustCompile(`^(\d+(?:\.\d+)?)m$`)
	secondSuffix   = regexp.MustCompile(`^(\d+(?:\.\d+)?)s$`)
)

// Parse converts a time token into seconds. Grammars are tried in order:
// HH:MM:SS,mmm, MM:SS, bare seconds, <N>m<N>s, <N>m, <N>s.
func Parse(text string) (float64, error) {
	token := strings.TrimSpace(text)
	if token == "" {
		return 0, &ParseError{Input: text, Reason: "empty value"}
	}
	if strings.HasPrefix(token, "-") {
		return 0, &ParseError{Input: text, Reason: "negative values are not allowed"}
	}

	if m := clockPattern.FindStringSubmatch(token); m != nil {
		parts, err := parseInts(text, m[1:]...)
		if err != nil {
			return 0, err
		}
		hours, minutes, seconds, millis := parts[0], parts[1], parts[2], parts[3]
		if minutes >= 60 {
			return 0, &ParseError{Input: text, Reason: fmt.Sprintf("minutes %d out of range", minutes)}
		}
		if seconds >= 60 {
			return 0, &ParseError{Input: text, Reason: fmt.Sprintf("seconds %d out of range", seconds)}
		}
		return float64(hours)*3600 + float64(minutes*60+seconds) + float64(millis)/1000, nil
	}

	if m := minSecPattern.FindStringSubmatch(token); m != nil {
		parts, err := parseInts(text, m[1:]...)
		if err != nil {
			return 0, err
		}
		minutes, seconds := parts[0], parts[1]
		if seconds >= 60 {
			return 0, &ParseError{Input: text, Reason: fmt.Sprintf("seconds %d out of range", seconds)}
		}
		return float64(minutes)*60 + float64(seconds), nil
	}

	if barePattern.MatchString(token) {
		return parseFloat(text, token)
	}

	if m := compoundSuffix.FindStringSubmatch(token); m != nil {
		parts, err := parseInts(text, m[1])
		if err != nil {
			return 0, err
		}
		minutes := parts[0]
		seconds, err := parseFloat(text, m[2])
		if err != nil {
			return 0, err
		}
		if seconds >= 60 {
			return 0, &ParseError{Input: text, Reason: fmt.Sprintf("seconds %s out of range", m[2])}
		}
		return float64(minutes)*60 + seconds, nil
	}

	if m := minuteSuffix.FindStringSubmatch(token); m != nil {
		minutes, err := parseFloat(text, m[1])
		if err != nil {
			return 0, err
		}
		return minutes * 60, nil
	}

	if m := secondSuffix.FindStringSubmatch(token); m != nil {
		return parseFloat(text, m[1])
	}

	return 0, &ParseError{Input: text, Reason: "unrecognised format (use SS, MM:SS, HH:MM:SS,mmm, Nm or Ns)"}
}

// parseInts converts regexp-matched digit runs, rejecting values that do not
// fit in an int.
func parseInts(input string, digits ...string) ([]int, error) {
	values := make([]int, len(digits))
	for i, d := range digits {
		v, err := strconv.Atoi(d)
		if err != nil {
			return nil, &ParseError{Input: input, Reason: "value out of range"}
		}
		values[i] = v
	}
	return values, nil
}

func parseFloat(input, digits string) (float64, error) {
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, &ParseError{Input: input, Reason: err.Error()}
	}
	if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &ParseError{Input: input, Reason: "value out of range"}
	}
	return v, nil
}

// Format renders seconds as "1m30.5s", or "42.0s" below one minute.
// The value is rounded to tenths before it is split so identical input
// always yields identical output.
func Format(seconds float64) string {
	if seconds < 0 {
		return "-" + Format(-seconds)
	}
	tenths := int64(math.Round(seconds * 10))
	minutes := tenths / 600
	rem := tenths % 600
	if minutes > 0 {
		return fmt.Sprintf("%dm%d.%ds", minutes, rem/10, rem%10)
	}
	return fmt.Sprintf("%d.%ds", rem/10, rem%10)
}

// FormatRange renders "[<start> - <end>]".
func FormatRange(start, end float64) string {
	return "[" + Format(start) + " - " + Format(end) + "]"
}

// FormatSpan is FormatRange for spans that may carry no time at all.
func FormatSpan(start, end float64, timed bool) string {
	if !timed {
		return "[time unknown]"
	}
	return FormatRange(start, end)
}
