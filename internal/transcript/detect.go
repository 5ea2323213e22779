package transcript

import (
	"regexp"
	"strings"

	"github.com/streamscribe-ai/streamscribe/internal/timecode"
)

// detection only looks at the head of the file
const detectSampleSize = 2000

var (
	srtCuePattern = regexp.MustCompile(
		`(?m)^\s*\d+[ \t]*\n[ \t]*\d{2}:\d{2}:\d{2},\d{3}[ \t]*-->[ \t]*\d{2}:\d{2}:\d{2},\d{3}`,
	)
	// [<time> --> <time>]
	bracketPattern = regexp.MustCompile(`\[\s*([^\[\]\s]+)\s*-->\s*([^\[\]\s]+)\s*\]`)
)

// Detect classifies raw content as SRT, bracket-timestamped or plain text.
// Anything that is neither SRT nor carries a parseable bracket range is
// plain, so detection never fails.
func Detect(raw string) Format {
	sample := detectionSample(raw)

	if srtCuePattern.MatchString(sample) {
		return FormatSRT
	}

	for _, m := range bracketPattern.FindAllStringSubmatch(sample, -1) {
		if _, err := timecode.Parse(m[1]); err != nil {
			continue
		}
		if _, err := timecode.Parse(m[2]); err != nil {
			continue
		}
		return FormatTimestamped
	}

	return FormatPlain
}

func detectionSample(raw string) string {
	raw = strings.TrimPrefix(raw, "\ufeff")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	if len(raw) <= detectSampleSize {
		return raw
	}
	// back off to a rune boundary
	cut := detectSampleSize
	for cut > 0 && !isRuneStart(raw[cut]) {
		cut--
	}
	return raw[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
