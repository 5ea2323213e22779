package transcript

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleSRT = `1
00:00:00,690 --> 00:00:04,130
Hello

2
00:00:04,810 --> 00:00:07,490
World
`

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Format
	}{
		{"srt", sampleSRT, FormatSRT},
		{"srt with bom and crlf", "\ufeff" + strings.ReplaceAll(sampleSRT, "\n", "\r\n"), FormatSRT},
		{"bracketed clock", "[00:00:00.690 --> 00:00:04.130] Hello\n", FormatTimestamped},
		{"bracketed seconds", "[0.5s --> 2.3s] Hello\n", FormatTimestamped},
		{"brackets that are not times", "[see --> above] Hello\n", FormatPlain},
		{"plain", "Just some text.\n\nAnother paragraph.", FormatPlain},
		{"empty", "", FormatPlain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.input); got != tt.want {
				t.Errorf("Detect() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDetectOnlySamplesHead(t *testing.T) {
	raw := strings.Repeat("filler text ", 400) + "\n[0.5s --> 2.3s] late"
	if got := Detect(raw); got != FormatPlain {
		t.Errorf("expected a timestamp past the sample to be ignored, got %s", got)
	}
}

func TestParseSRT(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:04,000
Hello,   world!

2
00:00:05,500 --> 00:00:08,200
This is a test.
With multiple lines.

3
abc --> def
Broken cue.

4
00:00:10,000 --> 00:00:09,000
Backwards.

5
00:00:12,000 --> 00:00:12,500
Final subtitle.
`
	units, warnings := Parse(content, FormatSRT)

	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %d: %+v", len(units), units)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}

	if units[0].Text != "Hello, world!" {
		t.Errorf("unit 0: expected normalised text, got %q", units[0].Text)
	}
	if units[1].Text != "This is a test. With multiple lines." {
		t.Errorf("unit 1: expected joined lines, got %q", units[1].Text)
	}
	if math.Abs(units[1].Start-5.5) > 1e-9 || math.Abs(units[1].End-8.2) > 1e-9 {
		t.Errorf("unit 1: expected 5.5-8.2, got %v-%v", units[1].Start, units[1].End)
	}
	for i, u := range units {
		if !u.Timed {
			t.Errorf("unit %d: expected timed", i)
		}
	}
	if warnings[0].Line != 11 {
		t.Errorf("expected first warning on line 11, got %d", warnings[0].Line)
	}
}

func TestParseTimestamped(t *testing.T) {
	content := "intro before any time\n" +
		"[00:00:00.690 --> 00:00:04.130] Hello\n" +
		"[0.5s --> 2.3s] World\n" +
		"continued here\n" +
		"[1m --> 1m5s] one [1m5s --> 1m10s] two\n"

	units, warnings := Parse(content, FormatTimestamped)

	want := []Unit{
		{Start: 0.69, End: 4.13, Timed: true, Text: "Hello"},
		{Start: 0.5, End: 2.3, Timed: true, Text: "World continued here"},
		{Start: 60, End: 65, Timed: true, Text: "one"},
		{Start: 65, End: 70, Timed: true, Text: "two"},
	}
	if len(units) != len(want) {
		t.Fatalf("expected %d units, got %d: %+v", len(want), len(units), units)
	}
	for i := range want {
		if units[i].Text != want[i].Text {
			t.Errorf("unit %d: text %q, want %q", i, units[i].Text, want[i].Text)
		}
		if math.Abs(units[i].Start-want[i].Start) > 1e-9 || math.Abs(units[i].End-want[i].End) > 1e-9 {
			t.Errorf("unit %d: span %v-%v, want %v-%v", i, units[i].Start, units[i].End, want[i].Start, want[i].End)
		}
	}

	if len(warnings) != 1 || warnings[0].Line != 1 {
		t.Errorf("expected one warning on line 1, got %v", warnings)
	}
}

func TestParseTimestampedInvertedRange(t *testing.T) {
	content := "[5s --> 2s] lost words\n" +
		"more lost words\n" +
		"[6s --> 7s] kept\n"

	units, warnings := Parse(content, FormatTimestamped)
	if len(units) != 1 || units[0].Text != "kept" {
		t.Fatalf("units = %+v", units)
	}

	want := []Warning{
		{Line: 1, Reason: "timestamp starts after it ends (5s > 2s)"},
		{Line: 1, Reason: "text of a rejected timestamp dropped"},
		{Line: 2, Reason: "text of a rejected timestamp dropped"},
	}
	if len(warnings) != len(want) {
		t.Fatalf("warnings = %v, want %v", warnings, want)
	}
	for i := range want {
		if warnings[i] != want[i] {
			t.Errorf("warning %d = %+v, want %+v", i, warnings[i], want[i])
		}
	}
}

func TestParsePlain(t *testing.T) {
	content := "First   paragraph\nwraps here.\n\n  \n\nSecond paragraph.\n \nThird."
	units, warnings := Parse(content, FormatPlain)

	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	want := []string{"First paragraph wraps here.", "Second paragraph.", "Third."}
	if len(units) != len(want) {
		t.Fatalf("expected %d units, got %d", len(want), len(units))
	}
	for i, w := range want {
		if units[i].Text != w {
			t.Errorf("unit %d: %q, want %q", i, units[i].Text, w)
		}
		if units[i].Timed {
			t.Errorf("unit %d: plain units must be untimed", i)
		}
	}
}

func TestParseIsIdempotent(t *testing.T) {
	first, _ := Parse(sampleSRT, FormatSRT)
	second, _ := Parse(sampleSRT, FormatSRT)
	if len(first) != len(second) {
		t.Fatalf("unit counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("unit %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSpaceCount(t *testing.T) {
	tests := []struct {
		units []Unit
		want  int
	}{
		{nil, 0},
		{[]Unit{{Text: "Hello"}}, 0},
		{[]Unit{{Text: "Hello"}, {Text: "World"}}, 1},
		{[]Unit{{Text: "a b c"}, {Text: "d"}}, 3},
	}

	for _, tt := range tests {
		if got := SpaceCount(tt.units); got != tt.want {
			t.Errorf("SpaceCount(%v) = %d, want %d", tt.units, got, tt.want)
		}
	}
}

func TestReadFile(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"utf8", []byte("héllo\r\nworld"), "héllo\nworld"},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("hi")...), "hi"},
		{"gbk", []byte{0xD6, 0xD0, 0xCE, 0xC4}, "中文"},
		{"latin1", []byte("caf\xe9"), "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "input.txt")
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatalf("failed to write test file: %v", err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadFile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.srt")); err == nil {
		t.Error("expected error for missing file")
	}
}
