package progress

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestMarkerString(t *testing.T) {
	m := Marker{Segment: 2, Total: 5, Status: StatusProcessing}
	want := "<!-- PROCESSING: segment=2/5, status=processing -->"
	if m.String() != want {
		t.Errorf("String() = %q, want %q", m.String(), want)
	}

	parsed, ok := ParseMarker("  " + want + "  ")
	if !ok || parsed != m {
		t.Errorf("ParseMarker() = %+v, %v", parsed, ok)
	}

	for _, line := range []string{
		"<!-- PROCESSING: segment=2/5, status=paused -->",
		"<!-- PROCESSING: segment=x/5, status=failed -->",
		"segment=2/5, status=failed",
	} {
		if _, ok := ParseMarker(line); ok {
			t.Errorf("ParseMarker(%q) accepted a bad line", line)
		}
	}
}

func TestReadMarkerMissing(t *testing.T) {
	dir := t.TempDir()

	m, err := ReadMarker(filepath.Join(dir, "absent.md"))
	if err != nil || m != nil {
		t.Errorf("missing file: got %v, %v", m, err)
	}

	path := filepath.Join(dir, "plain.md")
	if err := os.WriteFile(path, []byte("some text\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	m, err = ReadMarker(path)
	if err != nil || m != nil {
		t.Errorf("file without marker: got %v, %v", m, err)
	}
}

func TestWriteMarkerReplacesTrailingMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")

	for i := 1; i <= 3; i++ {
		if err := WriteMarker(path, Marker{Segment: i, Total: 3, Status: StatusProcessing}); err != nil {
			t.Fatalf("WriteMarker: %v", err)
		}
	}
	if err := WriteMarker(path, Marker{Segment: 3, Total: 3, Status: StatusComplete}); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}

	content := readFile(t, path)
	if strings.Count(content, markerPrefix) != 1 {
		t.Errorf("expected exactly one marker, got:\n%s", content)
	}

	m, err := ReadMarker(path)
	if err != nil {
		t.Fatalf("ReadMarker: %v", err)
	}
	if m == nil || *m != (Marker{Segment: 3, Total: 3, Status: StatusComplete}) {
		t.Errorf("ReadMarker() = %+v", m)
	}
}

func TestReadMarkerLargeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.md")
	if err := WriteSegmentResult(path, Block{Index: 1, Total: 2, Body: strings.Repeat("word ", 5000)}); err != nil {
		t.Fatalf("WriteSegmentResult: %v", err)
	}
	if err := WriteMarker(path, Marker{Segment: 2, Total: 2, Status: StatusFailed}); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}

	m, err := ReadMarker(path)
	if err != nil {
		t.Fatalf("ReadMarker: %v", err)
	}
	if m == nil || m.Segment != 2 || m.Status != StatusFailed {
		t.Errorf("ReadMarker() = %+v", m)
	}
}

func TestSegmentResultsAndBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")

	if err := WriteMarker(path, Marker{Segment: 1, Total: 2, Status: StatusProcessing}); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}
	if err := WriteSegmentResult(path, Block{Index: 1, Total: 2, Heading: "[0.7s - 7.5s]", Body: "first\n"}); err != nil {
		t.Fatalf("WriteSegmentResult: %v", err)
	}
	if err := WriteMarker(path, Marker{Segment: 2, Total: 2, Status: StatusProcessing}); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}
	if err := WriteSegmentResult(path, Block{Index: 2, Total: 2, Body: "second\n\nparagraph"}); err != nil {
		t.Fatalf("WriteSegmentResult: %v", err)
	}
	if err := WriteMarker(path, Marker{Segment: 2, Total: 2, Status: StatusComplete}); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}

	want := "<!-- segment: 1/2 -->\n### [0.7s - 7.5s]\n\nfirst\n\n" +
		"<!-- segment: 2/2 -->\nsecond\n\nparagraph\n\n" +
		"<!-- PROCESSING: segment=2/2, status=complete -->\n"
	if got := readFile(t, path); got != want {
		t.Errorf("artifact mismatch\n got: %q\nwant: %q", got, want)
	}

	blocks, err := ReadBlocks(path)
	if err != nil {
		t.Fatalf("ReadBlocks: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Heading != "[0.7s - 7.5s]" || blocks[0].Body != "first" {
		t.Errorf("block 1 = %+v", blocks[0])
	}
	if blocks[1].Heading != "" || blocks[1].Body != "second\n\nparagraph" {
		t.Errorf("block 2 = %+v", blocks[1])
	}
}

func TestReadBlocksKeepsMarkdownHeadingInBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	if err := WriteSegmentResult(path, Block{Index: 1, Total: 2, Body: "### Overview\n\nplain input"}); err != nil {
		t.Fatalf("WriteSegmentResult: %v", err)
	}
	if err := WriteSegmentResult(path, Block{Index: 2, Total: 2, Heading: "[1.0s - 2.0s]", Body: "### Title\n\ntimed"}); err != nil {
		t.Fatalf("WriteSegmentResult: %v", err)
	}

	blocks, err := ReadBlocks(path)
	if err != nil {
		t.Fatalf("ReadBlocks: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Heading != "" || blocks[0].Body != "### Overview\n\nplain input" {
		t.Errorf("block 1 = %+v", blocks[0])
	}
	if blocks[1].Heading != "[1.0s - 2.0s]" || blocks[1].Body != "### Title\n\ntimed" {
		t.Errorf("block 2 = %+v", blocks[1])
	}
}

func TestTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	for i := 1; i <= 3; i++ {
		if err := WriteSegmentResult(path, Block{Index: i, Total: 4, Body: "body"}); err != nil {
			t.Fatalf("WriteSegmentResult: %v", err)
		}
	}
	if err := WriteMarker(path, Marker{Segment: 3, Total: 4, Status: StatusProcessing}); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}

	if err := Truncate(path, 3); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	blocks, err := ReadBlocks(path)
	if err != nil {
		t.Fatalf("ReadBlocks: %v", err)
	}
	if len(blocks) != 2 || blocks[1].Index != 2 {
		t.Errorf("expected blocks 1-2 to remain, got %+v", blocks)
	}
	if m, _ := ReadMarker(path); m != nil {
		t.Errorf("expected marker removed, got %+v", m)
	}

	// nothing at or after index 5
	before := readFile(t, path)
	if err := Truncate(path, 5); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if readFile(t, path) != before {
		t.Error("Truncate past the last block changed the file")
	}
}

func TestResumePoint(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		total     int
		wantState State
		wantNext  int
	}{
		{
			name:      "empty",
			content:   "",
			total:     5,
			wantState: StateNew,
			wantNext:  1,
		},
		{
			name: "processing",
			content: "<!-- segment: 1/5 -->\nx\n\n<!-- segment: 2/5 -->\npartial\n\n" +
				"<!-- PROCESSING: segment=2/5, status=processing -->\n",
			total:     5,
			wantState: StateProcessing,
			wantNext:  2,
		},
		{
			name:      "failed",
			content:   "<!-- segment: 1/5 -->\nx\n\n<!-- PROCESSING: segment=2/5, status=failed -->\n",
			total:     5,
			wantState: StateFailed,
			wantNext:  2,
		},
		{
			name:      "complete",
			content:   "<!-- segment: 1/1 -->\nx\n\n<!-- PROCESSING: segment=1/1, status=complete -->\n",
			total:     1,
			wantState: StateComplete,
			wantNext:  2,
		},
		{
			name:      "blocks without marker",
			content:   "<!-- segment: 1/5 -->\nx\n\n<!-- segment: 2/5 -->\ny\n\n",
			total:     5,
			wantState: StateLegacy,
			wantNext:  3,
		},
		{
			name:      "paragraphs without marker",
			content:   "one\n\ntwo\n\nthree\n",
			total:     5,
			wantState: StateLegacy,
			wantNext:  4,
		},
		{
			name:      "estimate capped at total",
			content:   "a\n\nb\n\nc\n\nd",
			total:     2,
			wantState: StateLegacy,
			wantNext:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.md")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test file: %v", err)
			}
			got, err := ResumePoint(path, tt.total)
			if err != nil {
				t.Fatalf("ResumePoint: %v", err)
			}
			if got.State != tt.wantState || got.Next != tt.wantNext {
				t.Errorf("ResumePoint() = %s/%d, want %s/%d", got.State, got.Next, tt.wantState, tt.wantNext)
			}
		})
	}
}

func TestResumePointNewFile(t *testing.T) {
	got, err := ResumePoint(filepath.Join(t.TempDir(), "absent.md"), 3)
	if err != nil {
		t.Fatalf("ResumePoint: %v", err)
	}
	if got.State != StateNew || got.Next != 1 || got.Done(3) {
		t.Errorf("ResumePoint() = %+v", got)
	}
}

func TestResumePointMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	if err := WriteMarker(path, Marker{Segment: 2, Total: 5, Status: StatusProcessing}); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}

	_, err := ResumePoint(path, 7)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *MismatchError, got %v", err)
	}
	if mismatch.MarkerTotal != 5 || mismatch.Total != 7 {
		t.Errorf("MismatchError = %+v", mismatch)
	}
}

func TestResumePointRejectsOutOfRangeMarker(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero index", "<!-- PROCESSING: segment=0/3, status=processing -->\n"},
		{"index past total", "<!-- PROCESSING: segment=9/3, status=failed -->\n"},
		{"complete before last segment", "<!-- segment: 1/3 -->\nx\n\n<!-- PROCESSING: segment=1/3, status=complete -->\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.md")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test file: %v", err)
			}
			_, err := ResumePoint(path, 3)
			var invalid *InvalidMarkerError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected *InvalidMarkerError, got %v", err)
			}
		})
	}
}

func TestLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")

	unlock, err := Lock(path)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	if _, err := Lock(path); !errors.Is(err, ErrLocked) {
		t.Errorf("second Lock: expected ErrLocked, got %v", err)
	}

	if err := unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	unlock, err = Lock(path)
	if err != nil {
		t.Fatalf("Lock after unlock: %v", err)
	}
	unlock()
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "final.md")
	if err := WriteFile(path, "summary\n"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if got := readFile(t, path); got != "summary\n" {
		t.Errorf("got %q", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no temp files left behind, got %d entries", len(entries))
	}
}
