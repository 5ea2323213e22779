// Package pipeline runs a transcript through segmentation and a per-segment
// LLM transform, checkpointing every segment in the output artifact so an
// interrupted run picks up where it stopped.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/streamscribe-ai/streamscribe/internal/logging"
	"github.com/streamscribe-ai/streamscribe/internal/progress"
	"github.com/streamscribe-ai/streamscribe/internal/timecode"
	"github.com/streamscribe-ai/streamscribe/internal/transcript"
	"github.com/streamscribe-ai/streamscribe/internal/transform"
)

// Stage of a run.
type Stage string

const (
	StageDetecting  Stage = "detecting"
	StageParsing    Stage = "parsing"
	StageSegmenting Stage = "segmenting"
	StageProcessing Stage = "processing"
	StageMerging    Stage = "merging"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// Mode picks what is done to each segment.
type Mode string

const (
	// clean up each segment into <stem>_processed.md
	ModeClean Mode = "clean"
	// summarise each segment, then merge into <stem>_final_summary.md
	ModeSummarize Mode = "summarize"
)

type Request struct {
	InputPath string
	OutputDir string
	MinSpaces int
	MaxSpaces int
	Mode      Mode
}

// Outcome describes a finished or failed run.
type Outcome struct {
	Stage      Stage
	Format     transcript.Format
	Warnings   []transcript.Warning
	Segments   int
	Processed  int // segments transformed by this run
	Resume     progress.Resume
	OutputPath string
	// set in summarize mode
	FinalPath    string
	MergeSkipped bool
}

// Processor runs requests against one transformer.
type Processor struct {
	transformer transform.Transformer
	retry       RetryPolicy
	logger      *logging.Logger
}

func NewProcessor(
	transformer transform.Transformer,
	retry RetryPolicy,
	logger *logging.Logger,
) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		transformer: transformer,
		retry:       retry,
		logger:      logger,
	}
}

// ArtifactPaths returns the per-segment artifact and, in summarize mode, the
// final summary path for an input.
func ArtifactPaths(inputPath, outputDir string, mode Mode) (string, string) {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	if mode == ModeSummarize {
		return filepath.Join(outputDir, stem+"_segment_summaries.md"),
			filepath.Join(outputDir, stem+"_final_summary.md")
	}
	return filepath.Join(outputDir, stem+"_processed.md"), ""
}

// Run executes the request. The returned Outcome is non-nil even on error
// and records the stage the run stopped in.
func (p *Processor) Run(ctx context.Context, req Request) (*Outcome, error) {
	out := &Outcome{Stage: StageDetecting}
	out.OutputPath, out.FinalPath = ArtifactPaths(req.InputPath, req.OutputDir, req.Mode)

	if err := transcript.ValidateBounds(req.MinSpaces, req.MaxSpaces); err != nil {
		return out, err
	}

	raw, err := transcript.ReadFile(req.InputPath)
	if err != nil {
		return out, err
	}
	out.Format = transcript.Detect(raw)
	p.logger.Debugw("Detected input format", "input", req.InputPath, "format", out.Format)

	p.setStage(out, StageParsing)
	units, warnings := transcript.Parse(raw, out.Format)
	out.Warnings = warnings
	for _, w := range warnings {
		p.logger.Warnw("Skipped malformed input", "line", w.Line, "reason", w.Reason)
	}
	if len(units) == 0 {
		return out, fmt.Errorf("no text found in %s", req.InputPath)
	}

	p.setStage(out, StageSegmenting)
	segments, err := transcript.Split(units, req.MinSpaces, req.MaxSpaces)
	if err != nil {
		return out, err
	}
	out.Segments = len(segments)
	p.logger.Infow("Segmented input",
		"format", out.Format,
		"units", len(units),
		"segments", len(segments),
		"min_spaces", req.MinSpaces,
		"max_spaces", req.MaxSpaces,
	)

	unlock, err := progress.Lock(out.OutputPath)
	if err != nil {
		return out, err
	}
	defer func() {
		if err := unlock(); err != nil {
			p.logger.Warnw("Failed to release artifact lock", "output", out.OutputPath, "error", err)
		}
	}()

	p.setStage(out, StageProcessing)
	kind := transform.PromptClean
	if req.Mode == ModeSummarize {
		kind = transform.PromptSummarize
	}
	if err := p.processSegments(ctx, out, segments, kind); err != nil {
		p.setStage(out, StageFailed)
		return out, err
	}

	if req.Mode == ModeSummarize {
		p.setStage(out, StageMerging)
		if err := p.merge(ctx, out); err != nil {
			p.setStage(out, StageFailed)
			return out, err
		}
	}

	p.setStage(out, StageDone)
	return out, nil
}

func (p *Processor) setStage(out *Outcome, stage Stage) {
	out.Stage = stage
	p.logger.Debugw("Stage", "stage", stage)
}

func (p *Processor) processSegments(
	ctx context.Context,
	out *Outcome,
	segments []transcript.Segment,
	kind transform.PromptKind,
) error {
	path := out.OutputPath
	total := len(segments)

	resume, err := progress.ResumePoint(path, total)
	if err != nil {
		return err
	}
	out.Resume = resume

	switch resume.State {
	case progress.StateComplete:
		p.logger.Infow("All segments already processed", "output", path, "total", total)
		return nil
	case progress.StateNew:
	case progress.StateLegacy:
		p.logger.Warnw("Output has no progress marker, estimating resume point",
			"output", path,
			"next", resume.Next,
			"total", total,
		)
	default:
		p.logger.Infow("Resuming",
			"output", path,
			"state", resume.State,
			"next", resume.Next,
			"total", total,
		)
	}

	if resume.State != progress.StateNew {
		if err := progress.Truncate(path, resume.Next); err != nil {
			return err
		}
	}

	for i := resume.Next; i <= total; i++ {
		seg := segments[i-1]

		if err := progress.WriteMarker(path, progress.Marker{
			Segment: i,
			Total:   total,
			Status:  progress.StatusProcessing,
		}); err != nil {
			return err
		}

		var heading string
		if seg.Timed {
			heading = timecode.FormatRange(seg.Start, seg.End)
		}
		input := seg.Text()
		if kind == transform.PromptSummarize {
			input = transform.SegmentInput(heading, input)
		}

		p.logger.Infow("Processing segment",
			"segment", i,
			"total", total,
			"spaces", seg.Spaces(),
		)

		start := time.Now()
		var result string
		attempts, err := p.retry.Do(ctx,
			func(ctx context.Context) error {
				var err error
				result, err = p.transformer.Transform(ctx, input, kind)
				return err
			},
			func(attempt int, delay time.Duration, err error) {
				p.logger.Warnw("Transform failed, retrying",
					"segment", i,
					"attempt", attempt,
					"delay", delay,
					"error", err,
				)
			},
		)
		if err != nil {
			if werr := progress.WriteMarker(path, progress.Marker{
				Segment: i,
				Total:   total,
				Status:  progress.StatusFailed,
			}); werr != nil {
				err = errors.Join(err, werr)
			}
			return &SegmentFailedError{Index: i, Total: total, Attempts: attempts, Err: err}
		}

		if err := progress.WriteSegmentResult(path, progress.Block{
			Index:   i,
			Total:   total,
			Heading: heading,
			Body:    result,
		}); err != nil {
			return err
		}
		out.Processed++

		p.logger.Infow("Segment done",
			"segment", i,
			"total", total,
			"attempts", attempts,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	}

	return progress.WriteMarker(path, progress.Marker{
		Segment: total,
		Total:   total,
		Status:  progress.StatusComplete,
	})
}

func (p *Processor) merge(ctx context.Context, out *Outcome) error {
	if info, err := os.Stat(out.FinalPath); err == nil && info.Size() > 0 {
		out.MergeSkipped = true
		p.logger.Infow("Final summary exists, skipping merge", "output", out.FinalPath)
		return nil
	}

	blocks, err := progress.ReadBlocks(out.OutputPath)
	if err != nil {
		return err
	}

	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Heading != "" {
			parts = append(parts, "### "+b.Heading+"\n\n"+b.Body)
		} else {
			parts = append(parts, b.Body)
		}
	}
	input := transform.MergeInput(strings.Join(parts, "\n\n"), out.Format.Timed())

	p.logger.Infow("Merging segment summaries", "segments", len(blocks))

	var result string
	attempts, err := p.retry.Do(ctx,
		func(ctx context.Context) error {
			var err error
			result, err = p.transformer.Transform(ctx, input, transform.PromptMerge)
			return err
		},
		func(attempt int, delay time.Duration, err error) {
			p.logger.Warnw("Merge failed, retrying",
				"attempt", attempt,
				"delay", delay,
				"error", err,
			)
		},
	)
	if err != nil {
		return &MergeFailedError{Attempts: attempts, Err: err}
	}

	if err := progress.WriteFile(out.FinalPath, strings.TrimSpace(result)+"\n"); err != nil {
		return err
	}
	p.logger.Infow("Final summary written", "output", out.FinalPath)
	return nil
}
