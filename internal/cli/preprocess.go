package cli

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/streamscribe-ai/streamscribe/internal/progress"
	"github.com/streamscribe-ai/streamscribe/internal/timecode"
	"github.com/streamscribe-ai/streamscribe/internal/transcript"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess [input_file]",
	Short: "Extract, segment or slice a transcript without calling an LLM",
	Long: `Preprocess a transcript locally.

Modes:
  plain      strip all time information, write <name>_plain.txt
  with-time  split into segments of --min..--max spaces, each with its
             time range, write <name>_with_time.txt
  slice      keep only the cues overlapping --start..--end,
             write <name>_slice.txt

Times accept 90, 1:30, 00:01:30,000, 2m, 45s and 2m30s.

Examples:
  streamscribe preprocess talk.srt
  streamscribe preprocess talk.srt --mode with-time --min 50 --max 60
  streamscribe preprocess talk.srt --mode slice --start 2m --end 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runPreprocess,
}

func init() {
	rootCmd.AddCommand(preprocessCmd)

	preprocessCmd.Flags().
		StringP("mode", "m", "plain", "Mode (plain, with-time, slice)")
	preprocessCmd.Flags().
		Int("min", 0, "Minimum spaces per segment (default from config)")
	preprocessCmd.Flags().
		Int("max", 0, "Maximum spaces per segment (default from config)")
	preprocessCmd.Flags().
		String("start", "", "Slice start time")
	preprocessCmd.Flags().
		String("end", "", "Slice end time")
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	mode, _ := cmd.Flags().GetString("mode")
	minSpaces, _ := cmd.Flags().GetInt("min")
	maxSpaces, _ := cmd.Flags().GetInt("max")
	startArg, _ := cmd.Flags().GetString("start")
	endArg, _ := cmd.Flags().GetString("end")

	if !cmd.Flags().Changed("min") {
		minSpaces = cfg.Segment.MinSpaces
	}
	if !cmd.Flags().Changed("max") {
		maxSpaces = cfg.Segment.MaxSpaces
	}

	var suffix string
	switch mode {
	case "plain":
		suffix = "_plain.txt"
	case "with-time":
		suffix = "_with_time.txt"
		if err := transcript.ValidateBounds(minSpaces, maxSpaces); err != nil {
			return err
		}
	case "slice":
		suffix = "_slice.txt"
		if startArg == "" || endArg == "" {
			return fmt.Errorf("slice mode requires --start and --end")
		}
	default:
		return fmt.Errorf("invalid mode %q: use plain, with-time or slice", mode)
	}

	raw, err := transcript.ReadFile(inputPath)
	if err != nil {
		return err
	}
	format := transcript.Detect(raw)
	units, warnings := transcript.Parse(raw, format)
	for _, w := range warnings {
		logger.Warnw("Skipped malformed input", "line", w.Line, "reason", w.Reason)
	}
	logger.Infow("Parsed input",
		"input", inputPath,
		"format", format,
		"units", len(units),
		"bytes", len(raw),
	)
	if len(units) == 0 {
		return fmt.Errorf("no text found in %s", inputPath)
	}

	var buf bytes.Buffer
	switch mode {
	case "plain":
		text := transcript.PlainText(units)
		err = transcript.RenderPlain(&buf, text, filepath.Base(inputPath))
	case "with-time":
		var segments []transcript.Segment
		segments, err = transcript.Split(units, minSpaces, maxSpaces)
		if err != nil {
			return err
		}
		logger.Infow("Segmented input",
			"segments", len(segments),
			"min_spaces", minSpaces,
			"max_spaces", maxSpaces,
		)
		err = transcript.RenderSegments(&buf, segments)
	case "slice":
		start, perr := timecode.Parse(startArg)
		if perr != nil {
			return fmt.Errorf("invalid --start: %w", perr)
		}
		end, perr := timecode.Parse(endArg)
		if perr != nil {
			return fmt.Errorf("invalid --end: %w", perr)
		}
		var sliced []transcript.Unit
		sliced, err = transcript.Slice(units, start, end)
		if err != nil {
			return err
		}
		logger.Infow("Sliced input",
			"range", timecode.FormatRange(start, end),
			"units", len(sliced),
		)
		err = transcript.RenderSlice(&buf, sliced, start, end, startArg, endArg)
	}
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}

	outputPath := filepath.Join(cfg.OutputDir, stem(inputPath)+suffix)
	if err := progress.WriteFile(outputPath, buf.String()); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Output saved: %s\n", absOutput)
	return nil
}

func stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func parsePositive(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, value)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return n, nil
}
