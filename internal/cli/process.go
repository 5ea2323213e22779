package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/streamscribe-ai/streamscribe/internal/pipeline"
	"github.com/streamscribe-ai/streamscribe/internal/transform"
)

var processCmd = &cobra.Command{
	Use:   "process [input_file] [minSpaces maxSpaces]",
	Short: "Clean up a transcript segment by segment with an LLM",
	Long: `Send each segment of a transcript to the configured LLM for cleanup and
write the results to <name>_processed.md.

If the output file already exists, processing resumes after the last
finished segment. A failed segment is retried on the next run.

Examples:
  streamscribe process talk.srt
  streamscribe process talk.srt 80 100
  streamscribe process notes.txt -o results`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(args, pipeline.ModeClean)
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [input_file] [minSpaces maxSpaces]",
	Short: "Summarise a transcript in two phases with an LLM",
	Long: `Summarise each segment of a transcript into <name>_segment_summaries.md,
then merge those summaries into <name>_final_summary.md.

Both phases resume: finished segments are not summarised again, and the
merge is skipped when the final summary already exists.

Examples:
  streamscribe summarize meeting.srt
  streamscribe summarize lecture.txt 100 120`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(args, pipeline.ModeSummarize)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(summarizeCmd)
}

func runPipeline(args []string, mode pipeline.Mode) error {
	inputPath := args[0]

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	minSpaces, maxSpaces, err := spaceBounds(args[1:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transformer, err := newTransformer(ctx)
	if err != nil {
		return err
	}

	logger.Infow("Starting",
		"mode", mode,
		"input", inputPath,
		"provider", cfg.Provider,
		"output_dir", cfg.OutputDir,
	)

	processor := pipeline.NewProcessor(transformer, retryPolicy(), logger)
	outcome, err := processor.Run(ctx, pipeline.Request{
		InputPath: inputPath,
		OutputDir: cfg.OutputDir,
		MinSpaces: minSpaces,
		MaxSpaces: maxSpaces,
		Mode:      mode,
	})
	if err != nil {
		logger.Errorw("Run stopped", "stage", outcome.Stage, "output", outcome.OutputPath)
		return err
	}

	absOutput, _ := filepath.Abs(outcome.OutputPath)
	fmt.Printf("Segments written: %s\n", absOutput)
	fmt.Printf("  Segments: %d (processed this run: %d)\n", outcome.Segments, outcome.Processed)
	if outcome.FinalPath != "" {
		absFinal, _ := filepath.Abs(outcome.FinalPath)
		fmt.Printf("Final summary: %s\n", absFinal)
	}
	return nil
}

func newTransformer(ctx context.Context) (transform.Transformer, error) {
	apiKey, err := cfg.ResolveAPIKey()
	if err != nil {
		return nil, err
	}

	prompts, err := transform.LoadPrompts(map[transform.PromptKind]string{
		transform.PromptClean:     cfg.Prompts.Clean,
		transform.PromptSummarize: cfg.Prompts.Summarize,
		transform.PromptMerge:     cfg.Prompts.Merge,
	})
	if err != nil {
		return nil, err
	}

	transformer, err := transform.Factory(ctx, transform.Provider(cfg.Provider), apiKey, transform.Options{
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Prompts: prompts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transformer: %w", err)
	}
	return transformer, nil
}

func retryPolicy() pipeline.RetryPolicy {
	return pipeline.RetryPolicy{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		Multiplier:   cfg.Retry.Multiplier,
	}
}
