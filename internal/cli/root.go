package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/streamscribe-ai/streamscribe/internal/config"
	"github.com/streamscribe-ai/streamscribe/internal/logging"
)

var (
	verbose    bool
	configPath string
	outputDir  string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "streamscribe",
	Short: "Resumable LLM cleanup and summaries for long transcripts",
	Long: `StreamScribe turns long transcripts (SRT subtitles, bracket-timestamped
transcripts, or plain text) into cleaned-up text or summaries.

Input is split into segments by word density and sent to an LLM one segment
at a time. Progress is recorded in the output file itself, so an interrupted
run continues from the segment it stopped at.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if outputDir != "" {
			loaded.OutputDir = outputDir
		}
		cfg = loaded

		if verbose {
			logger = logging.NewLogger(true)
		} else {
			logger = logging.New(cfg.Logging.Level)
		}
		logger = logger.With("run_id", uuid.NewString())
		logger.Debugw("Loaded configuration",
			"config", configPath,
			"provider", cfg.Provider,
			"output_dir", cfg.OutputDir,
		)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().
		StringVarP(&outputDir, "output-dir", "o", "", "Directory for output files (overrides output_dir)")
}

// spaceBounds returns the segment bounds from positional overrides or the
// config defaults.
func spaceBounds(args []string) (int, int, error) {
	if len(args) == 0 {
		return cfg.Segment.MinSpaces, cfg.Segment.MaxSpaces, nil
	}
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("minSpaces and maxSpaces must be given together")
	}
	minSpaces, err := parsePositive("minSpaces", args[0])
	if err != nil {
		return 0, 0, err
	}
	maxSpaces, err := parsePositive("maxSpaces", args[1])
	if err != nil {
		return 0, 0, err
	}
	return minSpaces, maxSpaces, nil
}
