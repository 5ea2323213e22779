package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/streamscribe-ai/streamscribe/internal/progress"
)

var statusCmd = &cobra.Command{
	Use:   "status [output_file]",
	Short: "Show the progress recorded in an output file",
	Long: `Show which segments an output file holds and the state of its progress
marker, without running anything.

Examples:
  streamscribe status output/talk_processed.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(w io.Writer, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("output file not found: %s", path)
	}

	marker, err := progress.ReadMarker(path)
	if err != nil {
		return err
	}
	blocks, err := progress.ReadBlocks(path)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, []string{
			fmt.Sprintf("%d/%d", b.Index, b.Total),
			b.Heading,
			strconv.Itoa(utf8.RuneCountInString(b.Body)),
			preview(b.Body, 48),
		})
	}

	fmt.Fprintln(w, renderTable(
		[]string{"Segment", "Time", "Chars", "Preview"},
		rows,
		[]text.Align{text.AlignRight, text.AlignLeft, text.AlignRight, text.AlignLeft},
		shouldColorize(w),
	))

	switch {
	case marker == nil && len(blocks) == 0:
		fmt.Fprintln(w, "No progress recorded.")
	case marker == nil:
		fmt.Fprintf(w, "No progress marker; %d segment(s) present. The next run estimates where to resume.\n", len(blocks))
	case marker.Status == progress.StatusComplete:
		fmt.Fprintf(w, "Complete: %d/%d segments.\n", marker.Total, marker.Total)
	case marker.Status == progress.StatusFailed:
		fmt.Fprintf(w, "Failed at segment %d/%d. Re-run to retry it.\n", marker.Segment, marker.Total)
	default:
		fmt.Fprintf(w, "Interrupted at segment %d/%d. Re-run to continue.\n", marker.Segment, marker.Total)
	}
	return nil
}

func renderTable(headers []string, rows [][]string, aligns []text.Align, colorize bool) string {
	tw := table.NewWriter()
	if colorize {
		tw.SetStyle(table.StyleColoredBright)
	} else {
		tw.SetStyle(table.StyleRounded)
	}

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(aligns))
	for i, align := range aligns {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func preview(s string, maxRunes int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes]) + "..."
}
