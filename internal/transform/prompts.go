package transform

import (
	"embed"
	"fmt"
	"os"
	"strings"
)

//go:embed prompts/*.md
var defaultPrompts embed.FS

// system prompt per kind
type Prompts map[PromptKind]string

var promptKinds = []PromptKind{PromptClean, PromptSummarize, PromptMerge}

// DefaultPrompts returns the built-in prompts.
func DefaultPrompts() Prompts {
	prompts := make(Prompts, len(promptKinds))
	for _, kind := range promptKinds {
		data, err := defaultPrompts.ReadFile("prompts/" + string(kind) + ".md")
		if err != nil {
			panic(fmt.Sprintf("missing embedded prompt %s: %v", kind, err))
		}
		prompts[kind] = strings.TrimSpace(string(data))
	}
	return prompts
}

// LoadPrompts starts from the built-in prompts and replaces each kind that
// has a file path in overrides with that file's content.
func LoadPrompts(overrides map[PromptKind]string) (Prompts, error) {
	prompts := DefaultPrompts()
	for kind, path := range overrides {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s prompt: %w", kind, err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return nil, fmt.Errorf("%s prompt file %s is empty", kind, path)
		}
		prompts[kind] = text
	}
	return prompts, nil
}

// SegmentInput is the user message for summarising one segment. Timed
// segments carry their range so the summary can refer to it.
func SegmentInput(timeRange, content string) string {
	if timeRange == "" {
		return content
	}
	return fmt.Sprintf("Time range: %s\n\nContent:\n%s", timeRange, content)
}

// MergeInput wraps the per-segment summaries for the final merge.
func MergeInput(summaries string, timed bool) string {
	var sb strings.Builder
	if timed {
		sb.WriteString("Below are summaries of consecutive time ranges, in chronological order:\n\n")
		sb.WriteString(summaries)
		sb.WriteString("\n\nCombine them into one summary of the whole text:\n")
		sb.WriteString("1. Follow the timeline and show how the content develops over time.\n")
		sb.WriteString("2. Bring out the core themes and key information.\n")
		sb.WriteString("3. Use a clear paragraph structure.\n")
		sb.WriteString("4. Cite time ranges where they help.")
		return sb.String()
	}
	sb.WriteString("Below are summaries of consecutive sections:\n\n")
	sb.WriteString(summaries)
	sb.WriteString("\n\nCombine them into one summary of the whole text:\n")
	sb.WriteString("1. Bring out the core themes and key information.\n")
	sb.WriteString("2. Use a clear paragraph structure.\n")
	sb.WriteString("3. Keep the content coherent and logically ordered.")
	return sb.String()
}
