package transform

import (
	"context"
	"errors"
	"fmt"
)

// which prompt a transform runs under
type PromptKind string

const (
	PromptClean     PromptKind = "clean"
	PromptSummarize PromptKind = "summarize"
	PromptMerge     PromptKind = "merge"
)

// interface for LLM text transformation
type Transformer interface {
	Transform(ctx context.Context, text string, kind PromptKind) (string, error)
}

// LLM service provider
type Provider string

const (
	ProviderDeepSeek  Provider = "deepseek"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// DeepSeek serves an OpenAI-compatible API
const (
	DeepSeekBaseURL = "https://api.deepseek.com"
	DeepSeekModel   = "deepseek-chat"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("empty response from provider")

type Options struct {
	Model     string
	BaseURL   string
	Prompts   Prompts
	MaxTokens int // Anthropic only (default 8192)
}

// creates Transformer based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transformer, error) {
	if opts.Prompts == nil {
		opts.Prompts = DefaultPrompts()
	}

	switch provider {
	case ProviderDeepSeek, "":
		if opts.BaseURL == "" {
			opts.BaseURL = DeepSeekBaseURL
		}
		if opts.Model == "" {
			opts.Model = DeepSeekModel
		}
		return NewOpenAITransformer(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITransformer(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTransformer(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiTransformer(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func systemPrompt(prompts Prompts, kind PromptKind) (string, error) {
	prompt, ok := prompts[kind]
	if !ok || prompt == "" {
		return "", fmt.Errorf("no prompt configured for %q", kind)
	}
	return prompt, nil
}
