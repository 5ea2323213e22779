package transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 8192

// implements Transformer using Anthropic Claude
type AnthropicTransformer struct {
	client  anthropic.Client
	model   anthropic.Model
	options Options
}

func NewAnthropicTransformer(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*AnthropicTransformer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := anthropic.NewClient(reqOpts...)

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicTransformer{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *AnthropicTransformer) maxTokens() int64 {
	if t.options.MaxTokens > 0 {
		return int64(t.options.MaxTokens)
	}
	return defaultMaxTokens
}

func (t *AnthropicTransformer) Transform(
	ctx context.Context,
	text string,
	kind PromptKind,
) (string, error) {
	prompt, err := systemPrompt(t.options.Prompts, kind)
	if err != nil {
		return "", err
	}

	message, err := t.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     t.model,
			MaxTokens: t.maxTokens(),
			System: []anthropic.TextBlockParam{
				{Text: prompt},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(text),
				),
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", kind, err)
	}

	return t.parseResponse(message)
}

func (t *AnthropicTransformer) parseResponse(
	message *anthropic.Message,
) (string, error) {
	if message == nil || len(message.Content) == 0 {
		return "", fmt.Errorf("%w: no content from Anthropic", ErrEmptyResponse)
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	responseText = strings.TrimSpace(responseText)
	if responseText == "" {
		return "", fmt.Errorf("%w: no text in Anthropic response", ErrEmptyResponse)
	}

	return responseText, nil
}
