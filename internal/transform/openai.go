package transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Transformer using Chat Completions, for OpenAI and any
// compatible endpoint such as DeepSeek
type OpenAITransformer struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAITransformer(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITransformer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(reqOpts...)

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &OpenAITransformer{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *OpenAITransformer) Transform(
	ctx context.Context,
	text string,
	kind PromptKind,
) (string, error) {
	prompt, err := systemPrompt(t.options.Prompts, kind)
	if err != nil {
		return "", err
	}

	completion, err := t.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(prompt),
				openai.UserMessage(text),
			},
			Model: t.model,
		},
	)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", kind, err)
	}

	return t.parseResponse(completion)
}

func (t *OpenAITransformer) parseResponse(
	completion *openai.ChatCompletion,
) (string, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices from %s", ErrEmptyResponse, t.model)
	}

	responseText := strings.TrimSpace(completion.Choices[0].Message.Content)
	if responseText == "" {
		return "", fmt.Errorf("%w: no text from %s", ErrEmptyResponse, t.model)
	}

	return responseText, nil
}
