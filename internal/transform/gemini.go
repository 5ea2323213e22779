package transform

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// implements Transformer using Google Gemini
type GeminiTransformer struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiTransformer(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiTransformer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTransformer{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *GeminiTransformer) Transform(
	ctx context.Context,
	text string,
	kind PromptKind,
) (string, error) {
	prompt, err := systemPrompt(t.options.Prompts, kind)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(text), config)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", kind, err)
	}

	return t.parseResponse(result)
}

func (t *GeminiTransformer) parseResponse(
	result *genai.GenerateContentResponse,
) (string, error) {
	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates from Gemini", ErrEmptyResponse)
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
		if responseText != "" {
			break
		}
	}

	responseText = strings.TrimSpace(responseText)
	if responseText == "" {
		return "", fmt.Errorf("%w: no text in Gemini response", ErrEmptyResponse)
	}

	return responseText, nil
}
