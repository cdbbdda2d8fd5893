package provider

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const openaiModel = "gpt-4o-mini"

const systemPrompt = "You are a careful copy editor. Reply with JSON only."

// chat talks to any OpenAI compatible chat completions endpoint.
type chat struct {
	client *openai.Client
	model  string
}

func newOpenAI(cfg Config) *chat {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		oc.BaseURL = cfg.Endpoint
	}

	model := cfg.Model
	if model == "" {
		model = openaiModel
	}

	return &chat{
		client: openai.NewClientWithConfig(oc),
		model:  model,
	}
}

func (c *chat) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
