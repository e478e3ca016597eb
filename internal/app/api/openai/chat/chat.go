package chat

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"

	"media2text/internal/app/api"
)

// Generator implements api.TextGenerator with chat completions.
type Generator struct {
	client *openai.Client
	model  string
}

func NewGenerator(client *openai.Client, model string) *Generator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Generator{client: client, model: model}
}

func (g *Generator) Name() string {
	return "openai:" + g.model
}

func (g *Generator) Generate(ctx context.Context, req api.GenerateRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserText,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", api.ProviderError(g.Name(), err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", api.ErrEmptyCandidate
	}
	return resp.Choices[0].Message.Content, nil
}
