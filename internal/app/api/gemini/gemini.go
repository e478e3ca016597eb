package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"media2text/internal/app/api"
	"media2text/internal/app/errors"
)

// contentGenerator is the part of *genai.Models the generator needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator implements api.TextGenerator with the Gemini API.
type Generator struct {
	models         contentGenerator
	model          string
	thinkingBudget *int32
}

// NewClient connects to the Gemini API with an API key.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrMissingAPIKey, "gemini")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, api.ProviderError("gemini client", err)
	}
	return client, nil
}

// NewGenerator uses client.Models. thinkingBudget <= 0 leaves the model default.
func NewGenerator(client *genai.Client, model string, thinkingBudget int32) *Generator {
	return newGenerator(client.Models, model, thinkingBudget)
}

func newGenerator(models contentGenerator, model string, thinkingBudget int32) *Generator {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	g := &Generator{models: models, model: model}
	if thinkingBudget > 0 {
		g.thinkingBudget = &thinkingBudget
	}
	return g
}

func (g *Generator) Name() string {
	return "gemini:" + g.model
}

// Generate sends one user turn and returns the first non-empty text part of
// the first candidate.
func (g *Generator) Generate(ctx context.Context, req api.GenerateRequest) (string, error) {
	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}
	if g.thinkingBudget != nil {
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: g.thinkingBudget}
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.UserText}},
	}}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", api.ProviderError(g.Name(), err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.Wrap(api.ErrEmptyCandidate, "no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return "", errors.Wrap(api.ErrEmptyCandidate, "candidate has no content")
	}
	for _, part := range candidate.Content.Parts {
		if part != nil && !part.Thought && strings.TrimSpace(part.Text) != "" {
			return part.Text, nil
		}
	}
	return "", errors.Wrap(api.ErrEmptyCandidate, "candidate has no text")
}
