package openai

import (
	"github.com/sashabaranov/go-openai"

	"media2text/internal/app/errors"
)

// NewClient builds an OpenAI client. baseURL may be empty for the public API.
func NewClient(apiKey, baseURL string) (*openai.Client, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrMissingAPIKey, "openai")
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config), nil
}
