package api

import (
	"context"

	"media2text/internal/app/errors"
)

var (
	// ErrProviderFailure marks errors returned by a remote service.
	ErrProviderFailure = errors.ErrProviderFailure

	// ErrEmptyCandidate is returned when a generator answers without text.
	ErrEmptyCandidate = errors.New("generator returned no text")
)

// TranscriptOptions tune one transcription request.
type TranscriptOptions struct {
	Language    string
	Diarization bool
}

// Transcriber defines a transcription interface for converting audio files to text.
type Transcriber interface {
	Transcript(ctx context.Context, inputFilePath string, opts TranscriptOptions) (string, error)
	Name() string
}

// GenerateRequest is a single-turn prompt for a text generator.
type GenerateRequest struct {
	SystemPrompt string
	UserText     string
	Temperature  float32
}

// TextGenerator produces text from a prompt. Implementations return
// ErrEmptyCandidate when the model answers with nothing usable.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Name() string
}

// ProviderError wraps err as a failure of the named provider.
func ProviderError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return errors.Kind(errors.ErrProviderFailure, err, "%s", provider)
}
