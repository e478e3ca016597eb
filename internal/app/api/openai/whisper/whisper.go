package whisper

import (
	"context"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"media2text/internal/app/api"
	"media2text/internal/app/errors"
	"media2text/internal/app/transcript"
)

// SingleSpeaker labels verbose_json segments, which carry no speaker.
const SingleSpeaker = "SPEAKER_00"

// Config selects the model and optional prompt.
type Config struct {
	Model  string `yaml:"model"`
	Prompt string `yaml:"prompt"`
}

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client    *openai.Client
	config    Config
	formatter *transcript.Formatter
	logger    *zap.Logger
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client, config Config, formatter *transcript.Formatter, logger *zap.Logger) *RemoteTranscriber {
	if config.Model == "" {
		config.Model = openai.Whisper1
	}
	if formatter == nil {
		formatter = transcript.NewFormatterForLanguage("en")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteTranscriber{client: client, config: config, formatter: formatter, logger: logger}
}

func (rt *RemoteTranscriber) Name() string {
	return rt.config.Model
}

// Transcript uses the OpenAI API for remote transcription. With diarization
// the response segments are rendered as one speaker paragraph.
func (rt *RemoteTranscriber) Transcript(ctx context.Context, inputFilePath string, opts api.TranscriptOptions) (string, error) {
	if _, err := os.Stat(inputFilePath); os.IsNotExist(err) {
		return "", errors.NotFound("audio segment", inputFilePath)
	}

	req := openai.AudioRequest{
		Model:    rt.config.Model,
		FilePath: inputFilePath,
		Language: opts.Language,
		Prompt:   rt.config.Prompt,
		Format:   openai.AudioResponseFormatText,
	}
	if strings.Contains(rt.config.Model, "diarize") && req.Prompt != "" {
		rt.logger.Warn("prompt ignored for diarization model", zap.String("model", rt.config.Model))
		req.Prompt = ""
	}
	if opts.Diarization {
		req.Format = openai.AudioResponseFormatVerboseJSON
	}

	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", api.ProviderError("openai transcription", err)
	}

	if !opts.Diarization {
		return strings.TrimSpace(resp.Text), nil
	}
	if len(resp.Segments) == 0 {
		return rt.formatter.Clean(resp.Text), nil
	}
	segments := make([]transcript.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, transcript.Segment{Speaker: SingleSpeaker, Start: s.Start, End: s.End, Text: s.Text})
	}
	return rt.formatter.Format(segments), nil
}
