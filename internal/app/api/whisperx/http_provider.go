package whisperx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"media2text/internal/app/api"
	"media2text/internal/app/errors"
	"media2text/internal/app/transcript"
)

// Provider implements api.Transcriber against an HTTP server running
// WhisperX with pyannote diarization.
type Provider struct {
	config    Config
	client    *http.Client
	formatter *transcript.Formatter
	logger    *zap.Logger
}

// Config represents configuration for a WhisperX HTTP endpoint
type Config struct {
	BaseURL          string            `yaml:"base_url"`
	TranscribePath   string            `yaml:"transcribe_path"` // default: "/transcribe"
	Timeout          time.Duration     `yaml:"timeout"`
	Language         string            `yaml:"language"` // used when the request has none
	HuggingFaceToken string            `yaml:"huggingface_token"`
	BatchSize        int               `yaml:"batch_size"`
	VADOnset         float64           `yaml:"vad_onset"`
	VADOffset        float64           `yaml:"vad_offset"`
	Temperature      float64           `yaml:"temperature"`
	AlignOutput      bool              `yaml:"align_output"`
	CustomHeaders    map[string]string `yaml:"custom_headers"`
}

// Response is the JSON body returned by the server.
type Response struct {
	Segments         []Segment `json:"segments"`
	DetectedLanguage string    `json:"detected_language,omitempty"`
}

type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// NewProvider creates a WhisperX HTTP provider
func NewProvider(config Config, formatter *transcript.Formatter, logger *zap.Logger) *Provider {
	if config.TranscribePath == "" {
		config.TranscribePath = "/transcribe"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Minute
	}
	if config.BatchSize == 0 {
		config.BatchSize = 64
	}
	if config.VADOnset == 0 {
		config.VADOnset = 0.5
	}
	if config.VADOffset == 0 {
		config.VADOffset = 0.363
	}
	if config.CustomHeaders == nil {
		config.CustomHeaders = make(map[string]string)
	}
	if formatter == nil {
		formatter = transcript.NewFormatterForLanguage(config.Language)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		config:    config,
		client:    &http.Client{Timeout: config.Timeout},
		formatter: formatter,
		logger:    logger,
	}
}

func (p *Provider) Name() string {
	return "whisperx"
}

// Transcript uploads one segment and renders the returned segments. With
// diarization the text is grouped by speaker turn.
func (p *Provider) Transcript(ctx context.Context, inputFilePath string, opts api.TranscriptOptions) (string, error) {
	if _, err := os.Stat(inputFilePath); os.IsNotExist(err) {
		return "", errors.NotFound("audio segment", inputFilePath)
	}

	body, contentType, err := p.createMultipartForm(inputFilePath, opts)
	if err != nil {
		return "", errors.Wrap(err, "failed to create multipart form")
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + p.config.TranscribePath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", errors.Wrap(err, "failed to create HTTP request")
	}
	httpReq.Header.Set("Content-Type", contentType)
	for key, value := range p.config.CustomHeaders {
		httpReq.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", api.ProviderError(p.Name(), err)
	}
	defer resp.Body.Close()

	responseData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", api.ProviderError(p.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", api.ProviderError(p.Name(), fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseData))))
	}

	var parsed Response
	if err := json.Unmarshal(responseData, &parsed); err != nil {
		return "", api.ProviderError(p.Name(), fmt.Errorf("failed to parse response: %w", err))
	}

	p.logger.Debug("whisperx transcription done",
		zap.String("file", filepath.Base(inputFilePath)),
		zap.Int("segments", len(parsed.Segments)),
		zap.String("detected_language", parsed.DetectedLanguage),
		zap.Duration("elapsed", time.Since(start)))

	segments := make([]transcript.Segment, 0, len(parsed.Segments))
	for _, s := range parsed.Segments {
		speaker := s.Speaker
		if speaker == "" {
			speaker = "Unknown"
		}
		segments = append(segments, transcript.Segment{Speaker: speaker, Start: s.Start, End: s.End, Text: s.Text})
	}
	if opts.Diarization {
		return p.formatter.Format(segments), nil
	}
	return p.formatter.Plain(segments), nil
}

func (p *Provider) createMultipartForm(inputFilePath string, opts api.TranscriptOptions) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	file, err := os.Open(inputFilePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile("audio_file", filepath.Base(inputFilePath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %v", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to copy file content: %v", err)
	}

	language := opts.Language
	if language == "" {
		language = p.config.Language
	}

	params := map[string]string{
		"diarization":  strconv.FormatBool(opts.Diarization),
		"batch_size":   strconv.Itoa(p.config.BatchSize),
		"vad_onset":    strconv.FormatFloat(p.config.VADOnset, 'f', -1, 64),
		"vad_offset":   strconv.FormatFloat(p.config.VADOffset, 'f', -1, 64),
		"temperature":  strconv.FormatFloat(p.config.Temperature, 'f', -1, 64),
		"align_output": strconv.FormatBool(p.config.AlignOutput),
	}
	if language != "" {
		params["language"] = language
	}
	if opts.Diarization && p.config.HuggingFaceToken != "" {
		params["huggingface_access_token"] = p.config.HuggingFaceToken
	}

	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %v", err)
	}

	return body, writer.FormDataContentType(), nil
}
