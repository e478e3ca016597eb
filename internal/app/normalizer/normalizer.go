// Package normalizer cleans raw transcripts with a text generator, one
// bounded chunk at a time.
package normalizer

import (
	"context"
	stderrors "errors"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"media2text/internal/app/api"
	"media2text/internal/app/errors"
	"media2text/internal/app/metrics"
	"media2text/internal/app/textchunk"
	"media2text/internal/app/util/retry"
)

const (
	DefaultTemperature float32 = 0.1
	DefaultMaxAttempts         = 3
	DefaultBaseDelay           = time.Second
)

// Result describes one normalization run.
type Result struct {
	Text      string
	Chunks    int
	Fallbacks []int // indices of chunks kept as raw text
}

type Normalizer struct {
	generator     api.TextGenerator
	systemPrompt  string
	maxChunkChars int
	temperature   float32
	policy        retry.Policy
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

type Option func(*Normalizer)

func WithMaxChunkChars(chars int) Option {
	return func(n *Normalizer) {
		if chars > 0 {
			n.maxChunkChars = chars
		}
	}
}

func WithTemperature(t float32) Option {
	return func(n *Normalizer) { n.temperature = t }
}

// WithRetry sets the attempts per chunk and the base backoff delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(n *Normalizer) {
		if maxAttempts > 0 {
			n.policy.MaxAttempts = maxAttempts
		}
		if baseDelay >= 0 {
			n.policy.BaseDelay = baseDelay
		}
	}
}

// WithSleep replaces the backoff sleep, mainly for tests.
func WithSleep(sleep retry.SleepFunc) Option {
	return func(n *Normalizer) { n.policy.Sleep = sleep }
}

func WithLogger(logger *zap.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Normalizer) { n.metrics = m }
}

func New(generator api.TextGenerator, systemPrompt string, opts ...Option) *Normalizer {
	n := &Normalizer{
		generator:     generator,
		systemPrompt:  systemPrompt,
		maxChunkChars: textchunk.LLMChunkChars,
		temperature:   DefaultTemperature,
		policy: retry.Policy{
			MaxAttempts: DefaultMaxAttempts,
			BaseDelay:   DefaultBaseDelay,
			Sleep:       retry.Sleep,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// LoadPrompt reads the system prompt file.
func LoadPrompt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NotFound("system prompt file", path)
		}
		return "", errors.Wrapf(err, "read system prompt %s", path)
	}
	return string(data), nil
}

// Normalize returns the cleaned text. Chunks the generator could not handle
// are kept verbatim, so the result always has one part per input chunk.
func (n *Normalizer) Normalize(ctx context.Context, raw string) (string, error) {
	res, err := n.NormalizeDetailed(ctx, raw)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func (n *Normalizer) NormalizeDetailed(ctx context.Context, raw string) (Result, error) {
	if strings.TrimSpace(raw) == "" {
		return Result{}, errors.Kind(errors.ErrInvalidInput, nil, "transcript to normalize is empty")
	}

	chunks := textchunk.Split(raw, n.maxChunkChars)
	n.logger.Info("starting normalization", zap.Int("chunks", len(chunks)), zap.String("generator", n.generator.Name()))

	parts := make([]string, 0, len(chunks))
	var fallbacks []int
	for i, chunk := range chunks {
		n.logger.Debug("normalizing chunk", zap.Int("chunk", i+1), zap.Int("of", len(chunks)))

		text, err := n.generate(ctx, i, chunk)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
			n.logger.Error("chunk normalization failed, keeping raw text",
				zap.Int("chunk", i+1), zap.Int("of", len(chunks)), zap.Error(err))
			n.metrics.Fallback()
			fallbacks = append(fallbacks, i)
			text = chunk
		}
		parts = append(parts, text)
	}

	return Result{
		Text:      textchunk.Join(parts),
		Chunks:    len(chunks),
		Fallbacks: fallbacks,
	}, nil
}

func (n *Normalizer) generate(ctx context.Context, index int, chunk string) (string, error) {
	policy := n.policy
	policy.ShouldRetry = func(err error) bool {
		return !stderrors.Is(err, context.Canceled) && !stderrors.Is(err, context.DeadlineExceeded)
	}
	policy.OnFailure = func(attempt int, err error) {
		n.metrics.GenerationAttempt(false)
		n.logger.Warn("generation attempt failed",
			zap.Int("chunk", index+1),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Error(err))
	}

	return retry.Do(ctx, policy, func(ctx context.Context, _ int) (string, error) {
		text, err := n.generator.Generate(ctx, api.GenerateRequest{
			SystemPrompt: n.systemPrompt,
			UserText:     chunk,
			Temperature:  n.temperature,
		})
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", api.ErrEmptyCandidate
		}
		n.metrics.GenerationAttempt(true)
		return text, nil
	})
}
