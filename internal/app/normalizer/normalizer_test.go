package normalizer

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"media2text/internal/app/api"
	"media2text/internal/app/errors"
	"media2text/internal/app/metrics"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req api.GenerateRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) Name() string { return "mock" }

func userText(text string) interface{} {
	return mock.MatchedBy(func(req api.GenerateRequest) bool { return req.UserText == text })
}

type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

func TestNormalize_SingleChunk(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(req api.GenerateRequest) bool {
		return req.UserText == "hello world" && req.SystemPrompt == "fix it" && req.Temperature == DefaultTemperature
	})).Return("Hello world.", nil).Once()

	n := New(gen, "fix it")
	got, err := n.Normalize(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, "Hello world.", got)
	gen.AssertExpectations(t)
}

func TestNormalize_FailedChunkKeepsRawText(t *testing.T) {
	// Three 8-character paragraphs with a budget of 10 give three chunks.
	raw := "aaaaaaaa\n\nbbbbbbbb\n\ncccccccc"

	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, userText("aaaaaaaa")).Return("A", nil).Once()
	gen.On("Generate", mock.Anything, userText("bbbbbbbb")).Return("", stderrors.New("503 overloaded")).Times(3)
	gen.On("Generate", mock.Anything, userText("cccccccc")).Return("C", nil).Once()

	core, logs := observer.New(zapcore.WarnLevel)
	m := metrics.New()
	sleeper := &sleepRecorder{}

	n := New(gen, "prompt",
		WithMaxChunkChars(10),
		WithSleep(sleeper.sleep),
		WithLogger(zap.New(core)),
		WithMetrics(m),
	)
	res, err := n.NormalizeDetailed(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "A\n\nbbbbbbbb\n\nC", res.Text)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, []int{1}, res.Fallbacks)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.waits)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NormalizationFallback))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.GenerationAttempts.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GenerationAttempts.WithLabelValues("ok")))
	assert.Equal(t, 3, logs.FilterMessage("generation attempt failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("chunk normalization failed, keeping raw text").Len())
	gen.AssertExpectations(t)
}

func TestNormalize_EmptyCandidateIsRetried(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, userText("raw")).Return("   ", nil).Once()
	gen.On("Generate", mock.Anything, userText("raw")).Return("clean", nil).Once()

	sleeper := &sleepRecorder{}
	n := New(gen, "p", WithSleep(sleeper.sleep))
	got, err := n.Normalize(context.Background(), "raw")
	require.NoError(t, err)
	assert.Equal(t, "clean", got)
	assert.Equal(t, []time.Duration{time.Second}, sleeper.waits)
	gen.AssertExpectations(t)
}

func TestNormalize_CustomRetryPolicy(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", stderrors.New("down")).Times(5)

	sleeper := &sleepRecorder{}
	n := New(gen, "p", WithRetry(5, 100*time.Millisecond), WithSleep(sleeper.sleep))
	res, err := n.NormalizeDetailed(context.Background(), "keep me")
	require.NoError(t, err)
	assert.Equal(t, "keep me", res.Text)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond}, sleeper.waits)
	gen.AssertExpectations(t)
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := New(new(MockGenerator), "p")
	for _, raw := range []string{"", "  \n\n\t"} {
		_, err := n.Normalize(context.Background(), raw)
		assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
	}
}

func TestNormalize_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Run(func(mock.Arguments) { cancel() }).Return("", context.Canceled).Once()

	_, err := New(gen, "p").Normalize(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalize_PreservesOrderAcrossManyChunks(t *testing.T) {
	paragraphs := []string{"one", "two", "three", "four", "five"}
	gen := new(MockGenerator)
	for _, p := range paragraphs {
		gen.On("Generate", mock.Anything, userText(p)).Return(strings.ToUpper(p), nil).Once()
	}

	got, err := New(gen, "p", WithMaxChunkChars(5)).Normalize(context.Background(), strings.Join(paragraphs, "\n\n"))
	require.NoError(t, err)
	assert.Equal(t, "ONE\n\nTWO\n\nTHREE\n\nFOUR\n\nFIVE", got)
}

func TestLoadPrompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post_processing.txt")
	require.NoError(t, os.WriteFile(path, []byte("You fix transcripts."), 0o644))

	prompt, err := LoadPrompt(path)
	require.NoError(t, err)
	assert.Equal(t, "You fix transcripts.", prompt)

	_, err = LoadPrompt(filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, stderrors.Is(err, errors.ErrNotFound))
}
